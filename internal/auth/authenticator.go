package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
)

// ErrInvalidCredentials is returned when a user name and password do not
// identify a user. Unknown users and wrong passwords share it.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Outcome is the terminal state of an authentication attempt.
type Outcome int

const (
	Rejected Outcome = iota
	Verified
)

// Reason explains a rejection. Its value is the message shown to clients.
type Reason string

const (
	ReasonMissingCredentials Reason = "Missing basic token"
	ReasonUnauthorized       Reason = "Unauthorized request"
)

// Result is the outcome of authenticating one request.
type Result struct {
	Outcome   Outcome
	Principal *model.Principal
	Reason    Reason
}

func verified(p *model.Principal) Result { return Result{Outcome: Verified, Principal: p} }
func rejected(r Reason) Result          { return Result{Outcome: Rejected, Reason: r} }

// Authenticator checks the credentials carried by an Authorization header.
type Authenticator struct {
	store  *CredentialStore
	hasher Hasher
	tokens *TokenIssuer

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthenticator creates an Authenticator. tokens may be nil, in which
// case bearer tokens are not accepted. The dummy digest used for unknown
// users is hashed here, so no request pays for it.
func NewAuthenticator(store *CredentialStore, hasher Hasher, tokens *TokenIssuer) *Authenticator {
	a := &Authenticator{store: store, hasher: hasher, tokens: tokens}
	a.dummy()
	return a
}

// Authenticate resolves header to a verified principal or a rejection.
// A non-nil error means the store could not be consulted; it is never
// reported as a rejection.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (Result, error) {
	scheme, payload, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return rejected(ReasonMissingCredentials), nil
	}
	payload = strings.TrimSpace(payload)

	switch strings.ToLower(scheme) {
	case model.SchemeBasic:
		userName, password, ok := parseBasic(payload)
		if !ok {
			return rejected(ReasonMissingCredentials), nil
		}
		return a.authenticateBasic(ctx, userName, password)
	case model.SchemeBearer:
		if a.tokens == nil || payload == "" {
			return rejected(ReasonMissingCredentials), nil
		}
		return a.authenticateBearer(ctx, payload)
	default:
		return rejected(ReasonMissingCredentials), nil
	}
}

func (a *Authenticator) authenticateBasic(ctx context.Context, userName, password string) (Result, error) {
	if userName == "" || password == "" {
		return rejected(ReasonUnauthorized), nil
	}

	user, err := a.VerifyCredentials(ctx, userName, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return rejected(ReasonUnauthorized), nil
		}
		return Result{}, err
	}
	return verified(model.PrincipalFor(user, model.SchemeBasic)), nil
}

func (a *Authenticator) authenticateBearer(ctx context.Context, token string) (Result, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return rejected(ReasonUnauthorized), nil
	}

	user, err := a.store.FindByUserName(ctx, claims.Subject)
	if err != nil {
		return Result{}, err
	}
	if user == nil || user.ID != claims.UserID {
		return rejected(ReasonUnauthorized), nil
	}
	return verified(model.PrincipalFor(user, model.SchemeBearer)), nil
}

// VerifyCredentials returns the user identified by userName and password,
// or ErrInvalidCredentials. Unknown users still pay for one hash comparison.
func (a *Authenticator) VerifyCredentials(ctx context.Context, userName, password string) (*model.User, error) {
	user, err := a.store.FindByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}

	digest := a.dummy()
	if user != nil {
		digest = user.PasswordHash
	}
	if !a.hasher.Verify(password, digest) || user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		digest, err := a.hasher.Hash("dummy-password-for-timing")
		if err == nil {
			a.dummyDigest = digest
		}
	})
	return a.dummyDigest
}

// parseBasic decodes a base64 "user:password" payload. Only the first
// colon separates the pair, so passwords may contain colons.
func parseBasic(payload string) (userName, password string, ok bool) {
	if payload == "" {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}
