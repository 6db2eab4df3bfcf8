package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/apperr"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/auth"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
)

// CredentialVerifier checks a user name and password pair.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, userName, password string) (*model.User, error)
}

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Issue(userID, userName string) (string, error)
}

// AuthService exchanges credentials for a login token.
type AuthService struct {
	verifier CredentialVerifier
	tokens   TokenIssuer
	metrics  metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(verifier CredentialVerifier, tokens TokenIssuer, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{verifier: verifier, tokens: tokens, metrics: recorder}
}

// LoginInput defines input for a login.
type LoginInput struct {
	UserName string
	Password string
}

// Login returns a signed token for valid credentials. Unknown users and
// wrong passwords produce the same validation error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, error) {
	required := []struct{ name, value string }{
		{"user_name", input.UserName},
		{"password", input.Password},
	}
	if err := requireFields(required); err != nil {
		return "", err
	}

	user, err := s.verifier.VerifyCredentials(ctx, input.UserName, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.metrics.IncLoginFailed()
			return "", apperr.Validation(MsgInvalidLogin)
		}
		return "", fmt.Errorf("verify credentials: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.UserName)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	s.metrics.IncLoginSucceeded()
	return token, nil
}
