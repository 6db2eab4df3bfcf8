package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/apperr"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/auth"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
)

func newAuthFixture(t *testing.T) (*AuthService, *auth.TokenIssuer, userFixture) {
	t.Helper()
	f := newUserFixture(t)
	_, err := f.svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	authenticator := auth.NewAuthenticator(auth.NewCredentialStore(f.store), f.hasher, tokens)
	return NewAuthService(authenticator, tokens, f.metrics), tokens, f
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), LoginInput{Password: validPassword})
	assert.Equal(t, "Missing 'user_name' in request body", http400(t, err))

	_, err = svc.Login(context.Background(), LoginInput{UserName: "test-user"})
	assert.Equal(t, "Missing 'password' in request body", http400(t, err))
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	t.Parallel()
	svc, _, f := newAuthFixture(t)
	ctx := context.Background()

	_, unknownErr := svc.Login(ctx, LoginInput{UserName: "nobody", Password: validPassword})
	_, wrongErr := svc.Login(ctx, LoginInput{UserName: "test-user", Password: "AAaa11!?"})

	assert.Equal(t, MsgInvalidLogin, http400(t, unknownErr))
	assert.Equal(t, http400(t, unknownErr), http400(t, wrongErr))
	assert.Equal(t, uint64(2), f.metrics.Snapshot().LoginsFailed)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	svc, tokens, f := newAuthFixture(t)

	token, err := svc.Login(context.Background(), LoginInput{UserName: "test-user", Password: validPassword})
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "test-user", claims.Subject)
	assert.NotEmpty(t, claims.UserID)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().LoginsSucceeded)
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	t.Parallel()
	svc, _, f := newAuthFixture(t)
	f.store.Err = errors.New("i/o timeout")

	_, err := svc.Login(context.Background(), LoginInput{UserName: "test-user", Password: validPassword})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestNewAuthService_NilRecorder(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(nil, nil, nil)
	_, ok := svc.metrics.(*metrics.NoopRecorder)
	assert.True(t, ok)
}
