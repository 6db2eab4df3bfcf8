package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/auth"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository/memory"
)

const gatePassword = "AAaa11!!"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

type gateFixture struct {
	router  http.Handler
	store   *memory.Store
	thing   *model.Thing
	metrics *metrics.InMemoryRecorder
	calls   *int
}

// newGateFixture mounts both gates in front of a handler that counts calls.
func newGateFixture(t *testing.T) gateFixture {
	t.Helper()
	ctx := context.Background()

	hasher, err := auth.NewPasswordHasher(auth.AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	digest, err := hasher.Hash(gatePassword)
	require.NoError(t, err)

	store := memory.New()
	user := &model.User{ID: "user-1", UserName: "dunder", FullName: "Dunder Mifflin", PasswordHash: digest}
	require.NoError(t, store.CreateUser(ctx, user))
	thing := &model.Thing{Title: "lamp", Author: model.User{ID: user.ID}}
	require.NoError(t, store.CreateThing(ctx, thing))

	rec := metrics.NewInMemory()
	authenticator := auth.NewAuthenticator(auth.NewCredentialStore(store), hasher, auth.NewTokenIssuer("s", time.Hour))

	calls := 0
	r := chi.NewRouter()
	r.Route("/api/things/{thing_id}", func(r chi.Router) {
		r.Use(Authenticate(AuthConfig{Logger: discardLogger(), Authenticator: authenticator, Metrics: rec}))
		r.Use(RequireThing(ThingGateConfig{Logger: discardLogger(), Things: store, Metrics: rec}))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			calls++
			p := auth.MustPrincipalFromContext(r.Context())
			th := ThingFromContext(r.Context())
			_ = json.NewEncoder(w).Encode(map[string]any{"user": p.UserName, "thing": th.Title})
		})
	})

	return gateFixture{router: r, store: store, thing: thing, metrics: rec, calls: &calls}
}

func (f gateFixture) do(t *testing.T, path, authorization string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"no header", "", "Missing basic token"},
		{"wrong scheme", "Token abc", "Missing basic token"},
		{"empty user name", basicAuth("", "anything"), "Unauthorized request"},
		{"empty password", basicAuth("dunder", ""), "Unauthorized request"},
		{"unknown user", basicAuth("nobody", gatePassword), "Unauthorized request"},
		{"wrong password", basicAuth("dunder", "nope"), "Unauthorized request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newGateFixture(t)

			rec, body := f.do(t, "/api/things/1", tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, map[string]string{"error": tt.wantMsg}, body)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Zero(t, *f.calls, "handler must not run")
			assert.Zero(t, f.store.ThingLookups(), "existence check must not run before authentication")
		})
	}
}

func TestAuthenticate_UnknownUserMatchesWrongPassword(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t)

	unknown, _ := f.do(t, "/api/things/1", basicAuth("nobody", gatePassword))
	wrong, _ := f.do(t, "/api/things/1", basicAuth("dunder", "AAaa11!?"))

	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestAuthenticate_StoreErrorIs500(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t)
	f.store.Err = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

	rec, body := f.do(t, "/api/things/1", basicAuth("dunder", gatePassword))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]string{"error": "Internal server error"}, body)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Equal(t, uint64(1), f.metrics.Snapshot().AuthErrors)
}

func TestGates_Success(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t)

	rec, body := f.do(t, "/api/things/1", basicAuth("dunder", gatePassword))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"user": "dunder", "thing": "lamp"}, body)
	assert.Equal(t, 1, *f.calls)
	assert.Equal(t, int64(1), f.store.ThingLookups(), "thing is fetched once and reused from context")
	assert.Equal(t, uint64(1), f.metrics.Snapshot().AuthVerifiedBasic)
}

func TestRequireThing_NotFound(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/api/things/999", "/api/things/abc", "/api/things/-3", "/api/things/0"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			f := newGateFixture(t)

			rec, body := f.do(t, path, basicAuth("dunder", gatePassword))

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, map[string]string{"error": "Thing doesn't exist"}, body)
			assert.Zero(t, *f.calls, "handler must not run")
			assert.LessOrEqual(t, f.store.ThingLookups(), int64(1))
			assert.Zero(t, f.store.ReviewLookups(), "no further store calls after a miss")
		})
	}
}

func TestRequireThing_StoreErrorIs500(t *testing.T) {
	t.Parallel()

	store := memory.New()
	store.Err = errors.New("timeout")

	calls := 0
	r := chi.NewRouter()
	r.With(RequireThing(ThingGateConfig{Logger: discardLogger(), Things: store})).
		Get("/things/{thing_id}", func(w http.ResponseWriter, r *http.Request) { calls++ })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	assert.Zero(t, calls)
}

func TestThingFromContext_Empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ThingFromContext(context.Background()))
}

func TestRecoverer_JSONBody(t *testing.T) {
	t.Parallel()

	h := Recoverer(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("pq: password authentication failed for user \"thingful\"")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}
