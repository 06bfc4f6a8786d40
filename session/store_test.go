package session_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brisa-Ol/loteplan-client/session"
	"github.com/Brisa-Ol/loteplan-client/storage"
	"github.com/Brisa-Ol/loteplan-client/storage/memory"
	"github.com/Brisa-Ol/loteplan-client/transport"
)

const (
	testEmail    = "user@loteplan.com"
	testPassword = "hunter2-secret"
	testCode     = "123456"
	tempToken    = "temp-tok-1"
	finalToken   = "tok-final-1"
)

// fakeBackend implements the auth endpoints the session store talks to.
type fakeBackend struct {
	mu          sync.Mutex
	requires2FA bool
	verifyCalls int
	loginCalls  int
}

func (f *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/login", f.login)
	r.Post("/auth/2fa/verify", f.verify)
	r.Get("/auth/me", f.me)
	r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})
	return r
}

func (f *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.loginCalls++
	requires2FA := f.requires2FA
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	var req map[string]string
	json.NewDecoder(r.Body).Decode(&req)
	if req["email"] != testEmail || req["password"] != testPassword {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		return
	}
	if requires2FA {
		json.NewEncoder(w).Encode(map[string]any{
			"requires_2fa": true,
			"temp_token":   tempToken,
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"token": finalToken})
}

func (f *fakeBackend) verify(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.verifyCalls++
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	var req map[string]string
	json.NewDecoder(r.Body).Decode(&req)
	if req["temp_token"] != tempToken || req["code"] != testCode {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Código inválido."})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"token": finalToken})
}

func (f *fakeBackend) me(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+finalToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Profile{
		ID:        "u-1",
		Email:     testEmail,
		FullName:  "Test User",
		Role:      "client",
		KYCStatus: "approved",
	})
}

type fakeLocator struct {
	mu    sync.Mutex
	path  string
	moves []string
}

func (l *fakeLocator) CurrentPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

func (l *fakeLocator) Navigate(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.path = path
	l.moves = append(l.moves, path)
}

func setup(t *testing.T, backend *fakeBackend) (*session.Store, *memory.Store, *fakeLocator, *transport.Gateway) {
	t.Helper()
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)

	creds := memory.NewStore()
	locator := &fakeLocator{path: "/dashboard"}
	gw := transport.New(srv.URL)
	store := session.New(gw, creds, session.WithLocator(locator))
	return store, creds, locator, gw
}

func TestLoginWithoutSecondFactor(t *testing.T) {
	store, creds, _, _ := setup(t, &fakeBackend{})

	res, err := store.Login(t.Context(), "  User@Loteplan.COM ", testPassword)
	require.NoError(t, err)
	assert.False(t, res.SecondFactorRequired)
	assert.Equal(t, session.PhaseAuthenticated, store.Phase())

	tok, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, finalToken, tok)

	profile, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, testEmail, profile.Email)
}

func TestLoginWithSecondFactor(t *testing.T) {
	store, creds, _, _ := setup(t, &fakeBackend{requires2FA: true})

	res, err := store.Login(t.Context(), testEmail, testPassword)
	require.NoError(t, err)
	require.True(t, res.SecondFactorRequired)
	assert.Equal(t, session.PhasePendingSecondFactor, store.Phase())

	// No credential may be persisted before the code is verified.
	_, err = creds.Load()
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.VerifySecondFactor(t.Context(), testCode))
	assert.Equal(t, session.PhaseAuthenticated, store.Phase())

	tok, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, finalToken, tok)
}

func TestLoginInvalidCredentials(t *testing.T) {
	store, _, locator, _ := setup(t, &fakeBackend{})

	_, err := store.Login(t.Context(), testEmail, "wrong")
	require.ErrorIs(t, err, session.ErrInvalidCredentials)
	assert.NotEqual(t, session.PhaseAuthenticated, store.Phase())
	assert.Empty(t, locator.moves, "a failed login must not force navigation")
}

func TestVerifySecondFactorWithoutPendingToken(t *testing.T) {
	backend := &fakeBackend{}
	store, _, _, _ := setup(t, backend)

	err := store.VerifySecondFactor(t.Context(), testCode)
	require.ErrorIs(t, err, session.ErrNoPendingToken)
	assert.Zero(t, backend.verifyCalls, "must fail locally without calling the network")
}

func TestSecondFactorRetryAfterWrongCode(t *testing.T) {
	store, _, _, _ := setup(t, &fakeBackend{requires2FA: true})

	_, err := store.Login(t.Context(), testEmail, testPassword)
	require.NoError(t, err)

	err = store.VerifySecondFactor(t.Context(), "000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Código inválido.")
	assert.Equal(t, session.PhasePendingSecondFactor, store.Phase(), "temporary token survives a failed code")

	require.NoError(t, store.VerifySecondFactor(t.Context(), testCode))
	assert.Equal(t, session.PhaseAuthenticated, store.Phase())
}

func TestInitializeWithValidPersistedCredential(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.router())
	defer srv.Close()

	creds := memory.NewStore()
	require.NoError(t, creds.Save(finalToken))

	gw := transport.New(srv.URL)
	store := session.New(gw, creds)

	require.NoError(t, store.Initialize(t.Context()))
	assert.Equal(t, session.PhaseAuthenticated, store.Phase())
}

func TestInitializeDiscardsRejectedCredential(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.router())
	defer srv.Close()

	creds := memory.NewStore()
	require.NoError(t, creds.Save("stale-token"))

	gw := transport.New(srv.URL)
	store := session.New(gw, creds)

	require.NoError(t, store.Initialize(t.Context()))
	assert.Equal(t, session.PhaseAnonymous, store.Phase())

	_, err := creds.Load()
	assert.ErrorIs(t, err, storage.ErrNotFound, "rejected credential must be discarded")
}

func TestInitializeWithoutCredential(t *testing.T) {
	store, _, _, _ := setup(t, &fakeBackend{})
	require.NoError(t, store.Initialize(t.Context()))
	assert.Equal(t, session.PhaseAnonymous, store.Phase())
}

func TestLogoutClearsStateDespiteServerFailure(t *testing.T) {
	store, creds, locator, _ := setup(t, &fakeBackend{})

	_, err := store.Login(t.Context(), testEmail, testPassword)
	require.NoError(t, err)

	// The fake backend answers /auth/logout with a 500; logout must still
	// clear everything locally.
	store.Logout(t.Context())
	assert.Equal(t, session.PhaseAnonymous, store.Phase())

	_, err = creds.Load()
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, []string{session.EntryPath}, locator.moves)
}

func TestSessionExpiryClearsOnce(t *testing.T) {
	backend := &fakeBackend{}
	mux := chi.NewRouter()
	mux.Post("/auth/login", backend.login)
	mux.Get("/auth/me", backend.me)
	mux.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := memory.NewStore()
	locator := &fakeLocator{path: "/dashboard"}
	gw := transport.New(srv.URL)
	store := session.New(gw, creds, session.WithLocator(locator))

	_, err := store.Login(t.Context(), testEmail, testPassword)
	require.NoError(t, err)

	// First 401 while on /dashboard: credential cleared, forced to /login.
	err = gw.Get(t.Context(), "/protected", nil)
	require.True(t, transport.IsKind(err, transport.KindSessionExpired))
	assert.Equal(t, []string{session.EntryPath}, locator.moves)
	_, err = creds.Load()
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Second 401 while already on /login: no second redirect or clear.
	err = gw.Get(t.Context(), "/protected", nil)
	require.True(t, transport.IsKind(err, transport.KindSessionExpired))
	assert.Equal(t, []string{session.EntryPath}, locator.moves, "side effect must not repeat")
}

func TestRegisterDoesNotChangePhase(t *testing.T) {
	store, _, _, _ := setup(t, &fakeBackend{})
	require.NoError(t, store.Initialize(t.Context()))

	err := store.Register(t.Context(), session.RegisterRequest{
		Email:    strings.ToUpper(testEmail),
		Password: "new-password-1",
		FullName: "New User",
	})
	require.NoError(t, err)
	assert.Equal(t, session.PhaseAnonymous, store.Phase())
}

func TestRefreshRequiresAuthentication(t *testing.T) {
	store, _, _, _ := setup(t, &fakeBackend{})
	require.NoError(t, store.Initialize(t.Context()))
	assert.ErrorIs(t, store.Refresh(t.Context()), session.ErrNotAuthenticated)
}
