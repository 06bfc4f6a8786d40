// Package session is the single source of truth for who is logged in. The
// Store owns the persisted bearer credential (it is the only writer) and the
// session phase; every other component reads the session through it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/Brisa-Ol/loteplan-client/internal/util"
	"github.com/Brisa-Ol/loteplan-client/storage"
	"github.com/Brisa-Ol/loteplan-client/transport"
)

// EntryPath is where the client lands when no session exists.
const EntryPath = "/login"

// Locator reports and changes the client's current location. It decouples
// session policy (when to send the user back to login) from how navigation
// actually happens.
type Locator interface {
	CurrentPath() string
	Navigate(path string)
}

// Store holds the authenticated identity and drives the session lifecycle:
// uninitialized → initializing → {authenticated | anonymous} ⇄
// pendingSecondFactor → authenticated.
type Store struct {
	gw      *transport.Gateway
	creds   storage.CredentialStore
	locator Locator
	log     *slog.Logger

	mu        sync.Mutex
	phase     Phase
	profile   *Profile
	token     *memguard.Enclave
	tempToken string
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.log = logger
	}
}

// WithLocator sets the navigation collaborator used on logout and session
// expiry.
func WithLocator(locator Locator) Option {
	return func(s *Store) {
		s.locator = locator
	}
}

// New creates a Store and wires it into the gateway as both the credential
// source and the session-expiry subscriber.
func New(gw *transport.Gateway, creds storage.CredentialStore, opts ...Option) *Store {
	s := &Store{
		gw:    gw,
		creds: creds,
		phase: PhaseUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	gw.SetCredentialSource(s)
	gw.OnSessionExpired(s.handleSessionExpired)
	return s
}

// Phase returns the current session phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Current returns the authenticated profile, if any.
func (s *Store) Current() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAuthenticated || s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// Credential implements transport.CredentialSource. The token lives in a
// memguard enclave; a short-lived copy is handed to the gateway per request.
func (s *Store) Credential() (string, bool) {
	s.mu.Lock()
	enclave := s.token
	s.mu.Unlock()
	if enclave == nil {
		return "", false
	}
	buf, err := enclave.Open()
	if err != nil {
		return "", false
	}
	defer buf.Destroy()
	return string(buf.Bytes()), true
}

// Initialize resolves the persisted credential into a live session. It must
// complete, successfully or not, before any route guard or transaction flow
// reads the phase. A persisted credential the server no longer accepts is
// discarded.
func (s *Store) Initialize(ctx context.Context) error {
	s.setPhase(PhaseInitializing)

	token, err := s.creds.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("discarding unreadable credential", "err", err)
			_ = s.creds.Clear()
		}
		s.setPhase(PhaseAnonymous)
		return nil
	}

	s.setToken(token)
	profile, err := s.fetchProfile(transport.WithoutExpiryHandling(ctx))
	if err != nil {
		s.log.Info("persisted credential rejected", "err", err)
		s.clearLocal()
		return nil
	}

	s.mu.Lock()
	s.profile = &profile
	s.phase = PhaseAuthenticated
	s.mu.Unlock()
	return nil
}

// Login exchanges identifier+secret for either a final credential or a
// pending second-factor challenge. A 401 maps to the fixed
// invalid-credentials message; the session-expiry side effect is suppressed
// so a failed login cannot trigger a redirect loop.
func (s *Store) Login(ctx context.Context, identifier, secret string) (LoginResult, error) {
	req := loginRequest{
		Email:    util.NormalizeIdentifier(identifier),
		Password: secret,
	}
	var resp loginResponse
	_, err := s.gw.Post(transport.WithoutExpiryHandling(ctx), "/auth/login", req, &resp)
	if err != nil {
		if transport.IsKind(err, transport.KindSessionExpired) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if resp.Requires2FA {
		if resp.TempToken == "" {
			return LoginResult{}, fmt.Errorf("login response requires a second factor but carries no temporary token")
		}
		s.mu.Lock()
		s.tempToken = resp.TempToken
		s.phase = PhasePendingSecondFactor
		s.mu.Unlock()
		return LoginResult{SecondFactorRequired: true}, nil
	}

	if resp.Token == "" {
		return LoginResult{}, fmt.Errorf("login response carries no credential")
	}
	if err := s.adopt(ctx, resp.Token); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{}, nil
}

// VerifySecondFactor exchanges the temporary token and a one-time code for
// the final credential. Valid only while a login is pending its second
// factor; fails fast without touching the network otherwise. The temporary
// token survives a failed attempt so the user may retry with a new code.
func (s *Store) VerifySecondFactor(ctx context.Context, code string) error {
	s.mu.Lock()
	if s.phase != PhasePendingSecondFactor || s.tempToken == "" {
		s.mu.Unlock()
		return ErrNoPendingToken
	}
	temp := s.tempToken
	s.mu.Unlock()

	var resp verifyResponse
	req := verifyRequest{TempToken: temp, Code: code}
	_, err := s.gw.Post(transport.WithoutExpiryHandling(ctx), "/auth/2fa/verify", req, &resp)
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("verification response carries no credential")
	}
	return s.adopt(ctx, resp.Token)
}

// Logout notifies the server best-effort, clears all local state
// unconditionally and returns the client to the entry page. A network
// failure never blocks logout.
func (s *Store) Logout(ctx context.Context) {
	if _, err := s.gw.Post(transport.WithoutExpiryHandling(ctx), "/auth/logout", nil, nil); err != nil {
		s.log.Debug("logout notification failed", "err", err)
	}
	s.clearLocal()
	if s.locator != nil {
		s.locator.Navigate(EntryPath)
	}
}

// Register creates an account. It does not affect the session phase.
func (s *Store) Register(ctx context.Context, req RegisterRequest) error {
	req.Email = util.NormalizeIdentifier(req.Email)
	_, err := s.gw.Post(ctx, "/auth/register", req, nil)
	return err
}

// Refresh re-resolves the authenticated identity, picking up server-side
// profile changes (role, KYC status).
func (s *Store) Refresh(ctx context.Context) error {
	if s.Phase() != PhaseAuthenticated {
		return ErrNotAuthenticated
	}
	profile, err := s.fetchProfile(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	return nil
}

// adopt persists the final credential, resolves the identity and moves the
// session to authenticated.
func (s *Store) adopt(ctx context.Context, token string) error {
	if err := s.creds.Save(token); err != nil {
		return fmt.Errorf("persisting credential: %w", err)
	}
	s.setToken(token)

	profile, err := s.fetchProfile(transport.WithoutExpiryHandling(ctx))
	if err != nil {
		s.clearLocal()
		return fmt.Errorf("resolving identity: %w", err)
	}

	s.mu.Lock()
	s.profile = &profile
	s.tempToken = ""
	s.phase = PhaseAuthenticated
	s.mu.Unlock()
	return nil
}

// handleSessionExpired is the single subscriber for the gateway's 401
// classification. The side effect happens at most once per expiry: when the
// client is already on the entry page there is nothing left to clear or
// navigate, so repeated 401s cannot loop.
func (s *Store) handleSessionExpired() {
	if s.locator != nil && s.locator.CurrentPath() == EntryPath {
		return
	}
	if s.locator == nil && s.Phase() == PhaseAnonymous {
		return
	}
	s.log.Info("session expired, returning to entry page")
	s.clearLocal()
	if s.locator != nil {
		s.locator.Navigate(EntryPath)
	}
}

func (s *Store) clearLocal() {
	_ = s.creds.Clear()
	s.mu.Lock()
	s.token = nil
	s.profile = nil
	s.tempToken = ""
	s.phase = PhaseAnonymous
	s.mu.Unlock()
}

func (s *Store) setToken(token string) {
	s.mu.Lock()
	s.token = memguard.NewEnclave([]byte(token))
	s.mu.Unlock()
}

func (s *Store) setPhase(phase Phase) {
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

func (s *Store) fetchProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	if err := s.gw.Get(ctx, "/auth/me", &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}
