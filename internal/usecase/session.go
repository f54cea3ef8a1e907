package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/logger"
)

// CredentialDecoder turns a bearer credential into its claim set without
// contacting the server.
type CredentialDecoder interface {
	Decode(raw string) (*entities.Identity, error)
	IsExpired(identity *entities.Identity, now time.Time) bool
}

type Credentials struct {
	Email    string
	Password string
}

// SessionStore owns the identity state machine
// UNKNOWN -> AUTHENTICATED | UNAUTHENTICATED. One instance is created at
// startup and handed to whatever needs the current identity.
type SessionStore struct {
	auth    repositories.AuthGateway
	state   repositories.StateStore
	decoder CredentialDecoder
	logger  *logger.Logger
	now     func() time.Time

	mu         sync.RWMutex
	status     entities.SessionStatus
	identity   *entities.Identity
	credential string
	// generation is bumped by every Login and Logout; a login result is
	// applied only if no newer call started while it was in flight.
	generation uint64

	ready     chan struct{}
	readyOnce sync.Once
}

type SessionOption func(*SessionStore)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

func NewSessionStore(auth repositories.AuthGateway, state repositories.StateStore, decoder CredentialDecoder, logger *logger.Logger, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		auth:    auth,
		state:   state,
		decoder: decoder,
		logger:  logger,
		now:     time.Now,
		status:  entities.SessionUnknown,
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready is closed once the status has left UNKNOWN.
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

func (s *SessionStore) Session() entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entities.Session{Status: s.status, Identity: copyIdentity(s.identity)}
}

func (s *SessionStore) Status() entities.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Identity returns a copy of the current identity; ok is false unless the
// session is authenticated.
func (s *SessionStore) Identity() (*entities.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != entities.SessionAuthenticated {
		return nil, false
	}
	return copyIdentity(s.identity), true
}

// Credential returns the bearer credential of the authenticated session.
func (s *SessionStore) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != entities.SessionAuthenticated {
		return "", false
	}
	return s.credential, true
}

func (s *SessionStore) Login(ctx context.Context, creds Credentials) (*entities.Identity, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	result, err := s.auth.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		s.logger.Warn("Login rejected", "email", creds.Email, "error", err)
		return nil, remoteError(ErrAuthenticationFailed, err)
	}

	claim, err := s.decoder.Decode(result.Credential)
	if err != nil {
		s.logger.Error("Login returned an undecodable credential", "email", creds.Email, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if s.decoder.IsExpired(claim, s.now()) {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, ErrExpiredCredential)
	}
	identity := mergeProfile(claim, result.Profile, result.RoleKnown)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Info("Discarding superseded login result", "email", creds.Email)
		return nil, ErrLoginSuperseded
	}
	if err := saveCredential(ctx, s.state, result.Credential); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}

	s.setAuthenticated(identity, result.Credential)
	s.logger.Info("Session authenticated", "user_id", identity.UserID, "role", identity.Role)
	return copyIdentity(identity), nil
}

// Register creates an account. It never signs the user in: a session is
// only established by an explicit Login afterwards.
func (s *SessionStore) Register(ctx context.Context, req repositories.RegistrationRequest) (*repositories.RegistrationResult, error) {
	result, err := s.auth.Register(ctx, req)
	if err != nil {
		s.logger.Warn("Registration rejected", "email", req.Email, "error", err)
		return nil, remoteError(ErrRegistrationFailed, err)
	}

	s.logger.Info("User registered", "user_id", result.UserID, "role", req.Role)
	return result, nil
}

// RestoreSession re-validates the stored credential locally. It only acts
// while the status is UNKNOWN and never fails: anything unusable is
// deleted and the session becomes UNAUTHENTICATED.
func (s *SessionStore) RestoreSession(ctx context.Context) (status entities.SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != entities.SessionUnknown {
		return s.status
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while restoring session", "panic", r)
			s.discardCredential(ctx)
			s.setUnauthenticated()
			status = s.status
		}
	}()

	raw, err := loadCredential(ctx, s.state)
	if err != nil {
		if !errors.Is(err, repositories.ErrStateNotFound) {
			s.logger.Warn("Stored credential unreadable, discarding", "error", err)
			s.discardCredential(ctx)
		}
		s.setUnauthenticated()
		return s.status
	}

	identity, err := s.decoder.Decode(raw)
	if err != nil {
		s.logger.Warn("Stored credential malformed, discarding", "error", err)
		s.discardCredential(ctx)
		s.setUnauthenticated()
		return s.status
	}

	if s.decoder.IsExpired(identity, s.now()) {
		s.logger.Info("Stored credential expired", "user_id", identity.UserID)
		s.discardCredential(ctx)
		s.setUnauthenticated()
		return s.status
	}

	// The claim carries no profile names; they stay empty until a
	// profile fetch fills them in.
	s.setAuthenticated(identity, raw)
	s.logger.Info("Session restored", "user_id", identity.UserID, "role", identity.Role)
	return s.status
}

func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.discardCredential(ctx)
	s.setUnauthenticated()
	s.logger.Info("Session closed")
}

func (s *SessionStore) discardCredential(ctx context.Context) {
	if err := s.state.Delete(ctx, CredentialKey); err != nil {
		s.logger.Error("Failed to delete stored credential", "error", err)
	}
}

func (s *SessionStore) setAuthenticated(identity *entities.Identity, credential string) {
	s.status = entities.SessionAuthenticated
	s.identity = identity
	s.credential = credential
	s.markReady()
}

func (s *SessionStore) setUnauthenticated() {
	s.status = entities.SessionUnauthenticated
	s.identity = nil
	s.credential = ""
	s.markReady()
}

func (s *SessionStore) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// mergeProfile prefers server-supplied profile fields over decoded claims
// when the server sent them; the expiry always comes from the credential.
func mergeProfile(claim, profile *entities.Identity, roleKnown bool) *entities.Identity {
	merged := *claim
	if profile == nil {
		return &merged
	}

	pick := func(server, decoded string) string {
		if server != "" {
			return server
		}
		return decoded
	}

	merged.TenantID = pick(profile.TenantID, claim.TenantID)
	merged.UserID = pick(profile.UserID, claim.UserID)
	merged.Email = pick(profile.Email, claim.Email)
	merged.GivenName = pick(profile.GivenName, claim.GivenName)
	merged.FamilyName = pick(profile.FamilyName, claim.FamilyName)
	merged.DocumentID = pick(profile.DocumentID, claim.DocumentID)
	if roleKnown {
		merged.Role = profile.Role
	}
	return &merged
}

func copyIdentity(identity *entities.Identity) *entities.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	if identity.ExpiresAt != nil {
		expiresAt := *identity.ExpiresAt
		c.ExpiresAt = &expiresAt
	}
	return &c
}
