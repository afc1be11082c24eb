package auth

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/example/stokai/internal/api"
	"github.com/example/stokai/internal/models"
	"github.com/example/stokai/internal/storage"
)

const stateKey = "session"

// Store owns the session slice: the authentication state machine plus the
// persisted token. All mutation goes through its operations; the transport's
// unauthorized hook calls ForceLogout.
type Store struct {
	svc     *Service
	storage *storage.Store

	mu    sync.RWMutex
	state State
}

// NewStore constructs a session store. Call Initialize to rehydrate a
// persisted session.
func NewStore(svc *Service, st *storage.Store) *Store {
	return &Store{
		svc:     svc,
		storage: st,
		state:   State{Status: StatusAnonymous},
	}
}

// State returns a copy of the current session slice.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Initialize rebuilds the session from persisted storage without a network
// round-trip. An absent or expired token leaves the session anonymous.
func (s *Store) Initialize() {
	token, ok := s.storage.Token()
	if !ok {
		s.apply(reduceLogout())
		return
	}

	payload, err := DecodeToken(token)
	if err != nil || payload.Expired(time.Now()) {
		if err := s.storage.ClearToken(); err != nil {
			log.Printf("[Session] clear stale token: %v", err)
		}
		s.apply(reduceLogout())
		return
	}

	next := State{
		Status:    StatusAuthenticated,
		Token:     token,
		TokenKind: payload.Kind,
		User:      payload.User(),
	}

	// Prefer the persisted profile when it is richer than what an id-only
	// token can provide.
	var persisted State
	if s.storage.LoadJSON(stateKey, &persisted) {
		if persisted.User != nil && persisted.User.ID == payload.UserID && persisted.User.Name != "" {
			next.User = persisted.User
		}
	}

	s.apply(next)
}

// Login starts a session for the given phone number. When the backend
// requires a passcode the session moves to PendingOTP and the challenge is
// kept for VerifyOTP.
func (s *Store) Login(ctx context.Context, phone string) error {
	result, err := s.svc.Login(ctx, phone)
	if err != nil {
		return s.fail(err)
	}
	return s.startSession(result)
}

// SignUp registers a new account and behaves like Login afterwards.
func (s *Store) SignUp(ctx context.Context, payload SignUpData) error {
	result, err := s.svc.SignUp(ctx, payload)
	if err != nil {
		return s.fail(err)
	}
	return s.startSession(result)
}

func (s *Store) startSession(result *AuthResult) error {
	if err := s.storage.SetToken(result.Token); err != nil {
		return s.fail(err)
	}
	s.apply(reduceAuthStarted(result.Token, result.Payload, result.Challenge))
	return nil
}

// VerifyOTP confirms the pending challenge. A wrong or expired passcode
// keeps the session in PendingOTP so the user may retry.
func (s *Store) VerifyOTP(ctx context.Context, code string) error {
	s.mu.RLock()
	challenge := s.state.Challenge
	s.mu.RUnlock()

	if challenge == nil || challenge.Key == "" {
		return s.fail(&api.ValidationError{Message: "no passcode challenge is pending"})
	}

	result, err := s.svc.VerifyOTP(ctx, challenge.Key, code)
	if err != nil {
		return s.fail(err)
	}

	if result.Token != "" {
		if err := s.storage.SetToken(result.Token); err != nil {
			return s.fail(err)
		}
	}

	s.mu.Lock()
	s.state = reduceOTPVerified(s.state, result.Token, result.Payload)
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// GetProfile fetches the authenticated user's profile and fills in the
// display fields an id-only token cannot provide.
func (s *Store) GetProfile(ctx context.Context) (*models.User, error) {
	if !s.State().IsAuthenticated() {
		return nil, s.failTyped(&api.UnauthorizedError{Message: "not authenticated"})
	}

	user, err := s.svc.GetProfile(ctx)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	s.state = reduceProfile(s.state, user)
	s.persistLocked()
	s.mu.Unlock()
	return user, nil
}

// UpdateProfile applies a partial patch to the authenticated user's profile.
func (s *Store) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	if !s.State().IsAuthenticated() {
		return nil, s.failTyped(&api.UnauthorizedError{Message: "not authenticated"})
	}

	user, err := s.svc.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	s.state = reduceProfile(s.state, user)
	s.persistLocked()
	s.mu.Unlock()
	return user, nil
}

// Logout notifies the backend, then clears local state regardless of the
// outcome.
func (s *Store) Logout(ctx context.Context) {
	if err := s.svc.Logout(ctx); err != nil && !api.IsUnauthorized(err) {
		log.Printf("[Session] logout call failed: %v", err)
	}
	s.ForceLogout()
}

// ForceLogout clears the persisted token and resets the session to
// Anonymous. The transport's 401 hook points here.
func (s *Store) ForceLogout() {
	if err := s.storage.ClearToken(); err != nil {
		log.Printf("[Session] clear token: %v", err)
	}
	s.apply(reduceLogout())
}

// ClearError drops the last operation's failure message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.state.Err = ""
	s.persistLocked()
	s.mu.Unlock()
}

// fail records the operation's failure message unless a 401 already forced a
// logout, which preempts any local error.
func (s *Store) fail(err error) error {
	if api.IsUnauthorized(err) {
		return err
	}
	return s.failTyped(err)
}

func (s *Store) failTyped(err error) error {
	s.mu.Lock()
	s.state = reduceFailure(s.state, err.Error())
	s.persistLocked()
	s.mu.Unlock()
	return err
}

func (s *Store) apply(next State) {
	s.mu.Lock()
	s.state = next
	s.persistLocked()
	s.mu.Unlock()
}

func (s *Store) persistLocked() {
	if err := s.storage.SaveJSON(stateKey, s.state); err != nil {
		log.Printf("[Session] persist state: %v", err)
	}
}
