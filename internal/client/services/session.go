// Package services contains application services for the Snipper CLI.
// This file defines the session service: the sole authority for
// authentication state and its transitions.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/snipperhq/snipper-cli/internal/client/api"
	"github.com/snipperhq/snipper-cli/internal/client/credstore"
	"github.com/snipperhq/snipper-cli/internal/client/models"
	"github.com/snipperhq/snipper-cli/internal/client/token"
	"github.com/snipperhq/snipper-cli/internal/logging"
)

// State is the lifecycle phase of the session.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateInitializing    State = "initializing"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Snapshot is the externally visible authentication state. Authenticated is
// always derived from the presence of User, never set on its own.
type Snapshot struct {
	State         State
	User          *models.User
	Authenticated bool
	Loading       bool
	Err           string
}

// SessionService owns login, registration, logout and token refresh.
//
// Contract:
//   - Initialize: restore a cached session once at startup.
//   - Login/Register: authenticate against the server and persist the
//     issued credential pair. Failures are reported through the returned
//     error and the snapshot's Err message; they never panic.
//   - Refresh: mint a new credential pair from the cached refresh token.
//     Failure is terminal: the store is cleared and the session drops to
//     unauthenticated.
//   - Logout: best-effort server call; local state is cleared regardless.
//   - Subscribe: observe snapshot transitions, including the invalidation
//     signal (a drop to unauthenticated) the UI reacts to.
//
// SessionService satisfies api.Refresher, so the request gateway is
// constructed with the session it should refresh through.
type SessionService interface {
	Initialize(ctx context.Context)
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, email, password string) error
	Logout(ctx context.Context)
	ClearError()
	Snapshot() Snapshot
	Subscribe(fn func(Snapshot)) (unsubscribe func())

	AccessToken() string
	Refresh(ctx context.Context) (string, error)
	Invalidate(ctx context.Context)
}

var ErrNoRefreshToken = errors.New("no refresh token")

type sessionService struct {
	auth  api.AuthClient
	store credstore.Store
	log   logging.Logger

	// now is a test seam for expiry checks.
	now func() time.Time

	mu      sync.Mutex
	state   State
	user    *models.User
	creds   *models.Credentials
	loading bool
	errMsg  string

	// refreshGroup collapses concurrent refresh attempts into one server
	// call, so several requests failing with 401 at once share a single
	// new credential pair.
	refreshGroup singleflight.Group

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewSessionService constructs a SessionService bound to the given auth
// client and credential store.
func NewSessionService(auth api.AuthClient, store credstore.Store, log logging.Logger) SessionService {
	return &sessionService{
		auth:  auth,
		store: store,
		log:   log,
		now:   time.Now,
		state: StateUninitialized,
		subs:  make(map[int]func(Snapshot)),
	}
}

func (s *sessionService) snapshotLocked() Snapshot {
	return Snapshot{
		State:         s.state,
		User:          s.user,
		Authenticated: s.user != nil,
		Loading:       s.loading,
		Err:           s.errMsg,
	}
}

// Snapshot returns the current authentication state.
func (s *sessionService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for snapshot transitions and returns the matching
// unsubscribe function. fn is invoked synchronously after each transition;
// it must not call back into the service.
func (s *sessionService) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *sessionService) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// transition applies mutate under the lock and notifies subscribers with
// the resulting snapshot.
func (s *sessionService) transition(mutate func()) {
	s.mu.Lock()
	mutate()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// AccessToken returns the cached access token, or "" when signed out.
func (s *sessionService) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return ""
	}
	return s.creds.AccessToken
}

// Initialize restores the previous session from the credential store. With
// a still-valid access token the user identity comes from the token's
// subject claim and no network call is made; an expired token triggers
// exactly one refresh attempt.
func (s *sessionService) Initialize(ctx context.Context) {
	s.transition(func() {
		s.state = StateInitializing
		s.loading = true
	})

	creds, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to load cached credentials", "error", err)
	}
	if creds == nil {
		s.transition(func() {
			s.state = StateUnauthenticated
			s.loading = false
		})
		return
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()

	claims, decodeErr := token.Decode(creds.AccessToken)
	if decodeErr != nil || claims.Expired(s.now()) {
		// Stale or unreadable access token: one refresh attempt decides
		// whether the session survives.
		if _, err := s.Refresh(ctx); err != nil {
			s.log.Info(ctx, "cached session expired", "error", err)
			s.transition(func() { s.loading = false })
			return
		}

		s.mu.Lock()
		access := ""
		if s.creds != nil {
			access = s.creds.AccessToken
		}
		s.mu.Unlock()

		username := ""
		if claims, err := token.Decode(access); err == nil {
			username = claims.Username()
		}
		s.transition(func() {
			s.state = StateAuthenticated
			s.user = &models.User{Username: username}
			s.loading = false
		})
		return
	}

	s.transition(func() {
		s.state = StateAuthenticated
		s.user = &models.User{Username: claims.Username()}
		s.loading = false
	})
}

// Login authenticates with the server and persists the issued pair. The
// returned error is also recorded as the snapshot's user-facing message.
func (s *sessionService) Login(ctx context.Context, username, password string) error {
	if err := validateLogin(username, password); err != nil {
		s.transition(func() { s.errMsg = err.Error() })
		return err
	}

	s.transition(func() {
		s.loading = true
		s.errMsg = ""
	})

	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		msg := loginFailureMessage(err)
		s.transition(func() {
			s.state = StateUnauthenticated
			s.loading = false
			s.errMsg = msg
		})
		return err
	}

	s.finishSignIn(ctx, resp)
	return nil
}

// Register creates an account and signs the user in, mirroring Login's
// contract.
func (s *sessionService) Register(ctx context.Context, username, email, password string) error {
	if err := validateRegistration(username, email, password); err != nil {
		s.transition(func() { s.errMsg = err.Error() })
		return err
	}

	s.transition(func() {
		s.loading = true
		s.errMsg = ""
	})

	resp, err := s.auth.Register(ctx, username, email, password)
	if err != nil {
		msg := registrationFailureMessage(err)
		s.transition(func() {
			s.state = StateUnauthenticated
			s.loading = false
			s.errMsg = msg
		})
		return err
	}

	s.finishSignIn(ctx, resp)
	return nil
}

func (s *sessionService) finishSignIn(ctx context.Context, resp *api.AuthResponse) {
	creds := models.Credentials{AccessToken: resp.Token, RefreshToken: resp.RefreshToken}
	if err := s.store.Save(ctx, creds); err != nil {
		// The session still works for this run; only persistence is lost.
		s.log.Error(ctx, "failed to persist credentials", "error", err)
	}

	user := resp.User
	s.transition(func() {
		s.state = StateAuthenticated
		s.user = &user
		s.creds = &creds
		s.loading = false
		s.errMsg = ""
	})
}

// Refresh exchanges the cached refresh token for a new credential pair and
// returns the new access token. Concurrent calls are coalesced into one
// server round-trip. On failure the store is cleared and the session drops
// to unauthenticated; callers treat that as terminal.
func (s *sessionService) Refresh(ctx context.Context) (string, error) {
	v, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		s.mu.Lock()
		refreshToken := ""
		if s.creds != nil {
			refreshToken = s.creds.RefreshToken
		}
		s.mu.Unlock()

		if refreshToken == "" {
			s.Invalidate(ctx)
			return "", ErrNoRefreshToken
		}

		creds, err := s.auth.Refresh(ctx, refreshToken)
		if err != nil {
			s.Invalidate(ctx)
			return "", err
		}

		if err := s.store.Save(ctx, *creds); err != nil {
			s.log.Error(ctx, "failed to persist refreshed credentials", "error", err)
		}

		// Same state, updated credential: the user identity is unchanged.
		s.mu.Lock()
		s.creds = creds
		s.mu.Unlock()

		return creds.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Logout tells the server, then clears local state. A failed server call
// never leaves credentials behind.
func (s *sessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	access := ""
	if s.creds != nil {
		access = s.creds.AccessToken
	}
	s.mu.Unlock()

	if access != "" {
		if err := s.auth.Logout(ctx, access); err != nil {
			s.log.Warn(ctx, "logout call failed, clearing local session anyway", "error", err)
		}
	}

	s.Invalidate(ctx)
}

// Invalidate clears the credential store and drops the session to
// unauthenticated. Subscribers observe the transition and send the user
// back to login.
func (s *sessionService) Invalidate(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear credential store", "error", err)
	}

	s.transition(func() {
		s.state = StateUnauthenticated
		s.user = nil
		s.creds = nil
		s.loading = false
	})
}

// ClearError resets the recorded failure message without touching
// authentication state.
func (s *sessionService) ClearError() {
	s.transition(func() { s.errMsg = "" })
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "Invalid username or password"
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, try again later"
	default:
		return "Login failed"
	}
}

func registrationFailureMessage(err error) string {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, try again later"
	default:
		return "Registration failed"
	}
}
