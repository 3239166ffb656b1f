package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/snipperhq/snipper-cli/internal/client/api"
	"github.com/snipperhq/snipper-cli/internal/client/credstore"
	"github.com/snipperhq/snipper-cli/internal/client/models"
	"github.com/snipperhq/snipper-cli/internal/logging"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupStore(t *testing.T) credstore.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE credentials (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return credstore.NewSQLiteStore(db)
}

func discardLogger() logging.Logger {
	return logging.NewText(io.Discard, slog.LevelError)
}

// makeToken issues a signed HS256 token; the session only decodes claims,
// so the signing key is irrelevant.
func makeToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// ---- fake auth client ----

// fakeAuthClient implements api.AuthClient for session tests.
type fakeAuthClient struct {
	mu sync.Mutex

	loginResp *api.AuthResponse
	loginErr  error

	registerResp *api.AuthResponse
	registerErr  error

	refreshResp  *models.Credentials
	refreshErr   error
	refreshDelay time.Duration

	logoutErr error

	loginCalls    int
	registerCalls int
	refreshCalls  int
	logoutCalls   int

	lastLoginUser    string
	lastLoginPass    string
	lastRefreshToken string
	lastLogoutToken  string
}

func (f *fakeAuthClient) Login(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	f.lastLoginUser = username
	f.lastLoginPass = password
	return f.loginResp, f.loginErr
}

func (f *fakeAuthClient) Register(ctx context.Context, username, email, password string) (*api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	return f.registerResp, f.registerErr
}

func (f *fakeAuthClient) Refresh(ctx context.Context, refreshToken string) (*models.Credentials, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.lastRefreshToken = refreshToken
	delay := f.refreshDelay
	resp, err := f.refreshResp, f.refreshErr
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return resp, err
}

func (f *fakeAuthClient) Logout(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.lastLogoutToken = accessToken
	return f.logoutErr
}

func (f *fakeAuthClient) Health(ctx context.Context) error { return nil }

func newSession(t *testing.T, auth api.AuthClient, store credstore.Store) SessionService {
	t.Helper()
	return NewSessionService(auth, store, discardLogger())
}

// ---- TESTS ----

func TestLogin_Success(t *testing.T) {
	store := setupStore(t)
	fc := &fakeAuthClient{
		loginResp: &api.AuthResponse{
			Token:        "T1",
			RefreshToken: "R1",
			User:         models.User{Username: "alice"},
		},
	}
	s := newSession(t, fc, store)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "Secret123"))

	require.Equal(t, "alice", fc.lastLoginUser)
	require.Equal(t, "Secret123", fc.lastLoginPass)

	snap := s.Snapshot()
	require.Equal(t, StateAuthenticated, snap.State)
	require.True(t, snap.Authenticated)
	require.Equal(t, "alice", snap.User.Username)
	require.False(t, snap.Loading)
	require.Empty(t, snap.Err)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, models.Credentials{AccessToken: "T1", RefreshToken: "R1"}, *creds)
	require.Equal(t, "T1", s.AccessToken())
}

func TestLogin_ValidationSkipsNetwork(t *testing.T) {
	fc := &fakeAuthClient{}
	s := newSession(t, fc, setupStore(t))

	err := s.Login(context.Background(), "", "Secret123")
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, fc.loginCalls)
	require.NotEmpty(t, s.Snapshot().Err)
	require.False(t, s.Snapshot().Authenticated)
}

func TestLogin_RejectedRecordsMessage(t *testing.T) {
	fc := &fakeAuthClient{loginErr: api.ErrUnauthorized}
	s := newSession(t, fc, setupStore(t))

	err := s.Login(context.Background(), "alice", "wrongpw")
	require.Error(t, err)

	snap := s.Snapshot()
	require.Equal(t, StateUnauthenticated, snap.State)
	require.False(t, snap.Authenticated)
	require.Equal(t, "Invalid username or password", snap.Err)
}

func TestRegister_Success(t *testing.T) {
	store := setupStore(t)
	fc := &fakeAuthClient{
		registerResp: &api.AuthResponse{
			Token:        "T1",
			RefreshToken: "R1",
			User:         models.User{Username: "bob", Email: "bob@example.com"},
		},
	}
	s := newSession(t, fc, store)

	require.NoError(t, s.Register(context.Background(), "bob", "bob@example.com", "Secret123"))

	snap := s.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "bob", snap.User.Username)

	creds, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "T1", creds.AccessToken)
}

func TestRegister_ValidationSkipsNetwork(t *testing.T) {
	fc := &fakeAuthClient{}
	s := newSession(t, fc, setupStore(t))

	err := s.Register(context.Background(), "bob", "not-an-email", "Secret123")
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, fc.registerCalls)
}

func TestInitialize_NoCachedSession(t *testing.T) {
	fc := &fakeAuthClient{}
	s := newSession(t, fc, setupStore(t))

	s.Initialize(context.Background())

	snap := s.Snapshot()
	require.Equal(t, StateUnauthenticated, snap.State)
	require.False(t, snap.Authenticated)
	require.Zero(t, fc.refreshCalls)
}

func TestInitialize_ValidTokenNoNetwork(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	access := makeToken(t, "alice", time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, models.Credentials{AccessToken: access, RefreshToken: "R1"}))

	fc := &fakeAuthClient{}
	s := newSession(t, fc, store)
	s.Initialize(ctx)

	snap := s.Snapshot()
	require.Equal(t, StateAuthenticated, snap.State)
	require.Equal(t, "alice", snap.User.Username)
	require.Zero(t, fc.refreshCalls, "valid token must not trigger a network call")
}

func TestInitialize_ExpiredTokenRefreshes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	stale := makeToken(t, "alice", time.Now().Add(-time.Hour))
	require.NoError(t, store.Save(ctx, models.Credentials{AccessToken: stale, RefreshToken: "R1"}))

	fresh := makeToken(t, "alice", time.Now().Add(time.Hour))
	fc := &fakeAuthClient{refreshResp: &models.Credentials{AccessToken: fresh, RefreshToken: "R2"}}
	s := newSession(t, fc, store)
	s.Initialize(ctx)

	require.Equal(t, 1, fc.refreshCalls)
	require.Equal(t, "R1", fc.lastRefreshToken)

	snap := s.Snapshot()
	require.Equal(t, StateAuthenticated, snap.State)
	require.Equal(t, "alice", snap.User.Username)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, models.Credentials{AccessToken: fresh, RefreshToken: "R2"}, *creds)
}

func TestInitialize_ExpiredTokenRefreshFails(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	stale := makeToken(t, "alice", time.Now().Add(-time.Hour))
	require.NoError(t, store.Save(ctx, models.Credentials{AccessToken: stale, RefreshToken: "R1"}))

	fc := &fakeAuthClient{refreshErr: api.ErrUnauthorized}
	s := newSession(t, fc, store)
	s.Initialize(ctx)

	require.Equal(t, 1, fc.refreshCalls)

	snap := s.Snapshot()
	require.Equal(t, StateUnauthenticated, snap.State)
	require.False(t, snap.Authenticated)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, creds, "failed refresh must clear the store")
}

func TestInitialize_GarbageTokenTreatedAsExpired(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, models.Credentials{AccessToken: "not-a-jwt", RefreshToken: "R1"}))

	fc := &fakeAuthClient{refreshErr: api.ErrUnauthorized}
	s := newSession(t, fc, store)
	s.Initialize(ctx)

	require.Equal(t, 1, fc.refreshCalls)
	require.Equal(t, StateUnauthenticated, s.Snapshot().State)
}

func TestRefresh_UpdatesPairKeepsUser(t *testing.T) {
	store := setupStore(t)
	fc := &fakeAuthClient{
		loginResp:   &api.AuthResponse{Token: "T1", RefreshToken: "R1", User: models.User{Username: "alice"}},
		refreshResp: &models.Credentials{AccessToken: "T2", RefreshToken: "R2"},
	}
	s := newSession(t, fc, store)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "Secret123"))

	access, err := s.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "T2", access)
	require.Equal(t, "R1", fc.lastRefreshToken)

	snap := s.Snapshot()
	require.Equal(t, StateAuthenticated, snap.State)
	require.Equal(t, "alice", snap.User.Username, "refresh must not change the user")

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, models.Credentials{AccessToken: "T2", RefreshToken: "R2"}, *creds)
}

func TestRefresh_FailureTearsDownSession(t *testing.T) {
	store := setupStore(t)
	fc := &fakeAuthClient{
		loginResp:  &api.AuthResponse{Token: "T1", RefreshToken: "R1", User: models.User{Username: "alice"}},
		refreshErr: api.ErrUnauthorized,
	}
	s := newSession(t, fc, store)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "Secret123"))

	_, err := s.Refresh(ctx)
	require.Error(t, err)

	snap := s.Snapshot()
	require.Equal(t, StateUnauthenticated, snap.State)
	require.Nil(t, snap.User)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, creds)
	require.Empty(t, s.AccessToken())
}

func TestRefresh_WithoutRefreshToken(t *testing.T) {
	fc := &fakeAuthClient{}
	s := newSession(t, fc, setupStore(t))

	_, err := s.Refresh(context.Background())
	require.ErrorIs(t, err, ErrNoRefreshToken)
	require.Zero(t, fc.refreshCalls)
}

func TestRefresh_ConcurrentCallsCoalesce(t *testing.T) {
	store := setupStore(t)
	fc := &fakeAuthClient{
		loginResp:    &api.AuthResponse{Token: "T1", RefreshToken: "R1", User: models.User{Username: "alice"}},
		refreshResp:  &models.Credentials{AccessToken: "T2", RefreshToken: "R2"},
		refreshDelay: 50 * time.Millisecond,
	}
	s := newSession(t, fc, store)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "Secret123"))

	var wg sync.WaitGroup
	results := make([]string, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Refresh(ctx)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, fc.refreshCalls, "concurrent refreshes must share one server call")
	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, "T2", results[i])
	}
}

func TestLogout_ClearsStoreEvenWhenServerFails(t *testing.T) {
	store := setupStore(t)
	fc := &fakeAuthClient{
		loginResp: &api.AuthResponse{Token: "T1", RefreshToken: "R1", User: models.User{Username: "alice"}},
		logoutErr: api.ErrUnavailable,
	}
	s := newSession(t, fc, store)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "Secret123"))

	s.Logout(ctx)

	require.Equal(t, 1, fc.logoutCalls)
	require.Equal(t, "T1", fc.lastLogoutToken)

	snap := s.Snapshot()
	require.Equal(t, StateUnauthenticated, snap.State)
	require.Nil(t, snap.User)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, creds)
}

func TestSubscribe_NotifiesAndUnsubscribes(t *testing.T) {
	fc := &fakeAuthClient{
		loginResp: &api.AuthResponse{Token: "T1", RefreshToken: "R1", User: models.User{Username: "alice"}},
	}
	s := newSession(t, fc, setupStore(t))

	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	require.NoError(t, s.Login(context.Background(), "alice", "Secret123"))
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	require.True(t, last.Authenticated)

	n := len(got)
	unsubscribe()
	s.ClearError()
	require.Len(t, got, n, "unsubscribed observer must not be notified")
}

func TestInvalidate_SignalsSubscribers(t *testing.T) {
	store := setupStore(t)
	fc := &fakeAuthClient{
		loginResp: &api.AuthResponse{Token: "T1", RefreshToken: "R1", User: models.User{Username: "alice"}},
	}
	s := newSession(t, fc, store)
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, "alice", "Secret123"))

	var droppedToLogin bool
	s.Subscribe(func(snap Snapshot) {
		if snap.State == StateUnauthenticated && !snap.Authenticated {
			droppedToLogin = true
		}
	})

	s.Invalidate(ctx)
	require.True(t, droppedToLogin)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, creds)
}

func TestClearError(t *testing.T) {
	fc := &fakeAuthClient{loginErr: api.ErrUnauthorized}
	s := newSession(t, fc, setupStore(t))

	_ = s.Login(context.Background(), "alice", "wrongpw")
	require.NotEmpty(t, s.Snapshot().Err)

	s.ClearError()
	snap := s.Snapshot()
	require.Empty(t, snap.Err)
	require.Equal(t, StateUnauthenticated, snap.State)
}
