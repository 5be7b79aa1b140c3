package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkovs/surveydesk/internal/client/gateway"
	"github.com/avolkovs/surveydesk/internal/client/models"
	"github.com/avolkovs/surveydesk/internal/client/tokenstore"
	"github.com/avolkovs/surveydesk/internal/common"
	"github.com/avolkovs/surveydesk/internal/logging"
)

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func okResult(u *models.User, s *models.Session) *gateway.Result {
	return &gateway.Result{Envelope: gateway.Envelope{Success: true}, User: u, Session: s}
}

func failResult(msg string) *gateway.Result {
	return &gateway.Result{Envelope: gateway.Envelope{Success: false, Error: msg}}
}

// ---- fake gateway ----

// fakeGateway implements gateway.Auth for unit tests and records every call.
type fakeGateway struct {
	SignUpRes *gateway.Result
	SignUpErr error

	SignInRes *gateway.Result
	SignInErr error

	SignOutRes *gateway.Result
	SignOutErr error

	VerifyRes *gateway.Result
	VerifyErr error

	UserRes *gateway.Result
	UserErr error

	UpdateUserRes *gateway.Result
	UpdateUserErr error

	ResetRes *gateway.Result
	ResetErr error

	UpdatePasswordRes *gateway.Result
	UpdatePasswordErr error

	Calls []string

	LastSignInEmail    string
	LastSignOutToken   string
	LastVerifyToken    string
	LastUserToken      string
	LastUpdatePatch    map[string]any
	LastResetEmail     string
	LastPasswordToken  string
	LastPasswordValue  string
	LastSignUpMetadata map[string]any
}

func (f *fakeGateway) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*gateway.Result, error) {
	f.Calls = append(f.Calls, "SignUp")
	f.LastSignUpMetadata = metadata
	return f.SignUpRes, f.SignUpErr
}

func (f *fakeGateway) SignIn(ctx context.Context, email, password string) (*gateway.Result, error) {
	f.Calls = append(f.Calls, "SignIn")
	f.LastSignInEmail = email
	return f.SignInRes, f.SignInErr
}

func (f *fakeGateway) SignOut(ctx context.Context, token string) (*gateway.Result, error) {
	f.Calls = append(f.Calls, "SignOut")
	f.LastSignOutToken = token
	return f.SignOutRes, f.SignOutErr
}

func (f *fakeGateway) VerifySession(ctx context.Context, token string) (*gateway.Result, error) {
	f.Calls = append(f.Calls, "VerifySession")
	f.LastVerifyToken = token
	return f.VerifyRes, f.VerifyErr
}

func (f *fakeGateway) GetCurrentUser(ctx context.Context, token string) (*gateway.Result, error) {
	f.Calls = append(f.Calls, "GetCurrentUser")
	f.LastUserToken = token
	return f.UserRes, f.UserErr
}

func (f *fakeGateway) UpdateUser(ctx context.Context, token string, patch map[string]any) (*gateway.Result, error) {
	f.Calls = append(f.Calls, "UpdateUser")
	f.LastUpdatePatch = patch
	return f.UpdateUserRes, f.UpdateUserErr
}

func (f *fakeGateway) ResetPassword(ctx context.Context, email string) (*gateway.Result, error) {
	f.Calls = append(f.Calls, "ResetPassword")
	f.LastResetEmail = email
	return f.ResetRes, f.ResetErr
}

func (f *fakeGateway) UpdatePassword(ctx context.Context, token, newPassword string) (*gateway.Result, error) {
	f.Calls = append(f.Calls, "UpdatePassword")
	f.LastPasswordToken = token
	f.LastPasswordValue = newPassword
	return f.UpdatePasswordRes, f.UpdatePasswordErr
}

// fakeWatcher delivers manually triggered change signals.
type fakeWatcher struct {
	ch chan struct{}
}

func (w *fakeWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	return w.ch, nil
}

func newManager(gw *fakeGateway, tokens tokenstore.Store) *Manager {
	return NewManager(gw, tokens, testLogger())
}

// ---- bootstrap ----

func TestBootstrap_NoToken_Anonymous(t *testing.T) {
	gw := &fakeGateway{}
	m := newManager(gw, tokenstore.NewMemory())

	m.Bootstrap(context.Background())

	st := m.State()
	assert.Nil(t, st.User)
	assert.Nil(t, st.Session)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Empty(t, gw.Calls, "no backend call without a token")
}

func TestBootstrap_VerifyFails_PurgesToken(t *testing.T) {
	gw := &fakeGateway{VerifyRes: failResult("invalid token")}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("stale-token"))
	m := newManager(gw, tokens)

	m.Bootstrap(context.Background())

	st := m.State()
	assert.Nil(t, st.User)
	assert.Nil(t, st.Session)
	assert.False(t, st.Loading)
	assert.Equal(t, "invalid token", st.Error)

	_, ok := tokens.Get()
	assert.False(t, ok, "failed verification must purge the token")
	assert.Equal(t, "stale-token", gw.LastVerifyToken)
}

func TestBootstrap_VerifyTransportError_PurgesToken(t *testing.T) {
	gw := &fakeGateway{VerifyErr: common.ErrUnavailable}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("tok"))
	m := newManager(gw, tokens)

	m.Bootstrap(context.Background())

	st := m.State()
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)
	assert.NotEmpty(t, st.Error)
	_, ok := tokens.Get()
	assert.False(t, ok)
}

func TestBootstrap_DegradedProfileFetch_KeepsSessionAndToken(t *testing.T) {
	sess := &models.Session{ID: "s1", AccessToken: "tok"}
	gw := &fakeGateway{
		VerifyRes: okResult(nil, sess),
		UserRes:   failResult("profile unavailable"),
	}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("tok"))
	m := newManager(gw, tokens)

	m.Bootstrap(context.Background())

	st := m.State()
	assert.Nil(t, st.User)
	require.NotNil(t, st.Session)
	assert.Equal(t, "s1", st.Session.ID)
	assert.Equal(t, "profile unavailable", st.Error)
	assert.False(t, st.Loading)

	_, ok := tokens.Get()
	assert.True(t, ok, "degraded bootstrap retains the token")
}

func TestBootstrap_RunsOnce(t *testing.T) {
	gw := &fakeGateway{
		VerifyRes: okResult(nil, &models.Session{ID: "s1", AccessToken: "tok"}),
		UserRes:   okResult(&models.User{ID: "u1"}, nil),
	}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("tok"))
	m := newManager(gw, tokens)

	m.Bootstrap(context.Background())
	m.Bootstrap(context.Background())

	count := 0
	for _, c := range gw.Calls {
		if c == "VerifySession" {
			count++
		}
	}
	assert.Equal(t, 1, count, "bootstrap must verify exactly once")
}

func TestBootstrap_EndToEnd(t *testing.T) {
	gw := &fakeGateway{
		VerifyRes: okResult(nil, &models.Session{ID: "s1", AccessToken: "tok-1"}),
		UserRes:   okResult(&models.User{ID: "u1", Email: "a@b.com"}, nil),
	}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("tok-1"))
	m := newManager(gw, tokens)

	m.Bootstrap(context.Background())

	st := m.State()
	require.NotNil(t, st.User)
	require.NotNil(t, st.Session)
	assert.Equal(t, "u1", st.User.ID)
	assert.Equal(t, "a@b.com", st.User.Email)
	assert.Equal(t, "s1", st.Session.ID)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Equal(t, "tok-1", gw.LastVerifyToken)
	assert.Equal(t, "tok-1", gw.LastUserToken)
}

// ---- sign in / sign up ----

func TestSignIn_Success_PersistsTokenAndState(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@b.com"}
	sess := &models.Session{ID: "s1", AccessToken: "tok-1"}
	gw := &fakeGateway{SignInRes: okResult(user, sess)}
	tokens := tokenstore.NewMemory()
	m := newManager(gw, tokens)

	res, err := m.SignIn(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.True(t, res.Success)

	st := m.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "u1", st.User.ID)
	assert.Equal(t, "s1", st.Session.ID)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)

	got, ok := m.GetToken()
	require.True(t, ok)
	assert.Equal(t, "tok-1", got)
}

func TestSignIn_BackendFailure_NoMutation(t *testing.T) {
	gw := &fakeGateway{SignInRes: failResult("invalid credentials")}
	tokens := tokenstore.NewMemory()
	m := newManager(gw, tokens)

	_, err := m.SignIn(context.Background(), "a@b.com", "wrong")
	require.ErrorIs(t, err, common.ErrBackend)

	st := m.State()
	assert.Nil(t, st.User)
	assert.Nil(t, st.Session)
	assert.Equal(t, "invalid credentials", st.Error)
	assert.False(t, st.Loading, "loading must resolve on failure too")

	_, ok := tokens.Get()
	assert.False(t, ok, "failed sign-in must not persist a token")
}

func TestSignIn_TransportFailure_SetsError(t *testing.T) {
	gw := &fakeGateway{SignInErr: common.ErrUnavailable}
	m := newManager(gw, tokenstore.NewMemory())

	_, err := m.SignIn(context.Background(), "a@b.com", "pw")
	require.ErrorIs(t, err, common.ErrUnavailable)

	st := m.State()
	assert.NotEmpty(t, st.Error)
	assert.False(t, st.Loading)
}

func TestSignIn_Idempotent(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@b.com"}
	sess := &models.Session{ID: "s1", AccessToken: "tok-1"}
	gw := &fakeGateway{SignInRes: okResult(user, sess)}
	m := newManager(gw, tokenstore.NewMemory())

	_, err := m.SignIn(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	first := m.State()

	_, err = m.SignIn(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	second := m.State()

	assert.Equal(t, first, second)
	got, _ := m.GetToken()
	assert.Equal(t, "tok-1", got)
}

func TestSignUp_Success(t *testing.T) {
	user := &models.User{ID: "u2", Email: "new@b.com"}
	sess := &models.Session{AccessToken: "tok-2"}
	gw := &fakeGateway{SignUpRes: okResult(user, sess)}
	m := newManager(gw, tokenstore.NewMemory())

	_, err := m.SignUp(context.Background(), "new@b.com", "pw", map[string]any{"name": "New"})
	require.NoError(t, err)

	st := m.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "u2", st.User.ID)
	got, _ := m.GetToken()
	assert.Equal(t, "tok-2", got)
	assert.Equal(t, map[string]any{"name": "New"}, gw.LastSignUpMetadata)
}

// ---- sign out ----

func TestSignOut_RemoteSuccess_ClearsEverything(t *testing.T) {
	gw := &fakeGateway{
		SignInRes:  okResult(&models.User{ID: "u1"}, &models.Session{AccessToken: "tok"}),
		SignOutRes: okResult(nil, nil),
	}
	tokens := tokenstore.NewMemory()
	m := newManager(gw, tokens)

	_, err := m.SignIn(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	require.NoError(t, m.SignOut(context.Background()))

	st := m.State()
	assert.Nil(t, st.User)
	assert.Nil(t, st.Session)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)

	_, ok := tokens.Get()
	assert.False(t, ok)
	assert.Equal(t, "tok", gw.LastSignOutToken)
}

func TestSignOut_RemoteFailure_StillClearsLocally(t *testing.T) {
	gw := &fakeGateway{
		SignInRes:  okResult(&models.User{ID: "u1"}, &models.Session{AccessToken: "tok"}),
		SignOutErr: errors.New("network down"),
	}
	tokens := tokenstore.NewMemory()
	m := newManager(gw, tokens)

	_, err := m.SignIn(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	require.NoError(t, m.SignOut(context.Background()))

	st := m.State()
	assert.Nil(t, st.User, "local cleanup must win over remote failure")
	assert.Nil(t, st.Session)
	assert.Equal(t, "network down", st.Error)
	assert.False(t, st.Loading)

	_, ok := tokens.Get()
	assert.False(t, ok)
}

// brokenClearStore fails every Clear, as a read-only token file would.
type brokenClearStore struct {
	*tokenstore.Memory
}

func (s *brokenClearStore) Clear() error {
	return errors.New("token file is read-only")
}

func TestSignOut_ClearFailure_StillDropsIdentity(t *testing.T) {
	gw := &fakeGateway{
		SignInRes:  okResult(&models.User{ID: "u1"}, &models.Session{AccessToken: "tok"}),
		SignOutRes: okResult(nil, nil),
	}
	tokens := &brokenClearStore{Memory: tokenstore.NewMemory()}
	m := newManager(gw, tokens)

	_, err := m.SignIn(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	err = m.SignOut(context.Background())
	require.Error(t, err)

	st := m.State()
	assert.Nil(t, st.User, "identity must be dropped even when the store fails")
	assert.Nil(t, st.Session)
	assert.Equal(t, "token file is read-only", st.Error)
	assert.False(t, st.Loading)
}

func TestSignOut_NoToken_SkipsRemoteCall(t *testing.T) {
	gw := &fakeGateway{}
	m := newManager(gw, tokenstore.NewMemory())

	require.NoError(t, m.SignOut(context.Background()))
	assert.Empty(t, gw.Calls)
}

// ---- password / profile ----

func TestUpdatePassword_NoToken_FailsWithoutGatewayCall(t *testing.T) {
	gw := &fakeGateway{}
	m := newManager(gw, tokenstore.NewMemory())

	_, err := m.UpdatePassword(context.Background(), "new-pw")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Empty(t, gw.Calls, "precondition failure must not hit the network")
	assert.Equal(t, common.ErrUnauthenticated.Error(), m.State().Error)
}

func TestUpdatePassword_Passthrough(t *testing.T) {
	gw := &fakeGateway{UpdatePasswordRes: okResult(nil, nil)}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("tok"))
	m := newManager(gw, tokens)

	_, err := m.UpdatePassword(context.Background(), "new-pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", gw.LastPasswordToken)
	assert.Equal(t, "new-pw", gw.LastPasswordValue)
}

func TestUpdateProfile_NoToken_FailsFast(t *testing.T) {
	gw := &fakeGateway{}
	m := newManager(gw, tokenstore.NewMemory())

	_, err := m.UpdateProfile(context.Background(), map[string]any{"name": "X"})
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Empty(t, gw.Calls)
}

func TestUpdateProfile_ReplacesUserKeepsSession(t *testing.T) {
	sess := &models.Session{ID: "s1", AccessToken: "tok"}
	gw := &fakeGateway{
		SignInRes:     okResult(&models.User{ID: "u1", Email: "old@b.com"}, sess),
		UpdateUserRes: okResult(&models.User{ID: "u1", Email: "new@b.com"}, nil),
	}
	tokens := tokenstore.NewMemory()
	m := newManager(gw, tokens)

	_, err := m.SignIn(context.Background(), "old@b.com", "pw")
	require.NoError(t, err)

	_, err = m.UpdateProfile(context.Background(), map[string]any{"email": "new@b.com"})
	require.NoError(t, err)

	st := m.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "new@b.com", st.User.Email)
	require.NotNil(t, st.Session, "profile update must not drop the session")
	assert.Equal(t, "s1", st.Session.ID)
}

func TestResetPassword_NoStateMutation(t *testing.T) {
	gw := &fakeGateway{ResetRes: okResult(nil, nil)}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("tok"))
	m := newManager(gw, tokens)

	_, err := m.ResetPassword(context.Background(), "a@b.com")
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", gw.LastResetEmail)
	_, ok := tokens.Get()
	assert.True(t, ok, "reset must not touch the token")
	assert.Nil(t, m.State().User)
}

// ---- lifecycle / concurrency ----

func TestClose_DropsLateMutations(t *testing.T) {
	gw := &fakeGateway{
		VerifyRes: okResult(nil, &models.Session{AccessToken: "tok"}),
		UserRes:   okResult(&models.User{ID: "u1"}, nil),
	}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("tok"))
	m := newManager(gw, tokens)

	m.Close()
	m.Bootstrap(context.Background())

	st := m.State()
	assert.Nil(t, st.User, "results must not be applied to a closed manager")
}

func TestTokenWatcher_LastWriteWins(t *testing.T) {
	userA := &models.User{ID: "ua", Email: "a@b.com"}
	sessA := &models.Session{ID: "sa", AccessToken: "tok-a"}
	gw := &fakeGateway{
		VerifyRes: okResult(nil, sessA),
		UserRes:   okResult(userA, nil),
	}
	tokens := tokenstore.NewMemory()
	require.NoError(t, tokens.Set("tok-a"))
	m := newManager(gw, tokens)
	t.Cleanup(m.Close)

	m.Bootstrap(context.Background())
	require.NotNil(t, m.State().User)
	require.Equal(t, "ua", m.State().User.ID)

	// another process swaps the slot; the watcher re-verifies
	w := &fakeWatcher{ch: make(chan struct{}, 1)}
	require.NoError(t, m.StartTokenWatcher(context.Background(), w))

	gw.VerifyRes = okResult(nil, &models.Session{ID: "sb", AccessToken: "tok-b"})
	gw.UserRes = okResult(&models.User{ID: "ub", Email: "b@b.com"}, nil)
	require.NoError(t, tokens.Set("tok-b"))
	w.ch <- struct{}{}

	require.Eventually(t, func() bool {
		st := m.State()
		return st.User != nil && st.User.ID == "ub"
	}, 2*time.Second, 10*time.Millisecond, "the later identity must win")
}

func TestSubscribe_ReceivesLatestState(t *testing.T) {
	gw := &fakeGateway{SignInRes: okResult(&models.User{ID: "u1"}, &models.Session{AccessToken: "tok"})}
	m := newManager(gw, tokenstore.NewMemory())
	t.Cleanup(m.Close)

	ch, cancel := m.Subscribe()
	defer cancel()

	_, err := m.SignIn(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	select {
	case st := <-ch:
		// latest-wins channel: the final state of the action
		assert.False(t, st.Loading)
	case <-time.After(time.Second):
		t.Fatal("expected a state notification")
	}
}
