package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/avolkovs/surveydesk/internal/client/gateway"
	"github.com/avolkovs/surveydesk/internal/client/tokenstore"
	"github.com/avolkovs/surveydesk/internal/common"
	"github.com/avolkovs/surveydesk/internal/logging"
)

// Manager owns the observable authentication state and orchestrates the
// token store and the auth gateway.
//
// All state mutations go through a single mutex-guarded path, so the two
// concurrent identity sources — the explicit bootstrap sequence and the
// optional token-file watcher — resolve by last-write-wins. Applying the
// same identity twice is a no-op in effect, which keeps repeated sign-ins
// idempotent.
type Manager struct {
	gw     gateway.Auth
	tokens tokenstore.Store
	log    logging.Logger

	mu     sync.Mutex
	state  AuthState
	closed bool
	subs   map[chan AuthState]struct{}

	bootOnce sync.Once
}

// NewManager constructs a Manager in the pre-bootstrap state: Loading is
// true so consumers treat the session as still being checked.
func NewManager(gw gateway.Auth, tokens tokenstore.Store, log logging.Logger) *Manager {
	return &Manager{
		gw:     gw,
		tokens: tokens,
		log:    log,
		state:  AuthState{Loading: true},
		subs:   make(map[chan AuthState]struct{}),
	}
}

// Close tears the manager down. Late-arriving results from in-flight calls
// are discarded: every state mutation checks liveness first, so a destroyed
// scope is never written to.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for ch := range m.subs {
		close(ch)
		delete(m.subs, ch)
	}
}

// State returns a snapshot of the current authentication state.
func (m *Manager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers for state-change notifications. The channel holds the
// latest state only; intermediate states may be skipped. The returned cancel
// function removes the subscription.
func (m *Manager) Subscribe() (<-chan AuthState, func()) {
	ch := make(chan AuthState, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	m.subs[ch] = struct{}{}
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
	}
}

// WaitSettled blocks until Loading is false (or ctx is done) and returns the
// state at that point. The CLI uses it to hold protected commands while the
// bootstrap check is still in flight.
func (m *Manager) WaitSettled(ctx context.Context) AuthState {
	ch, cancel := m.Subscribe()
	defer cancel()
	for {
		if s := m.State(); !s.Loading {
			return s
		}
		select {
		case <-ctx.Done():
			return m.State()
		case _, ok := <-ch:
			if !ok {
				return m.State()
			}
		}
	}
}

// GetToken returns the currently persisted bearer token. Collaborators that
// issue their own backend requests (records, files) use it to authorize them.
func (m *Manager) GetToken() (string, bool) {
	return m.tokens.Get()
}

// Bootstrap runs the one-time startup check: read the persisted token,
// verify it, and fetch the profile. It is safe to call more than once; only
// the first call does anything. Loading settles to false exactly once, on
// every outcome.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.bootOnce.Do(func() {
		m.setLoading(true)
		defer m.setLoading(false)
		m.refresh(ctx)
	})
}

// StartTokenWatcher wires an external change stream for the token slot into
// the manager. Whenever the slot changes, the persisted token is re-verified
// and the outcome applied through the same path bootstrap uses.
func (m *Manager) StartTokenWatcher(ctx context.Context, w tokenstore.Watcher) error {
	ch, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
			m.refresh(ctx)
		}
	}()
	return nil
}

// refresh reconciles state with the token slot: no token means anonymous; a
// token is verified and the profile fetched. A failed verification purges
// the token (no orphaned tokens); a failed profile fetch after a successful
// verification leaves the session set with no user — the two calls are
// independent round trips and only the second failed, so a full
// re-authentication is not needed.
func (m *Manager) refresh(ctx context.Context) {
	token, ok := m.tokens.Get()
	if !ok {
		m.apply(identity{})
		return
	}

	if cur := m.State(); cur.User != nil && cur.Session != nil && cur.Session.AccessToken == token {
		// state already reflects this token
		return
	}

	res, err := m.gw.VerifySession(ctx, token)
	if err != nil || !res.Success {
		msg := failureMessage(res, err, "session verification failed")
		m.log.Warn(ctx, "session verification failed", "error", msg)
		if cerr := m.tokens.Clear(); cerr != nil {
			m.log.Error(ctx, "clearing token after failed verification", "error", cerr)
		}
		m.apply(identity{err: msg})
		return
	}

	sess := res.Session
	ures, uerr := m.gw.GetCurrentUser(ctx, token)
	if uerr != nil || !ures.Success {
		msg := failureMessage(ures, uerr, "profile fetch failed")
		m.log.Warn(ctx, "profile fetch failed, session kept", "error", msg)
		m.apply(identity{session: sess, err: msg})
		return
	}

	m.apply(identity{user: ures.User, session: sess})
}

// SignUp registers a new account. On success the returned token (when the
// backend issues one) is persisted and the state switches to the new
// identity. On failure nothing is mutated besides Error, and the failure is
// returned so the caller can react.
func (m *Manager) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*gateway.Result, error) {
	m.beginAction()
	defer m.setLoading(false)

	res, err := m.gw.SignUp(ctx, email, password, metadata)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}
	if !res.Success {
		m.setError(res.Error)
		return res, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res, m.adoptIdentity(ctx, res)
}

// SignIn authenticates with email and password. Same contract as SignUp.
// Signing in while already authenticated simply overwrites the state.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*gateway.Result, error) {
	m.beginAction()
	defer m.setLoading(false)

	res, err := m.gw.SignIn(ctx, email, password)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}
	if !res.Success {
		m.setError(res.Error)
		return res, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res, m.adoptIdentity(ctx, res)
}

// adoptIdentity persists the session token and applies the new identity.
func (m *Manager) adoptIdentity(ctx context.Context, res *gateway.Result) error {
	if res.Session != nil && res.Session.AccessToken != "" {
		if err := m.tokens.Set(res.Session.AccessToken); err != nil {
			m.log.Error(ctx, "persisting token", "error", err)
			m.setError(err.Error())
			return err
		}
	}
	m.apply(identity{user: res.User, session: res.Session})
	return nil
}

// SignOut signs the current session out. The remote call is best-effort:
// its failure is recorded in Error but local cleanup — clearing the token
// and dropping user and session — always happens, so the client can never
// stay stuck authenticated because the backend was unreachable.
func (m *Manager) SignOut(ctx context.Context) error {
	m.beginAction()
	defer m.setLoading(false)

	var remoteErr string
	if token, ok := m.tokens.Get(); ok {
		res, err := m.gw.SignOut(ctx, token)
		if err != nil {
			remoteErr = err.Error()
		} else if !res.Success {
			remoteErr = res.Error
		}
		if remoteErr != "" {
			m.log.Warn(ctx, "remote sign-out failed, clearing local session anyway", "error", remoteErr)
		}
	}

	if err := m.tokens.Clear(); err != nil {
		// in-memory identity is dropped regardless; the caller learns the
		// token slot could not be cleared
		m.apply(identity{err: err.Error()})
		return err
	}
	m.apply(identity{err: remoteErr})
	return nil
}

// ResetPassword asks the backend to send a password reset email. Stateless:
// no token required, nothing mutated besides Error.
func (m *Manager) ResetPassword(ctx context.Context, email string) (*gateway.Result, error) {
	m.clearError()

	res, err := m.gw.ResetPassword(ctx, email)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}
	if !res.Success {
		m.setError(res.Error)
		return res, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res, nil
}

// UpdatePassword changes the authenticated user's password. Fails
// immediately, without a network round trip, when no token is persisted.
func (m *Manager) UpdatePassword(ctx context.Context, newPassword string) (*gateway.Result, error) {
	m.clearError()

	token, ok := m.tokens.Get()
	if !ok {
		m.setError(common.ErrUnauthenticated.Error())
		return nil, common.ErrUnauthenticated
	}

	res, err := m.gw.UpdatePassword(ctx, token, newPassword)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}
	if !res.Success {
		m.setError(res.Error)
		return res, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res, nil
}

// UpdateProfile patches the authenticated user's profile. Same precondition
// as UpdatePassword. On success the user in state is replaced from the
// result; the session is untouched.
func (m *Manager) UpdateProfile(ctx context.Context, patch map[string]any) (*gateway.Result, error) {
	m.clearError()

	token, ok := m.tokens.Get()
	if !ok {
		m.setError(common.ErrUnauthenticated.Error())
		return nil, common.ErrUnauthenticated
	}

	res, err := m.gw.UpdateUser(ctx, token, patch)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}
	if !res.Success {
		m.setError(res.Error)
		return res, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	if res.User != nil {
		m.setUser(res)
	}
	return res, nil
}

// ---- serialized state mutation ----

func (m *Manager) apply(id identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.state.User = id.user
	m.state.Session = id.session
	m.state.Error = id.err
	m.notifyLocked()
}

func (m *Manager) beginAction() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.state.Loading = true
	m.state.Error = ""
	m.notifyLocked()
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.state.Loading = v
	m.notifyLocked()
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.state.Error = msg
	m.notifyLocked()
}

func (m *Manager) clearError() {
	m.setError("")
}

func (m *Manager) setUser(res *gateway.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.state.User = res.User
	m.notifyLocked()
}

// notifyLocked pushes the latest state to every subscriber, replacing any
// undelivered previous state. Callers hold m.mu.
func (m *Manager) notifyLocked() {
	for ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- m.state:
		default:
		}
	}
}

func failureMessage(res *gateway.Result, err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	if res != nil && res.Error != "" {
		return res.Error
	}
	return fallback
}
