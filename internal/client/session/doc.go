// Package session owns client-side authentication state.
//
// # Overview
//
// The package provides:
//  1. Manager — the session state machine. It bootstraps from a persisted
//     token exactly once, exposes sign-up/sign-in/sign-out and the password
//     and profile actions, and publishes an observable AuthState snapshot.
//  2. AuthState — the composite {user, session, loading, error} view.
//  3. Decide — the access guard, a pure function from AuthState to a
//     pending/allow/redirect decision.
//
// # Concurrency
//
// Two sources may concurrently attempt to update identity: the bootstrap
// verify sequence and the token-store change watcher. Both funnel
// self-contained identity payloads through one mutex-guarded apply path, so
// whichever completes last wins and duplicate updates are harmless. After
// Close, in-flight results are dropped rather than applied to a torn-down
// scope.
package session
