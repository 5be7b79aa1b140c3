package session

import "github.com/avolkovs/surveydesk/internal/client/models"

// AuthState is the single consistent view of the current user exposed to the
// rest of the application.
//
// Loading is true during the initial bootstrap check and while an
// identity-changing action (sign-up, sign-in, sign-out) is in flight. Once
// bootstrap completes it settles to false and only those actions may raise
// it again.
//
// Invariant: User != nil implies a token is persisted. The converse does not
// hold — a persisted token whose verification failed leaves User nil and the
// token purged.
type AuthState struct {
	User    *models.User
	Session *models.Session
	Loading bool
	Error   string
}

// identity is a self-contained "new identity or null" payload. Every source
// of identity changes (bootstrap, actions, the token watcher) funnels one of
// these through Manager.apply, and later writes fully replace earlier ones.
type identity struct {
	user    *models.User
	session *models.Session
	err     string
}
