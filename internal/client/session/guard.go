package session

// Decision is the access-control outcome for protected surfaces.
type Decision int

const (
	// DecisionPending means the session is still being checked; render a
	// neutral waiting state and make no allow/deny call yet.
	DecisionPending Decision = iota

	// DecisionAllow admits the user to protected content.
	DecisionAllow

	// DecisionRedirect sends the user to the sign-in entry point.
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	default:
		return "redirect"
	}
}

// Decide is the access guard: a pure function of AuthState. While Loading is
// true no allow/deny decision is made — this is what prevents flashing the
// sign-in redirect before bootstrap completes. Once settled, any
// non-authenticated outcome uniformly redirects, whatever error caused it.
func Decide(s AuthState) Decision {
	if s.Loading {
		return DecisionPending
	}
	if s.User != nil {
		return DecisionAllow
	}
	return DecisionRedirect
}
