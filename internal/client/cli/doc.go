// Package cli implements the interactive surveydesk command loop.
//
// The REPL dispatches commands to the session manager (auth), the survey and
// record services (data), and the file service (storage). Commands that need
// an authenticated user go through the access guard first: while the startup
// session check is still running they wait instead of deciding, and once it
// settles an anonymous user is pointed at login rather than the command.
package cli
