// Package common defines shared constants and sentinel errors used across
// surveydesk components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors (network unreachable, timeout).
	ErrUnavailable = errors.New("backend unavailable")

	// Backend-reported failures surfaced as Go errors by callers that
	// need to propagate them (wrong password, rejected update, ...).
	ErrBackend = errors.New("backend rejected request")

	// Precondition errors.
	ErrUnauthenticated = errors.New("not authenticated")

	// Resource errors.
	ErrNotFound = errors.New("not found")
)
