// Package gateway contains the client-side API surface for the surveydesk
// backend.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts (Auth, Data, Storage, combined in Client)
//     covering authentication, generic table CRUD, and bucket storage.
//  2. A concrete HTTP/JSON implementation (HTTPClient) that injects the
//     bearer token per request, normalizes non-2xx responses into the
//     {success, error} envelope, and maps network failures to sentinel
//     errors.
//
// # Error Handling
//
// Auth operations never return a Go error for a failure the backend itself
// reported — those come back as Result{Success: false}. Data and Storage
// operations wrap backend failures in common.ErrBackend. Transport problems
// always wrap common.ErrUnavailable, matchable with errors.Is.
//
// All operations accept context.Context and honor cancellation; the
// underlying http.Client carries the request timeout from config.
package gateway
