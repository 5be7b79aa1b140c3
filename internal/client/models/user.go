// Package models defines the data types exchanged with the backend API.
package models

import "time"

// User is the authenticated principal's profile as reported by the backend.
// Metadata carries free-form attributes attached at sign-up (display name,
// department, ...).
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// Session describes the backend's notion of an authenticated session.
// Beyond the access token used to mint it the payload is opaque to the
// client.
type Session struct {
	ID          string `json:"id,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}
