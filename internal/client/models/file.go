package models

import "time"

// StoredFile describes an object in a storage bucket as returned by the
// backend's list operation.
type StoredFile struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
