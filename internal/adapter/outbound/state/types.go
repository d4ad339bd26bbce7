// Package state provides file-based persistence for the storefront's
// durable key/value entries: the session token and the cart mirror.
//
// Entries live in one JSON file written atomically, with a backup of the
// previous version and a lock file for cross-process safety.
package state

import "time"

// schemaVersion is the current on-disk format version.
const schemaVersion = "1"

// StoreFile is the top-level structure persisted to disk.
type StoreFile struct {
	// Version is the schema version for forward compatibility.
	Version string `json:"version"`

	// Entries maps keys to their raw string values.
	Entries map[string]string `json:"entries"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newStoreFile() *StoreFile {
	now := time.Now().UTC()
	return &StoreFile{
		Version:   schemaVersion,
		Entries:   map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
