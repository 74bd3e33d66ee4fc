// Package storage is the client-local key/value store that stands in for
// browser local storage: a handful of string keys that live until the user
// clears them.
package storage

import "context"

const (
	// KeySessionID holds the chat session identifier
	KeySessionID = "chatSessionId"
	// KeyToken holds the access token returned by login
	KeyToken = "token"
)

// Store persists string values under fixed keys
type Store interface {
	// Get returns the value and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
