// Package session owns the chat session identifier that ties successive
// queries together on the backend.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/killallgit/liftchat/pkg/logger"
	"github.com/killallgit/liftchat/pkg/storage"
)

// GetOrCreateSessionID returns the stored session identifier, generating and
// storing a new one when none exists. Once stored it is never regenerated.
func GetOrCreateSessionID(ctx context.Context, store storage.Store) (string, error) {
	id, ok, err := store.Get(ctx, storage.KeySessionID)
	if err != nil {
		return "", fmt.Errorf("failed to read session id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := store.Set(ctx, storage.KeySessionID, id); err != nil {
		return "", fmt.Errorf("failed to store session id: %w", err)
	}

	logger.WithComponent("session").Infow("created session", "session_id", id)
	return id, nil
}

// Reset forgets the current session so the next exchange starts a new one
func Reset(ctx context.Context, store storage.Store) error {
	if err := store.Delete(ctx, storage.KeySessionID); err != nil {
		return fmt.Errorf("failed to clear session id: %w", err)
	}
	logger.WithComponent("session").Infow("session reset")
	return nil
}
