// Package session issues and validates login sessions. A session is a
// server-side record keyed by the SHA-256 digest of a random id; the raw id
// travels to the client inside an HS256-signed token so it can be neither
// forged nor guessed, and deleting the record revokes it.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned by a Store when no live record exists.
var ErrSessionNotFound = errors.New("session not found")

// Store persists session records. Keys are already hashed.
type Store interface {
	Create(ctx context.Context, key string, userID uint, expiresAt time.Time) error
	Lookup(ctx context.Context, key string) (uint, error)
	Delete(ctx context.Context, key string) error
}

const sessionIDBytes = 32

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashID(id string) string {
	h := sha256.Sum256([]byte(id))
	return hex.EncodeToString(h[:])
}
