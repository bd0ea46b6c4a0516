// Package session maps opaque login tokens to user ids for a fixed lifetime.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a token stays valid after login. Reads never extend it.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "auth_"

type Store interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, bool, error)
	Destroy(ctx context.Context, token string) error
	IsAlive(ctx context.Context) bool
}

func key(token string) string {
	return keyPrefix + token
}

func newToken() string {
	return uuid.NewString()
}
