// Package metadata is the local key/value store the client keeps next to the
// session: the refresh token and the signed-in user.
package metadata

import (
	"context"
)

// Keys used by the session store.
const (
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyUserEmail    = "user_email"
)

type Repository interface {
	// Get returns common.ErrorNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
