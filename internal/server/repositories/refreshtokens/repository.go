// Package refreshtokens declares the storage contract for server-issued
// refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/clipboardhistoryio/companion/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, expiring validity from now.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes tokens whose expiry is before now and reports how
	// many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
