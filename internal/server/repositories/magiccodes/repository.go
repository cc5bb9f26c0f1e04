// Package magiccodes stores the pending one-time sign-in code of each email.
// At most one code exists per email; issuing a new one replaces the old.
package magiccodes

import (
	"context"
	"time"

	"github.com/clipboardhistoryio/companion/internal/server/models"
)

type Repository interface {
	Replace(ctx context.Context, code *models.MagicCode) error
	// Claim counts one verification attempt against the pending code of
	// email and returns the code with the new count. It returns
	// common.ErrorNotFound when no code is pending, the code has expired at
	// now, or maxAttempts attempts were already made.
	Claim(ctx context.Context, email string, maxAttempts int, now time.Time) (*models.MagicCode, error)
	// Delete returns common.ErrorNotFound when no code was pending for email.
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
