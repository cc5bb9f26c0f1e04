// Package users stores accounts. An account is identified by its email and
// is created on the first successful magic-code sign-in.
package users

import (
	"context"

	"github.com/clipboardhistoryio/companion/internal/server/models"
)

type Repository interface {
	// Upsert returns the user with email, creating it when absent.
	Upsert(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
