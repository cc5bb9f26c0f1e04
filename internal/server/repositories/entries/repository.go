// Package entries stores users' cloud clipboard entries and their tags.
package entries

import (
	"context"

	"github.com/clipboardhistoryio/companion/internal/server/models"
)

type Repository interface {
	// List returns the user's entries matching filter, newest first, each
	// with its tags.
	List(ctx context.Context, userID string, filter models.EntryFilter) ([]*models.Entry, error)
	Create(ctx context.Context, entry *models.Entry) error
	AddTag(ctx context.Context, entryID string, tag string) error
	// SetFavorite returns common.ErrorNotFound when the user has no entry id.
	SetFavorite(ctx context.Context, userID, id string, favorited bool) error
}
