package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/dbx"
	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{db: db, repomanager: m, now: time.Now}
}

func (s *EntryService) List(ctx context.Context, userID string, filter models.EntryFilter) ([]*models.Entry, error) {
	list, err := s.repomanager.Entries(s.db).List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return list, nil
}

// normalizeTags trims tags and drops blanks and duplicates, keeping order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Add stores a new entry with a random UUID and its tags in one transaction.
func (s *EntryService) Add(ctx context.Context, userID, content string, tags []string, favorited bool) (*models.Entry, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", common.ErrInvalidArgument)
	}

	entry := &models.Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Content:     content,
		IsFavorited: favorited,
		Tags:        normalizeTags(tags),
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)
		if err := repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("error creating entry: %w", err)
		}
		for _, tag := range entry.Tags {
			if err := repo.AddTag(ctx, entry.ID, tag); err != nil {
				return fmt.Errorf("error tagging entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SetFavorite returns common.ErrorNotFound when userID owns no entry id.
func (s *EntryService) SetFavorite(ctx context.Context, userID, id string, favorited bool) error {
	return s.repomanager.Entries(s.db).SetFavorite(ctx, userID, id, favorited)
}
