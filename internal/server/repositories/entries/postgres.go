package entries

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/dbx"
	"github.com/clipboardhistoryio/companion/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const listQuery = `
	SELECT e.id, e.content, e.is_favorited, e.created_at,
	       COALESCE(json_agg(t.tag ORDER BY t.tag) FILTER (WHERE t.tag IS NOT NULL), '[]')
	FROM entries e
	LEFT JOIN entry_tags t ON t.entry_id = e.id
	WHERE e.user_id = $1 %s
	GROUP BY e.id
	ORDER BY e.created_at DESC
`

func filterClause(filter models.EntryFilter) (string, error) {
	switch filter {
	case models.EntryFilterAll:
		return "", nil
	case models.EntryFilterFavorited:
		return "AND e.is_favorited", nil
	case models.EntryFilterTagged:
		return "AND EXISTS (SELECT 1 FROM entry_tags x WHERE x.entry_id = e.id)", nil
	default:
		return "", fmt.Errorf("unknown entry filter %d", filter)
	}
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter models.EntryFilter) ([]*models.Entry, error) {
	clause, err := filterClause(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(listQuery, clause), userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e := &models.Entry{UserID: userID}
		var tags []byte
		if err := rows.Scan(&e.ID, &e.Content, &e.IsFavorited, &e.CreatedAt, &tags); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := json.Unmarshal(tags, &e.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of %s: %w", e.ID, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (id, user_id, content, is_favorited, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.UserID, entry.Content, entry.IsFavorited, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddTag(ctx context.Context, entryID string, tag string) error {
	query := `
		INSERT INTO entry_tags (entry_id, tag)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, entryID, tag); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetFavorite(ctx context.Context, userID, id string, favorited bool) error {
	query := `
		UPDATE entries SET is_favorited = $3
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID, favorited)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
