package magiccodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Replace(ctx context.Context, code *models.MagicCode) error {
	query := `
		INSERT INTO magic_codes (email, code_hash, salt, attempts, expires_at)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (email) DO UPDATE
		SET code_hash = EXCLUDED.code_hash,
		    salt = EXCLUDED.salt,
		    attempts = 0,
		    expires_at = EXCLUDED.expires_at,
		    created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, code.Email, code.CodeHash, code.Salt, code.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Claim(ctx context.Context, email string, maxAttempts int, now time.Time) (*models.MagicCode, error) {
	query := `
		UPDATE magic_codes SET attempts = attempts + 1
		WHERE email = $1 AND attempts < $2 AND expires_at > $3
		RETURNING email, code_hash, salt, attempts, expires_at, created_at
	`
	c := &models.MagicCode{}
	err := r.db.QueryRowContext(ctx, query, email, maxAttempts, now).
		Scan(&c.Email, &c.CodeHash, &c.Salt, &c.Attempts, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM magic_codes WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM magic_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
