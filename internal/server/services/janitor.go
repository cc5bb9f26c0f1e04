package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/clipboardhistoryio/companion/internal/logging"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/repomanager"
)

// Janitor periodically removes expired magic codes and refresh tokens.
type Janitor struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewJanitor(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *Janitor {
	return &Janitor{db: db, repomanager: m, logger: logger.With("module", "janitor"), now: time.Now}
}

// Sweep runs one cleanup pass. Failures are logged and the pass continues.
func (j *Janitor) Sweep(ctx context.Context) {
	now := j.now()

	if n, err := j.repomanager.MagicCodes(j.db).DeleteExpired(ctx, now); err != nil {
		j.logger.Error(ctx, "failed to delete expired magic codes", "error", err)
	} else if n > 0 {
		j.logger.Debug(ctx, "deleted expired magic codes", "count", n)
	}

	if n, err := j.repomanager.RefreshTokens(j.db).DeleteExpired(ctx, now); err != nil {
		j.logger.Error(ctx, "failed to delete expired refresh tokens", "error", err)
	} else if n > 0 {
		j.logger.Debug(ctx, "deleted expired refresh tokens", "count", n)
	}
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}
