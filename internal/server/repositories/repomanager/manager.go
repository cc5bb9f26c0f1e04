package repomanager

import (
	"context"
	"database/sql"

	"github.com/clipboardhistoryio/companion/internal/dbx"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/entries"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/magiccodes"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/refreshtokens"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/subscriptions"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// service code runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	MagicCodes(db dbx.DBTX) magiccodes.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
	Entries(db dbx.DBTX) entries.Repository
}
