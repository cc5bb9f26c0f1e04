package client

import (
	"context"

	"github.com/clipboardhistoryio/companion/internal/client/models"
)

// Tokens is the session held by a Client.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type Client interface {
	SendMagicCode(ctx context.Context, email string) error
	SignInWithMagicCode(ctx context.Context, email, code string) (*models.User, error)
	// RefreshSession exchanges the held refresh token for a new pair and
	// returns the session owner.
	RefreshSession(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error

	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
	ListEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error)
	AddEntry(ctx context.Context, content string, tags []string, favorited bool) (*models.Entry, error)
	SetFavorite(ctx context.Context, id string, favorited bool) error

	Tokens() Tokens
	SetTokens(t Tokens)
	OnRefresh(fn func(Tokens))
	ConnectionStatus() models.ConnectionStatus
	Close() error
}
