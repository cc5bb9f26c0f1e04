package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/clipboardhistoryio/companion/internal/client/client"
	"github.com/clipboardhistoryio/companion/internal/client/models"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeClient struct {
	tokens    client.Tokens
	onRefresh func(client.Tokens)

	sendErr    error
	lastEmail  string
	signInUser *models.User
	signInErr  error
	// signInTokens is what a successful sign-in installs.
	signInTokens client.Tokens

	refreshUser   *models.User
	refreshErr    error
	refreshTokens client.Tokens
	refreshCalls  int

	pingErr  error
	closed   bool
	status   models.ConnectionStatus
	subs     []models.Subscription
	subsErr  error
	entries  map[models.EntryFilter][]models.Entry
	listErr  error
	added    []string
	favCalls []string
	favErr   error
}

func (f *fakeClient) SendMagicCode(ctx context.Context, email string) error {
	f.lastEmail = email
	return f.sendErr
}

func (f *fakeClient) SignInWithMagicCode(ctx context.Context, email, code string) (*models.User, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.tokens = f.signInTokens
	return f.signInUser, nil
}

func (f *fakeClient) RefreshSession(ctx context.Context) (*models.User, error) {
	f.refreshCalls++
	if f.tokens.RefreshToken == "" {
		return nil, client.ErrNoSession
	}
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.tokens = f.refreshTokens
	return f.refreshUser, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	return f.subs, f.subsErr
}

func (f *fakeClient) ListEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries[filter], nil
}

func (f *fakeClient) AddEntry(ctx context.Context, content string, tags []string, favorited bool) (*models.Entry, error) {
	f.added = append(f.added, content)
	return &models.Entry{ID: "new", Content: content, Tags: tags, IsFavorited: favorited}, nil
}

func (f *fakeClient) SetFavorite(ctx context.Context, id string, favorited bool) error {
	f.favCalls = append(f.favCalls, id)
	return f.favErr
}

func (f *fakeClient) Tokens() client.Tokens                     { return f.tokens }
func (f *fakeClient) SetTokens(t client.Tokens)                 { f.tokens = t }
func (f *fakeClient) OnRefresh(fn func(client.Tokens))          { f.onRefresh = fn }
func (f *fakeClient) ConnectionStatus() models.ConnectionStatus { return f.status }

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}
