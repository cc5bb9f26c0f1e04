package grpc

import (
	"context"

	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/clipboardhistoryio/companion/internal/server/services"
)

type fakeAuth struct {
	sendErr   error
	sentTo    string
	signIn    *services.SignInResult
	signInErr error
	refresh   *services.SignInResult
	refErr    error
}

func (f *fakeAuth) SendMagicCode(ctx context.Context, email string) error {
	f.sentTo = email
	return f.sendErr
}

func (f *fakeAuth) SignInWithMagicCode(ctx context.Context, email, code string) (*services.SignInResult, error) {
	return f.signIn, f.signInErr
}

func (f *fakeAuth) RefreshToken(ctx context.Context, token string) (*services.SignInResult, error) {
	return f.refresh, f.refErr
}

type fakeSubs struct {
	byUser map[string][]*models.Subscription
	err    error
}

func (f *fakeSubs) List(ctx context.Context, userID string) ([]*models.Subscription, error) {
	return f.byUser[userID], f.err
}

type fakeEntries struct {
	listOut    []*models.Entry
	listErr    error
	gotFilter  models.EntryFilter
	gotUserID  string
	added      *models.Entry
	addErr     error
	favErr     error
	favoriteOf string
}

func (f *fakeEntries) List(ctx context.Context, userID string, filter models.EntryFilter) ([]*models.Entry, error) {
	f.gotUserID, f.gotFilter = userID, filter
	return f.listOut, f.listErr
}

func (f *fakeEntries) Add(ctx context.Context, userID, content string, tags []string, favorited bool) (*models.Entry, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = &models.Entry{ID: "e-new", UserID: userID, Content: content, Tags: tags, IsFavorited: favorited}
	return f.added, nil
}

func (f *fakeEntries) SetFavorite(ctx context.Context, userID, id string, favorited bool) error {
	f.favoriteOf = userID + "/" + id
	return f.favErr
}
