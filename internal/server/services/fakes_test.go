package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/dbx"
	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/entries"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/magiccodes"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/refreshtokens"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/subscriptions"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	byEmail   map[string]*models.User
	upsertErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Upsert(ctx context.Context, email string) (*models.User, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	u := &models.User{ID: "user-" + email, Email: email, CreatedAt: time.Now()}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- magic codes ---

type fakeCodesRepo struct {
	mu         sync.Mutex
	codes      map[string]*models.MagicCode
	replaceErr error
	claimErr   error
	deleteErr  error
	expired    int64
	expiredErr error
}

func newFakeCodesRepo() *fakeCodesRepo {
	return &fakeCodesRepo{codes: map[string]*models.MagicCode{}}
}

func (f *fakeCodesRepo) Replace(ctx context.Context, code *models.MagicCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	c := *code
	f.codes[code.Email] = &c
	return nil
}

func (f *fakeCodesRepo) Claim(ctx context.Context, email string, maxAttempts int, now time.Time) (*models.MagicCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	c, ok := f.codes[email]
	if !ok || c.Attempts >= maxAttempts || !c.ExpiresAt.After(now) {
		return nil, common.ErrorNotFound
	}
	c.Attempts++
	cp := *c
	return &cp, nil
}

func (f *fakeCodesRepo) Delete(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.codes[email]; !ok {
		return common.ErrorNotFound
	}
	delete(f.codes, email)
	return nil
}

func (f *fakeCodesRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.expired, f.expiredErr
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	tokens     map[string]*models.RefreshToken
	createErr  error
	findErr    error
	deleteErr  error
	expired    int64
	expiredErr error
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.expired, f.expiredErr
}

// --- subscriptions ---

type fakeSubsRepo struct {
	byStripeID map[string]*models.Subscription
	listErr    error
	upsertErr  error
	deleted    []string
}

func newFakeSubsRepo() *fakeSubsRepo {
	return &fakeSubsRepo{byStripeID: map[string]*models.Subscription{}}
}

func (f *fakeSubsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Subscription
	for _, s := range f.byStripeID {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubsRepo) Upsert(ctx context.Context, sub *models.Subscription) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	s := *sub
	f.byStripeID[sub.StripeSubscriptionID] = &s
	return nil
}

func (f *fakeSubsRepo) DeleteByStripeID(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.byStripeID, id)
	return nil
}

// --- entries ---

type fakeEntriesRepo struct {
	created   []*models.Entry
	tags      map[string][]string
	createErr error
	tagErr    error
	listOut   []*models.Entry
	listErr   error
	favErr    error
	favCalls  []string
}

func newFakeEntriesRepo() *fakeEntriesRepo {
	return &fakeEntriesRepo{tags: map[string][]string{}}
}

func (f *fakeEntriesRepo) List(ctx context.Context, userID string, filter models.EntryFilter) ([]*models.Entry, error) {
	return f.listOut, f.listErr
}

func (f *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakeEntriesRepo) AddTag(ctx context.Context, entryID, tag string) error {
	if f.tagErr != nil {
		return f.tagErr
	}
	f.tags[entryID] = append(f.tags[entryID], tag)
	return nil
}

func (f *fakeEntriesRepo) SetFavorite(ctx context.Context, userID, id string, favorited bool) error {
	f.favCalls = append(f.favCalls, userID+"/"+id)
	return f.favErr
}

// --- manager ---

type fakeRepoManager struct {
	users   *fakeUsersRepo
	codes   *fakeCodesRepo
	refresh *fakeRefreshRepo
	subs    *fakeSubsRepo
	entries *fakeEntriesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:   newFakeUsersRepo(),
		codes:   newFakeCodesRepo(),
		refresh: newFakeRefreshRepo(),
		subs:    newFakeSubsRepo(),
		entries: newFakeEntriesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) MagicCodes(dbx.DBTX) magiccodes.Repository       { return m.codes }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Subscriptions(dbx.DBTX) subscriptions.Repository { return m.subs }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository             { return m.entries }

// --- mailer ---

type fakeMailer struct {
	sent map[string]string
	err  error
}

func (f *fakeMailer) SendMagicCode(ctx context.Context, email, code string) error {
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = map[string]string{}
	}
	f.sent[email] = code
	return nil
}

type fakeLimiter struct {
	err   error
	calls []string
}

func (f *fakeLimiter) Allow(ctx context.Context, subject string) error {
	f.calls = append(f.calls, subject)
	return f.err
}
