package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clipboardhistoryio/companion/internal/client/client"
	"github.com/clipboardhistoryio/companion/internal/client/config"
	"github.com/clipboardhistoryio/companion/internal/client/models"
	"github.com/clipboardhistoryio/companion/internal/client/services"
	"github.com/clipboardhistoryio/companion/internal/logging"
)

const goodCode = "123456"

type fakeSession struct {
	mu    sync.Mutex
	state services.AuthState

	sent       []string
	signInErr  error
	pingErr    error
	restoreErr error
	restored   int
	restoreTo  *models.User
	signedOut  int
	closed     bool
	listeners  []func(services.AuthState)
}

func (f *fakeSession) SendMagicCode(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeSession) SignInWithMagicCode(ctx context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return f.signInErr
	}
	if code != goodCode {
		return fmt.Errorf("%w: invalid code", client.ErrRejected)
	}
	f.state = services.AuthState{User: &models.User{ID: "u1", Email: email}}
	return nil
}

func (f *fakeSession) State() services.AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) Restore(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restored++
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.state = services.AuthState{User: f.restoreTo}
	return nil
}

func (f *fakeSession) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut++
	f.state = services.AuthState{}
	return nil
}

func (f *fakeSession) Subscribe(fn func(services.AuthState)) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners = nil
	}
}

func (f *fakeSession) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	subs    []models.Subscription
	subErrs []error
	entries []models.Entry
	status  models.ConnectionStatus

	added  []models.Entry
	favs   map[string]bool
	addErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subs:   []models.Subscription{{ID: "s1", UserID: "u1", Status: "active"}},
		status: models.ConnectionOpened,
		favs:   map[string]bool{},
	}
}

func (f *fakeStore) QuerySubscriptions(ctx context.Context) ([]models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subErrs) > 0 {
		err := f.subErrs[0]
		f.subErrs = f.subErrs[1:]
		return nil, err
	}
	return f.subs, nil
}

func (f *fakeStore) QueryEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Entry
	for _, e := range f.entries {
		switch filter {
		case models.EntryFilterFavorited:
			if !e.IsFavorited {
				continue
			}
		case models.EntryFilterTagged:
			if len(e.Tags) == 0 {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) ConnectionStatus() models.ConnectionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeStore) AddEntry(ctx context.Context, content string, tags []string, favorited bool) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	e := models.Entry{
		ID:          fmt.Sprintf("00000000-0000-4000-8000-%012d", len(f.entries)+1),
		Content:     content,
		Tags:        tags,
		IsFavorited: favorited,
		CreatedAt:   time.Date(2026, 10, 1, 12, len(f.entries), 0, 0, time.UTC),
	}
	f.entries = append(f.entries, e)
	f.added = append(f.added, e)
	return &e, nil
}

func (f *fakeStore) SetFavorite(ctx context.Context, id string, favorited bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favs[id] = favorited
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].IsFavorited = favorited
			return nil
		}
	}
	return fmt.Errorf("%w: entry not found", client.ErrRejected)
}

type fakeNav struct {
	urls []string
}

func (f *fakeNav) Navigate(url string) error {
	f.urls = append(f.urls, url)
	return nil
}

// captureOutput swaps printlnFn for a recorder and returns the lines printed.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	t.Cleanup(func() { printlnFn = orig })
	printlnFn = func(a ...any) (int, error) {
		s := strings.TrimSuffix(fmt.Sprintln(a...), "\n")
		lines = append(lines, s)
		return len(s), nil
	}
	return &lines
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:             "https://clipboardhistory.io",
		OnlineCheckInterval: time.Hour,
	}
}

type harness struct {
	app   *App
	sess  *fakeSession
	store *fakeStore
	nav   *fakeNav
	out   *[]string
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	h := &harness{
		sess:  &fakeSession{},
		store: newFakeStore(),
		nav:   &fakeNav{},
		out:   captureOutput(t),
	}
	h.app = newApp(testConfig(), h.sess, h.store, h.nav, logging.Nop{}, strings.NewReader(input), &strings.Builder{})
	return h
}

func (h *harness) printed() string {
	return strings.Join(*h.out, "\n")
}
