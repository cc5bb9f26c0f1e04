package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/clipboardhistoryio/companion/internal/client/client"
	"github.com/clipboardhistoryio/companion/internal/client/config"
	"github.com/clipboardhistoryio/companion/internal/client/dashboard"
	"github.com/clipboardhistoryio/companion/internal/client/gate"
	"github.com/clipboardhistoryio/companion/internal/client/models"
	"github.com/clipboardhistoryio/companion/internal/client/navigator"
	"github.com/clipboardhistoryio/companion/internal/client/page"
	"github.com/clipboardhistoryio/companion/internal/client/services"
	"github.com/clipboardhistoryio/companion/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// session is the part of services.AuthService the app drives.
type session interface {
	page.Auth
	Restore(ctx context.Context) error
	SignOut(ctx context.Context) error
	Subscribe(fn func(services.AuthState)) (cancel func())
	Ping(ctx context.Context) error
	Close() error
}

// store is the part of services.QueryService the app drives.
type store interface {
	gate.Querier
	dashboard.Source
	AddEntry(ctx context.Context, content string, tags []string, favorited bool) (*models.Entry, error)
	SetFavorite(ctx context.Context, id string, favorited bool) error
}

type App struct {
	config  *config.Config
	session session
	store   store
	page    *page.Page
	dash    *dashboard.Dashboard
	logger  logging.Logger
	db      *sql.DB

	reader *bufio.Reader
	out    io.Writer

	unsubscribe func()

	mu       sync.Mutex
	mode     Mode
	lastView gate.View
}

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, logLevel(c.LogLevel))

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		db.Close()
		return nil, err
	}

	var nav gate.Navigator = navigator.Printer{Out: os.Stdout}
	if c.OpenBrowser {
		nav = navigator.Browser{Out: os.Stdout}
	}

	as := services.NewAuthService(apiClient, db, logger)
	qs := services.NewQueryService(apiClient)

	a := newApp(c, as, qs, nav, logger, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, s session, st store, nav gate.Navigator, logger logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		config:   c,
		session:  s,
		store:    st,
		page:     page.New(s, st, nav, c.BaseURL, logger),
		dash:     dashboard.New(st, logger),
		logger:   logger.With("module", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
		lastView: -1,
	}
	a.unsubscribe = s.Subscribe(a.sessionChanged)
	return a
}

func (a *App) sessionChanged(st services.AuthState) {
	switch {
	case st.IsLoading:
	case st.User != nil:
		a.logger.Info(context.Background(), "signed in", "user_id", st.User.ID)
	default:
		a.logger.Info(context.Background(), "signed out")
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

// Run restores the stored session, starts the connectivity watcher and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close(ctx)

	a.restore(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) restore(ctx context.Context) {
	err := a.session.Restore(ctx)
	switch {
	case err == nil:
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		a.logger.Warn(ctx, "server unreachable, session restore postponed")
	default:
		a.logger.Error(ctx, "failed to restore session", "error", err)
	}
}

func (a *App) close(ctx context.Context) {
	a.unsubscribe()
	if err := a.session.Close(); err != nil {
		a.logger.Error(ctx, "failed to close connection", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error(ctx, "failed to close database", "error", err)
		}
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// checkOnline pings the server and retries a postponed session restore once
// it answers.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.session.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)

	if a.session.State().IsLoading {
		a.restore(ctx)
	}
}
