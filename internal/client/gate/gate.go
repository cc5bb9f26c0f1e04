// Package gate holds the dashboard back until the signed-in user is known to
// have a subscription, and sends users without one to checkout.
package gate

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/clipboardhistoryio/companion/internal/client/models"
	"github.com/clipboardhistoryio/companion/internal/logging"
)

// Querier runs the subscription point query for the current session.
type Querier interface {
	QuerySubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// Navigator performs a full-page navigation to url.
type Navigator interface {
	Navigate(url string) error
}

// CheckoutURL is where a user without a subscription is sent.
func CheckoutURL(baseURL, userID string) string {
	return strings.TrimRight(baseURL, "/") + "/checkout/" + url.PathEscape(userID)
}

// Gate runs one subscription check per session. Loading starts true and is
// cleared only by a non-empty result.
type Gate struct {
	querier   Querier
	navigator Navigator
	baseURL   string
	logger    logging.Logger

	mu      sync.Mutex
	loading bool
	userID  string
	gen     uint64
	err     error
}

func New(q Querier, nav Navigator, baseURL string, logger logging.Logger) *Gate {
	return &Gate{
		querier:   q,
		navigator: nav,
		baseURL:   baseURL,
		logger:    logger.With("module", "gate"),
		loading:   true,
	}
}

// Sync runs the check when user differs from the session already checked.
// A nil user forgets the session and discards any check in flight.
func (g *Gate) Sync(ctx context.Context, user *models.User) {
	g.mu.Lock()
	if user == nil {
		g.forget()
		g.mu.Unlock()
		return
	}
	if user.ID == g.userID {
		g.mu.Unlock()
		return
	}
	g.forget()
	g.userID = user.ID
	gen := g.gen
	g.mu.Unlock()

	g.check(ctx, user.ID, gen)
}

// Retry re-runs a failed check for the session being checked.
func (g *Gate) Retry(ctx context.Context) {
	g.mu.Lock()
	if g.err == nil || g.userID == "" {
		g.mu.Unlock()
		return
	}
	g.err = nil
	g.gen++
	userID, gen := g.userID, g.gen
	g.mu.Unlock()

	g.check(ctx, userID, gen)
}

// Reset makes the next Sync run a fresh check.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forget()
}

func (g *Gate) forget() {
	g.userID = ""
	g.loading = true
	g.err = nil
	g.gen++
}

func (g *Gate) check(ctx context.Context, userID string, gen uint64) {
	subs, err := g.querier.QuerySubscriptions(ctx)

	g.mu.Lock()
	if g.gen != gen {
		g.mu.Unlock()
		g.logger.Debug(ctx, "discarding stale subscription check", "user_id", userID)
		return
	}

	if err != nil {
		g.err = fmt.Errorf("subscription check: %w", err)
		g.mu.Unlock()
		g.logger.Error(ctx, "subscription check failed", "user_id", userID, "error", err)
		return
	}

	if len(subs) > 0 {
		g.loading = false
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	target := CheckoutURL(g.baseURL, userID)
	g.logger.Info(ctx, "no subscription, redirecting to checkout", "user_id", userID, "url", target)
	if err := g.navigator.Navigate(target); err != nil {
		g.logger.Error(ctx, "navigation failed", "url", target, "error", err)
	}
}

func (g *Gate) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

// Err is the failure of the last check, if any.
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
