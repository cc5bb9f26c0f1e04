// Package dashboard filters the signed-in user's clipboard entries for the
// All, Favorites and Cloud tabs.
package dashboard

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/clipboardhistoryio/companion/internal/client/models"
	"github.com/clipboardhistoryio/companion/internal/logging"
	"github.com/google/uuid"
)

// Overlay texts shown when a tab has nothing to list.
const (
	MsgOffline        = "You're Offline"
	MsgNoEntries      = "You have no items yet"
	MsgNoFavorites    = "You have no favorited items"
	MsgNoCloudEntries = "You have no items stored in the cloud"
)

type Source interface {
	QueryEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error)
	ConnectionStatus() models.ConnectionStatus
}

var queries = []models.EntryFilter{
	models.EntryFilterAll,
	models.EntryFilterFavorited,
	models.EntryFilterTagged,
}

type Dashboard struct {
	source Source
	logger logging.Logger

	mu      sync.Mutex
	search  string
	tab     Tab
	data    map[models.EntryFilter][]models.Entry
	loading map[models.EntryFilter]bool
}

func New(source Source, logger logging.Logger) *Dashboard {
	d := &Dashboard{
		source:  source,
		logger:  logger.With("module", "dashboard"),
		data:    map[models.EntryFilter][]models.Entry{},
		loading: map[models.EntryFilter]bool{},
	}
	for _, q := range queries {
		d.loading[q] = true
	}
	return d
}

// Load runs the three entry queries. A failed query leaves its data empty.
func (d *Dashboard) Load(ctx context.Context) {
	for _, q := range queries {
		entries, err := d.source.QueryEntries(ctx, q)
		if err != nil {
			d.logger.Error(ctx, "entry query failed", "filter", q, "error", err)
			entries = nil
		}

		d.mu.Lock()
		d.data[q] = entries
		d.loading[q] = false
		d.mu.Unlock()
	}
}

func (d *Dashboard) SetSearch(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.search = s
}

func (d *Dashboard) Search() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.search
}

func (d *Dashboard) SetTab(t Tab) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tab = t
}

func (d *Dashboard) Tab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// Blank reports whether the dashboard should render nothing yet: the link is
// up and auth or a query is still loading.
func (d *Dashboard) Blank(authLoading bool) bool {
	if d.Offline() {
		return false
	}
	if authLoading {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, q := range queries {
		if d.loading[q] {
			return true
		}
	}
	return false
}

func (d *Dashboard) Offline() bool {
	return d.source.ConnectionStatus() == models.ConnectionClosed
}

func newestFirst(entries []models.Entry) []models.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b models.Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// isCloudID reports whether id was assigned by the server.
func isCloudID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}

// Entries lists what the current tab shows, newest first, narrowed by the
// search text.
func (d *Dashboard) Entries() []models.Entry {
	if d.Offline() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var list []models.Entry
	switch d.tab {
	case TabAll:
		list = newestFirst(d.data[models.EntryFilterAll])
	case TabFavorites:
		list = newestFirst(d.data[models.EntryFilterFavorited])
	case TabCloud:
		for _, e := range newestFirst(d.data[models.EntryFilterAll]) {
			if isCloudID(e.ID) {
				list = append(list, e)
			}
		}
	}

	if d.search == "" {
		return list
	}

	tags := d.tagsByID()
	needle := strings.ToLower(d.search)
	out := make([]models.Entry, 0, len(list))
	for _, e := range list {
		if matches(e, tags[e.ID], needle) {
			out = append(out, e)
		}
	}
	return out
}

// tagsByID indexes the tagged query. Callers hold d.mu.
func (d *Dashboard) tagsByID() map[string][]string {
	tags := make(map[string][]string)
	for _, e := range d.data[models.EntryFilterTagged] {
		tags[e.ID] = e.Tags
	}
	return tags
}

func matches(e models.Entry, tags []string, needle string) bool {
	if strings.Contains(strings.ToLower(e.Content), needle) {
		return true
	}
	for _, t := range slices.Concat(tags, e.Tags) {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// EmptyMessage is the overlay for a tab with no entries.
func (d *Dashboard) EmptyMessage() string {
	tab := d.Tab()
	if tab == TabCloud && d.Offline() {
		return MsgOffline
	}

	switch tab {
	case TabAll:
		return MsgNoEntries
	case TabFavorites:
		return MsgNoFavorites
	case TabCloud:
		return MsgNoCloudEntries
	}
	return MsgNoEntries
}
