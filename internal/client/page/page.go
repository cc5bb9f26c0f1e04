// Package page wires the sign-in flow and the subscription gate to the
// session and decides what the companion shows.
package page

import (
	"context"

	"github.com/clipboardhistoryio/companion/internal/client/gate"
	"github.com/clipboardhistoryio/companion/internal/client/services"
	"github.com/clipboardhistoryio/companion/internal/client/signin"
	"github.com/clipboardhistoryio/companion/internal/logging"
)

// Auth is the session as the page needs it.
type Auth interface {
	signin.Auth
	State() services.AuthState
}

type Page struct {
	auth Auth
	flow *signin.Flow
	gate *gate.Gate
}

func New(auth Auth, q gate.Querier, nav gate.Navigator, baseURL string, logger logging.Logger) *Page {
	p := &Page{
		auth: auth,
		flow: signin.New(auth, logger),
		gate: gate.New(q, nav, baseURL, logger),
	}
	// a new session needs a fresh subscription check
	p.flow.OnSignedIn(p.gate.Reset)
	return p
}

func (p *Page) Flow() *signin.Flow { return p.flow }

// Refresh runs the subscription check for the current session, if it has
// not run yet.
func (p *Page) Refresh(ctx context.Context) {
	st := p.auth.State()
	if st.IsLoading {
		return
	}
	p.gate.Sync(ctx, st.User)
}

func (p *Page) Retry(ctx context.Context) {
	p.gate.Retry(ctx)
}

func (p *Page) View() gate.View {
	st := p.auth.State()
	return gate.Decide(gate.RenderInput{
		AuthLoading:         st.IsLoading,
		HasUser:             st.User != nil,
		SubscriptionLoading: p.gate.Loading(),
		CheckFailed:         p.gate.Err() != nil,
	})
}

// CheckErr is the failure shown by gate.ViewCheckFailed.
func (p *Page) CheckErr() error {
	return p.gate.Err()
}
