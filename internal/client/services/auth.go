// Package services holds the client application services: the session
// (AuthService) and the backend queries the page and dashboard consume
// (QueryService).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/clipboardhistoryio/companion/internal/client/client"
	"github.com/clipboardhistoryio/companion/internal/client/models"
	"github.com/clipboardhistoryio/companion/internal/client/repositories/metadata"
	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/dbx"
	"github.com/clipboardhistoryio/companion/internal/logging"
)

// AuthState is the session as the page sees it. IsLoading stays true until
// the persisted session has been restored or found absent.
type AuthState struct {
	User      *models.User
	IsLoading bool
}

// AuthService owns the session: it signs in with magic codes, keeps the
// refresh token in the local store and notifies subscribers on change.
type AuthService struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger

	mu     sync.Mutex
	state  AuthState
	subs   map[int]func(AuthState)
	nextID int
}

func NewAuthService(c client.Client, db *sql.DB, logger logging.Logger) *AuthService {
	a := &AuthService{
		client: c,
		db:     db,
		logger: logger.With("module", "auth"),
		state:  AuthState{IsLoading: true},
		subs:   map[int]func(AuthState){},
	}
	c.OnRefresh(func(t client.Tokens) {
		if err := a.saveRefreshToken(context.Background(), t.RefreshToken); err != nil {
			a.logger.Error(context.Background(), "failed to persist rotated refresh token", "error", err)
		}
	})
	return a
}

func (a *AuthService) metadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (a *AuthService) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (a *AuthService) Subscribe(fn func(AuthState)) (cancel func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	a.subs[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

func (a *AuthService) setState(s AuthState) {
	a.mu.Lock()
	a.state = s
	fns := make([]func(AuthState), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (a *AuthService) SendMagicCode(ctx context.Context, email string) error {
	return a.client.SendMagicCode(ctx, email)
}

// SignInWithMagicCode exchanges the code for a session and persists it. A
// failure to persist is logged; the session still holds for this run.
func (a *AuthService) SignInWithMagicCode(ctx context.Context, email, code string) error {
	user, err := a.client.SignInWithMagicCode(ctx, email, code)
	if err != nil {
		return err
	}

	if err := a.saveSession(ctx, user, a.client.Tokens().RefreshToken); err != nil {
		a.logger.Error(ctx, "failed to persist session", "error", err)
	}

	a.logger.Info(ctx, "signed in", "user_id", user.ID)
	a.setState(AuthState{User: user})
	return nil
}

// Restore re-establishes the session from the stored refresh token. With no
// stored token the state becomes signed out. While the server is unreachable
// the state stays loading and client.ErrUnavailable is returned so the
// caller can retry.
func (a *AuthService) Restore(ctx context.Context) error {
	refreshToken, err := a.metadataRepo(a.db).Get(ctx, metadata.KeyRefreshToken)
	if errors.Is(err, common.ErrorNotFound) {
		a.setState(AuthState{})
		return nil
	}
	if err != nil {
		a.setState(AuthState{})
		return fmt.Errorf("read stored session: %w", err)
	}

	a.client.SetTokens(client.Tokens{RefreshToken: refreshToken})

	user, err := a.client.RefreshSession(ctx)
	switch {
	case err == nil:
	case errors.Is(err, client.ErrUnavailable):
		return err
	default:
		a.logger.Warn(ctx, "stored session rejected", "error", err)
		a.client.SetTokens(client.Tokens{})
		if cerr := a.clearSession(ctx); cerr != nil {
			a.logger.Error(ctx, "failed to clear stored session", "error", cerr)
		}
		a.setState(AuthState{})
		return nil
	}

	if err := a.saveSession(ctx, user, a.client.Tokens().RefreshToken); err != nil {
		a.logger.Error(ctx, "failed to persist session", "error", err)
	}

	a.logger.Info(ctx, "session restored", "user_id", user.ID)
	a.setState(AuthState{User: user})
	return nil
}

// SignOut drops the tokens and the stored session.
func (a *AuthService) SignOut(ctx context.Context) error {
	a.client.SetTokens(client.Tokens{})
	err := a.clearSession(ctx)
	a.setState(AuthState{})
	if err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}
	return nil
}

func (a *AuthService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *AuthService) Close() error {
	return a.client.Close()
}

func (a *AuthService) saveSession(ctx context.Context, user *models.User, refreshToken string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.metadataRepo(tx)
		if err := repo.Set(ctx, metadata.KeyRefreshToken, refreshToken); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyUserID, user.ID); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyUserEmail, user.Email)
	})
}

func (a *AuthService) saveRefreshToken(ctx context.Context, refreshToken string) error {
	return a.metadataRepo(a.db).Set(ctx, metadata.KeyRefreshToken, refreshToken)
}

func (a *AuthService) clearSession(ctx context.Context) error {
	return a.metadataRepo(a.db).Delete(ctx, metadata.KeyRefreshToken, metadata.KeyUserID, metadata.KeyUserEmail)
}
