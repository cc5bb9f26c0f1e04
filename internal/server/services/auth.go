// Package services contains the server-side business logic behind the gRPC
// and webhook transports.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/cryptox"
	"github.com/clipboardhistoryio/companion/internal/dbx"
	"github.com/clipboardhistoryio/companion/internal/logging"
	"github.com/clipboardhistoryio/companion/internal/server/auth"
	"github.com/clipboardhistoryio/companion/internal/server/config"
	"github.com/clipboardhistoryio/companion/internal/server/mailer"
	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/clipboardhistoryio/companion/internal/server/ratelimit"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type SignInResult struct {
	User   *models.User
	Tokens *TokenPair
}

// newCode is a seam for tests.
var newCode = func() (string, error) {
	return common.MakeNumericCode(common.CodeLength)
}

var verifyCode = cryptox.VerifyCode

// AuthService implements passwordless sign-in: a six-digit code is mailed to
// the address and exchanged for a token pair.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Mailer
	limiter     ratelimit.Limiter
	logger      logging.Logger

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	codeTTL                      time.Duration
	maxAttempts                  int

	now func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer, l ratelimit.Limiter,
	cfg *config.Config, logger logging.Logger) *AuthService {
	if l == nil {
		l = ratelimit.Noop{}
	}
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		mailer:                       ml,
		limiter:                      l,
		logger:                       logger.With("module", "auth"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		codeTTL:                      cfg.MagicCodeTTL,
		maxAttempts:                  cfg.MagicCodeMaxAttempts,
		now:                          time.Now,
	}
}

// validEmail normalizes email and checks that it is a bare address.
func validEmail(email string) (string, error) {
	email = common.NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.ErrInvalidEmail
	}
	return email, nil
}

// SendMagicCode issues a new code for email, replacing any pending one, and
// mails it.
func (s *AuthService) SendMagicCode(ctx context.Context, email string) error {
	email, err := validEmail(email)
	if err != nil {
		return err
	}

	if err := s.limiter.Allow(ctx, email); err != nil {
		return err
	}

	code, err := newCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	hash, salt := cryptox.HashCode(code)
	now := s.now()
	err = s.repomanager.MagicCodes(s.db).Replace(ctx, &models.MagicCode{
		Email:     email,
		CodeHash:  hash,
		Salt:      salt,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("error storing magic code: %w", err)
	}

	if err := s.mailer.SendMagicCode(ctx, email, code); err != nil {
		return fmt.Errorf("error sending magic code: %w", err)
	}

	s.logger.Info(ctx, "magic code issued", "email", email)
	return nil
}

// SignInWithMagicCode exchanges a pending code for a token pair, creating
// the user on first sign-in. Every rejection is common.ErrInvalidCode.
func (s *AuthService) SignInWithMagicCode(ctx context.Context, email, code string) (*SignInResult, error) {
	email, err := validEmail(email)
	if err != nil {
		return nil, err
	}
	if len(code) != common.CodeLength {
		return nil, common.ErrInvalidCode
	}

	pending, err := s.repomanager.MagicCodes(s.db).Claim(ctx, email, s.maxAttempts, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCode
		}
		return nil, fmt.Errorf("error claiming magic code attempt: %w", err)
	}

	if !verifyCode(code, pending.CodeHash, pending.Salt) {
		s.logger.Info(ctx, "magic code rejected", "email", email, "attempts", pending.Attempts)
		return nil, common.ErrInvalidCode
	}

	result := &SignInResult{}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.MagicCodes(tx).Delete(ctx, email); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidCode
			}
			return fmt.Errorf("error deleting magic code: %w", err)
		}

		user, err := s.repomanager.Users(tx).Upsert(ctx, email)
		if err != nil {
			return fmt.Errorf("error upserting user: %w", err)
		}
		result.User = user

		result.Tokens, err = s.generateTokenPair(ctx, user, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed in", "user_id", result.User.ID)
	return result, nil
}

// RefreshToken rotates refreshToken and returns the owner with a fresh pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*SignInResult, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	result := &SignInResult{}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		result.User = user
		result.Tokens, err = s.generateTokenPair(ctx, user, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, db dbx.DBTX) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
