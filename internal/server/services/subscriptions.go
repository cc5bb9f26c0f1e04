package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/logging"
	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/repomanager"
)

var ErrNoUserMetadata = errors.New("subscription has no user_id metadata")

// StripeSubscription is the part of a Stripe subscription object the server
// mirrors. UserID comes from the subscription's user_id metadata.
type StripeSubscription struct {
	ID               string
	CustomerID       string
	Status           models.SubscriptionStatus
	UserID           string
	CurrentPeriodEnd time.Time
}

type SubscriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSubscriptionService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SubscriptionService {
	return &SubscriptionService{db: db, repomanager: m, logger: logger.With("module", "subscriptions")}
}

// List returns every subscription record of userID. A non-empty result means
// the user is subscribed.
func (s *SubscriptionService) List(ctx context.Context, userID string) ([]*models.Subscription, error) {
	subs, err := s.repomanager.Subscriptions(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}
	return subs, nil
}

// ApplyStripeSubscription mirrors a subscription event. Live statuses upsert
// the record; any other status removes it.
func (s *SubscriptionService) ApplyStripeSubscription(ctx context.Context, sub StripeSubscription) error {
	repo := s.repomanager.Subscriptions(s.db)

	if !sub.Status.Retained() {
		if err := repo.DeleteByStripeID(ctx, sub.ID); err != nil {
			return fmt.Errorf("error deleting subscription: %w", err)
		}
		s.logger.Info(ctx, "subscription removed", "stripe_subscription_id", sub.ID, "status", sub.Status)
		return nil
	}

	if sub.UserID == "" {
		return ErrNoUserMetadata
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, sub.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("subscription %s user %s: %w", sub.ID, sub.UserID, err)
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	err := repo.Upsert(ctx, &models.Subscription{
		UserID:               sub.UserID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.CustomerID,
		Status:               sub.Status,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
	})
	if err != nil {
		return fmt.Errorf("error storing subscription: %w", err)
	}
	s.logger.Info(ctx, "subscription stored", "stripe_subscription_id", sub.ID, "user_id", sub.UserID, "status", sub.Status)
	return nil
}
