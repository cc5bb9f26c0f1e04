// Package subscriptions stores the paid subscriptions mirrored from Stripe.
// A user with at least one row is subscribed.
package subscriptions

import (
	"context"

	"github.com/clipboardhistoryio/companion/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error)
	// Upsert inserts or updates the row keyed by StripeSubscriptionID.
	Upsert(ctx context.Context, sub *models.Subscription) error
	DeleteByStripeID(ctx context.Context, stripeSubscriptionID string) error
}
