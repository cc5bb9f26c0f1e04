package subscriptions

import (
	"context"
	"fmt"

	"github.com/clipboardhistoryio/companion/internal/dbx"
	"github.com/clipboardhistoryio/companion/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	query := `
		SELECT id, user_id, stripe_subscription_id, stripe_customer_id, status, current_period_end, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Subscription
	for rows.Next() {
		s := &models.Subscription{}
		var status string
		if err := rows.Scan(&s.ID, &s.UserID, &s.StripeSubscriptionID, &s.StripeCustomerID,
			&status, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.Status = models.SubscriptionStatus(status)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, stripe_subscription_id, stripe_customer_id, status, current_period_end)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (stripe_subscription_id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    stripe_customer_id = EXCLUDED.stripe_customer_id,
		    status = EXCLUDED.status,
		    current_period_end = EXCLUDED.current_period_end,
		    updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, query,
		sub.UserID, sub.StripeSubscriptionID, sub.StripeCustomerID, string(sub.Status), sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByStripeID(ctx context.Context, stripeSubscriptionID string) error {
	query := `DELETE FROM subscriptions WHERE stripe_subscription_id = $1`
	if _, err := r.db.ExecContext(ctx, query, stripeSubscriptionID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
