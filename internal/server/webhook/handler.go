package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/logging"
	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/clipboardhistoryio/companion/internal/server/services"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"
)

const (
	maxBodyBytes      = 64 << 10
	signatureHeader   = "Stripe-Signature"
	userIDMetadataKey = "user_id"
)

type SubscriptionApplier interface {
	ApplyStripeSubscription(ctx context.Context, sub services.StripeSubscription) error
}

type Handler struct {
	subs   SubscriptionApplier
	secret string
	logger logging.Logger
}

func NewHandler(subs SubscriptionApplier, secret string, logger logging.Logger) *Handler {
	return &Handler{subs: subs, secret: secret, logger: logger.With("module", "webhook")}
}

func toStripeSubscription(eventType string, sub *stripe.Subscription) services.StripeSubscription {
	out := services.StripeSubscription{
		ID:     sub.ID,
		Status: models.SubscriptionStatus(sub.Status),
		UserID: sub.Metadata[userIDMetadataKey],
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if eventType == "customer.subscription.deleted" {
		out.Status = models.SubscriptionCanceled
	}
	return out
}

// handleStripe verifies the signature and mirrors subscription events.
// Events that can never succeed are acknowledged so Stripe stops retrying;
// storage failures return 500 so it retries.
func (h *Handler) handleStripe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn(ctx, "failed to read webhook body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(body, r.Header.Get(signatureHeader), h.secret)
	if err != nil {
		h.logger.Warn(ctx, "rejected webhook", "error", err)
		http.Error(w, "bad signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
	default:
		h.logger.Debug(ctx, "ignored webhook event", "type", event.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Warn(ctx, "malformed subscription payload", "error", err)
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	err = h.subs.ApplyStripeSubscription(ctx, toStripeSubscription(event.Type, &sub))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, services.ErrNoUserMetadata), errors.Is(err, common.ErrorNotFound):
		h.logger.Warn(ctx, "subscription without a known user", "stripe_subscription_id", sub.ID, "error", err)
		w.WriteHeader(http.StatusOK)
	default:
		h.logger.Error(ctx, "failed to apply subscription", "stripe_subscription_id", sub.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
