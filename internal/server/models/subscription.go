package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Retained reports whether a record with this status should exist. A user
// with at least one retained record is a subscriber.
func (s SubscriptionStatus) Retained() bool {
	switch s {
	case SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue:
		return true
	default:
		return false
	}
}

type Subscription struct {
	ID                   string
	UserID               string
	StripeSubscriptionID string
	StripeCustomerID     string
	Status               SubscriptionStatus
	CurrentPeriodEnd     time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
