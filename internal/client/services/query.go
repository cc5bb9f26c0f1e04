package services

import (
	"context"
	"fmt"

	"github.com/clipboardhistoryio/companion/internal/client/client"
	"github.com/clipboardhistoryio/companion/internal/client/models"
)

// QueryService runs the backend queries of the signed-in user.
type QueryService struct {
	client client.Client
}

func NewQueryService(c client.Client) *QueryService {
	return &QueryService{client: c}
}

// QuerySubscriptions is the point query behind the subscription gate.
func (q *QueryService) QuerySubscriptions(ctx context.Context) ([]models.Subscription, error) {
	subs, err := q.client.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	return subs, nil
}

func (q *QueryService) QueryEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	entries, err := q.client.ListEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query %s entries: %w", filter, err)
	}
	return entries, nil
}

func (q *QueryService) AddEntry(ctx context.Context, content string, tags []string, favorited bool) (*models.Entry, error) {
	return q.client.AddEntry(ctx, content, tags, favorited)
}

func (q *QueryService) SetFavorite(ctx context.Context, id string, favorited bool) error {
	return q.client.SetFavorite(ctx, id, favorited)
}

func (q *QueryService) ConnectionStatus() models.ConnectionStatus {
	return q.client.ConnectionStatus()
}
