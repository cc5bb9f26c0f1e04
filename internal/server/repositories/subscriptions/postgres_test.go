package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clipboardhistoryio/companion/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	listQ   = `(?s)^SELECT\s+id,\s*user_id,\s*stripe_subscription_id,.*FROM\s+subscriptions\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at$`
	upsertQ = `(?s)^INSERT\s+INTO\s+subscriptions\s*\(user_id,\s*stripe_subscription_id,\s*stripe_customer_id,\s*status,\s*current_period_end\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*ON\s+CONFLICT\s*\(stripe_subscription_id\).*$`
)

var cols = []string{"id", "user_id", "stripe_subscription_id", "stripe_customer_id", "status", "current_period_end", "created_at", "updated_at"}

func TestListByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(listQ).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("s-1", "u-1", "sub_1", "cus_1", "active", end, created, created))

	got, err := repo.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)

	want := []*models.Subscription{{
		ID: "s-1", UserID: "u-1", StripeSubscriptionID: "sub_1", StripeCustomerID: "cus_1",
		Status: models.SubscriptionActive, CurrentPeriodEnd: end, CreatedAt: created, UpdatedAt: created,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ListByUser mismatch (-want +got):\n%s", diff)
	}
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(listQ).WithArgs("u-2").WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.ListByUser(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListByUser_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(listQ).WithArgs("u-1").WillReturnError(errors.New("conn reset"))

	_, err := repo.ListByUser(context.Background(), "u-1")
	assert.ErrorContains(t, err, "db error: conn reset")
}

func TestListByUser_RowError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	mock.ExpectQuery(listQ).WithArgs("u-1").WillReturnRows(sqlmock.NewRows(cols).
		AddRow("s-1", "u-1", "sub_1", "", "active", now, now, now).
		RowError(0, errors.New("bad row")))

	_, err := repo.ListByUser(context.Background(), "u-1")
	assert.ErrorContains(t, err, "bad row")
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	end := time.Now().Add(30 * 24 * time.Hour)
	mock.ExpectExec(upsertQ).
		WithArgs("u-1", "sub_1", "cus_1", "trialing", end).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Subscription{
		UserID: "u-1", StripeSubscriptionID: "sub_1", StripeCustomerID: "cus_1",
		Status: models.SubscriptionTrialing, CurrentPeriodEnd: end,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByStripeID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`DELETE FROM subscriptions WHERE stripe_subscription_id = \$1`).
		WithArgs("sub_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByStripeID(context.Background(), "sub_1"))
}

func TestDeleteByStripeID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`DELETE FROM subscriptions`).WillReturnError(errors.New("locked"))

	assert.ErrorContains(t, repo.DeleteByStripeID(context.Background(), "sub_1"), "db error: locked")
}
