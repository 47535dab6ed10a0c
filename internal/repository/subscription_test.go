package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"subscription-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSubscriptionRepository_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	sub := &model.Subscription{
		UserID:        "user_1",
		TransactionID: "txn_100",
		ProductID:     "com.example.subscription.monthly",
		Status:        model.StatusProvisional,
	}
	require.NoError(t, repo.Create(ctx, sub))

	dup := &model.Subscription{
		UserID:        "user_2",
		TransactionID: "txn_100",
		ProductID:     "com.example.subscription.monthly",
		Status:        model.StatusProvisional,
	}
	err := repo.Create(ctx, dup)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "duplicate transaction id must surface as gorm.ErrDuplicatedKey, got %v", err)

	found, err := repo.FindByTransactionID(ctx, "txn_100")
	require.NoError(t, err)
	assert.Equal(t, "user_1", found.UserID)
}

func TestSubscriptionRepository_FindByTransactionID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)

	_, err := repo.FindByTransactionID(context.Background(), "txn_nonexistent")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestSubscriptionRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()
	now := time.Now()
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	seed := []*model.Subscription{
		{UserID: "alice", TransactionID: "txn_1", ProductID: "p", Status: model.StatusActive, CurrentPeriodEnd: &future},
		{UserID: "alice", TransactionID: "txn_2", ProductID: "p", Status: model.StatusCancelled, CurrentPeriodEnd: &future},
		{UserID: "alice", TransactionID: "txn_3", ProductID: "p", Status: model.StatusActive, CurrentPeriodEnd: &past},
		{UserID: "alice", TransactionID: "txn_4", ProductID: "p", Status: model.StatusProvisional},
		{UserID: "bob", TransactionID: "txn_5", ProductID: "p", Status: model.StatusActive, CurrentPeriodEnd: &future},
	}
	for _, sub := range seed {
		require.NoError(t, repo.Create(ctx, sub))
	}

	transactionIDs := func(subs []*model.Subscription) []string {
		ids := make([]string, len(subs))
		for i, s := range subs {
			ids[i] = s.TransactionID
		}
		return ids
	}

	t.Run("by user", func(t *testing.T) {
		subs, err := repo.List(ctx, ListFilter{UserID: "alice"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"txn_1", "txn_2", "txn_3", "txn_4"}, transactionIDs(subs))
	})

	t.Run("by status", func(t *testing.T) {
		subs, err := repo.List(ctx, ListFilter{Status: model.StatusProvisional})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"txn_4"}, transactionIDs(subs))
	})

	t.Run("viewable only", func(t *testing.T) {
		// Active or cancelled with a period covering now; a lapsed active
		// row and a provisional row are excluded.
		subs, err := repo.List(ctx, ListFilter{Viewable: true, Now: now})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"txn_1", "txn_2", "txn_5"}, transactionIDs(subs))
	})

	t.Run("viewable for one user", func(t *testing.T) {
		subs, err := repo.List(ctx, ListFilter{UserID: "bob", Viewable: true, Now: now})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"txn_5"}, transactionIDs(subs))
	})
}
