package repository

import (
	"context"
	"time"

	"subscription-service/internal/model"

	"gorm.io/gorm"
)

// ListFilter narrows subscription list queries. Zero values mean "no filter".
type ListFilter struct {
	UserID   string
	Status   model.Status
	Viewable bool      // only active/cancelled rows whose period covers Now
	Now      time.Time // reference time for Viewable; defaults to time.Now
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Subscription, error)
	// FindByTransactionIDTx reads through the caller's transaction so handler
	// mutations see a consistent row.
	FindByTransactionIDTx(ctx context.Context, tx *gorm.DB, transactionID string) (*model.Subscription, error)
	Save(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error
	List(ctx context.Context, filter ListFilter) ([]*model.Subscription, error)
}

type subscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepositoryImpl{db: db}
}

func (r *subscriptionRepositoryImpl) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepositoryImpl) FindByTransactionID(ctx context.Context, transactionID string) (*model.Subscription, error) {
	return r.findByTransactionID(ctx, r.db, transactionID)
}

func (r *subscriptionRepositoryImpl) FindByTransactionIDTx(ctx context.Context, tx *gorm.DB, transactionID string) (*model.Subscription, error) {
	return r.findByTransactionID(ctx, tx, transactionID)
}

func (r *subscriptionRepositoryImpl) findByTransactionID(ctx context.Context, db *gorm.DB, transactionID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&sub).
		Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepositoryImpl) Save(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	return tx.WithContext(ctx).Save(sub).Error
}

func (r *subscriptionRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]*model.Subscription, error) {
	query := r.db.WithContext(ctx).Model(&model.Subscription{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Viewable {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		query = query.
			Where("status IN ?", []model.Status{model.StatusActive, model.StatusCancelled}).
			Where("current_period_end > ?", now)
	}

	var subs []*model.Subscription
	if err := query.Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, err
	}

	return subs, nil
}
