package repository

import (
	"context"

	"subscription-service/internal/model"

	"gorm.io/gorm"
)

type PeriodRepository interface {
	// Create appends a period inside the caller's transaction so the grant
	// commits or rolls back together with the status change.
	Create(ctx context.Context, tx *gorm.DB, period *model.SubscriptionPeriod) error
	ListBySubscription(ctx context.Context, subscriptionID uint) ([]*model.SubscriptionPeriod, error)
}

type periodRepositoryImpl struct {
	db *gorm.DB
}

func NewPeriodRepository(db *gorm.DB) PeriodRepository {
	return &periodRepositoryImpl{db: db}
}

func (r *periodRepositoryImpl) Create(ctx context.Context, tx *gorm.DB, period *model.SubscriptionPeriod) error {
	if err := period.Validate(); err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(period).Error
}

func (r *periodRepositoryImpl) ListBySubscription(ctx context.Context, subscriptionID uint) ([]*model.SubscriptionPeriod, error) {
	var periods []*model.SubscriptionPeriod
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("starts_at ASC").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}

	return periods, nil
}
