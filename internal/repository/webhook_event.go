package repository

import (
	"context"
	"errors"

	"subscription-service/internal/model"

	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	// RecordIfNew inserts the event and reports whether this call created
	// it. A duplicate notification token is not an error: the event comes
	// back with created=false and must be treated as already handled.
	RecordIfNew(ctx context.Context, event *model.WebhookEvent) (created bool, err error)
	MarkProcessed(ctx context.Context, eventID uint) error
	MarkFailed(ctx context.Context, eventID uint, reason string) error
	ListByStatus(ctx context.Context, status model.ProcessingStatus) ([]*model.WebhookEvent, error)
}

type webhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepositoryImpl{db: db}
}

func (r *webhookEventRepositoryImpl) RecordIfNew(ctx context.Context, event *model.WebhookEvent) (bool, error) {
	err := r.db.WithContext(ctx).Create(event).Error
	if err == nil {
		return true, nil
	}
	// The unique index on notification_token is the duplicate gate. Losing
	// the insert race means another delivery already owns this token.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return false, err
}

func (r *webhookEventRepositoryImpl) MarkProcessed(ctx context.Context, eventID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("id = ?", eventID).
		Update("processing_status", model.ProcessingStatusProcessed).
		Error
}

func (r *webhookEventRepositoryImpl) MarkFailed(ctx context.Context, eventID uint, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"processing_status": model.ProcessingStatusFailed,
			"error_message":     reason,
		}).Error
}

func (r *webhookEventRepositoryImpl) ListByStatus(ctx context.Context, status model.ProcessingStatus) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("processing_status = ?", status).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}
