package dto

import (
	"time"

	"subscription-service/internal/model"

	"github.com/shopspring/decimal"
)

// WebhookNotification is the provider payload as the dispatcher consumes it.
// Field names follow the provider's snake_case wire format.
type WebhookNotification struct {
	NotificationToken string              `json:"notification_uuid" validate:"required"`
	Type              string              `json:"type" validate:"required"`
	TransactionID     string              `json:"transaction_id" validate:"required"`
	ProductID         string              `json:"product_id"`
	Amount            decimal.NullDecimal `json:"amount"`
	Currency          string              `json:"currency"`
	PurchaseDate      *time.Time          `json:"purchase_date"`
	ExpiresDate       *time.Time          `json:"expires_date"`
}

type CreateSubscriptionRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	TransactionID string `json:"transaction_id" validate:"required"`
	ProductID     string `json:"product_id" validate:"required"`
}

type SubscriptionResponse struct {
	TransactionID      string     `json:"transaction_id"`
	UserID             string     `json:"user_id"`
	ProductID          string     `json:"product_id"`
	Status             string     `json:"status"`
	Watchable          bool       `json:"watchable"`
	CurrentPeriodStart *time.Time `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func NewSubscriptionResponse(sub *model.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		TransactionID:      sub.TransactionID,
		UserID:             sub.UserID,
		ProductID:          sub.ProductID,
		Status:             string(sub.Status),
		Watchable:          sub.Watchable(time.Now()),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelledAt:        sub.CancelledAt,
		CreatedAt:          sub.CreatedAt,
		UpdatedAt:          sub.UpdatedAt,
	}
}

type WebhookEventResponse struct {
	NotificationToken string     `json:"notification_uuid"`
	EventType         string     `json:"event_type"`
	TransactionID     string     `json:"transaction_id"`
	ProcessingStatus  string     `json:"processing_status"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	PurchaseDate      *time.Time `json:"purchase_date"`
	ExpiresDate       *time.Time `json:"expires_date"`
	CreatedAt         time.Time  `json:"created_at"`
}

func NewWebhookEventResponse(ev *model.WebhookEvent) *WebhookEventResponse {
	return &WebhookEventResponse{
		NotificationToken: ev.NotificationToken,
		EventType:         ev.EventType,
		TransactionID:     ev.TransactionID,
		ProcessingStatus:  string(ev.ProcessingStatus),
		ErrorMessage:      ev.ErrorMessage,
		PurchaseDate:      ev.PurchaseDate,
		ExpiresDate:       ev.ExpiresDate,
		CreatedAt:         ev.CreatedAt,
	}
}
