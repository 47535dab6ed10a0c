package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypePurchase EventType = "PURCHASE"
	EventTypeRenew    EventType = "RENEW"
	EventTypeCancel   EventType = "CANCEL"
	EventTypeUnknown  EventType = "UNKNOWN"
)

// ParseEventType maps the provider's type string onto the closed set of
// event kinds. Anything unrecognized comes back as EventTypeUnknown so the
// dispatcher can record the failure instead of missing a map lookup.
func ParseEventType(raw string) EventType {
	switch EventType(raw) {
	case EventTypePurchase:
		return EventTypePurchase
	case EventTypeRenew:
		return EventTypeRenew
	case EventTypeCancel:
		return EventTypeCancel
	default:
		return EventTypeUnknown
	}
}

type ProcessingStatus string

const (
	ProcessingStatusPending   ProcessingStatus = "pending"
	ProcessingStatusProcessed ProcessingStatus = "processed"
	ProcessingStatusFailed    ProcessingStatus = "failed"
)

func ParseProcessingStatus(raw string) (ProcessingStatus, bool) {
	switch ProcessingStatus(raw) {
	case ProcessingStatusPending, ProcessingStatusProcessed, ProcessingStatusFailed:
		return ProcessingStatus(raw), true
	default:
		return "", false
	}
}

// WebhookEvent is the durable record of one provider notification. The
// unique index on NotificationToken is what makes ingestion idempotent.
type WebhookEvent struct {
	ID                uint   `gorm:"primaryKey"`
	NotificationToken string `gorm:"size:128;uniqueIndex;not null"`
	EventType         string `gorm:"size:64;not null"` // stored as received, including unknown types
	TransactionID     string `gorm:"size:64;index;not null"`
	ProductID         string `gorm:"size:128"`

	Amount   decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Currency string              `gorm:"size:8"`

	PurchaseDate *time.Time
	ExpiresDate  *time.Time
	RawPayload   string `gorm:"type:text"`

	ProcessingStatus ProcessingStatus `gorm:"size:32;index;not null;default:pending"`
	ErrorMessage     string           `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
