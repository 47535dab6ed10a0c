package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPeriod is one entitlement grant. Rows are append-only and
// ordered by StartsAt for audit replay.
type SubscriptionPeriod struct {
	ID             uint      `gorm:"primaryKey"`
	SubscriptionID uint      `gorm:"index;index:idx_periods_subscription_starts,priority:1;not null"`
	EventType      EventType `gorm:"size:32;not null"` // PURCHASE or RENEW

	Amount   decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Currency string              `gorm:"size:8"`

	StartsAt time.Time `gorm:"index:idx_periods_subscription_starts,priority:2;not null"`
	EndsAt   time.Time `gorm:"not null"`

	CreatedAt time.Time
}

func (p *SubscriptionPeriod) Validate() error {
	if p.EventType != EventTypePurchase && p.EventType != EventTypeRenew {
		return fmt.Errorf("period event type must be PURCHASE or RENEW, got %q", p.EventType)
	}
	if !p.EndsAt.After(p.StartsAt) {
		return fmt.Errorf("period ends_at must be after starts_at")
	}
	if p.Amount.Valid && p.Amount.Decimal.IsNegative() {
		return fmt.Errorf("period amount must not be negative")
	}
	return nil
}
