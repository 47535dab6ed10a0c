package model

import "time"

type Status string

const (
	StatusProvisional Status = "provisional"
	StatusActive      Status = "active"
	StatusCancelled   Status = "cancelled"
	StatusExpired     Status = "expired"
)

// LifecycleEvent is something that may move a subscription between statuses.
type LifecycleEvent string

const (
	EventActivate LifecycleEvent = "activate"
	EventRenew    LifecycleEvent = "renew"
	EventCancel   LifecycleEvent = "cancel"
	EventExpire   LifecycleEvent = "expire"
)

// transitions is the single authority on legal status changes.
// Anything not listed here is refused.
var transitions = map[LifecycleEvent]map[Status]Status{
	EventActivate: {
		StatusProvisional: StatusActive,
	},
	EventRenew: {
		StatusActive: StatusActive,
	},
	EventCancel: {
		StatusActive: StatusCancelled,
	},
	EventExpire: {
		StatusProvisional: StatusExpired,
		StatusCancelled:   StatusExpired,
	},
}

// NextStatus returns the status a subscription in `from` would move to on
// `event`, and whether that transition is legal at all.
func NextStatus(from Status, event LifecycleEvent) (Status, bool) {
	to, ok := transitions[event][from]
	return to, ok
}

type Subscription struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        string `gorm:"size:64;index;index:idx_subscriptions_user_status;not null"`
	TransactionID string `gorm:"size:64;uniqueIndex;not null"` // provider transaction id, identity of the lineage
	ProductID     string `gorm:"size:128;not null"`
	Status        Status `gorm:"size:32;index;index:idx_subscriptions_user_status;not null;default:provisional"`

	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelledAt        *time.Time

	Periods []SubscriptionPeriod `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransition reports whether applying event to the current status is legal.
func (s *Subscription) CanTransition(event LifecycleEvent) bool {
	_, ok := NextStatus(s.Status, event)
	return ok
}

// Transition applies event if legal and reports whether it did. The caller
// treats a refused transition as a no-op, not an error.
func (s *Subscription) Transition(event LifecycleEvent) bool {
	next, ok := NextStatus(s.Status, event)
	if !ok {
		return false
	}
	s.Status = next
	return true
}

// Watchable reports whether the subscription grants access at `now`.
// A cancelled subscription stays watchable until its paid period ends.
func (s *Subscription) Watchable(now time.Time) bool {
	if s.Status != StatusActive && s.Status != StatusCancelled {
		return false
	}
	return s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.After(now)
}
