package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"subscription-service/internal/dto"
	"subscription-service/internal/model"
	"subscription-service/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUnknownEventType     = errors.New("unknown event type")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrMissingPeriodDates   = errors.New("notification is missing purchase or expires date")
)

// Outcome is the dispatcher's true result. The HTTP boundary maps all of
// these to a 200 so the provider never retries non-transient failures.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeDuplicate
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "failure"
	}
}

type Result struct {
	Outcome Outcome
	Err     error
}

type WebhookService interface {
	ProcessEvent(ctx context.Context, n *dto.WebhookNotification) Result
	ListEvents(ctx context.Context, status model.ProcessingStatus) ([]*model.WebhookEvent, error)
}

type webhookServiceImpl struct {
	db               *gorm.DB
	eventRepo        repository.WebhookEventRepository
	subscriptionRepo repository.SubscriptionRepository
	periodRepo       repository.PeriodRepository
	logger           *zap.Logger
}

func NewWebhookService(
	db *gorm.DB,
	eventRepo repository.WebhookEventRepository,
	subscriptionRepo repository.SubscriptionRepository,
	periodRepo repository.PeriodRepository,
	logger *zap.Logger,
) WebhookService {
	return &webhookServiceImpl{
		db:               db,
		eventRepo:        eventRepo,
		subscriptionRepo: subscriptionRepo,
		periodRepo:       periodRepo,
		logger:           logger,
	}
}

// ProcessEvent applies one provider notification exactly once. The event row
// is the idempotency gate: it is created first, survives any handler failure,
// and ends in exactly one of processed or failed.
func (s *webhookServiceImpl) ProcessEvent(ctx context.Context, n *dto.WebhookNotification) Result {
	rawPayload, _ := json.Marshal(n)

	event := &model.WebhookEvent{
		NotificationToken: n.NotificationToken,
		EventType:         n.Type,
		TransactionID:     n.TransactionID,
		ProductID:         n.ProductID,
		Amount:            n.Amount,
		Currency:          n.Currency,
		PurchaseDate:      n.PurchaseDate,
		ExpiresDate:       n.ExpiresDate,
		RawPayload:        string(rawPayload),
		ProcessingStatus:  model.ProcessingStatusPending,
	}

	created, err := s.eventRepo.RecordIfNew(ctx, event)
	if err != nil {
		return Result{Outcome: OutcomeFailure, Err: fmt.Errorf("record webhook event: %w", err)}
	}
	if !created {
		s.logger.Info("duplicate webhook notification ignored",
			zap.String("notification_token", n.NotificationToken))
		return Result{Outcome: OutcomeDuplicate}
	}

	eventType := model.ParseEventType(n.Type)
	if eventType == model.EventTypeUnknown {
		return s.fail(ctx, event, fmt.Errorf("%w: %s", ErrUnknownEventType, n.Type))
	}

	// Status change and period append commit or roll back together. The
	// event row was created outside this transaction on purpose: a failed
	// handler must still leave evidence of the attempt.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch eventType {
		case model.EventTypePurchase:
			return s.applyPurchase(ctx, tx, n)
		case model.EventTypeRenew:
			return s.applyRenew(ctx, tx, n)
		case model.EventTypeCancel:
			return s.applyCancel(ctx, tx, n)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownEventType, n.Type)
		}
	})
	if err != nil {
		return s.fail(ctx, event, err)
	}

	if err := s.eventRepo.MarkProcessed(ctx, event.ID); err != nil {
		return Result{Outcome: OutcomeFailure, Err: fmt.Errorf("mark event processed: %w", err)}
	}

	return Result{Outcome: OutcomeSuccess}
}

func (s *webhookServiceImpl) ListEvents(ctx context.Context, status model.ProcessingStatus) ([]*model.WebhookEvent, error) {
	return s.eventRepo.ListByStatus(ctx, status)
}

func (s *webhookServiceImpl) fail(ctx context.Context, event *model.WebhookEvent, cause error) Result {
	s.logger.Error("webhook processing failed",
		zap.String("notification_token", event.NotificationToken),
		zap.String("event_type", event.EventType),
		zap.String("transaction_id", event.TransactionID),
		zap.Error(cause))

	if err := s.eventRepo.MarkFailed(ctx, event.ID, cause.Error()); err != nil {
		s.logger.Error("mark event failed", zap.Uint("event_id", event.ID), zap.Error(err))
	}

	return Result{Outcome: OutcomeFailure, Err: cause}
}

func (s *webhookServiceImpl) findSubscription(ctx context.Context, tx *gorm.DB, transactionID string) (*model.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByTransactionIDTx(ctx, tx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, transactionID)
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return sub, nil
}

func (s *webhookServiceImpl) applyPurchase(ctx context.Context, tx *gorm.DB, n *dto.WebhookNotification) error {
	sub, err := s.findSubscription(ctx, tx, n.TransactionID)
	if err != nil {
		return err
	}

	if !sub.Transition(model.EventActivate) {
		// Already active (likely a resent purchase with a fresh token).
		s.skip(sub, model.EventActivate, n)
		return nil
	}

	if n.PurchaseDate == nil || n.ExpiresDate == nil {
		return ErrMissingPeriodDates
	}

	sub.CurrentPeriodStart = n.PurchaseDate
	sub.CurrentPeriodEnd = n.ExpiresDate

	if err := s.subscriptionRepo.Save(ctx, tx, sub); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}

	return s.appendPeriod(ctx, tx, sub, model.EventTypePurchase, n)
}

func (s *webhookServiceImpl) applyRenew(ctx context.Context, tx *gorm.DB, n *dto.WebhookNotification) error {
	sub, err := s.findSubscription(ctx, tx, n.TransactionID)
	if err != nil {
		return err
	}

	if !sub.Transition(model.EventRenew) {
		s.skip(sub, model.EventRenew, n)
		return nil
	}

	if n.PurchaseDate == nil || n.ExpiresDate == nil {
		return ErrMissingPeriodDates
	}

	sub.CurrentPeriodStart = n.PurchaseDate
	sub.CurrentPeriodEnd = n.ExpiresDate

	if err := s.subscriptionRepo.Save(ctx, tx, sub); err != nil {
		return fmt.Errorf("renew subscription: %w", err)
	}

	return s.appendPeriod(ctx, tx, sub, model.EventTypeRenew, n)
}

func (s *webhookServiceImpl) applyCancel(ctx context.Context, tx *gorm.DB, n *dto.WebhookNotification) error {
	sub, err := s.findSubscription(ctx, tx, n.TransactionID)
	if err != nil {
		return err
	}

	if !sub.Transition(model.EventCancel) {
		s.skip(sub, model.EventCancel, n)
		return nil
	}

	now := time.Now()
	sub.CancelledAt = &now
	// Entitlement runs through the already-paid period.
	if n.ExpiresDate != nil {
		sub.CurrentPeriodEnd = n.ExpiresDate
	}

	if err := s.subscriptionRepo.Save(ctx, tx, sub); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}

	return nil
}

func (s *webhookServiceImpl) appendPeriod(ctx context.Context, tx *gorm.DB, sub *model.Subscription, eventType model.EventType, n *dto.WebhookNotification) error {
	period := &model.SubscriptionPeriod{
		SubscriptionID: sub.ID,
		EventType:      eventType,
		Amount:         n.Amount,
		Currency:       n.Currency,
		StartsAt:       *n.PurchaseDate,
		EndsAt:         *n.ExpiresDate,
	}

	if err := s.periodRepo.Create(ctx, tx, period); err != nil {
		return fmt.Errorf("append subscription period: %w", err)
	}

	return nil
}

// skip logs an illegal transition that is deliberately ignored. The event is
// still marked processed so replays stay deduplicated.
func (s *webhookServiceImpl) skip(sub *model.Subscription, event model.LifecycleEvent, n *dto.WebhookNotification) {
	s.logger.Warn("transition not allowed from current status, ignoring event",
		zap.String("transaction_id", sub.TransactionID),
		zap.String("status", string(sub.Status)),
		zap.String("lifecycle_event", string(event)),
		zap.String("notification_token", n.NotificationToken))
}
