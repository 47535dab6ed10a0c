package service

import (
	"context"
	"errors"
	"fmt"

	"subscription-service/internal/model"
	"subscription-service/internal/repository"

	"gorm.io/gorm"
)

type SubscriptionService interface {
	// CreateProvisional is idempotent on transactionID: a replay or a lost
	// creation race returns the existing row as success.
	CreateProvisional(ctx context.Context, userID, transactionID, productID string) (*model.Subscription, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Subscription, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*model.Subscription, error)
}

type subscriptionServiceImpl struct {
	subscriptionRepo repository.SubscriptionRepository
}

func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository) SubscriptionService {
	return &subscriptionServiceImpl{
		subscriptionRepo: subscriptionRepo,
	}
}

func (s *subscriptionServiceImpl) CreateProvisional(ctx context.Context, userID, transactionID, productID string) (*model.Subscription, error) {
	existing, err := s.subscriptionRepo.FindByTransactionID(ctx, transactionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup subscription: %w", err)
	}

	sub := &model.Subscription{
		UserID:        userID,
		TransactionID: transactionID,
		ProductID:     productID,
		Status:        model.StatusProvisional,
	}

	err = s.subscriptionRepo.Create(ctx, sub)
	if err == nil {
		return sub, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the creation race; the winner's row is our result.
		return s.subscriptionRepo.FindByTransactionID(ctx, transactionID)
	}

	return nil, fmt.Errorf("create provisional subscription: %w", err)
}

func (s *subscriptionServiceImpl) GetByTransactionID(ctx context.Context, transactionID string) (*model.Subscription, error) {
	return s.subscriptionRepo.FindByTransactionID(ctx, transactionID)
}

func (s *subscriptionServiceImpl) List(ctx context.Context, filter repository.ListFilter) ([]*model.Subscription, error) {
	return s.subscriptionRepo.List(ctx, filter)
}
