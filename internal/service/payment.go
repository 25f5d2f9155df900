package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/model"
	"github.com/hasan-mia/manufacturer-server/internal/payment"
	"github.com/hasan-mia/manufacturer-server/internal/repository"
)

// PaymentService drives the two halves of a card payment: creating the
// payment intent before checkout, and recording the completed payment
// against its order afterwards.
type PaymentService struct {
	provider payment.IntentCreator
	docs     repository.DocumentRepository
	logger   *slog.Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(provider payment.IntentCreator, docs repository.DocumentRepository, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		provider: provider,
		docs:     docs,
		logger:   logger,
	}
}

// CreateIntent asks the provider for a payment intent covering total (a
// decimal amount in dollars) and returns the client secret the browser
// completes the charge with.
//
// The amount is floor(total) * 100: whole dollars in minor units, matching
// what the storefront has always charged. Totals must be positive finite
// numbers — there is no such thing as a free or negative card charge.
func (s *PaymentService) CreateIntent(ctx context.Context, total float64) (string, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return "", apperror.ValidationFailed("total", "total must be a positive number")
	}

	amount := int64(math.Floor(total)) * 100
	if amount <= 0 {
		return "", apperror.ValidationFailed("total", "total must be at least 1")
	}

	intent, err := s.provider.CreateIntent(ctx, amount, "usd", []string{"card"})
	if err != nil {
		s.logger.Error("failed to create payment intent",
			slog.Int64("amount", amount),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("creating payment intent: %w", err)
	}

	s.logger.Info("payment intent created",
		slog.String("intentID", intent.ID),
		slog.Int64("amount", amount),
	)

	return intent.ClientSecret, nil
}

// RecordPayment stores the completed payment and marks its order paid.
//
// Two writes, no transaction: the payment record lands first, then the
// order is patched with {paid, transactionId}. If the order id is unknown
// the payment record still exists — same behavior the storefront has
// relied on, and each write is individually atomic.
func (s *PaymentService) RecordPayment(ctx context.Context, orderID string, record map[string]any) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return apperror.ValidationFailed("id", "order id is required")
	}
	if len(record) == 0 {
		return apperror.ValidationFailed("body", "payment body is required")
	}

	transactionID, _ := record["transactionId"].(string)
	if transactionID == "" {
		return apperror.ValidationFailed("transactionId", "transactionId is required")
	}

	paymentID, err := s.docs.Insert(ctx, model.CollectionPayments, record)
	if err != nil {
		return fmt.Errorf("recording payment for order %s: %w", orderID, err)
	}

	err = s.docs.Update(ctx, model.CollectionOrders, orderID, map[string]any{
		"paid":          true,
		"transactionId": transactionID,
	})
	if err != nil {
		return fmt.Errorf("marking order %s paid: %w", orderID, err)
	}

	s.logger.Info("payment recorded",
		slog.String("orderID", orderID),
		slog.String("paymentID", paymentID),
		slog.String("transactionID", transactionID),
	)

	return nil
}
