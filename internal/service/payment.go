package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub/internal/events"
	"learnhub/internal/metrics"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentResult is what a payment attempt ended with. Payment is set only on success.
type PaymentResult struct {
	Outcome model.AuthorizationOutcome
	Payment *model.Payment
}

type PaymentService interface {
	Pay(ctx context.Context, userID uint, kind string, productID uint, card model.CardDetails) (*PaymentResult, error)
	List(ctx context.Context, filter repository.PaymentFilter) ([]*model.Payment, error)
}

type paymentServiceImpl struct {
	locator     ProductLocator
	authorizer  CardAuthorizer
	paymentRepo repository.PaymentRepository
	publisher   events.Publisher
	currency    string
	log         *zap.Logger
	now         func() time.Time
}

func NewPaymentService(
	locator ProductLocator,
	authorizer CardAuthorizer,
	paymentRepo repository.PaymentRepository,
	publisher events.Publisher,
	currency string,
	log *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		locator:     locator,
		authorizer:  authorizer,
		paymentRepo: paymentRepo,
		publisher:   publisher,
		currency:    currency,
		log:         log.Named("payments"),
		now:         time.Now,
	}
}

func (s *paymentServiceImpl) Pay(ctx context.Context, userID uint, kind string, productID uint, card model.CardDetails) (*PaymentResult, error) {
	product, err := s.locator.Locate(ctx, kind, productID)
	if err != nil {
		return nil, err
	}

	if err := ValidateCard(card, s.now()); err != nil {
		metrics.PaymentOutcomes.WithLabelValues(string(product.Kind()), "invalid").Inc()
		return nil, err
	}

	purchased, err := s.paymentRepo.Exists(ctx, userID, product.Kind(), product.ProductID())
	if err != nil {
		return nil, fmt.Errorf("check existing payment: %w", err)
	}
	if purchased {
		metrics.PaymentOutcomes.WithLabelValues(string(product.Kind()), "already_purchased").Inc()
		return nil, ErrAlreadyPurchased
	}

	outcome := s.authorizer.Authorize(ctx, card, product.ProductPrice())
	metrics.PaymentOutcomes.WithLabelValues(string(product.Kind()), string(outcome.Status)).Inc()

	if !outcome.Succeeded() {
		s.log.Info("payment not authorized",
			zap.Uint("user_id", userID),
			zap.String("kind", string(product.Kind())),
			zap.Uint("product_id", product.ProductID()),
			zap.String("status", string(outcome.Status)),
			zap.String("code", outcome.ProcessorCode),
		)
		return &PaymentResult{Outcome: outcome}, nil
	}

	attempt := model.PaymentAttempt{UserID: userID, Product: product, Card: card}
	payment, err := s.record(ctx, attempt, outcome)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, payment)

	return &PaymentResult{Outcome: outcome, Payment: payment}, nil
}

func (s *paymentServiceImpl) record(ctx context.Context, attempt model.PaymentAttempt, outcome model.AuthorizationOutcome) (*model.Payment, error) {
	userID, product := attempt.UserID, attempt.Product

	payment := model.NewPayment(userID, product)
	payment.Reference = uuid.NewString()
	payment.PaidPrice = outcome.AmountCharged
	if payment.PaidPrice == 0 {
		payment.PaidPrice = product.ProductPrice()
	}
	payment.Currency = s.currency
	payment.PaymentMethod = outcome.MethodType
	if payment.PaymentMethod == "" {
		payment.PaymentMethod = strings.ToLower(attempt.Card.Method)
	}
	payment.ConfirmationID = outcome.ConfirmationID

	err := s.paymentRepo.Create(ctx, payment)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the race to a concurrent identical request after the card was charged
		s.log.Error("duplicate payment charged, needs reconciliation",
			zap.Uint("user_id", userID),
			zap.String("kind", string(product.Kind())),
			zap.Uint("product_id", product.ProductID()),
			zap.String("confirmation_id", outcome.ConfirmationID),
			zap.Int64("amount", outcome.AmountCharged),
		)
		return nil, ErrAlreadyPurchased
	}
	if err != nil {
		s.log.Error("store payment failed",
			zap.String("confirmation_id", outcome.ConfirmationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("store payment: %w", err)
	}

	s.log.Info("payment recorded",
		zap.String("reference", payment.Reference),
		zap.Uint("user_id", userID),
		zap.String("kind", string(product.Kind())),
		zap.Uint("product_id", product.ProductID()),
		zap.String("confirmation_id", payment.ConfirmationID),
	)

	return payment, nil
}

func (s *paymentServiceImpl) publish(ctx context.Context, payment *model.Payment) {
	if err := s.publisher.PublishPaymentSucceeded(ctx, events.NewPaymentSucceeded(payment)); err != nil {
		s.log.Warn("publish payment event failed",
			zap.String("reference", payment.Reference),
			zap.Error(err),
		)
	}
}

func (s *paymentServiceImpl) List(ctx context.Context, filter repository.PaymentFilter) ([]*model.Payment, error) {
	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
