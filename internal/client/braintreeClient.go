package client

import (
	"context"
	"errors"
	"fmt"
	"learnhub/internal/config"
	"learnhub/internal/model"
	"strconv"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

// --- INTERFACE ---

type IntentStatus string

const (
	IntentStatusRequiresConfirmation IntentStatus = "requires_confirmation"
	IntentStatusProcessing           IntentStatus = "processing"
	IntentStatusSucceeded            IntentStatus = "succeeded"
	IntentStatusFailed               IntentStatus = "failed"
)

// Intent is the processor-side object of a single charge attempt.
type Intent struct {
	ID               string
	Status           IntentStatus
	Amount           int64 // minor units
	Currency         string
	MethodType       string
	LastErrorCode    string
	LastErrorMessage string
}

// ProcessorError means the processor answered and refused the intent.
// Anything else returned by a CardProcessor is a transport level failure.
type ProcessorError struct {
	IntentID string
	Code     string
	Message  string
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor refused intent %s: %s %s", e.IntentID, e.Code, e.Message)
}

type CardProcessor interface {
	// CreateIntent authorizes amount on the card without capturing it
	CreateIntent(ctx context.Context, amount int64, currency string, card model.CardDetails) (*Intent, error)

	// ConfirmIntent captures a previously authorized intent
	ConfirmIntent(ctx context.Context, intentID string) (*Intent, error)

	// RetrieveIntent reads the current processor state of an intent
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}

// --- IMPLEMENTATION ---

type braintreeClientImpl struct {
	gateway           *braintree.Braintree
	merchantAccountID string
	currency          string
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree, currency string) CardProcessor {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway:           gateway,
		merchantAccountID: cfg.MerchantAccountID,
		currency:          currency,
	}
}

// --- METHODS ---

func (c *braintreeClientImpl) CreateIntent(ctx context.Context, amount int64, currency string, card model.CardDetails) (*Intent, error) {
	if currency != c.currency {
		return nil, fmt.Errorf("currency %s is not served by merchant account (%s)", currency, c.currency)
	}

	// Braintree expects NewDecimal(unscaled, scale); minor units of a 2-decimal currency map 1:1.
	req := &braintree.TransactionRequest{
		Type:              "sale",
		Amount:            braintree.NewDecimal(amount, 2),
		MerchantAccountId: c.merchantAccountID,
		CreditCard: &braintree.CreditCard{
			Number:          card.Number,
			ExpirationMonth: card.ExpiryMonth,
			ExpirationYear:  card.ExpiryYear,
			CVV:             card.CVC,
		},
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: false, // authorize only, ConfirmIntent captures
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return nil, c.classifyError(err, "transaction creation failed")
	}

	intent := c.toIntent(tx)
	if intent.Status == IntentStatusFailed {
		return intent, &ProcessorError{IntentID: intent.ID, Code: intent.LastErrorCode, Message: intent.LastErrorMessage}
	}

	return intent, nil
}

func (c *braintreeClientImpl) ConfirmIntent(ctx context.Context, intentID string) (*Intent, error) {
	tx, err := c.gateway.Transaction().SubmitForSettlement(ctx, intentID)
	if err != nil {
		return nil, c.classifyError(err, "submit for settlement failed")
	}

	intent := c.toIntent(tx)
	if intent.Status == IntentStatusFailed {
		return intent, &ProcessorError{IntentID: intent.ID, Code: intent.LastErrorCode, Message: intent.LastErrorMessage}
	}

	return intent, nil
}

func (c *braintreeClientImpl) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	tx, err := c.gateway.Transaction().Find(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("find transaction %s: %w", intentID, err)
	}

	return c.toIntent(tx), nil
}

// classifyError turns an api error response that carries a transaction into a
// ProcessorError. Validation errors without a transaction stay plain errors.
func (c *braintreeClientImpl) classifyError(err error, msg string) error {
	var apiErr *braintree.BraintreeError
	if errors.As(err, &apiErr) && apiErr.Transaction != nil {
		intent := c.toIntent(apiErr.Transaction)
		return &ProcessorError{
			IntentID: intent.ID,
			Code:     intent.LastErrorCode,
			Message:  intent.LastErrorMessage,
		}
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func (c *braintreeClientImpl) toIntent(tx *braintree.Transaction) *Intent {
	intent := &Intent{
		ID:         tx.Id,
		Status:     intentStatus(string(tx.Status)),
		Currency:   c.currency,
		MethodType: string(tx.PaymentInstrumentType),
	}

	if tx.Amount != nil {
		intent.Amount = minorUnits(tx.Amount.Unscaled, tx.Amount.Scale)
	}

	if intent.Status == IntentStatusFailed {
		if code := tx.ProcessorResponseCode.Int(); code != 0 {
			intent.LastErrorCode = strconv.Itoa(code)
		}
		intent.LastErrorMessage = tx.ProcessorResponseText
		if intent.LastErrorMessage == "" {
			intent.LastErrorMessage = string(tx.Status)
		}
	}

	return intent
}

// intentStatus folds Braintree transaction statuses into the intent lifecycle.
func intentStatus(status string) IntentStatus {
	switch status {
	case "authorizing", "authorized":
		return IntentStatusRequiresConfirmation
	case "submitted_for_settlement", "settling", "settlement_pending", "settled":
		return IntentStatusSucceeded
	case "processor_declined", "gateway_rejected", "failed", "settlement_declined", "voided", "authorization_expired":
		return IntentStatusFailed
	default:
		return IntentStatusProcessing
	}
}

func minorUnits(unscaled int64, scale int) int64 {
	return decimal.New(unscaled, -int32(scale)).Shift(2).IntPart()
}
