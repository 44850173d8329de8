package service

import (
	"context"
	"errors"
	"learnhub/internal/client"
	"learnhub/internal/metrics"
	"learnhub/internal/model"
	"time"

	"go.uber.org/zap"
)

type CardAuthorizer interface {
	// Authorize charges price on the card. Declines and transport failures are
	// reported through the outcome, never as an error.
	Authorize(ctx context.Context, card model.CardDetails, price int64) model.AuthorizationOutcome
}

type cardAuthorizerImpl struct {
	processor client.CardProcessor
	currency  string
	timeout   time.Duration
	log       *zap.Logger
}

func NewCardAuthorizer(processor client.CardProcessor, currency string, timeout time.Duration, log *zap.Logger) CardAuthorizer {
	return &cardAuthorizerImpl{
		processor: processor,
		currency:  currency,
		timeout:   timeout,
		log:       log.Named("authorizer"),
	}
}

func (a *cardAuthorizerImpl) Authorize(ctx context.Context, card model.CardDetails, price int64) model.AuthorizationOutcome {
	start := time.Now()
	defer func() {
		metrics.AuthorizationDuration.Observe(time.Since(start).Seconds())
	}()

	intent, err := a.call(ctx, func(ctx context.Context) (*client.Intent, error) {
		return a.processor.CreateIntent(ctx, price, a.currency, card)
	})
	if err != nil {
		return a.fromError(ctx, intent, err)
	}

	if intent.Status != client.IntentStatusSucceeded {
		confirmed, err := a.call(ctx, func(ctx context.Context) (*client.Intent, error) {
			return a.processor.ConfirmIntent(ctx, intent.ID)
		})
		var perr *client.ProcessorError
		if errors.As(err, &perr) {
			if confirmed == nil {
				confirmed = intent
			}
			return a.fromError(ctx, confirmed, err)
		}
		if err != nil {
			// the capture may have landed before the connection dropped
			a.log.Warn("confirm intent failed, re-reading intent", zap.String("intent_id", intent.ID), zap.Error(err))
		}
	}

	current, err := a.call(ctx, func(ctx context.Context) (*client.Intent, error) {
		return a.processor.RetrieveIntent(ctx, intent.ID)
	})
	if err != nil {
		a.log.Warn("retrieve intent failed", zap.String("intent_id", intent.ID), zap.Error(err))
		return model.OutcomeTransportError(err.Error())
	}

	return a.classify(current)
}

func (a *cardAuthorizerImpl) call(ctx context.Context, fn func(ctx context.Context) (*client.Intent, error)) (*client.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return fn(ctx)
}

// fromError turns a failed create or confirm into an outcome. A processor refusal is
// re-read so that the processor's current view decides between declined and charged.
func (a *cardAuthorizerImpl) fromError(ctx context.Context, intent *client.Intent, err error) model.AuthorizationOutcome {
	var perr *client.ProcessorError
	if !errors.As(err, &perr) {
		a.log.Warn("card processor unreachable", zap.Error(err))
		return model.OutcomeTransportError(err.Error())
	}

	intentID := perr.IntentID
	if intentID == "" && intent != nil {
		intentID = intent.ID
	}
	if intentID == "" {
		return model.OutcomeDeclined(perr.Code, perr.Message)
	}

	current, rerr := a.call(ctx, func(ctx context.Context) (*client.Intent, error) {
		return a.processor.RetrieveIntent(ctx, intentID)
	})
	if rerr != nil {
		a.log.Warn("retrieve declined intent failed", zap.String("intent_id", intentID), zap.Error(rerr))
		return model.OutcomeDeclined(perr.Code, perr.Message)
	}

	if current.Status == client.IntentStatusSucceeded {
		return a.classify(current)
	}

	code, msg := current.LastErrorCode, current.LastErrorMessage
	if code == "" && msg == "" {
		code, msg = perr.Code, perr.Message
	}
	return model.OutcomeDeclined(code, msg)
}

func (a *cardAuthorizerImpl) classify(intent *client.Intent) model.AuthorizationOutcome {
	switch intent.Status {
	case client.IntentStatusSucceeded:
		return model.OutcomeSuccess(intent.ID, intent.Amount, intent.MethodType)
	case client.IntentStatusFailed:
		return model.OutcomeDeclined(intent.LastErrorCode, intent.LastErrorMessage)
	default:
		// the processor has not settled on an answer yet; nothing is recorded
		return model.OutcomeTransportError("payment intent " + intent.ID + " is " + string(intent.Status))
	}
}
