package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnhub/internal/client"
	"learnhub/internal/model"

	"go.uber.org/zap/zaptest"
)

func TestCardAuthorizer_Success(t *testing.T) {
	processor := &fakeProcessor{}
	authorizer := NewCardAuthorizer(processor, "USD", time.Second, zaptest.NewLogger(t))

	outcome := authorizer.Authorize(context.Background(), validCard(), 2500)

	if !outcome.Succeeded() {
		t.Fatalf("Expected success, got %+v", outcome)
	}
	if outcome.ConfirmationID != "tx_1" || outcome.AmountCharged != 2500 || outcome.MethodType != "credit_card" {
		t.Errorf("Unexpected outcome %+v", outcome)
	}
	if creates, confirms, retrieves := processor.calls(); creates != 1 || confirms != 1 || retrieves != 1 {
		t.Errorf("Expected one call each, got %d/%d/%d", creates, confirms, retrieves)
	}
}

func TestCardAuthorizer_CreateDeclined(t *testing.T) {
	processor := &fakeProcessor{
		createErr:      &client.ProcessorError{IntentID: "tx_1", Code: "2000", Message: "Do Not Honor"},
		retrieveStatus: client.IntentStatusFailed,
		lastErrorCode:  "2000",
		lastErrorMsg:   "Do Not Honor",
	}
	authorizer := NewCardAuthorizer(processor, "USD", time.Second, zaptest.NewLogger(t))

	outcome := authorizer.Authorize(context.Background(), validCard(), 2500)

	if outcome.Status != model.OutcomeStatusDeclined || outcome.ProcessorCode != "2000" {
		t.Fatalf("Expected decline 2000, got %+v", outcome)
	}
	if _, confirms, _ := processor.calls(); confirms != 0 {
		t.Errorf("Declined intent must not be confirmed, got %d confirms", confirms)
	}
}

func TestCardAuthorizer_ConfirmErrorButCharged(t *testing.T) {
	processor := &fakeProcessor{
		confirmErr:     &client.ProcessorError{IntentID: "tx_1", Code: "4001", Message: "Settlement Declined"},
		retrieveStatus: client.IntentStatusSucceeded,
	}
	authorizer := NewCardAuthorizer(processor, "USD", time.Second, zaptest.NewLogger(t))

	outcome := authorizer.Authorize(context.Background(), validCard(), 1000)

	if !outcome.Succeeded() {
		t.Fatalf("Retrieved status must win, got %+v", outcome)
	}
}

func TestCardAuthorizer_ConfirmTimeoutButCharged(t *testing.T) {
	processor := &fakeProcessor{
		confirmErr:     context.DeadlineExceeded,
		retrieveStatus: client.IntentStatusSucceeded,
	}
	authorizer := NewCardAuthorizer(processor, "USD", time.Second, zaptest.NewLogger(t))

	outcome := authorizer.Authorize(context.Background(), validCard(), 1000)

	if !outcome.Succeeded() {
		t.Fatalf("Retrieved status must win after a confirm timeout, got %+v", outcome)
	}
	if outcome.ConfirmationID != "tx_1" || outcome.AmountCharged != 1000 {
		t.Errorf("Unexpected outcome %+v", outcome)
	}
	if _, confirms, retrieves := processor.calls(); confirms != 1 || retrieves != 1 {
		t.Errorf("Expected one confirm and one retrieve, got %d/%d", confirms, retrieves)
	}
}

func TestCardAuthorizer_ConfirmDeclined(t *testing.T) {
	processor := &fakeProcessor{
		confirmErr:     &client.ProcessorError{IntentID: "tx_1", Code: "4001", Message: "Settlement Declined"},
		retrieveStatus: client.IntentStatusFailed,
	}
	authorizer := NewCardAuthorizer(processor, "USD", time.Second, zaptest.NewLogger(t))

	outcome := authorizer.Authorize(context.Background(), validCard(), 1000)

	if outcome.Status != model.OutcomeStatusDeclined {
		t.Fatalf("Expected declined, got %+v", outcome)
	}
	if outcome.ProcessorCode != "4001" || outcome.ProcessorMessage != "Settlement Declined" {
		t.Errorf("Expected processor error details, got %+v", outcome)
	}
	if _, confirms, _ := processor.calls(); confirms != 1 {
		t.Errorf("Confirm must be attempted exactly once, got %d", confirms)
	}
}

func TestCardAuthorizer_TransportErrors(t *testing.T) {
	tests := []struct {
		name      string
		processor *fakeProcessor
	}{
		{"create unreachable", &fakeProcessor{createErr: errors.New("connection reset")}},
		{"confirm and retrieve unreachable", &fakeProcessor{confirmErr: context.DeadlineExceeded, retrieveErr: errors.New("timeout")}},
		{"confirm unreachable, capture not taken", &fakeProcessor{confirmErr: context.DeadlineExceeded, retrieveStatus: client.IntentStatusRequiresConfirmation}},
		{"retrieve unreachable", &fakeProcessor{retrieveErr: errors.New("timeout")}},
		{"still processing", &fakeProcessor{retrieveStatus: client.IntentStatusProcessing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authorizer := NewCardAuthorizer(tt.processor, "USD", time.Second, zaptest.NewLogger(t))

			outcome := authorizer.Authorize(context.Background(), validCard(), 1000)
			if outcome.Status != model.OutcomeStatusTransportError {
				t.Fatalf("Expected transport error, got %+v", outcome)
			}
			if outcome.Detail == "" {
				t.Error("Expected a detail message")
			}
		})
	}
}

type slowProcessor struct {
	fakeProcessor
}

func (p *slowProcessor) CreateIntent(ctx context.Context, amount int64, currency string, card model.CardDetails) (*client.Intent, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCardAuthorizer_Timeout(t *testing.T) {
	authorizer := NewCardAuthorizer(&slowProcessor{}, "USD", 20*time.Millisecond, zaptest.NewLogger(t))

	outcome := authorizer.Authorize(context.Background(), validCard(), 1000)
	if outcome.Status != model.OutcomeStatusTransportError {
		t.Fatalf("Expected transport error on timeout, got %+v", outcome)
	}
}
