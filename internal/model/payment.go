package model

// CardDetails are the card fields submitted with a payment, kept only for the
// duration of the request.
type CardDetails struct {
	Method      string
	Number      string
	ExpiryMonth string
	ExpiryYear  string
	CVC         string
}

type PaymentAttempt struct {
	UserID  uint
	Product Purchasable
	Card    CardDetails
}

type OutcomeStatus string

const (
	OutcomeStatusSuccess        OutcomeStatus = "success"
	OutcomeStatusDeclined       OutcomeStatus = "declined"
	OutcomeStatusTransportError OutcomeStatus = "transport_error"
)

// AuthorizationOutcome is the normalized processor result. Only the fields of
// the matching status are populated.
type AuthorizationOutcome struct {
	Status OutcomeStatus

	// success
	ConfirmationID string
	AmountCharged  int64
	MethodType     string

	// declined
	ProcessorCode    string
	ProcessorMessage string

	// transport error
	Detail string
}

func OutcomeSuccess(confirmationID string, amount int64, methodType string) AuthorizationOutcome {
	return AuthorizationOutcome{
		Status:         OutcomeStatusSuccess,
		ConfirmationID: confirmationID,
		AmountCharged:  amount,
		MethodType:     methodType,
	}
}

func OutcomeDeclined(code, message string) AuthorizationOutcome {
	return AuthorizationOutcome{
		Status:           OutcomeStatusDeclined,
		ProcessorCode:    code,
		ProcessorMessage: message,
	}
}

func OutcomeTransportError(detail string) AuthorizationOutcome {
	return AuthorizationOutcome{
		Status: OutcomeStatusTransportError,
		Detail: detail,
	}
}

func (o AuthorizationOutcome) Succeeded() bool {
	return o.Status == OutcomeStatusSuccess
}
