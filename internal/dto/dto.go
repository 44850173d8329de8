package dto

import (
	"learnhub/internal/model"
	"time"
)

type PaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
	CardNumber    string `json:"card_number"`
	ExpiryMonth   string `json:"expiry_month"`
	ExpiryYear    string `json:"expiry_year"`
	CVC           string `json:"cvc"`
}

func (r *PaymentRequest) Card() model.CardDetails {
	return model.CardDetails{
		Method:      r.PaymentMethod,
		Number:      r.CardNumber,
		ExpiryMonth: r.ExpiryMonth,
		ExpiryYear:  r.ExpiryYear,
		CVC:         r.CVC,
	}
}

type PaymentResponse struct {
	Status         string `json:"status"`
	Reference      string `json:"reference"`
	ConfirmationID string `json:"confirmation_id"`
	PaidPrice      int64  `json:"paid_price"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	PaymentMethod  string `json:"payment_method"`
}

type DeclinedResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TransportErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type PaymentItem struct {
	ID             uint      `json:"id"`
	Reference      string    `json:"reference"`
	CourseID       *uint     `json:"course"`
	LessonID       *uint     `json:"lesson"`
	PaidPrice      int64     `json:"paid_price"`
	Currency       string    `json:"currency"`
	PaymentMethod  string    `json:"payment_method"`
	ConfirmationID string    `json:"confirmation_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewPaymentItem(p *model.Payment) PaymentItem {
	return PaymentItem{
		ID:             p.ID,
		Reference:      p.Reference,
		CourseID:       p.CourseID,
		LessonID:       p.LessonID,
		PaidPrice:      p.PaidPrice,
		Currency:       p.Currency,
		PaymentMethod:  p.PaymentMethod,
		ConfirmationID: p.ConfirmationID,
		CreatedAt:      p.CreatedAt,
	}
}

type ErrorsResponse struct {
	Errors map[string][]string `json:"errors"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CourseUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
}

type LessonUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	VideoURL    *string `json:"video_url"`
	Price       *int64  `json:"price"`
}
