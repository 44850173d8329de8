package service

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"learnhub/internal/model"
)

func validCard() model.CardDetails {
	return model.CardDetails{
		Method:      "card",
		Number:      "4111111111111111",
		ExpiryMonth: "12",
		ExpiryYear:  strconv.Itoa(time.Now().Year() + 4),
		CVC:         "123",
	}
}

func TestValidateCard(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(c *model.CardDetails)
		field  string
	}{
		{"valid", func(c *model.CardDetails) {}, ""},
		{"method case insensitive", func(c *model.CardDetails) { c.Method = "CARD" }, ""},
		{"unsupported method", func(c *model.CardDetails) { c.Method = "paypal" }, "payment_method"},
		{"luhn failure", func(c *model.CardDetails) { c.Number = "4111111111111112" }, "card_number"},
		{"letters in number", func(c *model.CardDetails) { c.Number = "4111-1111-1111-1111" }, "card_number"},
		{"number too short", func(c *model.CardDetails) { c.Number = "42" }, "card_number"},
		{"month out of range", func(c *model.CardDetails) { c.ExpiryMonth = "13" }, "expiry_month"},
		{"month not a number", func(c *model.CardDetails) { c.ExpiryMonth = "ab" }, "expiry_month"},
		{"year in the past", func(c *model.CardDetails) { c.ExpiryYear = "2025" }, "expiry_year"},
		{"month in the past this year", func(c *model.CardDetails) { c.ExpiryYear = "2026"; c.ExpiryMonth = "9" }, "expiry_month"},
		{"current month is fine", func(c *model.CardDetails) { c.ExpiryYear = "2026"; c.ExpiryMonth = "10" }, ""},
		{"short cvc", func(c *model.CardDetails) { c.CVC = "12" }, "cvc"},
		{"four digit cvc", func(c *model.CardDetails) { c.CVC = "1234" }, ""},
		{"missing cvc", func(c *model.CardDetails) { c.CVC = "" }, "cvc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.mutate(&card)

			err := ValidateCard(card, now)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if len(verr.Fields[tt.field]) == 0 {
				t.Errorf("Expected error on %s, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestLuhnValid(t *testing.T) {
	for _, n := range []string{"4111111111111111", "5555555555554444", "378282246310005"} {
		if !luhnValid(n) {
			t.Errorf("Expected %s to pass", n)
		}
	}
	if luhnValid("1234567812345678") {
		t.Error("Expected 1234567812345678 to fail")
	}
}

func TestValidateVideoURL(t *testing.T) {
	for _, ok := range []string{
		"https://www.youtube.com/watch?v=abc",
		"youtube.com/watch?v=abc",
		"https://youtu.be/abc",
	} {
		if err := ValidateVideoURL(ok); err != nil {
			t.Errorf("Expected %s to pass, got %v", ok, err)
		}
	}

	for _, bad := range []string{
		"https://vimeo.com/123",
		"ftp://youtube.com/x",
		"https://youtube.com.evil.io/x",
	} {
		var verr *ValidationError
		if err := ValidateVideoURL(bad); !errors.As(err, &verr) {
			t.Errorf("Expected %s to fail, got %v", bad, err)
		}
	}
}
