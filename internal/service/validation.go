package service

import (
	"learnhub/internal/model"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const PaymentMethodCard = "card"

// ValidateCard checks the submitted card fields before anything leaves the process.
// now decides which expiry dates are in the past.
func ValidateCard(card model.CardDetails, now time.Time) error {
	verr := &ValidationError{}

	if !strings.EqualFold(card.Method, PaymentMethodCard) {
		verr.add("payment_method", "Only card payments are supported.")
	}

	switch {
	case card.Number == "":
		verr.add("card_number", "This field is required.")
	case !isDigits(card.Number):
		verr.add("card_number", "Card number must contain digits only.")
	case len(card.Number) < 12 || len(card.Number) > 19:
		verr.add("card_number", "Card number must be between 12 and 19 digits.")
	case !luhnValid(card.Number):
		verr.add("card_number", "Invalid credit card number.")
	}

	month, monthErr := strconv.Atoi(card.ExpiryMonth)
	if card.ExpiryMonth == "" {
		verr.add("expiry_month", "This field is required.")
	} else if monthErr != nil || month < 1 || month > 12 {
		verr.add("expiry_month", "Invalid month.")
	}

	year, yearErr := strconv.Atoi(card.ExpiryYear)
	if card.ExpiryYear == "" {
		verr.add("expiry_year", "This field is required.")
	} else if yearErr != nil || len(card.ExpiryYear) != 4 {
		verr.add("expiry_year", "Invalid year.")
	} else if year < now.Year() {
		verr.add("expiry_year", "Card has expired.")
	} else if monthErr == nil && year == now.Year() && month >= 1 && month < int(now.Month()) {
		verr.add("expiry_month", "Card has expired.")
	}

	if card.CVC == "" {
		verr.add("cvc", "This field is required.")
	} else if !isDigits(card.CVC) || len(card.CVC) < 3 || len(card.CVC) > 4 {
		verr.add("cvc", "Invalid CVC.")
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

var videoHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

// ValidateVideoURL accepts YouTube links only.
func ValidateVideoURL(raw string) error {
	verr := &ValidationError{}

	target := raw
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	switch {
	case err != nil || u.Host == "":
		verr.add("video_url", "Enter a valid URL.")
	case u.Scheme != "http" && u.Scheme != "https":
		verr.add("video_url", "Enter a valid URL.")
	case !videoHosts[strings.ToLower(u.Hostname())]:
		verr.add("video_url", "Only YouTube URLs are allowed.")
	}

	if verr.empty() {
		return nil
	}
	return verr
}
