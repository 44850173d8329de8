package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	Register()
}

func TestPaymentOutcomes(t *testing.T) {
	before := testutil.ToFloat64(PaymentOutcomes.WithLabelValues("course", "success"))
	PaymentOutcomes.WithLabelValues("course", "success").Inc()

	if got := testutil.ToFloat64(PaymentOutcomes.WithLabelValues("course", "success")); got != before+1 {
		t.Errorf("Expected %v, got %v", before+1, got)
	}
}
