package enums

import "testing"

func TestParseDeliveryMethod(t *testing.T) {
	for _, raw := range []string{"retirar", "entrega"} {
		got, err := ParseDeliveryMethod(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got.String() != raw || !got.IsValid() {
			t.Fatalf("unexpected method %q", got)
		}
	}
	if _, err := ParseDeliveryMethod("drone"); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestParseCheckoutState(t *testing.T) {
	cases := map[string]CheckoutState{
		"browsing":         CheckoutStateBrowsing,
		"reviewing":        CheckoutStateReviewing,
		"awaiting_payment": CheckoutStateAwaitingPayment,
		"submitting":       CheckoutStateSubmitting,
		"submitted":        CheckoutStateSubmitted,
	}
	for raw, want := range cases {
		got, err := ParseCheckoutState(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %q", raw, got)
		}
	}
	if CheckoutState("").IsValid() {
		t.Fatalf("empty state should be invalid")
	}
}

func TestParseDeviceClassAndOrderStatus(t *testing.T) {
	if _, err := ParseDeviceClass("android"); err != nil {
		t.Fatalf("parse device class: %v", err)
	}
	if _, err := ParseDeviceClass("tablet"); err == nil {
		t.Fatalf("expected error for unknown device class")
	}
	status, err := ParseOrderStatus("pending")
	if err != nil || status != OrderStatusPending {
		t.Fatalf("parse order status: %v %q", err, status)
	}
}
