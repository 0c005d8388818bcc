package enums

import "fmt"

// CheckoutState is the position of a shopper session in the checkout flow.
type CheckoutState string

const (
	CheckoutStateBrowsing        CheckoutState = "browsing"
	CheckoutStateReviewing       CheckoutState = "reviewing"
	CheckoutStateAwaitingPayment CheckoutState = "awaiting_payment"
	CheckoutStateSubmitting      CheckoutState = "submitting"
	CheckoutStateSubmitted       CheckoutState = "submitted"
)

var validCheckoutStates = []CheckoutState{
	CheckoutStateBrowsing,
	CheckoutStateReviewing,
	CheckoutStateAwaitingPayment,
	CheckoutStateSubmitting,
	CheckoutStateSubmitted,
}

// String implements fmt.Stringer.
func (c CheckoutState) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutState.
func (c CheckoutState) IsValid() bool {
	for _, candidate := range validCheckoutStates {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutState converts raw input into a CheckoutState.
func ParseCheckoutState(value string) (CheckoutState, error) {
	for _, candidate := range validCheckoutStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout state %q", value)
}
