package enums

import "fmt"

// DeliveryMethod is how the shopper receives the order.
type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "retirar"
	DeliveryMethodDelivery DeliveryMethod = "entrega"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodPickup,
	DeliveryMethodDelivery,
}

// String implements fmt.Stringer.
func (c DeliveryMethod) String() string {
	return string(c)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (c DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
