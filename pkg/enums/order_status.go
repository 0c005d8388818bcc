package enums

import "fmt"

// OrderStatus tracks an order after it leaves the storefront.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
}

// String implements fmt.Stringer.
func (c OrderStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known OrderStatus.
func (c OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
