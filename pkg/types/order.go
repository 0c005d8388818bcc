package types

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vitrine-backend/pkg/enums"
)

// OrderItem is the line snapshot stored with an order.
type OrderItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// LineTotal is price times quantity at full precision.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderItems []OrderItem

// Customer is the checkout form snapshot copied onto an order.
type Customer struct {
	Name           string               `json:"name"`
	Location       string               `json:"location"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	WhatsApp       string               `json:"whatsapp"`
	CPF            string               `json:"cpf"`
}
