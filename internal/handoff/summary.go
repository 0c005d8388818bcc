// Package handoff turns a persisted order into a WhatsApp message and the
// sequence of deep links that opens it on the shopper's device.
package handoff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	"github.com/angelmondragon/vitrine-backend/pkg/enums"
)

// SummaryLines renders the order as message lines. Amounts are formatted here and nowhere else.
func SummaryLines(order models.Order) []string {
	c := order.Customer
	lines := []string{
		"Novo pedido",
		"Cliente: " + c.Name,
		"CPF: " + c.CPF,
		"WhatsApp: " + c.WhatsApp,
		"Forma de recebimento: " + c.DeliveryMethod.String(),
	}
	if c.DeliveryMethod == enums.DeliveryMethodDelivery || strings.TrimSpace(c.Location) != "" {
		lines = append(lines, "Endereço: "+c.Location)
	}
	lines = append(lines, "", "Itens:")
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("- %s x%d = %s", item.Name, item.Quantity, money(item.LineTotal())))
	}
	return append(lines, "", "Total: "+money(order.Total))
}

func BuildSummary(order models.Order) string {
	return strings.Join(SummaryLines(order), "\n")
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}
