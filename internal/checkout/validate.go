package checkout

import (
	"strings"

	"github.com/angelmondragon/vitrine-backend/internal/cart"
	"github.com/angelmondragon/vitrine-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
)

const (
	msgEmptyCart     = "Seu carrinho está vazio. Adicione um produto antes de finalizar."
	msgMissingFields = "Preencha todos os campos obrigatórios antes de finalizar."
)

// ValidateOrder checks the cart and form before payment instructions are shown and again before the order is written.
func ValidateOrder(items []cart.Item, form Form) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgEmptyCart).
			WithDetails(pkgerrors.Field("cart", "empty"))
	}

	missing := map[string]string{}
	if blank(form.Name) {
		missing["name"] = "is required"
	}
	if blank(form.WhatsApp) {
		missing["whatsapp"] = "is required"
	}
	if blank(form.CPF) {
		missing["cpf"] = "is required"
	}
	if !form.DeliveryMethod.IsValid() {
		missing["delivery_method"] = "is invalid"
	}
	if form.DeliveryMethod == enums.DeliveryMethodDelivery && blank(form.Location) {
		missing["location"] = "is required for entrega"
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgMissingFields).WithDetails(missing)
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
