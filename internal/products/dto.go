package products

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
)

// ProductDTO is a product card on the shop page.
type ProductDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

func FromModel(m models.Product) ProductDTO {
	return ProductDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Image:       m.Image,
	}
}
