package sellers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
)

// SellerDTO is the public storefront profile.
type SellerDTO struct {
	ID             uuid.UUID `json:"id"`
	StoreName      string    `json:"store_name"`
	Slug           string    `json:"slug"`
	Active         bool      `json:"active"`
	PixNumber      *string   `json:"pix_number,omitempty"`
	WhatsAppNumber *string   `json:"whatsapp_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func FromModel(m *models.Seller) *SellerDTO {
	if m == nil {
		return nil
	}
	return &SellerDTO{
		ID:             m.ID,
		StoreName:      m.StoreName,
		Slug:           m.Slug,
		Active:         m.Active,
		PixNumber:      m.PixNumber,
		WhatsAppNumber: m.WhatsAppNumber,
		CreatedAt:      m.CreatedAt,
	}
}

// CreateSellerInput is the signup payload.
type CreateSellerInput struct {
	UID            string `json:"uid" validate:"required,max=128"`
	Email          string `json:"email" validate:"required,email"`
	StoreName      string `json:"store_name" validate:"required,max=120"`
	Slug           string `json:"slug" validate:"required,max=50"`
	PixNumber      string `json:"pix_number" validate:"required,max=120"`
	WhatsAppNumber string `json:"whatsapp_number" validate:"required,max=32"`
}

// ToModel builds an inactive seller; activation happens outside the storefront.
func (in CreateSellerInput) ToModel(id uuid.UUID, now time.Time) *models.Seller {
	return &models.Seller{
		ID:             id,
		UID:            strings.TrimSpace(in.UID),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		StoreName:      strings.TrimSpace(in.StoreName),
		Slug:           in.Slug,
		Active:         false,
		PixNumber:      optional(in.PixNumber),
		WhatsAppNumber: optional(in.WhatsAppNumber),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
