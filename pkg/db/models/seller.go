package models

import (
	"time"

	"github.com/google/uuid"
)

// Seller is the tenant that owns one storefront.
type Seller struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UID            string    `gorm:"column:uid;not null"`
	Email          string    `gorm:"column:email;not null"`
	StoreName      string    `gorm:"column:store_name;not null"`
	Slug           string    `gorm:"column:slug;not null;uniqueIndex"`
	Active         bool      `gorm:"column:active;not null;default:false"`
	PixNumber      *string   `gorm:"column:pix_number"`
	WhatsAppNumber *string   `gorm:"column:whatsapp_number"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
