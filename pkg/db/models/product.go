package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a seller listing shown on the shop page.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SellerID    uuid.UUID       `gorm:"column:seller_id;type:uuid;not null"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	Image       string          `gorm:"column:image;not null;default:''"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
