package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vitrine-backend/pkg/enums"
	"github.com/angelmondragon/vitrine-backend/pkg/types"
)

// DefaultSellerUID tags orders placed without a resolved seller.
const DefaultSellerUID = "default"

// Order is appended once per successful checkout and never updated by the storefront.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SellerUID string            `gorm:"column:seller_uid;not null" json:"seller_uid"`
	Items     types.OrderItems  `gorm:"column:items;type:jsonb;serializer:json;not null" json:"items"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric;not null" json:"total"`
	Customer  types.Customer    `gorm:"column:customer;type:jsonb;serializer:json;not null" json:"customer"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
