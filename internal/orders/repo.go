package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	"github.com/angelmondragon/vitrine-backend/pkg/enums"
)

// Repository appends orders on the relational backend.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the order, filling id, status and created_at when unset.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if err := prepare(order); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func prepare(order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.SellerUID == "" {
		order.SellerUID = models.DefaultSellerUID
	}
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	return nil
}
