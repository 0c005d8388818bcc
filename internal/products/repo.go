package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
)

// ErrNotFound is returned when a seller has no product with the requested id.
var ErrNotFound = errors.New("product not found")

// Repository handles product reads on the relational backend.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to product operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBySellerID returns the seller's products, newest first.
func (r *Repository) ListBySellerID(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindBySellerAndID loads one product scoped to its seller.
func (r *Repository) FindBySellerAndID(ctx context.Context, sellerID uuid.UUID, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND id = ?", sellerID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}
