package sellers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/vitrine-backend/pkg/db"
	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
)

const slugConstraint = "idx_sellers_slug"

// Repository handles seller persistence on the relational backend.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to seller operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindBySlug loads a seller by its storefront slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	return r.first(ctx, "slug = ?", slug)
}

// FindByUID loads the seller owned by an auth identity.
func (r *Repository) FindByUID(ctx context.Context, uid string) (*models.Seller, error) {
	return r.first(ctx, "uid = ?", uid)
}

// Create persists a new seller row.
func (r *Repository) Create(ctx context.Context, seller *models.Seller) error {
	if seller == nil {
		return fmt.Errorf("seller is required")
	}
	if err := r.db.WithContext(ctx).Create(seller).Error; err != nil {
		if db.IsUniqueViolation(err, slugConstraint) || db.IsUniqueViolation(err, "sellers.slug") {
			return fmt.Errorf("%w: %v", ErrSlugTaken, err)
		}
		return err
	}
	return nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).Where(query, arg).First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &seller, nil
}
