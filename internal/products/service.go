package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
)

type productRepository interface {
	ListBySellerID(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error)
	FindBySellerAndID(ctx context.Context, sellerID uuid.UUID, id int64) (*models.Product, error)
}

// Service exposes the product reads the storefront needs.
type Service interface {
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]ProductDTO, error)
	Find(ctx context.Context, sellerID uuid.UUID, productID int64) (*models.Product, error)
}

type service struct {
	repo productRepository
}

func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListBySellerID(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

// Find resolves a product for add-to-cart; products of other sellers are not found.
func (s *service) Find(ctx context.Context, sellerID uuid.UUID, productID int64) (*models.Product, error) {
	product, err := s.repo.FindBySellerAndID(ctx, sellerID, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
