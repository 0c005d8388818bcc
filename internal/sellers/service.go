package sellers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

const msgStoreNotFound = "store not found"

type sellerRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Seller, error)
	FindByUID(ctx context.Context, uid string) (*models.Seller, error)
	Create(ctx context.Context, seller *models.Seller) error
}

// Service resolves sellers by slug and registers new ones.
type Service interface {
	GetBySlug(ctx context.Context, slug string) (*models.Seller, error)
	GetByUID(ctx context.Context, uid string) (*models.Seller, error)
	GetActiveBySlug(ctx context.Context, slug string) (*models.Seller, error)
	IsSlugAvailable(ctx context.Context, slug string) (bool, error)
	CreateProfile(ctx context.Context, input CreateSellerInput) (*SellerDTO, error)
}

type service struct {
	repo  sellerRepository
	logg  *logger.Logger
	group singleflight.Group
	now   func() time.Time
	newID func() uuid.UUID
}

// NewService builds a seller service over either storage backend.
func NewService(repo sellerRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now, newID: uuid.New}, nil
}

// GetBySlug returns nil without error when no seller uses the slug. Concurrent
// lookups of the same slug share one repository call.
func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return nil, nil
	}
	v, err, _ := s.group.Do("slug:"+slug, func() (any, error) {
		return s.repo.FindBySlug(ctx, slug)
	})
	return s.found(v, err, "load seller by slug")
}

func (s *service) GetByUID(ctx context.Context, uid string) (*models.Seller, error) {
	if uid == "" {
		return nil, nil
	}
	v, err, _ := s.group.Do("uid:"+uid, func() (any, error) {
		return s.repo.FindByUID(ctx, uid)
	})
	return s.found(v, err, "load seller by uid")
}

// GetActiveBySlug treats missing and inactive sellers alike.
func (s *service) GetActiveBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	seller, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if seller == nil || !seller.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgStoreNotFound)
	}
	return seller, nil
}

// IsSlugAvailable is a read-only pre-check. Two signups can both see true; the
// unique slug index decides which insert wins.
func (s *service) IsSlugAvailable(ctx context.Context, slug string) (bool, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "slug is required").
			WithDetails(pkgerrors.Field("slug", "is required"))
	}
	seller, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return seller == nil, nil
}

func (s *service) CreateProfile(ctx context.Context, input CreateSellerInput) (*SellerDTO, error) {
	slug := GenerateSlug(input.Slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must contain letters or digits").
			WithDetails(pkgerrors.Field("slug", "is invalid"))
	}
	input.Slug = slug

	available, err := s.IsSlugAvailable(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, slugTaken(slug)
	}

	seller := input.ToModel(s.newID(), s.now().UTC())
	if err := s.repo.Create(ctx, seller); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return nil, slugTaken(slug)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller")
	}

	s.logg.Info(s.logg.WithSellerSlug(ctx, slug), "sellers.profile_created")
	return FromModel(seller), nil
}

func (s *service) found(v any, err error, op string) (*models.Seller, error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
	seller, _ := v.(*models.Seller)
	return seller, nil
}

func slugTaken(slug string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use").
		WithDetails(map[string]any{"field": "slug", "slug": slug})
}
