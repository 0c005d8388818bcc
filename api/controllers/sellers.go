package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/vitrine-backend/api/responses"
	"github.com/angelmondragon/vitrine-backend/api/validators"
	"github.com/angelmondragon/vitrine-backend/internal/sellers"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

type sellerSignup interface {
	IsSlugAvailable(ctx context.Context, slug string) (bool, error)
	CreateProfile(ctx context.Context, input sellers.CreateSellerInput) (*sellers.SellerDTO, error)
}

type slugAvailability struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

// SellerCreate registers a new, inactive storefront.
func SellerCreate(svc sellerSignup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("seller"))
			return
		}
		var payload sellers.CreateSellerInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		seller, err := svc.CreateProfile(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, seller)
	}
}

func SellerSlugAvailability(svc sellerSignup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("seller"))
			return
		}
		slug, err := validators.RequireQuery(r, "slug", sellers.MaxSlugLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slug = sellers.NormalizeSlug(slug)
		available, err := svc.IsSlugAvailable(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, slugAvailability{Slug: slug, Available: available})
	}
}

// SellerSlugSuggestion derives a slug from the store name and reports whether it is free.
func SellerSlugSuggestion(svc sellerSignup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("seller"))
			return
		}
		name, err := validators.RequireQuery(r, "store_name", 120)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slug := sellers.GenerateSlug(name)
		if slug == "" {
			responses.WriteSuccess(w, slugAvailability{})
			return
		}
		available, err := svc.IsSlugAvailable(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, slugAvailability{Slug: slug, Available: available})
	}
}
