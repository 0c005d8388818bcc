package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/vitrine-backend/api/middleware"
	"github.com/angelmondragon/vitrine-backend/api/responses"
	"github.com/angelmondragon/vitrine-backend/api/validators"
	"github.com/angelmondragon/vitrine-backend/internal/sellers"
	"github.com/angelmondragon/vitrine-backend/internal/shop"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

type shopPages interface {
	Load(ctx context.Context, scope clientstore.Scope) (*shop.Page, error)
	Success(ctx context.Context, slug string) (*shop.SuccessPage, error)
	Acknowledge(ctx context.Context, scope clientstore.Scope) error
	PixQR(ctx context.Context, slug string, size int) ([]byte, error)
}

// Shop is every storefront operation served under /shops/{slug}.
type Shop interface {
	shopPages
	shopCart
	shopCheckout
}

func shopScope(r *http.Request) clientstore.Scope {
	return clientstore.Scope{
		SessionID:  middleware.SessionIDFromContext(r.Context()),
		SellerSlug: shopSlug(r),
	}
}

func shopSlug(r *http.Request) string {
	return sellers.NormalizeSlug(chi.URLParam(r, "slug"))
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}

// ShopLoad returns the shop page, or a redirect hint once the order was sent.
func ShopLoad(svc shopPages, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("shop"))
			return
		}
		page, err := svc.Load(r.Context(), shopScope(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ShopPixQR renders the seller's PIX key as a PNG.
func ShopPixQR(svc shopPages, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("shop"))
			return
		}
		size, err := validators.ParseQueryInt(r, "size", shop.DefaultQRSize, 64, 1024)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		png, err := svc.PixQR(r.Context(), shopSlug(r), size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteBinary(w, "image/png", png)
	}
}

func ShopSuccess(svc shopPages, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("shop"))
			return
		}
		page, err := svc.Success(r.Context(), shopSlug(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ShopAcknowledge clears the sent order so the shopper can start a new one.
func ShopAcknowledge(svc shopPages, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("shop"))
			return
		}
		scope := shopScope(r)
		if err := svc.Acknowledge(r.Context(), scope); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"redirect": "/" + scope.SellerSlug})
	}
}
