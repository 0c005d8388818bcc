package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/vitrine-backend/api/responses"
	"github.com/angelmondragon/vitrine-backend/api/validators"
	"github.com/angelmondragon/vitrine-backend/internal/shop"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

type shopCart interface {
	Cart(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
	AddToCart(ctx context.Context, scope clientstore.Scope, productID int64) (*shop.View, error)
	UpdateQuantity(ctx context.Context, scope clientstore.Scope, productID int64, delta int) (*shop.View, error)
	RemoveFromCart(ctx context.Context, scope clientstore.Scope, productID int64) (*shop.View, error)
	ClearCart(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
}

type updateCartItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// viewHandler runs an operation that returns the cart and checkout view.
func viewHandler(ready bool, logg *logger.Logger, run func(r *http.Request) (*shop.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready {
			responses.WriteError(r.Context(), logg, w, unavailable("shop"))
			return
		}
		view, err := run(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartView(svc shopCart, logg *logger.Logger) http.HandlerFunc {
	return viewHandler(svc != nil, logg, func(r *http.Request) (*shop.View, error) {
		return svc.Cart(r.Context(), shopScope(r))
	})
}

func CartAddItem(svc shopCart, logg *logger.Logger) http.HandlerFunc {
	return viewHandler(svc != nil, logg, func(r *http.Request) (*shop.View, error) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.AddToCart(r.Context(), shopScope(r), payload.ProductID)
	})
}

// CartUpdateItem applies a signed quantity delta; a line that reaches zero is removed.
func CartUpdateItem(svc shopCart, logg *logger.Logger) http.HandlerFunc {
	return viewHandler(svc != nil, logg, func(r *http.Request) (*shop.View, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return nil, err
		}
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.UpdateQuantity(r.Context(), shopScope(r), productID, payload.Delta)
	})
}

func CartRemoveItem(svc shopCart, logg *logger.Logger) http.HandlerFunc {
	return viewHandler(svc != nil, logg, func(r *http.Request) (*shop.View, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return nil, err
		}
		return svc.RemoveFromCart(r.Context(), shopScope(r), productID)
	})
}

func CartClear(svc shopCart, logg *logger.Logger) http.HandlerFunc {
	return viewHandler(svc != nil, logg, func(r *http.Request) (*shop.View, error) {
		return svc.ClearCart(r.Context(), shopScope(r))
	})
}
