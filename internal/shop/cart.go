package shop

import (
	"context"

	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
)

// Cart operation labels for metrics.
const (
	opAdd    = "add"
	opUpdate = "update_quantity"
	opRemove = "remove"
	opClear  = "clear"
)

// Cart returns the cart and checkout view for scope.
func (s *Service) Cart(ctx context.Context, scope clientstore.Scope) (*View, error) {
	if _, err := s.active(ctx, scope.SellerSlug); err != nil {
		return nil, err
	}
	_, v, err := s.open(ctx, scope)
	if err != nil {
		return nil, err
	}
	return v.view(), nil
}

// AddToCart adds one unit of a product owned by the storefront's seller.
func (s *Service) AddToCart(ctx context.Context, scope clientstore.Scope, productID int64) (*View, error) {
	seller, err := s.active(ctx, scope.SellerSlug)
	if err != nil {
		return nil, err
	}
	ctx, v, err := s.open(ctx, scope)
	if err != nil {
		return nil, err
	}
	product, err := s.products.Find(ctx, seller.ID, productID)
	if err != nil {
		return nil, err
	}
	if err := v.cart.Add(ctx, *product); err != nil {
		return nil, err
	}
	s.metrics.IncCartOp(opAdd)
	return v.view(), nil
}

// UpdateQuantity applies delta to a cart line; lines that reach zero are dropped.
func (s *Service) UpdateQuantity(ctx context.Context, scope clientstore.Scope, productID int64, delta int) (*View, error) {
	return s.mutateCart(ctx, scope, opUpdate, func(ctx context.Context, v *visit) error {
		return v.cart.UpdateQuantity(ctx, productID, delta)
	})
}

func (s *Service) RemoveFromCart(ctx context.Context, scope clientstore.Scope, productID int64) (*View, error) {
	return s.mutateCart(ctx, scope, opRemove, func(ctx context.Context, v *visit) error {
		return v.cart.Remove(ctx, productID)
	})
}

func (s *Service) ClearCart(ctx context.Context, scope clientstore.Scope) (*View, error) {
	return s.mutateCart(ctx, scope, opClear, func(ctx context.Context, v *visit) error {
		return v.cart.Clear(ctx)
	})
}

// mutateCart runs fn and then lets checkout react to the new cart.
func (s *Service) mutateCart(ctx context.Context, scope clientstore.Scope, op string, fn func(context.Context, *visit) error) (*View, error) {
	if _, err := s.active(ctx, scope.SellerSlug); err != nil {
		return nil, err
	}
	ctx, v, err := s.open(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, v); err != nil {
		return nil, err
	}
	s.metrics.IncCartOp(op)
	if err := v.checkout.CartChanged(ctx); err != nil {
		return nil, err
	}
	return v.view(), nil
}
