package shop

import (
	"context"

	"github.com/angelmondragon/vitrine-backend/internal/checkout"
	"github.com/angelmondragon/vitrine-backend/internal/handoff"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
)

// Checkout returns the cart and checkout view for scope.
func (s *Service) Checkout(ctx context.Context, scope clientstore.Scope) (*View, error) {
	return s.Cart(ctx, scope)
}

func (s *Service) OpenCheckout(ctx context.Context, scope clientstore.Scope) (*View, error) {
	return s.step(ctx, scope, (*checkout.Coordinator).Open)
}

func (s *Service) CloseCheckout(ctx context.Context, scope clientstore.Scope) (*View, error) {
	return s.step(ctx, scope, (*checkout.Coordinator).Close)
}

func (s *Service) BackToReview(ctx context.Context, scope clientstore.Scope) (*View, error) {
	return s.step(ctx, scope, (*checkout.Coordinator).BackToReview)
}

func (s *Service) Validate(ctx context.Context, scope clientstore.Scope) (*View, error) {
	return s.step(ctx, scope, (*checkout.Coordinator).Validate)
}

func (s *Service) BeginEditPhone(ctx context.Context, scope clientstore.Scope) (*View, error) {
	return s.step(ctx, scope, (*checkout.Coordinator).BeginEditPhone)
}

func (s *Service) CancelEditPhone(ctx context.Context, scope clientstore.Scope) (*View, error) {
	return s.step(ctx, scope, (*checkout.Coordinator).CancelEditPhone)
}

func (s *Service) SavePhone(ctx context.Context, scope clientstore.Scope, phone string) (*View, error) {
	return s.step(ctx, scope, func(c *checkout.Coordinator, ctx context.Context) error {
		return c.SavePhone(ctx, phone)
	})
}

func (s *Service) UpdateForm(ctx context.Context, scope clientstore.Scope, patch checkout.FormPatch) (*View, error) {
	return s.step(ctx, scope, func(c *checkout.Coordinator, ctx context.Context) error {
		return c.UpdateForm(ctx, patch)
	})
}

func (s *Service) step(ctx context.Context, scope clientstore.Scope, fn func(*checkout.Coordinator, context.Context) error) (*View, error) {
	if _, err := s.active(ctx, scope.SellerSlug); err != nil {
		return nil, err
	}
	ctx, v, err := s.open(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := fn(v.checkout, ctx); err != nil {
		return nil, err
	}
	return v.view(), nil
}

// Receipt is the outcome of a finalized checkout. Steps are the handoff
// navigations the client should perform, in order.
type Receipt struct {
	Order    models.Order   `json:"order"`
	Handoff  handoff.Plan   `json:"handoff"`
	Steps    []handoff.Step `json:"steps"`
	Redirect string         `json:"redirect"`
}

// Finalize submits the order of scope to the storefront's seller.
func (s *Service) Finalize(ctx context.Context, scope clientstore.Scope, userAgent string) (*Receipt, error) {
	seller, err := s.active(ctx, scope.SellerSlug)
	if err != nil {
		return nil, err
	}
	ctx, v, err := s.open(ctx, scope)
	if err != nil {
		return nil, err
	}

	result, err := v.checkout.Finalize(ctx, checkout.FinalizeInput{
		SellerUID:      seller.UID,
		SellerSlug:     scope.SellerSlug,
		SellerWhatsApp: s.contactNumber(seller),
		UserAgent:      userAgent,
	})
	if err != nil {
		return nil, err
	}
	steps := v.recorder.Steps()
	if steps == nil {
		steps = []handoff.Step{}
	}
	return &Receipt{
		Order:    result.Order,
		Handoff:  result.Handoff,
		Steps:    steps,
		Redirect: result.Redirect,
	}, nil
}
