package shop

import (
	"context"

	"go.uber.org/multierr"

	"github.com/angelmondragon/vitrine-backend/internal/cart"
	"github.com/angelmondragon/vitrine-backend/internal/checkout"
	"github.com/angelmondragon/vitrine-backend/internal/handoff"
	"github.com/angelmondragon/vitrine-backend/internal/products"
	"github.com/angelmondragon/vitrine-backend/internal/sellers"
	"github.com/angelmondragon/vitrine-backend/internal/submission"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
)

// Page is the shop page. When Redirect is set the order was already sent and
// nothing else is filled in.
type Page struct {
	Redirect string                `json:"redirect,omitempty"`
	Seller   *sellers.SellerDTO    `json:"seller,omitempty"`
	Products []products.ProductDTO `json:"products,omitempty"`
	Cart     *cart.Snapshot        `json:"cart,omitempty"`
	Checkout *checkout.Session     `json:"checkout,omitempty"`
}

// Load builds the shop page for scope, or the success redirect once an order was sent.
func (s *Service) Load(ctx context.Context, scope clientstore.Scope) (*Page, error) {
	ctx, v, err := s.open(ctx, scope)
	if err != nil {
		return nil, err
	}
	if v.sent || v.guard.IsOrderSubmitted(ctx) {
		return &Page{Redirect: submission.SuccessPath(scope.SellerSlug)}, nil
	}

	seller, err := s.active(ctx, scope.SellerSlug)
	if err != nil {
		return nil, err
	}
	list, err := s.products.ListBySeller(ctx, seller.ID)
	if err != nil {
		return nil, err
	}
	snapshot := v.cart.Snapshot()
	session := v.checkout.Session()
	return &Page{
		Seller:   sellers.FromModel(seller),
		Products: list,
		Cart:     &snapshot,
		Checkout: &session,
	}, nil
}

// SuccessPage is what the shopper sees after sending an order.
type SuccessPage struct {
	StoreName   string `json:"store_name,omitempty"`
	WhatsApp    string `json:"whatsapp"`
	ContactLink string `json:"contact_link"`
	BackPath    string `json:"back_path"`
}

// Success returns the seller contact; a missing seller or number falls back to the default number.
func (s *Service) Success(ctx context.Context, slug string) (*SuccessPage, error) {
	page := &SuccessPage{BackPath: "/" + slug}
	seller, err := s.sellers.GetBySlug(ctx, slug)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shop.success_seller_lookup_failed")
	}

	if seller != nil {
		page.StoreName = seller.StoreName
	}
	number := s.contactNumber(seller)
	page.WhatsApp = handoff.Digits(number)
	page.ContactLink = handoff.ContactLink(number)
	return page, nil
}

// Acknowledge ends a sent order: checkout returns to browsing, then the cart and submitted flag are cleared.
// Nothing is cleared while another request is still submitting.
func (s *Service) Acknowledge(ctx context.Context, scope clientstore.Scope) error {
	ctx, v, err := s.open(ctx, scope)
	if err != nil {
		return err
	}
	if err := v.checkout.Reset(ctx); err != nil {
		return err
	}
	if err := multierr.Combine(v.cart.Clear(ctx), v.guard.ClearOrderSubmission(ctx)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acknowledge order")
	}
	s.logg.Info(ctx, "shop.order_acknowledged")
	return nil
}
