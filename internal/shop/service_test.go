package shop

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vitrine-backend/internal/checkout"
	"github.com/angelmondragon/vitrine-backend/internal/handoff"
	"github.com/angelmondragon/vitrine-backend/internal/products"
	"github.com/angelmondragon/vitrine-backend/internal/submission"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	"github.com/angelmondragon/vitrine-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

const androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Mobile Safari/537.36"

var sellerID = uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

type stubSellers struct {
	bySlug map[string]*models.Seller
	err    error
}

func (s *stubSellers) GetBySlug(_ context.Context, slug string) (*models.Seller, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bySlug[slug], nil
}

func (s *stubSellers) GetActiveBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	seller, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if seller == nil || !seller.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return seller, nil
}

type stubCatalog struct {
	items  []models.Product
	listed int
}

func (s *stubCatalog) ListBySeller(_ context.Context, id uuid.UUID) ([]products.ProductDTO, error) {
	s.listed++
	out := []products.ProductDTO{}
	for _, item := range s.items {
		if item.SellerID == id {
			out = append(out, products.FromModel(item))
		}
	}
	return out, nil
}

func (s *stubCatalog) Find(_ context.Context, id uuid.UUID, productID int64) (*models.Product, error) {
	for _, item := range s.items {
		if item.SellerID == id && item.ID == productID {
			p := item
			return &p, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type stubOrders struct {
	err     error
	created []models.Order
}

func (s *stubOrders) Create(_ context.Context, order *models.Order) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *order)
	return nil
}

type fixture struct {
	svc     *Service
	sellers *stubSellers
	catalog *stubCatalog
	orders  *stubOrders
	store   *clientstore.Memory
	scope   clientstore.Scope
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sellers: &stubSellers{bySlug: map[string]*models.Seller{
			"joaninha": {
				ID:             sellerID,
				UID:            "seller-uid",
				StoreName:      "Joaninha Doces",
				Slug:           "joaninha",
				Active:         true,
				PixNumber:      strPtr("pix@joaninha.com"),
				WhatsAppNumber: strPtr("+55 (11) 99999-0000"),
			},
			"fechada": {ID: uuid.New(), Slug: "fechada", StoreName: "Fechada"},
		}},
		catalog: &stubCatalog{items: []models.Product{
			{ID: 7, SellerID: sellerID, Name: "Trufa", Price: decimal.NewFromInt(12)},
			{ID: 8, SellerID: sellerID, Name: "Brigadeiro", Price: decimal.RequireFromString("3.50")},
			{ID: 9, SellerID: uuid.New(), Name: "Outro", Price: decimal.NewFromInt(1)},
		}},
		orders: &stubOrders{},
		store:  clientstore.NewMemory(),
		scope:  clientstore.Scope{SessionID: "sess-1", SellerSlug: "joaninha"},
	}
	svc, err := NewService(Config{
		Sellers:         f.sellers,
		Products:        f.catalog,
		Orders:          f.orders,
		Store:           f.store,
		Logger:          logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
		DefaultWhatsApp: "5511970179936",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

// readyForPayment fills the cart and form and lands on the payment screen.
func (f *fixture) readyForPayment(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.AddToCart(ctx, f.scope, 7); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.svc.AddToCart(ctx, f.scope, 7); err != nil {
		t.Fatalf("add again: %v", err)
	}
	if _, err := f.svc.OpenCheckout(ctx, f.scope); err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err := f.svc.UpdateForm(ctx, f.scope, checkout.FormPatch{
		Name:           strPtr("Ana"),
		WhatsApp:       strPtr("11988887777"),
		CPF:            strPtr("12345678900"),
		DeliveryMethod: strPtr("retirar"),
	})
	if err != nil {
		t.Fatalf("update form: %v", err)
	}
	view, err := f.svc.Validate(ctx, f.scope)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if view.Checkout.State != enums.CheckoutStateAwaitingPayment {
		t.Fatalf("expected awaiting payment, got %s", view.Checkout.State)
	}
}

func TestLoadReturnsShopPage(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.Load(context.Background(), f.scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if page.Redirect != "" {
		t.Fatalf("unexpected redirect %q", page.Redirect)
	}
	if page.Seller == nil || page.Seller.Slug != "joaninha" {
		t.Fatalf("unexpected seller %+v", page.Seller)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected two products of the seller, got %d", len(page.Products))
	}
	if page.Cart == nil || page.Cart.Count != 0 || len(page.Cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", page.Cart)
	}
	if page.Checkout == nil || page.Checkout.State != enums.CheckoutStateBrowsing {
		t.Fatalf("expected browsing checkout, got %+v", page.Checkout)
	}
}

func TestLoadUnknownOrInactiveShopIsNotFound(t *testing.T) {
	f := newFixture(t)
	for _, slug := range []string{"nao-existe", "fechada"} {
		_, err := f.svc.Load(context.Background(), clientstore.Scope{SessionID: "sess-1", SellerSlug: slug})
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("%s: expected not found, got %v", slug, err)
		}
	}
}

func TestLoadRequiresSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Load(context.Background(), clientstore.Scope{SellerSlug: "joaninha"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddToCartRejectsForeignProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddToCart(context.Background(), f.scope, 9)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCartIsScopedPerSeller(t *testing.T) {
	f := newFixture(t)
	f.sellers.bySlug["outra"] = &models.Seller{ID: uuid.New(), Slug: "outra", Active: true}
	ctx := context.Background()

	if _, err := f.svc.AddToCart(ctx, f.scope, 7); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, err := f.svc.Cart(ctx, clientstore.Scope{SessionID: "sess-1", SellerSlug: "outra"})
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if view.Cart.Count != 0 {
		t.Fatalf("expected other storefront cart to be empty, got %d", view.Cart.Count)
	}
}

func TestEmptyingCartDemotesPaymentScreen(t *testing.T) {
	f := newFixture(t)
	f.readyForPayment(t)

	view, err := f.svc.RemoveFromCart(context.Background(), f.scope, 7)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if view.Checkout.State != enums.CheckoutStateReviewing {
		t.Fatalf("expected reviewing after emptying cart, got %s", view.Checkout.State)
	}
}

func TestUpdateQuantityKeepsPaymentScreenWhileCartHasItems(t *testing.T) {
	f := newFixture(t)
	f.readyForPayment(t)

	view, err := f.svc.UpdateQuantity(context.Background(), f.scope, 7, -1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.Cart.Count != 1 {
		t.Fatalf("expected one unit left, got %d", view.Cart.Count)
	}
	if view.Checkout.State != enums.CheckoutStateAwaitingPayment {
		t.Fatalf("expected awaiting payment, got %s", view.Checkout.State)
	}
}

func TestFinalizeRedirectsUntilAcknowledged(t *testing.T) {
	f := newFixture(t)
	f.readyForPayment(t)
	ctx := context.Background()

	receipt, err := f.svc.Finalize(ctx, f.scope, androidUA)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if receipt.Redirect != "/joaninha/sucesso" {
		t.Fatalf("unexpected redirect %q", receipt.Redirect)
	}
	if len(f.orders.created) != 1 || f.orders.created[0].SellerUID != "seller-uid" {
		t.Fatalf("expected one order for seller-uid, got %+v", f.orders.created)
	}
	if !f.orders.created[0].Total.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("unexpected total %s", f.orders.created[0].Total)
	}
	if len(receipt.Steps) != 2 || receipt.Steps[0].Channel != handoff.ChannelIntent || receipt.Steps[1].Channel != handoff.ChannelWeb {
		t.Fatalf("unexpected handoff steps %+v", receipt.Steps)
	}
	if !strings.HasPrefix(receipt.Handoff.Links.Web, "https://wa.me/5511999990000?text=") {
		t.Fatalf("unexpected web link %q", receipt.Handoff.Links.Web)
	}

	listed := f.catalog.listed
	page, err := f.svc.Load(ctx, f.scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if page.Redirect != "/joaninha/sucesso" {
		t.Fatalf("expected success redirect, got %+v", page)
	}
	if f.catalog.listed != listed {
		t.Fatal("expected redirect without listing products")
	}

	if err := f.svc.Acknowledge(ctx, f.scope); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	page, err = f.svc.Load(ctx, f.scope)
	if err != nil {
		t.Fatalf("load after ack: %v", err)
	}
	if page.Redirect != "" || page.Cart.Count != 0 || page.Checkout.State != enums.CheckoutStateBrowsing {
		t.Fatalf("expected fresh shop page, got %+v", page)
	}

	f.readyForPayment(t)
	again, err := f.svc.Finalize(ctx, f.scope, androidUA)
	if err != nil {
		t.Fatalf("second finalize: %v", err)
	}
	if again.Redirect != "/joaninha/sucesso" {
		t.Fatalf("unexpected redirect %q", again.Redirect)
	}
	if len(f.orders.created) != 2 {
		t.Fatalf("expected an independent second order, got %d", len(f.orders.created))
	}
	if f.orders.created[1].Customer.Name != "Ana" || !f.orders.created[1].Total.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("unexpected second order %+v", f.orders.created[1])
	}
}

func TestAcknowledgeWhileSubmittingClearsNothing(t *testing.T) {
	f := newFixture(t)
	f.readyForPayment(t)
	ctx := context.Background()

	if _, err := f.svc.Finalize(ctx, f.scope, androidUA); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	session := clientstore.NewSlot(f.store, f.scope, checkout.SessionKey, 0)
	if err := session.Save(ctx, `{"state":"submitting","form":{"delivery_method":"retirar"}}`); err != nil {
		t.Fatalf("save session: %v", err)
	}
	gate := clientstore.NewSlot(f.store, f.scope, checkout.ProcessingKey, 0)
	if won, _ := gate.Claim(ctx, "other-request"); !won {
		t.Fatal("expected to hold processing gate")
	}

	err := f.svc.Acknowledge(ctx, f.scope)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if _, ok, _ := clientstore.NewSlot(f.store, f.scope, submission.FlagKey, 0).Load(ctx); !ok {
		t.Fatal("expected submitted flag kept")
	}
	page, err := f.svc.Load(ctx, f.scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if page.Redirect != "/joaninha/sucesso" {
		t.Fatalf("expected success redirect kept, got %+v", page)
	}
}

func TestFinalizeFailureKeepsPaymentScreen(t *testing.T) {
	f := newFixture(t)
	f.readyForPayment(t)
	f.orders.err = errors.New("db down")
	ctx := context.Background()

	_, err := f.svc.Finalize(ctx, f.scope, androidUA)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	view, err := f.svc.Checkout(ctx, f.scope)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if view.Checkout.State != enums.CheckoutStateAwaitingPayment || view.Cart.Count != 2 {
		t.Fatalf("expected payment screen with cart intact, got %+v", view)
	}
}

func TestPhoneEditAcrossRequests(t *testing.T) {
	f := newFixture(t)
	f.readyForPayment(t)
	ctx := context.Background()

	view, err := f.svc.BeginEditPhone(ctx, f.scope)
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if !view.Checkout.EditingPhone || view.Checkout.PhoneDraft != "11988887777" {
		t.Fatalf("unexpected edit state %+v", view.Checkout)
	}
	if _, err := f.svc.Finalize(ctx, f.scope, androidUA); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected finalize to be blocked while editing, got %v", err)
	}
	view, err = f.svc.SavePhone(ctx, f.scope, " 11911112222 ")
	if err != nil {
		t.Fatalf("save phone: %v", err)
	}
	if view.Checkout.EditingPhone || view.Checkout.Form.WhatsApp != "11911112222" {
		t.Fatalf("unexpected saved state %+v", view.Checkout)
	}
}

func TestSuccessFallsBackToDefaultNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.Success(ctx, "joaninha")
	if err != nil {
		t.Fatalf("success: %v", err)
	}
	if page.ContactLink != "https://wa.me/5511999990000" || page.StoreName != "Joaninha Doces" {
		t.Fatalf("unexpected success page %+v", page)
	}

	page, err = f.svc.Success(ctx, "nao-existe")
	if err != nil {
		t.Fatalf("success for unknown: %v", err)
	}
	if page.ContactLink != "https://wa.me/5511970179936" || page.BackPath != "/nao-existe" {
		t.Fatalf("unexpected fallback page %+v", page)
	}

	f.sellers.err = errors.New("lookup failed")
	page, err = f.svc.Success(ctx, "joaninha")
	if err != nil {
		t.Fatalf("success with failing lookup: %v", err)
	}
	if page.WhatsApp != "5511970179936" {
		t.Fatalf("expected default number, got %q", page.WhatsApp)
	}
}

func TestPixQRRendersPNG(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw, err := f.svc.PixQR(ctx, "joaninha", 0)
	if err != nil {
		t.Fatalf("pix qr: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if got := img.Bounds().Dx(); got != DefaultQRSize {
		t.Fatalf("expected %dpx image, got %d", DefaultQRSize, got)
	}

	f.sellers.bySlug["joaninha"].PixNumber = nil
	if _, err := f.svc.PixQR(ctx, "joaninha", 128); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found without pix key, got %v", err)
	}
}

func TestClampQRSize(t *testing.T) {
	cases := map[int]int{0: DefaultQRSize, -5: DefaultQRSize, 10: 64, 300: 300, 5000: 1024}
	for in, want := range cases {
		if got := clampQRSize(in); got != want {
			t.Fatalf("clampQRSize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(Config{}); err == nil {
		t.Fatal("expected error without dependencies")
	}
}
