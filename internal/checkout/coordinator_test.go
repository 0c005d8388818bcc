package checkout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vitrine-backend/internal/cart"
	"github.com/angelmondragon/vitrine-backend/internal/notify"
	"github.com/angelmondragon/vitrine-backend/internal/submission"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	"github.com/angelmondragon/vitrine-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

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
	store    *clientstore.Memory
	scope    clientstore.Scope
	cart     *cart.Store
	guard    *submission.Guard
	orders   *stubOrders
	notified []notify.Event
	notifyFn func(notify.Event) error
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  clientstore.NewMemory(),
		scope:  clientstore.Scope{SessionID: "sess-1", SellerSlug: "joaninha"},
		orders: &stubOrders{},
		logs:   &bytes.Buffer{},
	}
	f.cart = cart.NewStore(f.slot(cart.RecordKey))
	if _, err := f.cart.Load(context.Background()); err != nil {
		t.Fatalf("load cart: %v", err)
	}
	guard, err := submission.NewGuard(f.slot(submission.FlagKey), f.slot(cart.RecordKey), f.logger())
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	f.guard = guard
	return f
}

func (f *fixture) slot(name string) clientstore.Slot {
	return clientstore.NewSlot(f.store, f.scope, name, 0)
}

func (f *fixture) logger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: f.logs})
}

func (f *fixture) coordinator(t *testing.T) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(Params{
		Cart:    f.cart,
		Guard:   f.guard,
		Session: f.slot(SessionKey),
		Gate:    f.slot(ProcessingKey),
		Orders:  f.orders,
		Notifier: notify.Func(func(_ context.Context, e notify.Event) error {
			f.notified = append(f.notified, e)
			if f.notifyFn != nil {
				return f.notifyFn(e)
			}
			return nil
		}),
		Logger: f.logger(),
	})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	c.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	c.newID = func() uuid.UUID { return uuid.MustParse("11111111-2222-3333-4444-555555555555") }
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load coordinator: %v", err)
	}
	return c
}

func strPtr(s string) *string { return &s }

// readyForPayment drives a fresh coordinator to the payment screen with one item in the cart.
func readyForPayment(t *testing.T, f *fixture) *Coordinator {
	t.Helper()
	ctx := context.Background()
	if err := f.cart.Add(ctx, models.Product{ID: 7, Name: "Trufa", Price: decimal.NewFromInt(12)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.cart.UpdateQuantity(ctx, 7, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	c := f.coordinator(t)
	if err := c.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	err := c.UpdateForm(ctx, FormPatch{
		Name:     strPtr("Ana"),
		WhatsApp: strPtr("11988887777"),
		CPF:      strPtr("12345678900"),
	})
	if err != nil {
		t.Fatalf("update form: %v", err)
	}
	if err := c.Validate(ctx); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return c
}

func finalizeInput() FinalizeInput {
	return FinalizeInput{
		SellerUID:      "seller-uid",
		SellerSlug:     "joaninha",
		SellerWhatsApp: "+55 (11) 97017-9936",
		UserAgent:      "Mozilla/5.0 (Linux; Android 14)",
	}
}

func TestNewCoordinatorRequiresCollaborators(t *testing.T) {
	if _, err := NewCoordinator(Params{}); err == nil {
		t.Fatal("expected missing cart to fail")
	}
}

func TestFinalizeHappyPath(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	ctx := context.Background()

	result, err := c.Finalize(ctx, finalizeInput())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(f.orders.created) != 1 {
		t.Fatalf("expected one order, got %d", len(f.orders.created))
	}
	order := f.orders.created[0]
	if order.SellerUID != "seller-uid" || order.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected order %+v", order)
	}
	if !order.Total.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("expected total 24, got %s", order.Total)
	}
	if order.Customer.Name != "Ana" || order.Customer.DeliveryMethod != enums.DeliveryMethodPickup {
		t.Fatalf("unexpected customer %+v", order.Customer)
	}
	if result.Redirect != "/joaninha/sucesso" {
		t.Fatalf("unexpected redirect %q", result.Redirect)
	}
	if result.Handoff.Device != enums.DeviceClassAndroid {
		t.Fatalf("expected android plan, got %s", result.Handoff.Device)
	}
	if !strings.Contains(result.Handoff.Links.Web, "5511970179936") {
		t.Fatalf("expected seller digits in web link, got %q", result.Handoff.Links.Web)
	}
	if len(f.notified) != 1 || f.notified[0].Phone != "5511970179936" {
		t.Fatalf("unexpected notifications %+v", f.notified)
	}

	if !f.cart.IsEmpty() {
		t.Fatal("expected cart cleared")
	}
	if !f.guard.IsOrderSubmitted(ctx) {
		t.Fatal("expected submitted flag set")
	}
	if c.Session().State != enums.CheckoutStateSubmitted {
		t.Fatalf("expected submitted, got %s", c.Session().State)
	}
	if c.Session().LastOrderID != order.ID.String() {
		t.Fatalf("expected last order id recorded, got %q", c.Session().LastOrderID)
	}
	if _, held, _ := f.slot(ProcessingKey).Load(ctx); held {
		t.Fatal("expected processing gate released")
	}
}

func TestFinalizeDefaultsSellerUID(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	in := finalizeInput()
	in.SellerUID = ""

	if _, err := c.Finalize(context.Background(), in); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := f.orders.created[0].SellerUID; got != models.DefaultSellerUID {
		t.Fatalf("expected default seller uid, got %q", got)
	}
}

func TestFinalizePersistFailureKeepsCartAndState(t *testing.T) {
	f := newFixture(t)
	f.orders.err = errors.New("write failed")
	c := readyForPayment(t, f)
	ctx := context.Background()

	_, err := c.Finalize(ctx, finalizeInput())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok || !strings.HasPrefix(details["manual_whatsapp_url"].(string), "https://wa.me/5511970179936") {
		t.Fatalf("expected manual whatsapp url, got %v", appErr.Details())
	}
	if f.cart.IsEmpty() {
		t.Fatal("expected cart untouched")
	}
	if f.guard.IsOrderSubmitted(ctx) {
		t.Fatal("expected no submitted flag")
	}
	if c.Session().State != enums.CheckoutStateAwaitingPayment {
		t.Fatalf("expected awaiting payment, got %s", c.Session().State)
	}
	if len(f.notified) != 0 {
		t.Fatal("expected no notification")
	}
	if _, held, _ := f.slot(ProcessingKey).Load(ctx); held {
		t.Fatal("expected processing gate released")
	}

	f.orders.err = nil
	if _, err := c.Finalize(ctx, finalizeInput()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestFinalizeNotifierFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.notifyFn = func(notify.Event) error { return errors.New("no whatsapp") }
	c := readyForPayment(t, f)

	if _, err := c.Finalize(context.Background(), finalizeInput()); err != nil {
		t.Fatalf("expected notifier failure to be swallowed, got %v", err)
	}
	if c.Session().State != enums.CheckoutStateSubmitted {
		t.Fatalf("expected submitted, got %s", c.Session().State)
	}
	if !strings.Contains(f.logs.String(), "checkout.notify_failed") {
		t.Fatalf("expected warn log, got %s", f.logs.String())
	}
}

func TestFinalizeRejectsConcurrentSubmit(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	ctx := context.Background()

	if won, _ := f.slot(ProcessingKey).Claim(ctx, "other-request"); !won {
		t.Fatal("expected to claim gate first")
	}
	_, err := c.Finalize(ctx, finalizeInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.orders.created) != 0 {
		t.Fatal("expected no order written")
	}
	if _, held, _ := f.slot(ProcessingKey).Load(ctx); !held {
		t.Fatal("expected foreign gate claim left in place")
	}
}

// secondTab builds a coordinator over the same scope with its own cart store, as a
// concurrent request for the same session would.
func (f *fixture) secondTab(t *testing.T) *Coordinator {
	t.Helper()
	tabCart := cart.NewStore(f.slot(cart.RecordKey))
	if _, err := tabCart.Load(context.Background()); err != nil {
		t.Fatalf("load cart: %v", err)
	}
	c, err := NewCoordinator(Params{
		Cart:    tabCart,
		Guard:   f.guard,
		Session: f.slot(SessionKey),
		Gate:    f.slot(ProcessingKey),
		Orders:  f.orders,
		Logger:  f.logger(),
	})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load coordinator: %v", err)
	}
	return c
}

func TestFinalizeOverlappingRequestsWriteOneOrder(t *testing.T) {
	f := newFixture(t)
	first := readyForPayment(t, f)
	second := f.secondTab(t)
	ctx := context.Background()

	if second.Session().State != enums.CheckoutStateAwaitingPayment {
		t.Fatalf("expected second request loaded on payment screen, got %s", second.Session().State)
	}
	if _, err := first.Finalize(ctx, finalizeInput()); err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	_, err := second.Finalize(ctx, finalizeInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.orders.created) != 1 {
		t.Fatalf("expected one order for one checkout, got %d", len(f.orders.created))
	}
	if _, held, _ := f.slot(ProcessingKey).Load(ctx); held {
		t.Fatal("expected processing gate released")
	}
}

func TestFinalizeRejectsWhenAlreadySubmitted(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	ctx := context.Background()

	if err := f.guard.MarkOrderAsSubmitted(ctx); err != nil {
		t.Fatalf("mark submitted: %v", err)
	}
	_, err := c.Finalize(ctx, finalizeInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.orders.created) != 0 {
		t.Fatal("expected no order written")
	}
}

func TestFinalizeRevalidates(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	ctx := context.Background()

	c.session.Form.CPF = ""
	_, err := c.Finalize(ctx, finalizeInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.orders.created) != 0 {
		t.Fatal("expected no order written")
	}
}

func TestFinalizeRequiresPaymentScreen(t *testing.T) {
	f := newFixture(t)
	c := f.coordinator(t)

	_, err := c.Finalize(context.Background(), finalizeInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestValidateMovesToPaymentOnlyWhenComplete(t *testing.T) {
	f := newFixture(t)
	c := f.coordinator(t)
	ctx := context.Background()

	if err := c.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Validate(ctx); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected empty cart validation, got %v", err)
	}
	if c.Session().State != enums.CheckoutStateReviewing {
		t.Fatalf("expected reviewing, got %s", c.Session().State)
	}
}

func TestUpdateFormLockedOnPaymentScreen(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)

	err := c.UpdateForm(context.Background(), FormPatch{Name: strPtr("Outra")})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if c.Session().Form.Name != "Ana" {
		t.Fatalf("form changed to %q", c.Session().Form.Name)
	}
}

func TestUpdateFormRejectsUnknownDeliveryMethod(t *testing.T) {
	f := newFixture(t)
	c := f.coordinator(t)

	err := c.UpdateForm(context.Background(), FormPatch{DeliveryMethod: strPtr("drone")})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := c.UpdateForm(context.Background(), FormPatch{DeliveryMethod: strPtr("entrega")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.Session().Form.DeliveryMethod != enums.DeliveryMethodDelivery {
		t.Fatalf("expected entrega, got %q", c.Session().Form.DeliveryMethod)
	}
}

func TestPhoneEditFlow(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	ctx := context.Background()

	if err := c.BeginEditPhone(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if c.Session().PhoneDraft != "11988887777" {
		t.Fatalf("expected draft seeded, got %q", c.Session().PhoneDraft)
	}
	if _, err := c.Finalize(ctx, finalizeInput()); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected submit blocked while editing, got %v", err)
	}
	if err := c.SavePhone(ctx, " "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected blank phone rejected, got %v", err)
	}
	if err := c.SavePhone(ctx, " 21977776666 "); err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.Session().Form.WhatsApp != "21977776666" || c.Session().EditingPhone {
		t.Fatalf("unexpected session %+v", c.Session())
	}

	if err := c.BeginEditPhone(ctx); err != nil {
		t.Fatalf("begin again: %v", err)
	}
	if err := c.CancelEditPhone(ctx); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if c.Session().Form.WhatsApp != "21977776666" {
		t.Fatalf("cancel should keep saved phone, got %q", c.Session().Form.WhatsApp)
	}
}

func TestSessionSurvivesReload(t *testing.T) {
	f := newFixture(t)
	readyForPayment(t, f)

	c := f.coordinator(t)
	if c.Session().State != enums.CheckoutStateAwaitingPayment {
		t.Fatalf("expected awaiting payment after reload, got %s", c.Session().State)
	}
	if c.Session().Form.Name != "Ana" {
		t.Fatalf("expected form restored, got %+v", c.Session().Form)
	}
}

func TestLoadDemotesPaymentWithEmptyCart(t *testing.T) {
	f := newFixture(t)
	readyForPayment(t, f)
	if err := f.cart.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}

	c := f.coordinator(t)
	if c.Session().State != enums.CheckoutStateReviewing {
		t.Fatalf("expected reviewing, got %s", c.Session().State)
	}
}

func TestLoadRecoversAbandonedSubmit(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	ctx := context.Background()
	if err := c.apply(ctx, EventSubmit, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	reloaded := f.coordinator(t)
	if reloaded.Session().State != enums.CheckoutStateAwaitingPayment {
		t.Fatalf("expected awaiting payment, got %s", reloaded.Session().State)
	}
}

func TestLoadKeepsSubmitWhileGateHeld(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	ctx := context.Background()
	if _, err := f.slot(ProcessingKey).Claim(ctx, "in-flight"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := c.apply(ctx, EventSubmit, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	reloaded := f.coordinator(t)
	if reloaded.Session().State != enums.CheckoutStateSubmitting {
		t.Fatalf("expected submitting, got %s", reloaded.Session().State)
	}
}

func TestLoadIgnoresCorruptSession(t *testing.T) {
	f := newFixture(t)
	if err := f.slot(SessionKey).Save(context.Background(), "{not json"); err != nil {
		t.Fatalf("save: %v", err)
	}
	c := f.coordinator(t)
	if c.Session().State != enums.CheckoutStateBrowsing {
		t.Fatalf("expected fresh session, got %s", c.Session().State)
	}
}

func TestResetAfterSubmit(t *testing.T) {
	f := newFixture(t)
	c := readyForPayment(t, f)
	ctx := context.Background()
	if _, err := c.Finalize(ctx, finalizeInput()); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if c.Session().State != enums.CheckoutStateBrowsing || c.Session().Form.Name != "" {
		t.Fatalf("unexpected session %+v", c.Session())
	}
}
