package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vitrine-backend/internal/cart"
	"github.com/angelmondragon/vitrine-backend/internal/handoff"
	"github.com/angelmondragon/vitrine-backend/internal/notify"
	"github.com/angelmondragon/vitrine-backend/internal/submission"
	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	"github.com/angelmondragon/vitrine-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
	"github.com/angelmondragon/vitrine-backend/pkg/metrics"
	"github.com/angelmondragon/vitrine-backend/pkg/types"
)

const (
	msgAlreadyProcessing = "Seu pedido já está sendo processado."
	msgAlreadySubmitted  = "Este pedido já foi enviado."
	msgPersistFailed     = "Ocorreu um erro ao processar seu pedido. Finalize pelo WhatsApp."
	persistTimeout       = 15 * time.Second
)

type orderCreator interface {
	Create(ctx context.Context, order *models.Order) error
}

type submissionGuard interface {
	MarkOrderAsSubmitted(ctx context.Context) error
	IsOrderSubmitted(ctx context.Context) bool
}

type record interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

type processingGate interface {
	Load(ctx context.Context) (string, bool, error)
	Claim(ctx context.Context, value string) (bool, error)
	Clear(ctx context.Context) error
}

// Params wires a Coordinator for one shopper scope.
type Params struct {
	Cart     *cart.Store
	Guard    submissionGuard
	Session  record
	Gate     processingGate
	Orders   orderCreator
	Notifier notify.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.CheckoutMetrics
	Grace    time.Duration
}

// Coordinator runs the checkout state machine for one shopper scope.
// The cart passed in Params must already be loaded.
type Coordinator struct {
	cart     *cart.Store
	guard    submissionGuard
	record   record
	gate     processingGate
	orders   orderCreator
	notifier notify.Notifier
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	grace    time.Duration
	now      func() time.Time
	newID    func() uuid.UUID

	session Session
}

func NewCoordinator(p Params) (*Coordinator, error) {
	if p.Cart == nil {
		return nil, errors.New("cart store required")
	}
	if p.Guard == nil {
		return nil, errors.New("submission guard required")
	}
	if p.Session == nil {
		return nil, errors.New("session record required")
	}
	if p.Gate == nil {
		return nil, errors.New("processing gate required")
	}
	if p.Orders == nil {
		return nil, errors.New("order creator required")
	}
	if p.Logger == nil {
		return nil, errors.New("logger required")
	}
	notifier := p.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Coordinator{
		cart:     p.Cart,
		guard:    p.Guard,
		record:   p.Session,
		gate:     p.Gate,
		orders:   p.Orders,
		notifier: notifier,
		logg:     p.Logger,
		metrics:  p.Metrics,
		grace:    p.Grace,
		now:      time.Now,
		newID:    uuid.New,
		session:  NewSession(),
	}, nil
}

// Load restores the session and repairs states that no longer hold: an abandoned
// submit whose gate expired returns to payment, and payment with an empty cart returns to review.
func (c *Coordinator) Load(ctx context.Context) error {
	raw, ok, err := c.record.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	c.session = NewSession()
	if ok {
		s, decodeErr := decodeSession(raw)
		if decodeErr != nil {
			c.warn(ctx, "checkout.session_unreadable", decodeErr)
		}
		c.session = s
	}

	if c.session.State == enums.CheckoutStateSubmitting {
		_, held, err := c.gate.Load(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read processing gate")
		}
		if !held {
			if err := c.apply(ctx, EventSubmitFailed, nil); err != nil {
				return err
			}
		}
	}
	return c.CartChanged(ctx)
}

func (c *Coordinator) Session() Session {
	return c.session
}

// CartChanged demotes a payment screen whose cart has been emptied.
func (c *Coordinator) CartChanged(ctx context.Context) error {
	if c.session.State == enums.CheckoutStateAwaitingPayment && c.cart.IsEmpty() {
		return c.apply(ctx, EventCartEmptied, nil)
	}
	return nil
}

func (c *Coordinator) Open(ctx context.Context) error {
	return c.apply(ctx, EventOpen, nil)
}

func (c *Coordinator) Close(ctx context.Context) error {
	return c.apply(ctx, EventClose, nil)
}

// UpdateForm edits the delivery form while browsing or reviewing.
func (c *Coordinator) UpdateForm(ctx context.Context, patch FormPatch) error {
	switch c.session.State {
	case enums.CheckoutStateBrowsing, enums.CheckoutStateReviewing:
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "form is locked while "+c.session.State.String()).
			WithDetails(map[string]any{"state": c.session.State})
	}

	form := c.session.Form
	if patch.DeliveryMethod != nil {
		method, err := enums.ParseDeliveryMethod(strings.TrimSpace(*patch.DeliveryMethod))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery method").
				WithDetails(pkgerrors.Field("delivery_method", "must be retirar or entrega"))
		}
		form.DeliveryMethod = method
	}
	if patch.Name != nil {
		form.Name = *patch.Name
	}
	if patch.Location != nil {
		form.Location = *patch.Location
	}
	if patch.WhatsApp != nil {
		form.WhatsApp = *patch.WhatsApp
	}
	if patch.CPF != nil {
		form.CPF = *patch.CPF
	}

	next := c.session
	next.Form = form
	return c.save(ctx, next)
}

// Validate moves review to the payment screen when the cart and form are complete.
func (c *Coordinator) Validate(ctx context.Context) error {
	if c.session.State != enums.CheckoutStateReviewing {
		return conflict(c.session, EventValidated)
	}
	if err := ValidateOrder(c.cart.Items(), c.session.Form); err != nil {
		return err
	}
	return c.apply(ctx, EventValidated, nil)
}

func (c *Coordinator) BackToReview(ctx context.Context) error {
	return c.apply(ctx, EventBackToReview, nil)
}

func (c *Coordinator) BeginEditPhone(ctx context.Context) error {
	return c.apply(ctx, EventBeginEditPhone, func(s *Session) {
		s.PhoneDraft = s.Form.WhatsApp
	})
}

// SavePhone replaces the shopper's WhatsApp number and leaves the edit sub-state.
func (c *Coordinator) SavePhone(ctx context.Context, phone string) error {
	if blank(phone) {
		return pkgerrors.New(pkgerrors.CodeValidation, msgMissingFields).
			WithDetails(pkgerrors.Field("whatsapp", "is required"))
	}
	return c.apply(ctx, EventEndEditPhone, func(s *Session) {
		s.Form.WhatsApp = strings.TrimSpace(phone)
	})
}

// CancelEditPhone leaves the edit sub-state and discards the draft.
func (c *Coordinator) CancelEditPhone(ctx context.Context) error {
	return c.apply(ctx, EventEndEditPhone, nil)
}

// Reset returns the session to browsing, used once the shopper acknowledges a sent order.
func (c *Coordinator) Reset(ctx context.Context) error {
	return c.apply(ctx, EventReset, nil)
}

// FinalizeInput identifies the seller receiving the order.
type FinalizeInput struct {
	SellerUID      string
	SellerSlug     string
	SellerWhatsApp string
	UserAgent      string
}

// Result describes a persisted order and how the shopper is handed to WhatsApp.
type Result struct {
	Order    models.Order `json:"order"`
	Handoff  handoff.Plan `json:"handoff"`
	Redirect string       `json:"redirect"`
}

// Finalize writes the order at most once per payment screen. After the write succeeds
// nothing can fail the call: guard, notifier, cart and session failures are only logged.
func (c *Coordinator) Finalize(ctx context.Context, in FinalizeInput) (*Result, error) {
	start := c.now()
	result, outcome, err := c.finalize(ctx, in)
	c.metrics.ObserveFinalize(outcome, c.now().Sub(start))
	return result, err
}

func (c *Coordinator) finalize(ctx context.Context, in FinalizeInput) (*Result, string, error) {
	if _, err := Transition(c.session, EventSubmit); err != nil {
		return nil, metrics.OutcomeStateConflict, err
	}
	items := c.cart.Items()
	if err := ValidateOrder(items, c.session.Form); err != nil {
		return nil, metrics.OutcomeValidation, err
	}

	won, err := c.gate.Claim(ctx, c.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, metrics.OutcomePersistFailed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim processing gate")
	}
	if !won {
		return nil, metrics.OutcomeAlreadyRunning, pkgerrors.New(pkgerrors.CodeConflict, msgAlreadyProcessing)
	}
	defer c.releaseGate(ctx)

	items, outcome, err := c.reloadClaimed(ctx)
	if err != nil {
		return nil, outcome, err
	}

	if err := c.apply(ctx, EventSubmit, nil); err != nil {
		return nil, metrics.OutcomePersistFailed, err
	}

	order := c.buildOrder(items, in.SellerUID)
	summary := handoff.BuildSummary(order)
	links := handoff.NewLinks(in.SellerWhatsApp, summary)

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := c.orders.Create(persistCtx, &order); err != nil {
		if revertErr := c.apply(ctx, EventSubmitFailed, nil); revertErr != nil {
			c.logError(ctx, "checkout.revert_failed", revertErr)
		}
		return nil, metrics.OutcomePersistFailed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgPersistFailed).
			WithDetails(map[string]any{
				"manual_whatsapp_url": links.Web,
				"message":             msgPersistFailed,
			})
	}

	ctx = c.logg.WithField(ctx, "order_id", order.ID.String())
	if err := c.guard.MarkOrderAsSubmitted(ctx); err != nil {
		c.logError(ctx, "checkout.mark_submitted_failed", err)
	}

	plan := handoff.NewPlan(handoff.DetectDevice(in.UserAgent), summary, links, c.grace)
	if err := c.notifier.NotifyOrder(ctx, notify.Event{
		Order:      order,
		SellerSlug: in.SellerSlug,
		Phone:      handoff.Digits(in.SellerWhatsApp),
		Handoff:    plan,
	}); err != nil {
		c.warn(ctx, "checkout.notify_failed", err)
		c.metrics.IncNotify(metrics.OutcomeNotifyFailed)
	} else {
		c.metrics.IncNotify(metrics.OutcomeNotifyDelivered)
	}

	if err := c.cart.Clear(ctx); err != nil {
		c.logError(ctx, "checkout.clear_cart_failed", err)
	}
	if err := c.apply(ctx, EventSubmitSucceeded, func(s *Session) {
		s.LastOrderID = order.ID.String()
	}); err != nil {
		c.logError(ctx, "checkout.session_save_failed", err)
	}
	c.info(ctx, "checkout.order_submitted")

	return &Result{
		Order:    order,
		Handoff:  plan,
		Redirect: submission.SuccessPath(in.SellerSlug),
	}, metrics.OutcomeSuccess, nil
}

// reloadClaimed re-reads the session, submitted flag and cart once the gate is held.
// A request that loaded its state before another finalize completed must not write a second order.
func (c *Coordinator) reloadClaimed(ctx context.Context) ([]cart.Item, string, error) {
	raw, ok, err := c.record.Load(ctx)
	if err != nil {
		return nil, metrics.OutcomePersistFailed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload checkout session")
	}
	session := NewSession()
	if ok {
		if session, err = decodeSession(raw); err != nil {
			c.warn(ctx, "checkout.session_unreadable", err)
		}
	}
	if c.guard.IsOrderSubmitted(ctx) || session.State != enums.CheckoutStateAwaitingPayment || session.EditingPhone {
		return nil, metrics.OutcomeStateConflict, pkgerrors.New(pkgerrors.CodeConflict, msgAlreadySubmitted).
			WithDetails(map[string]any{"state": session.State})
	}

	sent, err := c.cart.Load(ctx)
	if err != nil && !errors.Is(err, cart.ErrCorruptRecord) {
		return nil, metrics.OutcomePersistFailed, err
	}
	if sent {
		return nil, metrics.OutcomeStateConflict, pkgerrors.New(pkgerrors.CodeConflict, msgAlreadySubmitted)
	}
	c.session = session

	items := c.cart.Items()
	if err := ValidateOrder(items, session.Form); err != nil {
		return nil, metrics.OutcomeValidation, err
	}
	return items, "", nil
}

func (c *Coordinator) buildOrder(items []cart.Item, sellerUID string) models.Order {
	if strings.TrimSpace(sellerUID) == "" {
		sellerUID = models.DefaultSellerUID
	}
	lines := make(types.OrderItems, 0, len(items))
	for _, item := range items {
		lines = append(lines, types.OrderItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return models.Order{
		ID:        c.newID(),
		SellerUID: sellerUID,
		Items:     lines,
		Total:     cart.Total(items),
		Customer:  c.session.Form.Customer(),
		Status:    enums.OrderStatusPending,
		CreatedAt: c.now().UTC(),
	}
}

func (c *Coordinator) releaseGate(ctx context.Context) {
	if err := c.gate.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logError(ctx, "checkout.release_gate_failed", err)
	}
}

// apply runs Transition, lets mutate adjust data fields, and saves before committing.
func (c *Coordinator) apply(ctx context.Context, e Event, mutate func(*Session)) error {
	next, err := Transition(c.session, e)
	if err != nil {
		return err
	}
	if mutate != nil {
		mutate(&next)
	}
	return c.save(ctx, next)
}

func (c *Coordinator) save(ctx context.Context, next Session) error {
	raw, err := encodeSession(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout session")
	}
	if err := c.record.Save(ctx, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	c.session = next
	return nil
}

func (c *Coordinator) info(ctx context.Context, msg string) {
	c.logg.Info(ctx, msg)
}

func (c *Coordinator) warn(ctx context.Context, msg string, err error) {
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}

func (c *Coordinator) logError(ctx context.Context, msg string, err error) {
	c.logg.Error(ctx, msg, err)
}
