// Package shop composes the per-session storefront: cart, submission guard and
// checkout coordinator are rebuilt from client records on every request.
package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vitrine-backend/internal/cart"
	"github.com/angelmondragon/vitrine-backend/internal/checkout"
	"github.com/angelmondragon/vitrine-backend/internal/handoff"
	"github.com/angelmondragon/vitrine-backend/internal/notify"
	"github.com/angelmondragon/vitrine-backend/internal/products"
	"github.com/angelmondragon/vitrine-backend/internal/submission"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
	"github.com/angelmondragon/vitrine-backend/pkg/metrics"
)

const defaultProcessingTTL = 30 * time.Second

type sellerResolver interface {
	GetBySlug(ctx context.Context, slug string) (*models.Seller, error)
	GetActiveBySlug(ctx context.Context, slug string) (*models.Seller, error)
}

type productCatalog interface {
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]products.ProductDTO, error)
	Find(ctx context.Context, sellerID uuid.UUID, productID int64) (*models.Product, error)
}

type orderCreator interface {
	Create(ctx context.Context, order *models.Order) error
}

// Config wires the storefront service.
type Config struct {
	Sellers  sellerResolver
	Products productCatalog
	Orders   orderCreator
	Store    clientstore.Store
	// Notifier receives order events next to the WhatsApp handoff. Optional.
	Notifier notify.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.CheckoutMetrics

	DurableTTL    time.Duration
	SessionTTL    time.Duration
	ProcessingTTL time.Duration
	HandoffGrace  time.Duration

	DefaultWhatsApp string
}

// Service serves every storefront operation for a shopper scope.
type Service struct {
	sellers  sellerResolver
	products productCatalog
	orders   orderCreator
	store    clientstore.Store
	notifier notify.Notifier
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics

	durableTTL    time.Duration
	sessionTTL    time.Duration
	processingTTL time.Duration
	grace         time.Duration

	defaultWhatsApp string
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Sellers == nil {
		return nil, fmt.Errorf("seller resolver required")
	}
	if cfg.Products == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if cfg.Orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("client store required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	processingTTL := cfg.ProcessingTTL
	if processingTTL <= 0 {
		processingTTL = defaultProcessingTTL
	}
	return &Service{
		sellers:         cfg.Sellers,
		products:        cfg.Products,
		orders:          cfg.Orders,
		store:           cfg.Store,
		notifier:        cfg.Notifier,
		logg:            cfg.Logger,
		metrics:         cfg.Metrics,
		durableTTL:      cfg.DurableTTL,
		sessionTTL:      cfg.SessionTTL,
		processingTTL:   processingTTL,
		grace:           cfg.HandoffGrace,
		defaultWhatsApp: cfg.DefaultWhatsApp,
	}, nil
}

// visit is the storefront state of one scope for the duration of a request.
type visit struct {
	cart     *cart.Store
	sent     bool
	guard    *submission.Guard
	checkout *checkout.Coordinator
	recorder *handoff.Recorder
}

// View is what the shopper sees after a cart or checkout operation.
type View struct {
	Cart     cart.Snapshot    `json:"cart"`
	Checkout checkout.Session `json:"checkout"`
}

func (v *visit) view() *View {
	return &View{Cart: v.cart.Snapshot(), Checkout: v.checkout.Session()}
}

func (s *Service) open(ctx context.Context, scope clientstore.Scope) (context.Context, *visit, error) {
	if err := scope.Validate(); err != nil {
		return ctx, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "session id is required").
			WithDetails(pkgerrors.Field("session_id", "is required"))
	}
	ctx = s.logg.WithSessionID(ctx, scope.SessionID)
	ctx = s.logg.WithSellerSlug(ctx, scope.SellerSlug)

	cartSlot := clientstore.NewSlot(s.store, scope, cart.RecordKey, s.durableTTL)
	store := cart.NewStore(cartSlot)
	sent, err := store.Load(ctx)
	if err != nil {
		if !errors.Is(err, cart.ErrCorruptRecord) {
			return ctx, nil, err
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shop.cart_unreadable")
	}

	guard, err := submission.NewGuard(
		clientstore.NewSlot(s.store, scope, submission.FlagKey, s.durableTTL),
		cartSlot,
		s.logg,
	)
	if err != nil {
		return ctx, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build submission guard")
	}

	recorder := &handoff.Recorder{}
	notifiers := notify.Multi{notify.NewHandoff(handoff.NewLauncher(recorder, recorder, s.logg))}
	if s.notifier != nil {
		notifiers = append(notifiers, s.notifier)
	}

	coordinator, err := checkout.NewCoordinator(checkout.Params{
		Cart:     store,
		Guard:    guard,
		Session:  clientstore.NewSlot(s.store, scope, checkout.SessionKey, s.sessionTTL),
		Gate:     clientstore.NewSlot(s.store, scope, checkout.ProcessingKey, s.processingTTL),
		Orders:   s.orders,
		Notifier: notifiers,
		Logger:   s.logg,
		Metrics:  s.metrics,
		Grace:    s.grace,
	})
	if err != nil {
		return ctx, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build checkout")
	}
	if err := coordinator.Load(ctx); err != nil {
		return ctx, nil, err
	}

	return ctx, &visit{
		cart:     store,
		sent:     sent,
		guard:    guard,
		checkout: coordinator,
		recorder: recorder,
	}, nil
}

// active resolves the storefront owner; unknown and inactive shops are not found.
func (s *Service) active(ctx context.Context, slug string) (*models.Seller, error) {
	return s.sellers.GetActiveBySlug(ctx, slug)
}

// contactNumber is the seller's WhatsApp number, or the default when none is set.
func (s *Service) contactNumber(seller *models.Seller) string {
	if seller != nil && seller.WhatsAppNumber != nil && strings.TrimSpace(*seller.WhatsAppNumber) != "" {
		return *seller.WhatsAppNumber
	}
	return s.defaultWhatsApp
}
