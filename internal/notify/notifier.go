// Package notify tells a seller that an order was placed. Delivery is best
// effort: callers log failures and never roll back the order.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/vitrine-backend/internal/handoff"
	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
)

// Event describes a freshly persisted order.
type Event struct {
	Order      models.Order
	SellerSlug string
	Phone      string
	Handoff    handoff.Plan
}

type Notifier interface {
	NotifyOrder(ctx context.Context, event Event) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, event Event) error

func (f Func) NotifyOrder(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Noop accepts every event.
type Noop struct{}

func (Noop) NotifyOrder(context.Context, Event) error { return nil }

// Multi fans an event out to every notifier and combines their failures.
type Multi []Notifier

func (m Multi) NotifyOrder(ctx context.Context, event Event) error {
	var errs error
	for i, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyOrder(ctx, event); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	return errs
}
