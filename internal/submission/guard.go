// Package submission remembers, per shopper session, that an order was already
// sent so reloads and back-navigation land on the success page instead of a
// second checkout.
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/vitrine-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

// FlagKey names the durable record holding the submitted flag.
const FlagKey = "choco-order-submitted"

// Flag is the stored submitted marker.
type Flag struct {
	Submitted bool  `json:"submitted"`
	Timestamp int64 `json:"timestamp"`
}

type record interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

// Guard reads and writes the submitted flag and the sent cart envelope.
type Guard struct {
	flag record
	cart record
	logg *logger.Logger
	now  func() time.Time
}

func NewGuard(flag, cartRecord record, logg *logger.Logger) (*Guard, error) {
	if flag == nil {
		return nil, fmt.Errorf("flag record required")
	}
	if cartRecord == nil {
		return nil, fmt.Errorf("cart record required")
	}
	return &Guard{flag: flag, cart: cartRecord, logg: logg, now: time.Now}, nil
}

// MarkOrderAsSubmitted writes the flag and, when a cart record exists, rewrites it as a sent envelope.
func (g *Guard) MarkOrderAsSubmitted(ctx context.Context) error {
	now := g.now()
	raw, err := json.Marshal(Flag{Submitted: true, Timestamp: now.UnixMilli()})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode submission flag")
	}
	if err := g.flag.Save(ctx, string(raw)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save submission flag")
	}

	stored, ok, err := g.cart.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart record")
	}
	if !ok {
		return nil
	}
	items, _, err := cart.DecodeRecord(stored)
	if err != nil {
		g.warn(ctx, "submission.cart_record_unreadable", err)
		items = nil
	}
	envelope, err := cart.EncodeSent(items, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart envelope")
	}
	if err := g.cart.Save(ctx, envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart envelope")
	}
	return nil
}

// IsOrderSubmitted is false on absence, read failure, or an unparseable flag.
func (g *Guard) IsOrderSubmitted(ctx context.Context) bool {
	raw, ok, err := g.flag.Load(ctx)
	if err != nil {
		g.warn(ctx, "submission.flag_read_failed", err)
		return false
	}
	if !ok {
		return false
	}
	var flag Flag
	if err := json.Unmarshal([]byte(raw), &flag); err != nil {
		g.warn(ctx, "submission.flag_unreadable", err)
		return false
	}
	return flag.Submitted
}

// ClearOrderSubmission deletes both the flag and the cart record.
func (g *Guard) ClearOrderSubmission(ctx context.Context) error {
	return multierr.Combine(
		wrapClear(g.flag.Clear(ctx), "clear submission flag"),
		wrapClear(g.cart.Clear(ctx), "clear cart record"),
	)
}

// SuccessPath is where a shopper with a submitted order is sent.
func SuccessPath(slug string) string {
	return "/" + slug + "/sucesso"
}

func wrapClear(err error, msg string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func (g *Guard) warn(ctx context.Context, msg string, err error) {
	if g.logg == nil {
		return
	}
	g.logg.Warn(g.logg.WithField(ctx, "error", err.Error()), msg)
}
