// Package clientstore keeps the small per-shopper records a browser would hold
// in local and session storage. Records are plain strings addressed by a
// session, a seller slug and a record name.
package clientstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrMissingSession is returned when a scope has no session id.
var ErrMissingSession = errors.New("clientstore: session id is required")

// Scope identifies one shopper session inside one seller's storefront.
type Scope struct {
	SessionID  string
	SellerSlug string
}

func (s Scope) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrMissingSession
	}
	return nil
}

// Store is the key/value surface backing client records.
type Store interface {
	Key(scope Scope, name string) string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Slot is a single named record within a scope.
type Slot struct {
	store Store
	key   string
	ttl   time.Duration
}

// NewSlot binds a record name within scope. A zero ttl keeps the record until it is cleared.
func NewSlot(store Store, scope Scope, name string, ttl time.Duration) Slot {
	return Slot{store: store, key: store.Key(scope, name), ttl: ttl}
}

func (s Slot) Key() string {
	return s.key
}

func (s Slot) Load(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, s.key)
}

func (s Slot) Save(ctx context.Context, value string) error {
	return s.store.Set(ctx, s.key, value, s.ttl)
}

// Claim writes value only when the record is absent and reports whether it won.
func (s Slot) Claim(ctx context.Context, value string) (bool, error) {
	return s.store.SetNX(ctx, s.key, value, s.ttl)
}

func (s Slot) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}
