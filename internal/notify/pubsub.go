package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vitrine-backend/pkg/types"
)

const (
	EventTypeOrderCreated = "order.created"
	defaultPublishTimeout = 10 * time.Second
)

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type gcpPublisher struct {
	publisher *gcppubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.publisher.Publish(ctx, msg)
}

// OrderCreatedPayload is the body of an order.created message.
type OrderCreatedPayload struct {
	OrderID    string           `json:"order_id"`
	SellerUID  string           `json:"seller_uid"`
	SellerSlug string           `json:"seller_slug"`
	Phone      string           `json:"phone"`
	Items      types.OrderItems `json:"items"`
	Total      decimal.Decimal  `json:"total"`
	Customer   types.Customer   `json:"customer"`
	Message    string           `json:"message"`
	CreatedAt  time.Time        `json:"created_at"`
}

// PubSub publishes order.created so a downstream worker can message the seller.
type PubSub struct {
	publisher publisher
	timeout   time.Duration
}

func NewPubSub(p *gcppubsub.Publisher) (*PubSub, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return newPubSub(gcpPublisher{publisher: p}), nil
}

func newPubSub(p publisher) *PubSub {
	return &PubSub{publisher: p, timeout: defaultPublishTimeout}
}

func (p *PubSub) NotifyOrder(ctx context.Context, event Event) error {
	order := event.Order
	body, err := json.Marshal(OrderCreatedPayload{
		OrderID:    order.ID.String(),
		SellerUID:  order.SellerUID,
		SellerSlug: event.SellerSlug,
		Phone:      event.Phone,
		Items:      order.Items,
		Total:      order.Total,
		Customer:   order.Customer,
		Message:    event.Handoff.Message,
		CreatedAt:  order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result := p.publisher.Publish(ctx, &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_type":  EventTypeOrderCreated,
			"seller_uid":  order.SellerUID,
			"seller_slug": event.SellerSlug,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}
