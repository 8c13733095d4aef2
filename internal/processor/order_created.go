package processor

import (
	"context"
	"fmt"

	"github.com/marketbridge/marketbridge/internal/model"
)

// OrderCreated turns a new (or imported) order into one order-level
// "placed order" event plus one "ordered product" event per line item.
type OrderCreated struct {
	base
}

// NewOrderCreated builds the order-created processor.
func NewOrderCreated(msg *model.Message, deps Deps) Processor {
	return &OrderCreated{base{msg: msg, deps: deps}}
}

func (p *OrderCreated) Name() string { return "order-created" }

func (p *OrderCreated) Applicable() bool {
	if p.msg.Resource.TypeID != model.ResourceOrder {
		return false
	}
	return p.msg.Type == model.MessageOrderCreated || p.msg.Type == model.MessageOrderImported
}

func (p *OrderCreated) GenerateEvents(ctx context.Context) ([]*model.OutboundRequest, error) {
	order := p.msg.Order
	if order == nil {
		// Payload not embedded in the notification; fetch the full order.
		var err error
		order, err = p.deps.Commerce.OrderByID(ctx, p.msg.Resource.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch order %s: %w", p.msg.Resource.ID, err)
		}
	}

	// Order-level event first, then its line items, in emission order.
	events := make([]*model.OutboundRequest, 0, len(order.LineItems)+1)
	events = append(events, p.deps.Orders.MetricEvent(order, p.deps.Events.PlacedOrderMetric, ""))
	for _, item := range order.LineItems {
		events = append(events, p.deps.Orders.ProductEvent(item, order, p.deps.Events.OrderedProductMetric, ""))
	}
	return events, nil
}
