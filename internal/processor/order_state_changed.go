package processor

import (
	"context"
	"fmt"

	"github.com/marketbridge/marketbridge/internal/model"
)

// OrderStateChanged emits a state-specific metric event when an order
// transitions into a state with a configured metric name. Transitions
// without a configured metric are skipped silently.
type OrderStateChanged struct {
	base
}

// NewOrderStateChanged builds the order-state-changed processor.
func NewOrderStateChanged(msg *model.Message, deps Deps) Processor {
	return &OrderStateChanged{base{msg: msg, deps: deps}}
}

func (p *OrderStateChanged) Name() string { return "order-state-changed" }

func (p *OrderStateChanged) Applicable() bool {
	return p.msg.Resource.TypeID == model.ResourceOrder &&
		p.msg.Type == model.MessageOrderStateChanged &&
		p.msg.OrderState != ""
}

func (p *OrderStateChanged) GenerateEvents(ctx context.Context) ([]*model.OutboundRequest, error) {
	metric, ok := p.deps.Events.StateChangeMetrics[p.msg.OrderState]
	if !ok {
		if p.deps.Log != nil {
			p.deps.Log.DebugContext(ctx, "no metric configured for order state",
				"order_state", p.msg.OrderState,
			)
		}
		return nil, nil
	}

	order, err := p.deps.Commerce.OrderByID(ctx, p.msg.Resource.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", p.msg.Resource.ID, err)
	}

	// The notification's creation time marks when the transition happened.
	return []*model.OutboundRequest{
		p.deps.Orders.MetricEvent(order, metric, p.msg.CreatedAt),
	}, nil
}
