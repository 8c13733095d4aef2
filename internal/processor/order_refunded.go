package processor

import (
	"context"
	"fmt"

	"github.com/marketbridge/marketbridge/internal/mapper"
	"github.com/marketbridge/marketbridge/internal/model"
)

// OrderRefunded reacts to successful refund transactions on a payment.
// The refund value is the order's cumulative refund: the sum over every
// payment attached to the order of transactions whose state is exactly
// Success and whose type is exactly Refund; pending or failed refunds
// and other transaction types never count.
type OrderRefunded struct {
	base
}

// NewOrderRefunded builds the order-refunded processor.
func NewOrderRefunded(msg *model.Message, deps Deps) Processor {
	return &OrderRefunded{base{msg: msg, deps: deps}}
}

func (p *OrderRefunded) Name() string { return "order-refunded" }

func (p *OrderRefunded) Applicable() bool {
	if p.msg.Resource.TypeID != model.ResourcePayment || p.msg.Resource.ID == "" {
		return false
	}
	switch p.msg.Type {
	case model.MessageTransactionAdded:
		return p.msg.Transaction != nil &&
			p.msg.Transaction.Type == model.TransactionRefund &&
			p.msg.Transaction.State == model.TransactionSuccess
	case model.MessageTransactionStateSet:
		return p.msg.TransactionState == model.TransactionSuccess
	default:
		return false
	}
}

func (p *OrderRefunded) GenerateEvents(ctx context.Context) ([]*model.OutboundRequest, error) {
	payment, err := p.deps.Commerce.PaymentByID(ctx, p.msg.Resource.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", p.msg.Resource.ID, err)
	}

	// Without the owning order there is no profile to attribute the
	// refund to, so an unresolvable order is a hard failure.
	order, err := p.deps.Commerce.OrderByPaymentID(ctx, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve order for payment %s: %w", payment.ID, err)
	}

	total, err := p.orderRefundTotal(ctx, order, payment)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		// No successful refund on the order; nothing to report.
		return nil, nil
	}

	return []*model.OutboundRequest{
		p.deps.Orders.RefundEvent(order, p.deps.Events.RefundedOrderMetric, total, ""),
	}, nil
}

// orderRefundTotal sums successful refunds across all of the order's
// payments, so a refund spread over several payments reports the
// cumulative amount under the order's idempotency id. Orders carrying no
// payment references fall back to the triggering payment alone.
func (p *OrderRefunded) orderRefundTotal(ctx context.Context, order *model.Order, triggering *model.Payment) (float64, error) {
	if order.PaymentInfo == nil || len(order.PaymentInfo.Payments) == 0 {
		return refundTotal(triggering), nil
	}

	var total float64
	for _, ref := range order.PaymentInfo.Payments {
		if ref.ID == triggering.ID {
			total += refundTotal(triggering)
			continue
		}
		sibling, err := p.deps.Commerce.PaymentByID(ctx, ref.ID)
		if err != nil {
			return 0, fmt.Errorf("fetch payment %s: %w", ref.ID, err)
		}
		total += refundTotal(sibling)
	}
	return total, nil
}

func refundTotal(payment *model.Payment) float64 {
	var total float64
	for _, tx := range payment.Transactions {
		if tx.State == model.TransactionSuccess && tx.Type == model.TransactionRefund {
			total += mapper.MajorUnits(tx.Amount)
		}
	}
	return total
}
