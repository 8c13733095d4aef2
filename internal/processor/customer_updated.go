package processor

import (
	"context"
	"fmt"

	"github.com/marketbridge/marketbridge/internal/model"
)

// CustomerResourceUpdated handles the generic resource-updated
// notification for customers. The notification carries only a reference,
// so the current customer state is always fetched.
type CustomerResourceUpdated struct {
	base
}

// NewCustomerResourceUpdated builds the generic customer-updated processor.
func NewCustomerResourceUpdated(msg *model.Message, deps Deps) Processor {
	return &CustomerResourceUpdated{base{msg: msg, deps: deps}}
}

func (p *CustomerResourceUpdated) Name() string { return "customer-resource-updated" }

func (p *CustomerResourceUpdated) Applicable() bool {
	return p.msg.NotificationType == model.NotificationResourceUpdated &&
		p.msg.Resource.TypeID == model.ResourceCustomer &&
		p.msg.Resource.ID != ""
}

func (p *CustomerResourceUpdated) GenerateEvents(ctx context.Context) ([]*model.OutboundRequest, error) {
	customer, err := p.deps.Commerce.CustomerByID(ctx, p.msg.Resource.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch customer %s: %w", p.msg.Resource.ID, err)
	}
	return []*model.OutboundRequest{
		p.deps.Customers.Profile(customer),
	}, nil
}
