package processor

import (
	"context"

	"github.com/marketbridge/marketbridge/internal/model"
)

// CustomerCreated turns a new customer into a profile upsert.
type CustomerCreated struct {
	base
}

// NewCustomerCreated builds the customer-created processor.
func NewCustomerCreated(msg *model.Message, deps Deps) Processor {
	return &CustomerCreated{base{msg: msg, deps: deps}}
}

func (p *CustomerCreated) Name() string { return "customer-created" }

func (p *CustomerCreated) Applicable() bool {
	return p.msg.Resource.TypeID == model.ResourceCustomer &&
		p.msg.Type == model.MessageCustomerCreated &&
		p.msg.Customer != nil
}

func (p *CustomerCreated) GenerateEvents(_ context.Context) ([]*model.OutboundRequest, error) {
	return []*model.OutboundRequest{
		p.deps.Customers.Profile(p.msg.Customer),
	}, nil
}
