package processor

import (
	"context"

	"github.com/marketbridge/marketbridge/internal/model"
)

// CustomerCompanyNameSet mirrors a company-name change onto the profile's
// organization field.
type CustomerCompanyNameSet struct {
	base
}

// NewCustomerCompanyNameSet builds the company-name-set processor.
func NewCustomerCompanyNameSet(msg *model.Message, deps Deps) Processor {
	return &CustomerCompanyNameSet{base{msg: msg, deps: deps}}
}

func (p *CustomerCompanyNameSet) Name() string { return "customer-company-name-set" }

func (p *CustomerCompanyNameSet) Applicable() bool {
	return p.msg.Resource.TypeID == model.ResourceCustomer &&
		p.msg.Type == model.MessageCustomerCompanyNameSet
}

func (p *CustomerCompanyNameSet) GenerateEvents(_ context.Context) ([]*model.OutboundRequest, error) {
	// An empty company name carries nothing worth mirroring.
	if p.msg.CompanyName == "" {
		return nil, nil
	}
	return []*model.OutboundRequest{
		p.deps.Customers.CompanyNameProfile(p.msg.Resource.ID, p.msg.CompanyName),
	}, nil
}
