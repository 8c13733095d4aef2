// Package processor contains the closed set of event processor variants.
// Each variant binds one (resource type, action) pair to the outbound
// events it produces; several variants may match the same notification.
package processor

import (
	"context"

	"github.com/marketbridge/marketbridge/internal/config"
	"github.com/marketbridge/marketbridge/internal/logging"
	"github.com/marketbridge/marketbridge/internal/mapper"
	"github.com/marketbridge/marketbridge/internal/model"
)

// CommerceReader is the read side of the commerce platform API.
// Not-found and transport errors surface as plain errors; processors treat
// them as hard generation failures.
type CommerceReader interface {
	OrderByID(ctx context.Context, id string) (*model.Order, error)
	OrderByPaymentID(ctx context.Context, paymentID string) (*model.Order, error)
	PaymentByID(ctx context.Context, id string) (*model.Payment, error)
	CustomerByID(ctx context.Context, id string) (*model.Customer, error)
}

// Deps carries the request-scoped capabilities shared by all processor
// instances for one notification. Read-only after construction.
type Deps struct {
	Commerce  CommerceReader
	Orders    *mapper.OrderMapper
	Customers *mapper.CustomerMapper
	Events    config.EventsConfig
	Log       *logging.Logger
}

// Processor is one rule mapping a notification to zero or more outbound
// requests. Applicable answers purely from the notification's shape; the
// dispatcher never calls GenerateEvents on an inapplicable processor.
// GenerateEvents may perform I/O and returns an empty slice, not an error,
// when the business state does not warrant an event.
type Processor interface {
	Name() string
	Applicable() bool
	GenerateEvents(ctx context.Context) ([]*model.OutboundRequest, error)
}

// Constructor builds a processor instance bound to one notification.
type Constructor func(msg *model.Message, deps Deps) Processor

// Registry holds the ordered processor constructors. Order has no effect
// on the aggregate result but fixes the flattening order of generated
// events, so it must stay stable.
type Registry struct {
	constructors []Constructor
}

// NewRegistry constructs a registry with the provided constructors.
func NewRegistry(constructors ...Constructor) *Registry {
	return &Registry{constructors: constructors}
}

// Default returns the registry of all known processor variants.
func Default() *Registry {
	return NewRegistry(
		NewCustomerCreated,
		NewCustomerCompanyNameSet,
		NewOrderCreated,
		NewOrderStateChanged,
		NewOrderRefunded,
		NewCustomerResourceUpdated,
	)
}

// Instantiate builds one processor per registered variant against the
// given notification.
func (r *Registry) Instantiate(msg *model.Message, deps Deps) []Processor {
	if r == nil {
		return nil
	}
	out := make([]Processor, 0, len(r.constructors))
	for _, construct := range r.constructors {
		out = append(out, construct(msg, deps))
	}
	return out
}

// base holds the per-notification state common to every variant.
type base struct {
	msg  *model.Message
	deps Deps
}
