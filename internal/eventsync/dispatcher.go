// Package eventsync dispatches one decoded change notification through
// the processor set and delivers the generated events to the marketing
// platform, folding partial failures into a single three-way status.
package eventsync

import (
	"context"
	"fmt"
	"time"

	"github.com/marketbridge/marketbridge/internal/logging"
	"github.com/marketbridge/marketbridge/internal/metrics"
	"github.com/marketbridge/marketbridge/internal/model"
	"github.com/marketbridge/marketbridge/internal/processor"
)

// Deliverer sends one outbound request to the marketing platform.
// A remote rejection surfaces as an error carrying status and body.
type Deliverer interface {
	SendEvent(ctx context.Context, req *model.OutboundRequest) error
}

// DeadLetterer records outbound requests the marketing platform rejected.
type DeadLetterer interface {
	Write(ctx context.Context, req *model.OutboundRequest, cause error, reason string) error
}

// Dispatcher fans a notification out to the processor variants and the
// generated events out to the delivery client. It holds no per-request
// state; a fresh processor set is instantiated per notification.
type Dispatcher struct {
	registry  *processor.Registry
	deliverer Deliverer
	deps      processor.Deps
	dlq       DeadLetterer
	log       *logging.Logger
}

// New constructs a dispatcher. dlq may be nil when dead-lettering is
// disabled.
func New(registry *processor.Registry, deliverer Deliverer, deps processor.Deps, dlq DeadLetterer, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Default()
	}
	return &Dispatcher{
		registry:  registry,
		deliverer: deliverer,
		deps:      deps,
		dlq:       dlq,
		log:       log,
	}
}

// ProcessMessage runs the notification through the default registry.
func (d *Dispatcher) ProcessMessage(ctx context.Context, msg *model.Message) Result {
	return d.Process(ctx, msg, d.registry)
}

// Process runs the notification through the given registry:
// instantiate every variant, filter the applicable ones, generate
// concurrently, aggregate, deliver concurrently, aggregate again.
func (d *Dispatcher) Process(ctx context.Context, msg *model.Message, registry *processor.Registry) Result {
	start := time.Now()
	defer func() {
		metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	d.log.InfoContext(ctx, "processing change notification",
		logging.MessageID(msg.ID),
		logging.ResourceType(msg.Resource.TypeID),
		logging.MessageType(msg.Type),
	)

	var applicable []processor.Processor
	for _, p := range registry.Instantiate(msg, d.deps) {
		if p.Applicable() {
			applicable = append(applicable, p)
		}
	}

	genTasks := make([]task[[]*model.OutboundRequest], 0, len(applicable))
	for _, p := range applicable {
		genTasks = append(genTasks, task[[]*model.OutboundRequest]{
			label: p.Name(),
			run:   p.GenerateEvents,
		})
	}
	genOutcomes := settleAll(ctx, genTasks)

	generation := aggregate(ctx, d.log, "generation", msg, genOutcomes)
	for _, o := range genOutcomes {
		if o.Err != nil {
			metrics.GenerationFailures.WithLabelValues(o.Label).Inc()
		}
	}
	// Nothing was produced at all; do not attempt any delivery.
	if generation.Status == StatusFailed {
		return generation
	}

	// Flatten the fulfilled subset in registration order, keeping each
	// processor's own emission order.
	var requests []*model.OutboundRequest
	for _, o := range genOutcomes {
		if o.Err == nil {
			requests = append(requests, o.Value...)
		}
	}

	deliveryTasks := make([]task[struct{}], 0, len(requests))
	for _, req := range requests {
		deliveryTasks = append(deliveryTasks, task[struct{}]{
			label: fmt.Sprintf("%s %s", req.Kind, req.UniqueID()),
			run: func(ctx context.Context) (struct{}, error) {
				err := d.deliver(ctx, req)
				return struct{}{}, err
			},
		})
	}
	deliveryOutcomes := settleAll(ctx, deliveryTasks)

	delivery := aggregate(ctx, d.log, "delivery", msg, deliveryOutcomes)
	return combine(generation, delivery)
}

func (d *Dispatcher) deliver(ctx context.Context, req *model.OutboundRequest) error {
	err := d.deliverer.SendEvent(ctx, req)
	if err == nil {
		metrics.DeliveriesTotal.WithLabelValues(string(req.Kind), "accepted").Inc()
		return nil
	}

	metrics.DeliveriesTotal.WithLabelValues(string(req.Kind), "rejected").Inc()
	if d.dlq != nil {
		if dlqErr := d.dlq.Write(ctx, req, err, "delivery-rejected"); dlqErr != nil {
			d.log.WarnContext(ctx, "dead letter write failed",
				logging.UniqueID(req.UniqueID()),
				logging.Error(dlqErr),
			)
		}
	}
	return err
}
