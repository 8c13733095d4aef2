// Package ordersync backfills the marketing platform with historical
// orders: a full paginated scan of the commerce project, guarded by a
// platform-side lock so only one sync runs at a time.
package ordersync

import (
	"context"
	"errors"
	"fmt"

	"github.com/marketbridge/marketbridge/internal/commercetools"
	"github.com/marketbridge/marketbridge/internal/config"
	"github.com/marketbridge/marketbridge/internal/eventsync"
	"github.com/marketbridge/marketbridge/internal/logging"
	"github.com/marketbridge/marketbridge/internal/mapper"
	"github.com/marketbridge/marketbridge/internal/model"
)

const (
	lockContainer = "marketbridge-lock"
	lockKey       = "orderFullSync"
)

// ErrSyncInProgress is returned when another sync holds the lock.
var ErrSyncInProgress = errors.New("order sync already in progress")

// OrderSource pages orders and manages the sync lock.
type OrderSource interface {
	OrdersAfter(ctx context.Context, lastID string) (*commercetools.OrdersPage, error)
	GetCustomObject(ctx context.Context, container, key string) error
	CreateCustomObject(ctx context.Context, container, key, value string) error
	DeleteCustomObject(ctx context.Context, container, key string) error
}

// Summary counts what one run touched.
type Summary struct {
	Orders    int
	Delivered int
	Failed    int
}

type Runner struct {
	source    OrderSource
	deliverer eventsync.Deliverer
	orders    *mapper.OrderMapper
	events    config.EventsConfig
	log       *logging.Logger
}

func NewRunner(source OrderSource, deliverer eventsync.Deliverer, orders *mapper.OrderMapper, events config.EventsConfig, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Default()
	}
	return &Runner{
		source:    source,
		deliverer: deliverer,
		orders:    orders,
		events:    events,
		log:       log,
	}
}

// Run scans every order by ascending id and replays it as a placed-order
// event plus one product event per line item. A delivery failure skips
// that request and moves on; the scan itself aborting is an error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := r.acquireLock(ctx); err != nil {
		return Summary{}, err
	}
	defer r.releaseLock(ctx)

	var summary Summary
	lastID := ""
	for {
		page, err := r.source.OrdersAfter(ctx, lastID)
		if err != nil {
			return summary, fmt.Errorf("fetch orders page: %w", err)
		}

		for i := range page.Data {
			order := &page.Data[i]
			summary.Orders++

			for _, req := range r.requestsFor(order) {
				if err := r.deliverer.SendEvent(ctx, req); err != nil {
					summary.Failed++
					r.log.ErrorContext(ctx, "backfill delivery failed",
						logging.UniqueID(req.UniqueID()),
						logging.Error(err),
					)
					continue
				}
				summary.Delivered++
			}
		}

		if !page.HasMore {
			break
		}
		lastID = page.LastID
	}

	r.log.InfoContext(ctx, "order sync finished",
		"orders", summary.Orders,
		"delivered", summary.Delivered,
		"failed", summary.Failed,
	)
	return summary, nil
}

// requestsFor mirrors the order-created generation: the order-level
// metric event first, then one per line item.
func (r *Runner) requestsFor(order *model.Order) []*model.OutboundRequest {
	requests := []*model.OutboundRequest{
		r.orders.MetricEvent(order, r.events.PlacedOrderMetric, ""),
	}
	for i := range order.LineItems {
		requests = append(requests, r.orders.ProductEvent(order.LineItems[i], order, r.events.OrderedProductMetric, ""))
	}
	return requests
}

// acquireLock claims the platform-side custom object. An existing
// object means another instance is mid-sync.
func (r *Runner) acquireLock(ctx context.Context) error {
	err := r.source.GetCustomObject(ctx, lockContainer, lockKey)
	if err == nil {
		return ErrSyncInProgress
	}
	if !errors.Is(err, commercetools.ErrNotFound) {
		return fmt.Errorf("check sync lock: %w", err)
	}
	if err := r.source.CreateCustomObject(ctx, lockContainer, lockKey, "1"); err != nil {
		return fmt.Errorf("acquire sync lock: %w", err)
	}
	return nil
}

func (r *Runner) releaseLock(ctx context.Context) {
	if err := r.source.DeleteCustomObject(ctx, lockContainer, lockKey); err != nil {
		r.log.WarnContext(ctx, "failed to release sync lock", logging.Error(err))
	}
}
