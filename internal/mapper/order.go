// Package mapper contains the pure transformations from commerce domain
// objects into outbound marketing payloads.
package mapper

import (
	"github.com/marketbridge/marketbridge/internal/currency"
	"github.com/marketbridge/marketbridge/internal/model"
)

// The entity kind tags used for property whitelisting.
const (
	KindOrder    = "order"
	KindCustomer = "customer"
)

// OrderMapper maps orders and their line items into metric events.
// It is stateless; the same inputs always produce the same payload.
type OrderMapper struct {
	converter currency.Converter
	allowed   map[string][]string
}

// NewOrderMapper builds a mapper with the given currency converter and
// per-kind allowed property keys.
func NewOrderMapper(converter currency.Converter, allowed map[string][]string) *OrderMapper {
	if converter == nil {
		converter = currency.Identity{}
	}
	return &OrderMapper{converter: converter, allowed: allowed}
}

// MetricEvent maps an order into a generic metric event. The value is the
// currency-converted order total; time defaults to the order creation time
// when no override is supplied.
func (m *OrderMapper) MetricEvent(order *model.Order, metric string, timeOverride string) *model.OutboundRequest {
	return &model.OutboundRequest{
		Kind: model.KindEvent,
		Event: &model.EventAttributes{
			Profile:    orderProfile(order),
			Metric:     model.Metric{Name: metric},
			Value:      m.converter.Convert(MajorUnits(order.TotalPrice), order.TotalPrice.CurrencyCode),
			Properties: AllowedProperties(m.allowed, KindOrder, order),
			UniqueID:   order.ID,
			Time:       defaultTime(timeOverride, order.CreatedAt),
		},
	}
}

// RefundEvent maps an order into a refund event. The refund total is
// pre-computed by the caller (the sum of successful refund transactions)
// and converted in the order's currency.
func (m *OrderMapper) RefundEvent(order *model.Order, metric string, refundTotal float64, timeOverride string) *model.OutboundRequest {
	return &model.OutboundRequest{
		Kind: model.KindEvent,
		Event: &model.EventAttributes{
			Profile:    orderProfile(order),
			Metric:     model.Metric{Name: metric},
			Value:      m.converter.Convert(refundTotal, order.TotalPrice.CurrencyCode),
			Properties: AllowedProperties(m.allowed, KindOrder, order),
			UniqueID:   order.ID,
			Time:       defaultTime(timeOverride, order.CreatedAt),
		},
	}
}

// ProductEvent maps one order line item into a per-product event. The line
// item id is the idempotency id; the raw line item is the property set.
func (m *OrderMapper) ProductEvent(item model.LineItem, order *model.Order, metric string, timeOverride string) *model.OutboundRequest {
	return &model.OutboundRequest{
		Kind: model.KindEvent,
		Event: &model.EventAttributes{
			Profile:    orderProfile(order),
			Metric:     model.Metric{Name: metric},
			Value:      m.converter.Convert(MajorUnits(item.TotalPrice), order.TotalPrice.CurrencyCode),
			Properties: asProperties(item),
			UniqueID:   item.ID,
			Time:       defaultTime(timeOverride, order.CreatedAt),
		},
	}
}

// orderProfile derives the profile identity from the order's customer
// reference and email.
func orderProfile(order *model.Order) map[string]any {
	profile := map[string]any{}
	if order.CustomerEmail != "" {
		profile["$email"] = order.CustomerEmail
	}
	if order.CustomerID != "" {
		profile["$id"] = order.CustomerID
	}
	return profile
}

func defaultTime(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
