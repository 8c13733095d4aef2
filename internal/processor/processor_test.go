package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbridge/marketbridge/internal/config"
	"github.com/marketbridge/marketbridge/internal/mapper"
	"github.com/marketbridge/marketbridge/internal/model"
)

// mockCommerce implements CommerceReader with overridable func fields.
type mockCommerce struct {
	orderByID        func(ctx context.Context, id string) (*model.Order, error)
	orderByPaymentID func(ctx context.Context, paymentID string) (*model.Order, error)
	paymentByID      func(ctx context.Context, id string) (*model.Payment, error)
	customerByID     func(ctx context.Context, id string) (*model.Customer, error)
}

func (m *mockCommerce) OrderByID(ctx context.Context, id string) (*model.Order, error) {
	if m.orderByID != nil {
		return m.orderByID(ctx, id)
	}
	return nil, errors.New("unexpected OrderByID call")
}

func (m *mockCommerce) OrderByPaymentID(ctx context.Context, paymentID string) (*model.Order, error) {
	if m.orderByPaymentID != nil {
		return m.orderByPaymentID(ctx, paymentID)
	}
	return nil, errors.New("unexpected OrderByPaymentID call")
}

func (m *mockCommerce) PaymentByID(ctx context.Context, id string) (*model.Payment, error) {
	if m.paymentByID != nil {
		return m.paymentByID(ctx, id)
	}
	return nil, errors.New("unexpected PaymentByID call")
}

func (m *mockCommerce) CustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	if m.customerByID != nil {
		return m.customerByID(ctx, id)
	}
	return nil, errors.New("unexpected CustomerByID call")
}

func testEventsConfig() config.EventsConfig {
	return config.EventsConfig{
		PlacedOrderMetric:    "Placed Order",
		OrderedProductMetric: "Ordered Product",
		RefundedOrderMetric:  "Refunded Order",
		StateChangeMetrics: map[string]string{
			"Cancelled": "Cancelled Order",
			"Complete":  "Fulfilled Order",
		},
		OrderProperties: []string{"customerEmail", "orderState"},
	}
}

func testDeps(commerce CommerceReader) Deps {
	events := testEventsConfig()
	return Deps{
		Commerce:  commerce,
		Orders:    mapper.NewOrderMapper(nil, events.AllowedProperties()),
		Customers: mapper.NewCustomerMapper(),
		Events:    events,
	}
}

func sampleOrder() *model.Order {
	return &model.Order{
		ID:            "order-1",
		CreatedAt:     "2024-01-15T10:30:00.000Z",
		CustomerID:    "customer-1",
		CustomerEmail: "buyer@example.com",
		TotalPrice:    model.TypedMoney{CurrencyCode: "USD", CentAmount: 1300, FractionDigits: 2},
		LineItems: []model.LineItem{
			{ID: "line-1", TotalPrice: model.TypedMoney{CurrencyCode: "USD", CentAmount: 500, FractionDigits: 2}},
			{ID: "line-2", TotalPrice: model.TypedMoney{CurrencyCode: "USD", CentAmount: 800, FractionDigits: 2}},
		},
	}
}

func TestRegistry_Instantiate(t *testing.T) {
	msg := &model.Message{Resource: model.Reference{TypeID: model.ResourceOrder}}

	processors := Default().Instantiate(msg, testDeps(&mockCommerce{}))

	require.Len(t, processors, 6)
	names := make(map[string]bool)
	for _, p := range processors {
		names[p.Name()] = true
	}
	assert.Len(t, names, 6, "every variant has a distinct name")
}

func TestApplicability(t *testing.T) {
	deps := testDeps(&mockCommerce{})

	tests := []struct {
		name      string
		construct Constructor
		msg       *model.Message
		want      bool
	}{
		{
			name:      "customer created with embedded customer",
			construct: NewCustomerCreated,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourceCustomer, ID: "c1"},
				Type:     model.MessageCustomerCreated,
				Customer: &model.Customer{ID: "c1"},
			},
			want: true,
		},
		{
			name:      "customer created without payload",
			construct: NewCustomerCreated,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourceCustomer, ID: "c1"},
				Type:     model.MessageCustomerCreated,
			},
			want: false,
		},
		{
			name:      "customer created on wrong resource",
			construct: NewCustomerCreated,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourceOrder, ID: "o1"},
				Type:     model.MessageCustomerCreated,
				Customer: &model.Customer{ID: "c1"},
			},
			want: false,
		},
		{
			name:      "company name set",
			construct: NewCustomerCompanyNameSet,
			msg: &model.Message{
				Resource:    model.Reference{TypeID: model.ResourceCustomer, ID: "c1"},
				Type:        model.MessageCustomerCompanyNameSet,
				CompanyName: "Acme",
			},
			want: true,
		},
		{
			name:      "order created",
			construct: NewOrderCreated,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourceOrder, ID: "o1"},
				Type:     model.MessageOrderCreated,
			},
			want: true,
		},
		{
			name:      "order imported matches the created variant",
			construct: NewOrderCreated,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourceOrder, ID: "o1"},
				Type:     model.MessageOrderImported,
			},
			want: true,
		},
		{
			name:      "order state changed",
			construct: NewOrderStateChanged,
			msg: &model.Message{
				Resource:   model.Reference{TypeID: model.ResourceOrder, ID: "o1"},
				Type:       model.MessageOrderStateChanged,
				OrderState: "Cancelled",
			},
			want: true,
		},
		{
			name:      "order state changed without state",
			construct: NewOrderStateChanged,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourceOrder, ID: "o1"},
				Type:     model.MessageOrderStateChanged,
			},
			want: false,
		},
		{
			name:      "successful refund transaction added",
			construct: NewOrderRefunded,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourcePayment, ID: "p1"},
				Type:     model.MessageTransactionAdded,
				Transaction: &model.Transaction{
					Type:  model.TransactionRefund,
					State: model.TransactionSuccess,
				},
			},
			want: true,
		},
		{
			name:      "pending refund transaction added",
			construct: NewOrderRefunded,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourcePayment, ID: "p1"},
				Type:     model.MessageTransactionAdded,
				Transaction: &model.Transaction{
					Type:  model.TransactionRefund,
					State: "Pending",
				},
			},
			want: false,
		},
		{
			name:      "charge transaction added",
			construct: NewOrderRefunded,
			msg: &model.Message{
				Resource: model.Reference{TypeID: model.ResourcePayment, ID: "p1"},
				Type:     model.MessageTransactionAdded,
				Transaction: &model.Transaction{
					Type:  "Charge",
					State: model.TransactionSuccess,
				},
			},
			want: false,
		},
		{
			name:      "transaction state set to success",
			construct: NewOrderRefunded,
			msg: &model.Message{
				Resource:         model.Reference{TypeID: model.ResourcePayment, ID: "p1"},
				Type:             model.MessageTransactionStateSet,
				TransactionState: model.TransactionSuccess,
			},
			want: true,
		},
		{
			name:      "transaction state set to failure",
			construct: NewOrderRefunded,
			msg: &model.Message{
				Resource:         model.Reference{TypeID: model.ResourcePayment, ID: "p1"},
				Type:             model.MessageTransactionStateSet,
				TransactionState: "Failure",
			},
			want: false,
		},
		{
			name:      "generic customer resource update",
			construct: NewCustomerResourceUpdated,
			msg: &model.Message{
				NotificationType: model.NotificationResourceUpdated,
				Resource:         model.Reference{TypeID: model.ResourceCustomer, ID: "c1"},
			},
			want: true,
		},
		{
			name:      "generic order resource update is ignored",
			construct: NewCustomerResourceUpdated,
			msg: &model.Message{
				NotificationType: model.NotificationResourceUpdated,
				Resource:         model.Reference{TypeID: model.ResourceOrder, ID: "o1"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.construct(tt.msg, deps)
			assert.Equal(t, tt.want, p.Applicable())
		})
	}
}

func TestOrderCreated_GenerateEvents(t *testing.T) {
	msg := &model.Message{
		Resource: model.Reference{TypeID: model.ResourceOrder, ID: "order-1"},
		Type:     model.MessageOrderCreated,
		Order:    sampleOrder(),
	}

	p := NewOrderCreated(msg, testDeps(&mockCommerce{}))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 3, "one order event plus one per line item")

	assert.Equal(t, "Placed Order", events[0].Event.Metric.Name)
	assert.Equal(t, "order-1", events[0].Event.UniqueID)
	assert.Equal(t, "Ordered Product", events[1].Event.Metric.Name)
	assert.Equal(t, "line-1", events[1].Event.UniqueID)
	assert.Equal(t, "Ordered Product", events[2].Event.Metric.Name)
	assert.Equal(t, "line-2", events[2].Event.UniqueID)
}

func TestOrderCreated_GenerateEvents_FetchesWhenNotEmbedded(t *testing.T) {
	var fetchedID string
	commerce := &mockCommerce{
		orderByID: func(_ context.Context, id string) (*model.Order, error) {
			fetchedID = id
			return sampleOrder(), nil
		},
	}
	msg := &model.Message{
		Resource: model.Reference{TypeID: model.ResourceOrder, ID: "order-1"},
		Type:     model.MessageOrderImported,
	}

	p := NewOrderCreated(msg, testDeps(commerce))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "order-1", fetchedID)
	assert.Len(t, events, 3)
}

func TestOrderCreated_GenerateEvents_FetchFailure(t *testing.T) {
	commerce := &mockCommerce{
		orderByID: func(context.Context, string) (*model.Order, error) {
			return nil, errors.New("boom")
		},
	}
	msg := &model.Message{
		Resource: model.Reference{TypeID: model.ResourceOrder, ID: "order-1"},
		Type:     model.MessageOrderCreated,
	}

	p := NewOrderCreated(msg, testDeps(commerce))
	events, err := p.GenerateEvents(context.Background())

	require.Error(t, err)
	assert.Nil(t, events)
}

func TestOrderStateChanged_GenerateEvents(t *testing.T) {
	commerce := &mockCommerce{
		orderByID: func(context.Context, string) (*model.Order, error) {
			return sampleOrder(), nil
		},
	}
	msg := &model.Message{
		Resource:   model.Reference{TypeID: model.ResourceOrder, ID: "order-1"},
		Type:       model.MessageOrderStateChanged,
		OrderState: "Cancelled",
		CreatedAt:  "2024-03-01T12:00:00.000Z",
	}

	p := NewOrderStateChanged(msg, testDeps(commerce))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Cancelled Order", events[0].Event.Metric.Name)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", events[0].Event.Time,
		"the transition time is the notification time, not the order creation time")
}

func TestOrderStateChanged_GenerateEvents_UnmappedState(t *testing.T) {
	msg := &model.Message{
		Resource:   model.Reference{TypeID: model.ResourceOrder, ID: "order-1"},
		Type:       model.MessageOrderStateChanged,
		OrderState: "Confirmed",
	}

	// No commerce call expected: the state gate comes first.
	p := NewOrderStateChanged(msg, testDeps(&mockCommerce{}))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	assert.Empty(t, events, "unmapped states are skipped, not failed")
}

func TestOrderRefunded_GenerateEvents(t *testing.T) {
	payment := &model.Payment{
		ID: "payment-1",
		Transactions: []model.Transaction{
			{Type: "Charge", State: model.TransactionSuccess, Amount: model.TypedMoney{CentAmount: 1300, FractionDigits: 2}},
			{Type: model.TransactionRefund, State: model.TransactionSuccess, Amount: model.TypedMoney{CentAmount: 600, FractionDigits: 2}},
			{Type: model.TransactionRefund, State: model.TransactionSuccess, Amount: model.TypedMoney{CentAmount: 400, FractionDigits: 2}},
			{Type: model.TransactionRefund, State: "Pending", Amount: model.TypedMoney{CentAmount: 9900, FractionDigits: 2}},
		},
	}
	commerce := &mockCommerce{
		paymentByID: func(context.Context, string) (*model.Payment, error) {
			return payment, nil
		},
		orderByPaymentID: func(context.Context, string) (*model.Order, error) {
			return sampleOrder(), nil
		},
	}
	msg := &model.Message{
		Resource:         model.Reference{TypeID: model.ResourcePayment, ID: "payment-1"},
		Type:             model.MessageTransactionStateSet,
		TransactionState: model.TransactionSuccess,
	}

	p := NewOrderRefunded(msg, testDeps(commerce))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Refunded Order", events[0].Event.Metric.Name)
	assert.InDelta(t, 10.00, events[0].Event.Value, 1e-9,
		"only successful refund transactions count")
}

func TestOrderRefunded_GenerateEvents_SumsAcrossOrderPayments(t *testing.T) {
	payments := map[string]*model.Payment{
		"payment-1": {
			ID: "payment-1",
			Transactions: []model.Transaction{
				{Type: model.TransactionRefund, State: model.TransactionSuccess, Amount: model.TypedMoney{CentAmount: 500, FractionDigits: 2}},
			},
		},
		"payment-2": {
			ID: "payment-2",
			Transactions: []model.Transaction{
				{Type: model.TransactionRefund, State: model.TransactionSuccess, Amount: model.TypedMoney{CentAmount: 300, FractionDigits: 2}},
				{Type: model.TransactionRefund, State: "Pending", Amount: model.TypedMoney{CentAmount: 9900, FractionDigits: 2}},
			},
		},
	}
	order := sampleOrder()
	order.PaymentInfo = &model.PaymentInfo{
		Payments: []model.Reference{
			{TypeID: "payment", ID: "payment-1"},
			{TypeID: "payment", ID: "payment-2"},
		},
	}
	commerce := &mockCommerce{
		paymentByID: func(_ context.Context, id string) (*model.Payment, error) {
			payment, ok := payments[id]
			if !ok {
				return nil, errors.New("unknown payment " + id)
			}
			return payment, nil
		},
		orderByPaymentID: func(context.Context, string) (*model.Order, error) {
			return order, nil
		},
	}
	msg := &model.Message{
		Resource:         model.Reference{TypeID: model.ResourcePayment, ID: "payment-1"},
		Type:             model.MessageTransactionStateSet,
		TransactionState: model.TransactionSuccess,
	}

	p := NewOrderRefunded(msg, testDeps(commerce))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.InDelta(t, 8.00, events[0].Event.Value, 1e-9,
		"the value is the order's cumulative refund, not one payment's share")
}

func TestOrderRefunded_GenerateEvents_NoSuccessfulRefund(t *testing.T) {
	commerce := &mockCommerce{
		paymentByID: func(context.Context, string) (*model.Payment, error) {
			return &model.Payment{
				ID: "payment-1",
				Transactions: []model.Transaction{
					{Type: model.TransactionRefund, State: "Pending", Amount: model.TypedMoney{CentAmount: 500, FractionDigits: 2}},
				},
			}, nil
		},
		orderByPaymentID: func(context.Context, string) (*model.Order, error) {
			return sampleOrder(), nil
		},
	}
	msg := &model.Message{
		Resource:         model.Reference{TypeID: model.ResourcePayment, ID: "payment-1"},
		Type:             model.MessageTransactionStateSet,
		TransactionState: model.TransactionSuccess,
	}

	p := NewOrderRefunded(msg, testDeps(commerce))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOrderRefunded_GenerateEvents_OrderNotFound(t *testing.T) {
	commerce := &mockCommerce{
		paymentByID: func(context.Context, string) (*model.Payment, error) {
			return &model.Payment{
				ID: "payment-1",
				Transactions: []model.Transaction{
					{Type: model.TransactionRefund, State: model.TransactionSuccess, Amount: model.TypedMoney{CentAmount: 1000, FractionDigits: 2}},
				},
			}, nil
		},
		orderByPaymentID: func(context.Context, string) (*model.Order, error) {
			return nil, errors.New("resource not found")
		},
	}
	msg := &model.Message{
		Resource:         model.Reference{TypeID: model.ResourcePayment, ID: "payment-1"},
		Type:             model.MessageTransactionStateSet,
		TransactionState: model.TransactionSuccess,
	}

	p := NewOrderRefunded(msg, testDeps(commerce))
	_, err := p.GenerateEvents(context.Background())

	require.Error(t, err, "a refund with no resolvable order is a hard failure")
}

func TestCustomerCreated_GenerateEvents(t *testing.T) {
	msg := &model.Message{
		Resource: model.Reference{TypeID: model.ResourceCustomer, ID: "customer-1"},
		Type:     model.MessageCustomerCreated,
		Customer: &model.Customer{ID: "customer-1", Email: "x@example.com"},
	}

	p := NewCustomerCreated(msg, testDeps(&mockCommerce{}))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.KindProfile, events[0].Kind)
	assert.Equal(t, "customer-1", events[0].Profile.ExternalID)
}

func TestCustomerCompanyNameSet_GenerateEvents(t *testing.T) {
	t.Run("with company name", func(t *testing.T) {
		msg := &model.Message{
			Resource:    model.Reference{TypeID: model.ResourceCustomer, ID: "customer-1"},
			Type:        model.MessageCustomerCompanyNameSet,
			CompanyName: "Acme",
		}

		p := NewCustomerCompanyNameSet(msg, testDeps(&mockCommerce{}))
		events, err := p.GenerateEvents(context.Background())

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Acme", events[0].Profile.Organization)
	})

	t.Run("empty company name is skipped", func(t *testing.T) {
		msg := &model.Message{
			Resource: model.Reference{TypeID: model.ResourceCustomer, ID: "customer-1"},
			Type:     model.MessageCustomerCompanyNameSet,
		}

		p := NewCustomerCompanyNameSet(msg, testDeps(&mockCommerce{}))
		events, err := p.GenerateEvents(context.Background())

		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestCustomerResourceUpdated_GenerateEvents(t *testing.T) {
	commerce := &mockCommerce{
		customerByID: func(_ context.Context, id string) (*model.Customer, error) {
			return &model.Customer{ID: id, Email: "fresh@example.com"}, nil
		},
	}
	msg := &model.Message{
		NotificationType: model.NotificationResourceUpdated,
		Resource:         model.Reference{TypeID: model.ResourceCustomer, ID: "customer-1"},
	}

	p := NewCustomerResourceUpdated(msg, testDeps(commerce))
	events, err := p.GenerateEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fresh@example.com", events[0].Profile.Email,
		"the current state is fetched, never the stale notification payload")
}

func TestCustomerResourceUpdated_GenerateEvents_FetchFailure(t *testing.T) {
	commerce := &mockCommerce{
		customerByID: func(context.Context, string) (*model.Customer, error) {
			return nil, errors.New("boom")
		},
	}
	msg := &model.Message{
		NotificationType: model.NotificationResourceUpdated,
		Resource:         model.Reference{TypeID: model.ResourceCustomer, ID: "customer-1"},
	}

	p := NewCustomerResourceUpdated(msg, testDeps(commerce))
	_, err := p.GenerateEvents(context.Background())

	require.Error(t, err)
}
