package model

// PushEnvelope is the push-messaging wrapper delivered to the webhook.
// The inner data field is the base64-encoded change notification.
type PushEnvelope struct {
	Message      *PushMessage `json:"message" validate:"required"`
	Subscription string       `json:"subscription,omitempty"`
}

// PushMessage carries the encoded notification payload.
// encoding/json base64-decodes Data transparently.
type PushMessage struct {
	Data        []byte            `json:"data" validate:"required"`
	MessageID   string            `json:"messageId,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
}

// Reference points at a commerce platform resource.
type Reference struct {
	TypeID string `json:"typeId"`
	ID     string `json:"id"`
}

// PayloadNotIncluded signals that the notification carries only a
// reference and the full resource must be fetched.
type PayloadNotIncluded struct {
	Reason      string `json:"reason,omitempty"`
	PayloadType string `json:"payloadType,omitempty"`
}

// Message is the decoded change notification for one domain event.
// Only the fields relevant to the subscribed message types are modeled;
// type-specific payload fields are populated depending on Type.
type Message struct {
	ID               string              `json:"id,omitempty"`
	NotificationType string              `json:"notificationType,omitempty"`
	ProjectKey       string              `json:"projectKey,omitempty"`
	Resource         Reference           `json:"resource"`
	ResourceVersion  int64               `json:"resourceVersion,omitempty"`
	Type             string              `json:"type,omitempty"`
	Version          int64               `json:"version,omitempty"`
	SequenceNumber   int64               `json:"sequenceNumber,omitempty"`
	CreatedAt        string              `json:"createdAt,omitempty"`
	LastModifiedAt   string              `json:"lastModifiedAt,omitempty"`
	PayloadNotIncl   *PayloadNotIncluded `json:"payloadNotIncluded,omitempty"`

	// CustomerCreated
	Customer *Customer `json:"customer,omitempty"`
	// CustomerCompanyNameSet
	CompanyName string `json:"companyName,omitempty"`
	// OrderCreated / OrderImported
	Order *Order `json:"order,omitempty"`
	// OrderStateChanged
	OrderState    string `json:"orderState,omitempty"`
	OldOrderState string `json:"oldOrderState,omitempty"`
	// PaymentTransactionAdded
	Transaction *Transaction `json:"transaction,omitempty"`
	// PaymentTransactionStateChanged
	TransactionID    string `json:"transactionId,omitempty"`
	TransactionState string `json:"state,omitempty"`
}

// Notification and message type discriminators used by the processors.
const (
	NotificationMessage         = "Message"
	NotificationResourceUpdated = "ResourceUpdated"

	ResourceCustomer = "customer"
	ResourceOrder    = "order"
	ResourcePayment  = "payment"

	MessageCustomerCreated        = "CustomerCreated"
	MessageCustomerCompanyNameSet = "CustomerCompanyNameSet"
	MessageOrderCreated           = "OrderCreated"
	MessageOrderImported          = "OrderImported"
	MessageOrderStateChanged      = "OrderStateChanged"
	MessageTransactionAdded       = "PaymentTransactionAdded"
	MessageTransactionStateSet    = "PaymentTransactionStateChanged"
)
