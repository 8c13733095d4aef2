package model

// TypedMoney is a cent-precision monetary amount.
type TypedMoney struct {
	Type           string `json:"type,omitempty"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int32  `json:"fractionDigits"`
}

// LineItem is one purchased product line on an order.
type LineItem struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"productId,omitempty"`
	ProductKey string            `json:"productKey,omitempty"`
	Name       map[string]string `json:"name,omitempty"`
	Quantity   int64             `json:"quantity,omitempty"`
	TotalPrice TypedMoney        `json:"totalPrice"`
}

// PaymentInfo references the payments attached to an order.
type PaymentInfo struct {
	Payments []Reference `json:"payments,omitempty"`
}

// Order is the commerce platform order resource, reduced to the fields
// the mapping layer reads.
type Order struct {
	ID             string       `json:"id"`
	Version        int64        `json:"version,omitempty"`
	CreatedAt      string       `json:"createdAt,omitempty"`
	LastModifiedAt string       `json:"lastModifiedAt,omitempty"`
	CustomerID     string       `json:"customerId,omitempty"`
	CustomerEmail  string       `json:"customerEmail,omitempty"`
	TotalPrice     TypedMoney   `json:"totalPrice"`
	LineItems      []LineItem   `json:"lineItems,omitempty"`
	OrderState     string       `json:"orderState,omitempty"`
	ShippingMode   string       `json:"shippingMode,omitempty"`
	Origin         string       `json:"origin,omitempty"`
	PaymentInfo    *PaymentInfo `json:"paymentInfo,omitempty"`
}

// Transaction is one movement of money on a payment.
type Transaction struct {
	ID        string     `json:"id"`
	Timestamp string     `json:"timestamp,omitempty"`
	Type      string     `json:"type"`
	Amount    TypedMoney `json:"amount"`
	State     string     `json:"state"`
}

// Transaction type and state values relevant to refund detection.
const (
	TransactionRefund  = "Refund"
	TransactionSuccess = "Success"
)

// Payment is the commerce platform payment resource.
type Payment struct {
	ID            string        `json:"id"`
	Key           string        `json:"key,omitempty"`
	InterfaceID   string        `json:"interfaceId,omitempty"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	AmountPlanned TypedMoney    `json:"amountPlanned"`
	Transactions  []Transaction `json:"transactions,omitempty"`
}

// Address is a customer postal address.
type Address struct {
	ID                    string `json:"id,omitempty"`
	Title                 string `json:"title,omitempty"`
	FirstName             string `json:"firstName,omitempty"`
	LastName              string `json:"lastName,omitempty"`
	StreetName            string `json:"streetName,omitempty"`
	StreetNumber          string `json:"streetNumber,omitempty"`
	AdditionalStreetInfo  string `json:"additionalStreetInfo,omitempty"`
	PostalCode            string `json:"postalCode,omitempty"`
	City                  string `json:"city,omitempty"`
	Region                string `json:"region,omitempty"`
	State                 string `json:"state,omitempty"`
	Country               string `json:"country,omitempty"`
	Building              string `json:"building,omitempty"`
	Apartment             string `json:"apartment,omitempty"`
	AdditionalAddressInfo string `json:"additionalAddressInfo,omitempty"`
	Phone                 string `json:"phone,omitempty"`
	Mobile                string `json:"mobile,omitempty"`
	Email                 string `json:"email,omitempty"`
}

// Customer is the commerce platform customer resource.
type Customer struct {
	ID                      string    `json:"id"`
	Version                 int64     `json:"version,omitempty"`
	CreatedAt               string    `json:"createdAt,omitempty"`
	LastModifiedAt          string    `json:"lastModifiedAt,omitempty"`
	Email                   string    `json:"email,omitempty"`
	FirstName               string    `json:"firstName,omitempty"`
	LastName                string    `json:"lastName,omitempty"`
	MiddleName              string    `json:"middleName,omitempty"`
	Title                   string    `json:"title,omitempty"`
	CompanyName             string    `json:"companyName,omitempty"`
	Addresses               []Address `json:"addresses,omitempty"`
	DefaultBillingAddressID string    `json:"defaultBillingAddressId,omitempty"`
	BillingAddressIDs       []string  `json:"billingAddressIds,omitempty"`
}
