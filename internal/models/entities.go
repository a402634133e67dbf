package models

import (
	"time"
)

// PaymentStatus is the lifecycle state of a Transaction.
// PENDING is the only non-terminal state
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusExpired PaymentStatus = "EXPIRED"
)

// IsTerminal reports whether the status accepts no further transitions
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusExpired
}

// DraftLine is one intended purchase line with authoritative price and weight
// re-read from the catalog at draft construction time
type DraftLine struct {
	ProductID   int64
	VariantID   *int64
	ProductName string
	Quantity    int
	UnitPrice   int64
	WeightGrams int64
}

// OrderDraft is the unpersisted snapshot of what the customer intends to buy.
// It is returned by value and never mutated after construction
type OrderDraft struct {
	CustomerID  int64
	Lines       []DraftLine
	Subtotal    int64
	TotalWeight int64
}

// ShippingQuote is one courier/service option returned by the rate API
type ShippingQuote struct {
	CourierCode   string
	ServiceName   string
	Description   string
	Cost          int64
	ETA           string
	OriginID      string
	DestinationID string
}

// TransactionLine is the persisted copy of a DraftLine, frozen at checkout time
type TransactionLine struct {
	TransactionID int64
	ProductID     int64
	VariantID     *int64
	ProductName   string
	Quantity      int
	UnitPrice     int64
	WeightGrams   int64
}

// Transaction is the persisted record of a checkout attempt.
// TotalAmount is fixed at creation and never recomputed from live catalog data
type Transaction struct {
	TransactionID int64
	OrderID       string
	CustomerID    int64
	Lines         []TransactionLine
	Subtotal      int64
	ShippingCost  int64
	FeeAmount     int64
	Discount      int64
	TotalAmount   int64
	PaymentMethod string
	PaymentStatus PaymentStatus
	Courier       string
	WaybillNumber *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PaymentNotification is one verified webhook delivery from the payment gateway
type PaymentNotification struct {
	OrderID           string
	TransactionStatus string
	FraudStatus       string
	StatusCode        string
	GrossAmount       string
	PaymentType       string
	SignatureKey      string
	RawPayload        []byte
}

// Customer is the checkout-relevant slice of a customer profile
type Customer struct {
	CustomerID int64
	Name       string
	Email      string
	Phone      string
	Address    string
	CityID     string
	ProvinceID string
}

// Variant is the authoritative catalog record for pricing and stock checks
type Variant struct {
	ProductID     int64
	VariantID     *int64
	ProductName   string
	UnitPrice     int64
	StockQuantity int
	WeightGrams   int64
}

// CartItem is one line of the persisted cart as read from the cart source
type CartItem struct {
	ProductID int64
	VariantID *int64
	Quantity  int
}

// OrderPaidEvent is published to kafka after a transaction first reaches SUCCESS
type OrderPaidEvent struct {
	EventID     string `json:"event_id"`
	OrderID     string `json:"order_id"`
	CustomerID  int64  `json:"customer_id"`
	TotalAmount int64  `json:"total_amount"`
	PaidAt      string `json:"paid_at"`
}
