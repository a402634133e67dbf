package ports

import (
	"context"

	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/pkg/pkgports"
)

// TransactionStorage port describes the persistent transaction store, e.g. postgres.
//
// UpdateStatusIfPending must be a conditional (compare-and-set) write: the status
// changes only while the current status is still PENDING, and the return value
// reports whether this call won the transition
type TransactionStorage interface {
	SaveTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	GetTransactionByOrderID(ctx context.Context, orderID string) (models.Transaction, error)
	UpdateStatusIfPending(ctx context.Context, orderID string, to models.PaymentStatus) (bool, error)
	DecrementStock(ctx context.Context, lines []models.TransactionLine) error
}

// ProductCatalog port reads authoritative price, stock and weight per variant.
// Client-supplied prices are never trusted
type ProductCatalog interface {
	GetVariant(ctx context.Context, productID int64, variantID *int64) (models.Variant, error)
}

// CartSource port reads the customer's persisted cart selection
type CartSource interface {
	GetCartItems(ctx context.Context, customerID int64) ([]models.CartItem, error)
}

// CustomerSource port reads the checkout-relevant slice of a customer profile
type CustomerSource interface {
	GetCustomer(ctx context.Context, customerID int64) (models.Customer, error)
}

// RateProvider port describes the external shipping rate API.
// One call covers a single courier for a single route and weight
type RateProvider interface {
	GetRates(ctx context.Context, originID, destinationID string, weightGrams int64, courier string) ([]models.ShippingQuote, error)
}

// ChargeRequest is the gateway transaction creation payload
type ChargeRequest struct {
	OrderID         string
	GrossAmount     int64
	Customer        models.Customer
	EnabledPayments []string
	Lines           []models.DraftLine
	ShippingCost    int64
}

// VANumber is one virtual account assignment for bank transfer flows
type VANumber struct {
	Bank     string `json:"bank"`
	VANumber string `json:"va_number"`
}

// ChargeResponse carries the opaque token the client finishes payment with
type ChargeResponse struct {
	Token       string
	RedirectURL string
	VANumbers   []VANumber
}

// PaymentGateway port wraps the external payment API: transaction creation and
// webhook payload verification. It holds no local state
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResponse, error)
	VerifyNotification(payload []byte) (models.PaymentNotification, error)
}

// QuoteCache caches rate API responses per route/weight/courier
type QuoteCache pkgports.Cache[string, []models.ShippingQuote]

// EventPublisher publishes domain events, e.g. to kafka
type EventPublisher interface {
	PublishOrderPaid(ctx context.Context, event models.OrderPaidEvent) error
}

// PaidEventReceiver is the consumer port of the notification worker
type PaidEventReceiver[MessageType any] pkgports.Receiver[models.OrderPaidEvent, MessageType]

// MailSender dispatches a transactional confirmation message
type MailSender interface {
	SendOrderConfirmation(ctx context.Context, email string, event models.OrderPaidEvent) error
}
