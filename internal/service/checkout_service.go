package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
)

// paymentChannels maps a storefront payment method to the gateway channels it
// enables. An empty method leaves all channels open
var paymentChannels = map[string][]string{
	"bank_transfer": {"bank_transfer"},
	"credit_card":   {"credit_card"},
	"gopay":         {"gopay"},
	"qris":          {"qris"},
}

// CheckoutRequest is one checkout attempt: a priced draft, the customer profile
// the caller already loaded, the chosen shipping quote and the payment method.
// OrderID may be caller-supplied; it must then be unique per merchant account
type CheckoutRequest struct {
	Customer      models.Customer
	OrderID       string
	Draft         models.OrderDraft
	Quote         models.ShippingQuote
	PaymentMethod string
	FeeAmount     int64
	Discount      int64
}

// CheckoutResult carries the persisted transaction and the gateway token the
// client finishes payment with. The token is ephemeral and not persisted
type CheckoutResult struct {
	Transaction models.Transaction
	Token       string
	RedirectURL string
	VANumbers   []ports.VANumber
}

// CheckoutService is the checkout orchestrator: it freezes the draft into a
// PENDING transaction and requests a gateway payment token for it
type CheckoutService struct {
	storage ports.TransactionStorage
	gateway ports.PaymentGateway
	timeout time.Duration
}

func NewCheckoutService(storage ports.TransactionStorage, gateway ports.PaymentGateway, timeout time.Duration) *CheckoutService {
	return &CheckoutService{
		storage: storage,
		gateway: gateway,
		timeout: timeout,
	}
}

// CreateCheckout runs the per-attempt state machine:
//
//  1. pricing: the subtotal comes from the draft, never from the client; the
//     total is subtotal + shipping + fee - discount in smallest currency units
//  2. transaction reservation: the PENDING row is persisted BEFORE the gateway
//     call so a gateway failure still leaves an auditable, retryable record
//  3. gateway call: on success the token is returned to the caller; the
//     transaction stays PENDING until a webhook is reconciled
//
// An InvalidRequest rejection from the gateway moves the row to FAILED; every
// other gateway failure keeps it PENDING for a later retry. The row is never
// silently dropped
func (s *CheckoutService) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	if len(req.Draft.Lines) == 0 {
		return CheckoutResult{}, customerrors.ErrEmptyDraft
	}

	if strings.TrimSpace(req.Customer.Address) == "" ||
		strings.TrimSpace(req.Customer.CityID) == "" ||
		strings.TrimSpace(req.Customer.ProvinceID) == "" {
		return CheckoutResult{}, customerrors.ErrIncompleteAddress
	}

	subtotal := int64(0)
	for _, line := range req.Draft.Lines {
		subtotal += int64(line.Quantity) * line.UnitPrice
	}
	total := subtotal + req.Quote.Cost + req.FeeAmount - req.Discount
	if total < 0 {
		return CheckoutResult{}, fmt.Errorf("discount %d against total %d: %w",
			req.Discount, total+req.Discount, customerrors.ErrInvalidDiscount)
	}

	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		orderID = newOrderID()
	}

	lines := make([]models.TransactionLine, len(req.Draft.Lines))
	for i, line := range req.Draft.Lines {
		lines[i] = models.TransactionLine{
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			WeightGrams: line.WeightGrams,
		}
	}

	tx := models.Transaction{
		OrderID:       orderID,
		CustomerID:    req.Customer.CustomerID,
		Lines:         lines,
		Subtotal:      subtotal,
		ShippingCost:  req.Quote.Cost,
		FeeAmount:     req.FeeAmount,
		Discount:      req.Discount,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		Courier:       req.Quote.CourierCode,
	}

	tx, err := s.storage.SaveTransaction(ctx, tx)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("couldn't persist transaction: %w", err)
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	charge, err := s.gateway.Charge(chargeCtx, ports.ChargeRequest{
		OrderID:         orderID,
		GrossAmount:     total,
		Customer:        req.Customer,
		EnabledPayments: paymentChannels[req.PaymentMethod],
		Lines:           req.Draft.Lines,
		ShippingCost:    req.Quote.Cost,
	})
	if err != nil {
		var gwErr *customerrors.GatewayError
		if errors.As(err, &gwErr) && gwErr.Kind == customerrors.GatewayInvalidRequest {
			// the gateway rejected the payload itself, a retry with the same
			// request cannot succeed
			if _, casErr := s.storage.UpdateStatusIfPending(ctx, orderID, models.PaymentStatusFailed); casErr != nil {
				logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "couldn't mark rejected checkout failed",
					zap.String("order_id", orderID), zap.Error(casErr))
			}
		}
		logger.GetOrCreateLoggerFromCtx(ctx).Warn(ctx, "gateway charge failed, transaction retained",
			zap.String("order_id", orderID), zap.Error(err))
		return CheckoutResult{Transaction: tx}, err
	}

	logger.GetOrCreateLoggerFromCtx(ctx).Info(ctx, "checkout created",
		zap.String("order_id", orderID), zap.Int64("total_amount", total))

	return CheckoutResult{
		Transaction: tx,
		Token:       charge.Token,
		RedirectURL: charge.RedirectURL,
		VANumbers:   charge.VANumbers,
	}, nil
}

// newOrderID builds a merchant-unique external order code
func newOrderID() string {
	return fmt.Sprintf("FP-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}
