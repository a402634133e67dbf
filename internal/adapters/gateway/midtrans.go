package gateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
)

// SnapGateway is the Midtrans-style implementation of ports.PaymentGateway.
// It has no side effects beyond the outbound HTTP call and no local state
type SnapGateway struct {
	baseURL   string
	serverKey string
	client    *http.Client
}

// NewSnapGateway creates a gateway client with a bounded request timeout
func NewSnapGateway(baseURL, serverKey string, timeout time.Duration) *SnapGateway {
	return &SnapGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		serverKey: serverKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type snapCustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type snapChargeBody struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	ItemDetails        []snapItemDetail       `json:"item_details"`
	CustomerDetails    snapCustomerDetails    `json:"customer_details"`
	EnabledPayments    []string               `json:"enabled_payments,omitempty"`
}

type snapChargeResponse struct {
	Token         string           `json:"token"`
	RedirectURL   string           `json:"redirect_url"`
	VANumbers     []ports.VANumber `json:"va_numbers"`
	ErrorMessages []string         `json:"error_messages"`
}

// Charge creates a gateway transaction and returns the opaque payment token.
// Provider errors are mapped to the closed customerrors.GatewayErrorKind set;
// raw provider bodies never reach the caller's client
func (g *SnapGateway) Charge(ctx context.Context, req ports.ChargeRequest) (ports.ChargeResponse, error) {
	items := make([]snapItemDetail, 0, len(req.Lines)+1)
	for _, line := range req.Lines {
		id := fmt.Sprintf("P%d", line.ProductID)
		if line.VariantID != nil {
			id = fmt.Sprintf("P%d-V%d", line.ProductID, *line.VariantID)
		}
		items = append(items, snapItemDetail{
			ID:       id,
			Name:     line.ProductName,
			Price:    line.UnitPrice,
			Quantity: line.Quantity,
		})
	}
	if req.ShippingCost > 0 {
		items = append(items, snapItemDetail{ID: "SHIPPING", Name: "Ongkos Kirim", Price: req.ShippingCost, Quantity: 1})
	}

	body := snapChargeBody{
		TransactionDetails: snapTransactionDetails{OrderID: req.OrderID, GrossAmount: req.GrossAmount},
		ItemDetails:        items,
		CustomerDetails: snapCustomerDetails{
			FirstName: req.Customer.Name,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
		EnabledPayments: req.EnabledPayments,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(customerrors.GatewayInvalidRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/snap/v1/transactions", bytes.NewReader(data))
	if err != nil {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(customerrors.GatewayInvalidRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(g.serverKey, "")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(customerrors.GatewayUnknown, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(customerrors.GatewayUnknown, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(mapStatusCode(resp.StatusCode),
			fmt.Errorf("gateway returned status %d", resp.StatusCode))
	}

	var parsed snapChargeResponse
	if err = json.Unmarshal(raw, &parsed); err != nil {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(customerrors.GatewayUnknown, err)
	}
	if parsed.Token == "" {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(customerrors.GatewayUnknown,
			fmt.Errorf("gateway response carried no token"))
	}

	return ports.ChargeResponse{
		Token:       parsed.Token,
		RedirectURL: parsed.RedirectURL,
		VANumbers:   parsed.VANumbers,
	}, nil
}

func mapStatusCode(code int) customerrors.GatewayErrorKind {
	switch {
	case code == http.StatusUnauthorized:
		return customerrors.GatewayAuthenticationFailed
	case code == http.StatusTooManyRequests:
		return customerrors.GatewayRateLimited
	case code == http.StatusBadGateway || code == http.StatusServiceUnavailable:
		return customerrors.GatewayChannelUnavailable
	case code >= 400 && code < 500:
		return customerrors.GatewayInvalidRequest
	default:
		return customerrors.GatewayUnknown
	}
}

// notificationPayload mirrors the webhook JSON we care about
type notificationPayload struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	SignatureKey      string `json:"signature_key"`
}

// VerifyNotification recomputes the expected signature from merchant credentials
// and the payload fields and compares it in constant time. A mismatch rejects
// the notification; it is never processed
func (g *SnapGateway) VerifyNotification(payload []byte) (models.PaymentNotification, error) {
	var parsed notificationPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return models.PaymentNotification{}, fmt.Errorf("couldn't decode notification: %w", customerrors.ErrVerificationFailed)
	}
	if parsed.OrderID == "" || parsed.SignatureKey == "" {
		return models.PaymentNotification{}, customerrors.ErrVerificationFailed
	}

	expected := Signature(parsed.OrderID, parsed.StatusCode, parsed.GrossAmount, g.serverKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parsed.SignatureKey)) != 1 {
		return models.PaymentNotification{}, customerrors.ErrVerificationFailed
	}

	return models.PaymentNotification{
		OrderID:           parsed.OrderID,
		TransactionStatus: parsed.TransactionStatus,
		FraudStatus:       parsed.FraudStatus,
		StatusCode:        parsed.StatusCode,
		GrossAmount:       parsed.GrossAmount,
		PaymentType:       parsed.PaymentType,
		SignatureKey:      parsed.SignatureKey,
		RawPayload:        payload,
	}, nil
}

// Signature computes sha512(order_id + status_code + gross_amount + server_key)
// the way the gateway signs its notifications
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
