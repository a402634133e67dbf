package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
)

const testServerKey = "SB-Mid-server-testkey"

func TestSignature(t *testing.T) {
	got := Signature("ORDER-1", "200", "162000.00", testServerKey)

	sum := sha512.Sum512([]byte("ORDER-1" + "200" + "162000.00" + testServerKey))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestSnapGateway_VerifyNotification(t *testing.T) {
	g := NewSnapGateway("https://app.sandbox.midtrans.com", testServerKey, time.Second)

	valid := map[string]string{
		"order_id":           "ORDER-1",
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       "162000.00",
		"payment_type":       "bank_transfer",
		"signature_key":      Signature("ORDER-1", "200", "162000.00", testServerKey),
	}

	t.Run("valid signature", func(t *testing.T) {
		payload, _ := json.Marshal(valid)
		notification, err := g.VerifyNotification(payload)
		require.NoError(t, err)
		assert.Equal(t, "ORDER-1", notification.OrderID)
		assert.Equal(t, "settlement", notification.TransactionStatus)
		assert.Equal(t, payload, notification.RawPayload)
	})

	t.Run("tampered amount", func(t *testing.T) {
		tampered := map[string]string{}
		for k, v := range valid {
			tampered[k] = v
		}
		tampered["gross_amount"] = "1.00"
		payload, _ := json.Marshal(tampered)
		_, err := g.VerifyNotification(payload)
		assert.ErrorIs(t, err, customerrors.ErrVerificationFailed)
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := g.VerifyNotification([]byte(`{"order_id":"ORDER-1"}`))
		assert.ErrorIs(t, err, customerrors.ErrVerificationFailed)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := g.VerifyNotification([]byte("not json"))
		assert.ErrorIs(t, err, customerrors.ErrVerificationFailed)
	})
}

func TestSnapGateway_Charge(t *testing.T) {
	var seen struct {
		authUser string
		body     snapChargeBody
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.authUser, _, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&seen.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprint(w, `{"token":"snap-token","redirect_url":"https://pay.example/snap-token"}`)
	}))
	defer server.Close()

	variantID := int64(10)
	g := NewSnapGateway(server.URL, testServerKey, time.Second)
	resp, err := g.Charge(context.Background(), ports.ChargeRequest{
		OrderID:     "ORDER-1",
		GrossAmount: 162000,
		Lines: []models.DraftLine{
			{ProductID: 1, VariantID: &variantID, ProductName: "Kemeja Flanel", Quantity: 2, UnitPrice: 75000},
		},
		ShippingCost: 12000,
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-token", resp.Token)

	assert.Equal(t, testServerKey, seen.authUser)
	assert.Equal(t, "ORDER-1", seen.body.TransactionDetails.OrderID)
	assert.Equal(t, int64(162000), seen.body.TransactionDetails.GrossAmount)
	require.Len(t, seen.body.ItemDetails, 2)
	assert.Equal(t, "P1-V10", seen.body.ItemDetails[0].ID)
	assert.Equal(t, "SHIPPING", seen.body.ItemDetails[1].ID)
	assert.Equal(t, int64(12000), seen.body.ItemDetails[1].Price)
}

func TestSnapGateway_Charge_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   customerrors.GatewayErrorKind
	}{
		{name: "bad request", status: http.StatusBadRequest, want: customerrors.GatewayInvalidRequest},
		{name: "unauthorized", status: http.StatusUnauthorized, want: customerrors.GatewayAuthenticationFailed},
		{name: "rate limited", status: http.StatusTooManyRequests, want: customerrors.GatewayRateLimited},
		{name: "bad gateway", status: http.StatusBadGateway, want: customerrors.GatewayChannelUnavailable},
		{name: "service unavailable", status: http.StatusServiceUnavailable, want: customerrors.GatewayChannelUnavailable},
		{name: "teapot", status: http.StatusTeapot, want: customerrors.GatewayInvalidRequest},
		{name: "internal error", status: http.StatusInternalServerError, want: customerrors.GatewayUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, `{"error_messages":["provider detail that must not leak"]}`)
			}))
			defer server.Close()

			g := NewSnapGateway(server.URL, testServerKey, time.Second)
			_, err := g.Charge(context.Background(), ports.ChargeRequest{OrderID: "ORDER-1", GrossAmount: 1000})
			require.Error(t, err)

			var gwErr *customerrors.GatewayError
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tt.want, gwErr.Kind)
			assert.NotContains(t, gwErr.Error(), "provider detail")
		})
	}
}

func TestSnapGateway_Charge_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	g := NewSnapGateway(server.URL, testServerKey, time.Second)
	_, err := g.Charge(context.Background(), ports.ChargeRequest{OrderID: "ORDER-1", GrossAmount: 1000})

	var gwErr *customerrors.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, customerrors.GatewayUnknown, gwErr.Kind)
}
