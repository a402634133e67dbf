package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
)

func validCustomer() models.Customer {
	return models.Customer{
		CustomerID: 42,
		Name:       "Budi",
		Email:      "budi@example.com",
		Phone:      "0812000001",
		Address:    "Jl. Melati 1",
		CityID:     "114",
		ProvinceID: "9",
	}
}

func noAddressCustomer() models.Customer {
	return models.Customer{CustomerID: 43, Name: "Sari", Email: "sari@example.com"}
}

func twoLineDraft() models.OrderDraft {
	return models.OrderDraft{
		CustomerID: 42,
		Lines: []models.DraftLine{
			{ProductID: 1, ProductName: "Kemeja Flanel", Quantity: 2, UnitPrice: 50000, WeightGrams: 300},
			{ProductID: 2, ProductName: "Celana Chino", Quantity: 1, UnitPrice: 30000, WeightGrams: 450},
		},
		Subtotal: 130000,
	}
}

func TestCheckoutService_CreateCheckout_TotalFromDraftAndQuote(t *testing.T) {
	storage := newFakeStorage()
	gw := &fakeGateway{}
	svc := NewCheckoutService(storage, gw, time.Second)

	result, err := svc.CreateCheckout(context.Background(), CheckoutRequest{
		Customer: validCustomer(),
		Draft:    twoLineDraft(),
		Quote:    models.ShippingQuote{CourierCode: "jne", ServiceName: "REG", Cost: 15000},
	})
	require.NoError(t, err)

	// 2*50000 + 1*30000 + 15000
	assert.Equal(t, int64(145000), result.Transaction.TotalAmount)
	assert.Equal(t, int64(42), result.Transaction.CustomerID)
	assert.Equal(t, models.PaymentStatusPending, result.Transaction.PaymentStatus)
	assert.Equal(t, "token-1", result.Token)

	require.Len(t, gw.chargeRequests, 1)
	assert.Equal(t, int64(145000), gw.chargeRequests[0].GrossAmount)
	assert.Equal(t, result.Transaction.OrderID, gw.chargeRequests[0].OrderID)
	assert.Equal(t, "budi@example.com", gw.chargeRequests[0].Customer.Email)
}

func TestCheckoutService_CreateCheckout_SingleLineScenario(t *testing.T) {
	storage := newFakeStorage()
	svc := NewCheckoutService(storage, &fakeGateway{}, time.Second)

	variantID := int64(10)
	result, err := svc.CreateCheckout(context.Background(), CheckoutRequest{
		Customer: validCustomer(),
		Draft: models.OrderDraft{
			CustomerID: 42,
			Lines:      []models.DraftLine{{ProductID: 1, VariantID: &variantID, Quantity: 2, UnitPrice: 75000, WeightGrams: 500}},
			Subtotal:   150000,
		},
		Quote: models.ShippingQuote{CourierCode: "jne", Cost: 12000, ETA: "2-3"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(162000), result.Transaction.TotalAmount)
}

func TestCheckoutService_CreateCheckout_FeeAndDiscount(t *testing.T) {
	storage := newFakeStorage()
	svc := NewCheckoutService(storage, &fakeGateway{}, time.Second)

	result, err := svc.CreateCheckout(context.Background(), CheckoutRequest{
		Customer:  validCustomer(),
		Draft:     twoLineDraft(),
		Quote:     models.ShippingQuote{CourierCode: "jne", Cost: 15000},
		FeeAmount: 4000,
		Discount:  10000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(139000), result.Transaction.TotalAmount)
}

func TestCheckoutService_CreateCheckout_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     CheckoutRequest
		wantErr error
	}{
		{
			name:    "empty draft",
			req:     CheckoutRequest{Customer: validCustomer()},
			wantErr: customerrors.ErrEmptyDraft,
		},
		{
			name:    "incomplete address",
			req:     CheckoutRequest{Customer: noAddressCustomer(), Draft: twoLineDraft()},
			wantErr: customerrors.ErrIncompleteAddress,
		},
		{
			name: "discount over total",
			req: CheckoutRequest{
				Customer: validCustomer(),
				Draft:    twoLineDraft(),
				Quote:    models.ShippingQuote{CourierCode: "jne", Cost: 15000},
				Discount: 200000,
			},
			wantErr: customerrors.ErrInvalidDiscount,
		},
	}

	svc := NewCheckoutService(newFakeStorage(), &fakeGateway{}, time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCheckout(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckoutService_CreateCheckout_DiscountIsValidationFailure(t *testing.T) {
	svc := NewCheckoutService(newFakeStorage(), &fakeGateway{}, time.Second)

	_, err := svc.CreateCheckout(context.Background(), CheckoutRequest{
		Customer: validCustomer(),
		Draft:    twoLineDraft(),
		Quote:    models.ShippingQuote{CourierCode: "jne", Cost: 15000},
		Discount: 200000,
	})
	assert.True(t, customerrors.IsValidation(err))
}

func TestCheckoutService_CreateCheckout_PersistsBeforeGateway(t *testing.T) {
	storage := newFakeStorage()
	gw := &fakeGateway{chargeFunc: func(_ context.Context, _ ports.ChargeRequest) (ports.ChargeResponse, error) {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(customerrors.GatewayChannelUnavailable, errors.New("503"))
	}}
	svc := NewCheckoutService(storage, gw, time.Second)

	result, err := svc.CreateCheckout(context.Background(), CheckoutRequest{
		Customer: validCustomer(),
		Draft:    twoLineDraft(),
		Quote:    models.ShippingQuote{CourierCode: "jne", Cost: 15000},
	})
	require.Error(t, err)

	// the PENDING row survives the gateway outage
	saved, getErr := storage.GetTransactionByOrderID(context.Background(), result.Transaction.OrderID)
	require.NoError(t, getErr)
	assert.Equal(t, models.PaymentStatusPending, saved.PaymentStatus)
}

func TestCheckoutService_CreateCheckout_InvalidRequestMarksFailed(t *testing.T) {
	storage := newFakeStorage()
	gw := &fakeGateway{chargeFunc: func(_ context.Context, _ ports.ChargeRequest) (ports.ChargeResponse, error) {
		return ports.ChargeResponse{}, customerrors.NewGatewayError(customerrors.GatewayInvalidRequest, errors.New("400"))
	}}
	svc := NewCheckoutService(storage, gw, time.Second)

	result, err := svc.CreateCheckout(context.Background(), CheckoutRequest{
		Customer: validCustomer(),
		Draft:    twoLineDraft(),
		Quote:    models.ShippingQuote{CourierCode: "jne", Cost: 15000},
	})
	require.Error(t, err)

	saved, getErr := storage.GetTransactionByOrderID(context.Background(), result.Transaction.OrderID)
	require.NoError(t, getErr)
	assert.Equal(t, models.PaymentStatusFailed, saved.PaymentStatus)
}

func TestCheckoutService_CreateCheckout_CallerOrderIDAndDuplicates(t *testing.T) {
	storage := newFakeStorage()
	svc := NewCheckoutService(storage, &fakeGateway{}, time.Second)

	req := CheckoutRequest{
		Customer: validCustomer(),
		OrderID:  "ORDER-EXT-1",
		Draft:    twoLineDraft(),
		Quote:    models.ShippingQuote{CourierCode: "jne", Cost: 15000},
	}

	result, err := svc.CreateCheckout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-EXT-1", result.Transaction.OrderID)

	_, err = svc.CreateCheckout(context.Background(), req)
	assert.ErrorIs(t, err, customerrors.ErrDuplicateOrderID)
}
