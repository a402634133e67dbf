package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{variants: map[int64]models.Variant{
		1: {ProductID: 1, ProductName: "Kemeja Flanel", UnitPrice: 60000, StockQuantity: 10, WeightGrams: 300},
		2: {ProductID: 2, VariantID: int64Ptr(7), ProductName: "Celana Chino", UnitPrice: 25000, StockQuantity: 3, WeightGrams: 450},
	}}
}

func TestDraftService_BuildDraft_PricesFromCatalog(t *testing.T) {
	svc := NewDraftService(testCatalog(), &fakeCart{})

	draft, err := svc.BuildDraft(context.Background(), 42, Selection{
		Lines: []models.CartItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, VariantID: int64Ptr(7), Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), draft.CustomerID)
	assert.Equal(t, int64(2*60000+25000), draft.Subtotal)
	assert.Equal(t, int64(2*300+450), draft.TotalWeight)
	require.Len(t, draft.Lines, 2)
	assert.Equal(t, "Kemeja Flanel", draft.Lines[0].ProductName)
	assert.Equal(t, int64(60000), draft.Lines[0].UnitPrice)
}

func TestDraftService_BuildDraft_ReadsCartWhenSelected(t *testing.T) {
	cart := &fakeCart{items: []models.CartItem{{ProductID: 1, Quantity: 1}}}
	svc := NewDraftService(testCatalog(), cart)

	draft, err := svc.BuildDraft(context.Background(), 42, Selection{FromCart: true})
	require.NoError(t, err)
	require.Len(t, draft.Lines, 1)
	assert.Equal(t, int64(60000), draft.Subtotal)
}

func TestDraftService_BuildDraft_FailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		lines   []models.CartItem
		wantErr error
	}{
		{
			name:    "empty selection",
			lines:   nil,
			wantErr: customerrors.ErrEmptyDraft,
		},
		{
			name:    "zero quantity",
			lines:   []models.CartItem{{ProductID: 1, Quantity: 0}},
			wantErr: customerrors.ErrInvalidQuantity,
		},
		{
			name:    "unknown product rejects whole draft",
			lines:   []models.CartItem{{ProductID: 1, Quantity: 1}, {ProductID: 99, Quantity: 1}},
			wantErr: customerrors.ErrProductNotFound,
		},
		{
			name:    "over stock rejects whole draft",
			lines:   []models.CartItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 4}},
			wantErr: customerrors.ErrInsufficientStock,
		},
	}

	svc := NewDraftService(testCatalog(), &fakeCart{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.BuildDraft(context.Background(), 42, Selection{Lines: tt.lines})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDraftService_BuildDraft_QuantityAtStockBoundary(t *testing.T) {
	svc := NewDraftService(testCatalog(), &fakeCart{})

	draft, err := svc.BuildDraft(context.Background(), 42, Selection{
		Lines: []models.CartItem{{ProductID: 2, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3*25000), draft.Subtotal)
}
