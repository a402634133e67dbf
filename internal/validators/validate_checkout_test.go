package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
)

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []models.CartItem
		wantErr error
	}{
		{
			name:    "no items",
			wantErr: customerrors.ErrEmptyDraft,
		},
		{
			name:  "valid",
			items: []models.CartItem{{ProductID: 1, Quantity: 2}},
		},
		{
			name:    "missing product id",
			items:   []models.CartItem{{Quantity: 2}},
			wantErr: customerrors.ErrProductNotFound,
		},
		{
			name:    "zero quantity",
			items:   []models.CartItem{{ProductID: 1, Quantity: 0}},
			wantErr: customerrors.ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			items:   []models.CartItem{{ProductID: 1, Quantity: -3}},
			wantErr: customerrors.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRateQuery(t *testing.T) {
	assert.NoError(t, ValidateRateQuery("114", 1300))
	assert.Error(t, ValidateRateQuery("", 1300))
	assert.Error(t, ValidateRateQuery("   ", 1300))
	assert.ErrorIs(t, ValidateRateQuery("114", 0), customerrors.ErrInvalidWeight)
	assert.ErrorIs(t, ValidateRateQuery("114", -50), customerrors.ErrInvalidWeight)
}

func TestValidatePaymentMethod(t *testing.T) {
	for _, method := range []string{"", "bank_transfer", "credit_card", "gopay", "qris"} {
		assert.NoError(t, ValidatePaymentMethod(method))
	}
	assert.Error(t, ValidatePaymentMethod("cash_on_delivery"))
	assert.Error(t, ValidatePaymentMethod("BANK_TRANSFER"))
}
