package validators

import (
	"fmt"
	"strings"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
)

// allowed storefront payment methods; empty means "let the gateway offer all channels"
var knownPaymentMethods = map[string]struct{}{
	"":              {},
	"bank_transfer": {},
	"credit_card":   {},
	"gopay":         {},
	"qris":          {},
}

// ValidateItems rejects a selection before any external call is made
func ValidateItems(items []models.CartItem) error {
	if len(items) == 0 {
		return customerrors.ErrEmptyDraft
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return fmt.Errorf("item %d: product_id is required: %w", i, customerrors.ErrProductNotFound)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: %w", i, customerrors.ErrInvalidQuantity)
		}
	}
	return nil
}

// ValidateRateQuery checks the shipping rate lookup inputs
func ValidateRateQuery(destinationID string, weightGrams int64) error {
	if strings.TrimSpace(destinationID) == "" {
		return fmt.Errorf("destination is required")
	}
	if weightGrams <= 0 {
		return customerrors.ErrInvalidWeight
	}
	return nil
}

// ValidatePaymentMethod checks the method against the known storefront set
func ValidatePaymentMethod(method string) error {
	if _, ok := knownPaymentMethods[method]; !ok {
		return fmt.Errorf("unknown payment method %q", method)
	}
	return nil
}
