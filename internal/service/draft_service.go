package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
)

// Selection names what the customer intends to buy: either the whole persisted
// cart, or an explicit list of lines (the "buy now" path). The selection always
// travels in the request; there is no implicit shared store
type Selection struct {
	FromCart bool
	Lines    []models.CartItem
}

// DraftService is the cart snapshot builder. Every line is re-priced from the
// catalog at build time; client-sent prices are advisory only
type DraftService struct {
	catalog ports.ProductCatalog
	cart    ports.CartSource
}

func NewDraftService(catalog ports.ProductCatalog, cart ports.CartSource) *DraftService {
	return &DraftService{
		catalog: catalog,
		cart:    cart,
	}
}

// BuildDraft materializes the selection into an immutable order draft.
//
// The whole draft is rejected (fail closed) if any line references a missing
// product/variant, has a non-positive quantity, or asks for more than the
// current stock. Stock is checked here, not reserved; the conflict a concurrent
// checkout can cause at fulfillment time is a documented constraint of the flow
func (s *DraftService) BuildDraft(ctx context.Context, customerID int64, selection Selection) (models.OrderDraft, error) {
	items := selection.Lines
	if selection.FromCart {
		var err error
		items, err = s.cart.GetCartItems(ctx, customerID)
		if err != nil {
			return models.OrderDraft{}, fmt.Errorf("couldn't read cart: %w", err)
		}
	}

	if len(items) == 0 {
		return models.OrderDraft{}, customerrors.ErrEmptyDraft
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return models.OrderDraft{}, fmt.Errorf("product %d: %w", item.ProductID, customerrors.ErrInvalidQuantity)
		}
	}

	lines := make([]models.DraftLine, len(items))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, item := range items {
		eg.Go(func() error {
			variant, err := s.catalog.GetVariant(egCtx, item.ProductID, item.VariantID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			if item.Quantity > variant.StockQuantity {
				return fmt.Errorf("product %d: requested %d, stock %d: %w",
					item.ProductID, item.Quantity, variant.StockQuantity, customerrors.ErrInsufficientStock)
			}
			lines[i] = models.DraftLine{
				ProductID:   variant.ProductID,
				VariantID:   variant.VariantID,
				ProductName: variant.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   variant.UnitPrice,
				WeightGrams: variant.WeightGrams,
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return models.OrderDraft{}, err
	}

	draft := models.OrderDraft{
		CustomerID: customerID,
		Lines:      lines,
	}
	for _, line := range lines {
		draft.Subtotal += int64(line.Quantity) * line.UnitPrice
		draft.TotalWeight += int64(line.Quantity) * line.WeightGrams
	}

	return draft, nil
}
