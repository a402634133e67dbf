package http_handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
	"github.com/nezferoz/fashion-park-sub001/internal/service"
	"github.com/nezferoz/fashion-park-sub001/internal/validators"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
	"github.com/nezferoz/fashion-park-sub001/pkg/metrics"
)

// CheckoutHandler wires the checkout pipeline services to the HTTP surface
type CheckoutHandler struct {
	drafts    *service.DraftService
	quotes    *service.QuoteService
	checkout  *service.CheckoutService
	reconcile *service.ReconcileService
	storage   ports.TransactionStorage
	customers ports.CustomerSource

	originCityID    string
	defaultCouriers []string
	metrics         *metrics.CheckoutMetrics
}

func NewCheckoutHandler(
	drafts *service.DraftService,
	quotes *service.QuoteService,
	checkout *service.CheckoutService,
	reconcile *service.ReconcileService,
	storage ports.TransactionStorage,
	customers ports.CustomerSource,
	originCityID string,
	defaultCouriers []string,
	m *metrics.CheckoutMetrics,
) *CheckoutHandler {
	return &CheckoutHandler{
		drafts:          drafts,
		quotes:          quotes,
		checkout:        checkout,
		reconcile:       reconcile,
		storage:         storage,
		customers:       customers,
		originCityID:    originCityID,
		defaultCouriers: defaultCouriers,
		metrics:         m,
	}
}

// RegisterRoutes attaches all checkout pipeline routes to e
func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/checkout", h.CreateCheckout)
	api.GET("/shipping/rates", h.GetShippingRates)
	api.POST("/payment/notification", h.HandlePaymentNotification)
	api.GET("/orders/:order_id", h.GetOrder)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

type checkoutItemDTO struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type checkoutRequestDTO struct {
	CustomerID    int64             `json:"customer_id"`
	OrderID       string            `json:"order_id"`
	FromCart      bool              `json:"from_cart"`
	Items         []checkoutItemDTO `json:"items"`
	Courier       string            `json:"courier"`
	Service       string            `json:"service"`
	PaymentMethod string            `json:"payment_method"`
}

type checkoutResponseDTO struct {
	OrderID      string           `json:"order_id"`
	Subtotal     int64            `json:"subtotal"`
	ShippingCost int64            `json:"shipping_cost"`
	TotalAmount  int64            `json:"total_amount"`
	Status       string           `json:"payment_status"`
	Token        string           `json:"token,omitempty"`
	RedirectURL  string           `json:"redirect_url,omitempty"`
	VANumbers    []ports.VANumber `json:"va_numbers,omitempty"`
}

// CreateCheckout runs the full checkout attempt: snapshot the selection, quote
// shipping for the customer's stored address, freeze the transaction, request
// a gateway token
func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	var req checkoutRequestDTO
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
	}
	if req.CustomerID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "customer_id is required"})
	}
	if err := validators.ValidatePaymentMethod(req.PaymentMethod); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	selection := service.Selection{FromCart: req.FromCart}
	if !req.FromCart {
		for _, item := range req.Items {
			selection.Lines = append(selection.Lines, models.CartItem{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
			})
		}
		if err := validators.ValidateItems(selection.Lines); err != nil {
			return h.writeError(c, err)
		}
	}

	draft, err := h.drafts.BuildDraft(ctx, req.CustomerID, selection)
	if err != nil {
		return h.writeError(c, err)
	}

	customer, err := h.customers.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return h.writeError(c, err)
	}
	if strings.TrimSpace(customer.CityID) == "" {
		return h.writeError(c, customerrors.ErrIncompleteAddress)
	}

	couriers := h.defaultCouriers
	if strings.TrimSpace(req.Courier) != "" {
		couriers = []string{req.Courier}
	}

	quotes, err := h.quotes.GetQuotes(ctx, h.originCityID, customer.CityID, draft.TotalWeight, couriers)
	if err != nil {
		return h.writeError(c, err)
	}

	quote, ok := pickQuote(quotes, req.Courier, req.Service)
	if !ok {
		h.metrics.CheckoutsCreated.WithLabelValues("no_shipping").Inc()
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "shipping not available to this destination",
		})
	}

	result, err := h.checkout.CreateCheckout(ctx, service.CheckoutRequest{
		Customer:      customer,
		OrderID:       req.OrderID,
		Draft:         draft,
		Quote:         quote,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.metrics.CheckoutsCreated.WithLabelValues("failed").Inc()
		return h.writeError(c, err)
	}

	h.metrics.CheckoutsCreated.WithLabelValues("pending").Inc()
	return c.JSON(http.StatusCreated, checkoutResponseDTO{
		OrderID:      result.Transaction.OrderID,
		Subtotal:     result.Transaction.Subtotal,
		ShippingCost: result.Transaction.ShippingCost,
		TotalAmount:  result.Transaction.TotalAmount,
		Status:       string(result.Transaction.PaymentStatus),
		Token:        result.Token,
		RedirectURL:  result.RedirectURL,
		VANumbers:    result.VANumbers,
	})
}

// pickQuote selects the explicitly requested courier+service pair, or the
// globally cheapest option when the customer made no explicit choice
func pickQuote(quotes []models.ShippingQuote, courier, serviceName string) (models.ShippingQuote, bool) {
	if courier != "" && serviceName != "" {
		for _, q := range quotes {
			if q.CourierCode == courier && q.ServiceName == serviceName {
				return q, true
			}
		}
		return models.ShippingQuote{}, false
	}
	return service.CheapestQuote(quotes)
}

type rateOptionDTO struct {
	Courier     string `json:"courier"`
	Service     string `json:"service"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	ETA         string `json:"eta"`
}

// GetShippingRates lists the available options for a destination and weight
func (h *CheckoutHandler) GetShippingRates(c echo.Context) error {
	ctx := c.Request().Context()

	destination := c.QueryParam("destination")
	weight, _ := strconv.ParseInt(c.QueryParam("weight"), 10, 64)
	if err := validators.ValidateRateQuery(destination, weight); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	couriers := h.defaultCouriers
	if courier := strings.TrimSpace(c.QueryParam("courier")); courier != "" {
		couriers = strings.Split(courier, ",")
	}

	quotes, err := h.quotes.GetQuotes(ctx, h.originCityID, destination, weight, couriers)
	if err != nil {
		return h.writeError(c, err)
	}

	options := make([]rateOptionDTO, len(quotes))
	for i, q := range quotes {
		options[i] = rateOptionDTO{
			Courier:     q.CourierCode,
			Service:     q.ServiceName,
			Description: q.Description,
			Cost:        q.Cost,
			ETA:         q.ETA,
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"options": options})
}

// HandlePaymentNotification is the gateway webhook endpoint.
//
// Verification failures get the same generic acknowledgement as anything else
// that must not be retried, so a probing caller learns nothing about the
// signature check
func (h *CheckoutHandler) HandlePaymentNotification(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "couldn't read payload"})
	}

	result, err := h.reconcile.ApplyNotification(ctx, payload)
	h.metrics.NotificationsSeen.WithLabelValues(strings.ToLower(string(result))).Inc()

	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, customerrors.ErrVerificationFailed),
		errors.Is(err, customerrors.ErrStaleTransition):
		// already logged inside the reconciler; generic ack stops redelivery
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, customerrors.ErrTransactionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown order"})
	default:
		logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "notification processing failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "processing failed"})
	}
}

type orderLineDTO struct {
	ProductID   int64  `json:"product_id"`
	VariantID   *int64 `json:"variant_id,omitempty"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type orderResponseDTO struct {
	OrderID       string         `json:"order_id"`
	CustomerID    int64          `json:"customer_id"`
	Lines         []orderLineDTO `json:"lines"`
	Subtotal      int64          `json:"subtotal"`
	ShippingCost  int64          `json:"shipping_cost"`
	TotalAmount   int64          `json:"total_amount"`
	PaymentMethod string         `json:"payment_method"`
	PaymentStatus string         `json:"payment_status"`
	Courier       string         `json:"courier"`
	WaybillNumber *string        `json:"waybill_number,omitempty"`
}

// GetOrder serves the status-polling read of one transaction
func (h *CheckoutHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("order_id")

	tx, err := h.storage.GetTransactionByOrderID(ctx, orderID)
	if err != nil {
		return h.writeError(c, err)
	}

	lines := make([]orderLineDTO, len(tx.Lines))
	for i, line := range tx.Lines {
		lines[i] = orderLineDTO{
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		}
	}

	return c.JSON(http.StatusOK, orderResponseDTO{
		OrderID:       tx.OrderID,
		CustomerID:    tx.CustomerID,
		Lines:         lines,
		Subtotal:      tx.Subtotal,
		ShippingCost:  tx.ShippingCost,
		TotalAmount:   tx.TotalAmount,
		PaymentMethod: tx.PaymentMethod,
		PaymentStatus: string(tx.PaymentStatus),
		Courier:       tx.Courier,
		WaybillNumber: tx.WaybillNumber,
	})
}

// writeError maps pipeline errors to HTTP responses. Provider error bodies are
// never forwarded; clients only see the mapped category and a safe message
func (h *CheckoutHandler) writeError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	var gwErr *customerrors.GatewayError
	switch {
	case customerrors.IsValidation(err):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, customerrors.ErrIncompleteAddress):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "shipping address is incomplete, update your profile first",
		})
	case errors.Is(err, customerrors.ErrCustomerNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "customer not found"})
	case errors.Is(err, customerrors.ErrTransactionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, customerrors.ErrDuplicateOrderID):
		return c.JSON(http.StatusConflict, map[string]string{"error": "order id already used"})
	case errors.Is(err, customerrors.ErrShippingUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "shipping not available to this destination, retry or pick another courier",
		})
	case errors.As(err, &gwErr):
		logger.GetOrCreateLoggerFromCtx(ctx).Warn(ctx, "gateway error surfaced to client",
			zap.String("kind", string(gwErr.Kind)), zap.Error(err))
		if gwErr.Retryable() {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "payment gateway is busy, retry shortly",
			})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "payment could not be initiated, the order is kept for retry",
		})
	default:
		logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "unhandled checkout error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
