package service

import (
	"context"
	"sync"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
)

// in-memory fakes for the service-layer ports

type fakeCatalog struct {
	variants map[int64]models.Variant
}

func (f *fakeCatalog) GetVariant(_ context.Context, productID int64, _ *int64) (models.Variant, error) {
	variant, ok := f.variants[productID]
	if !ok {
		return models.Variant{}, customerrors.ErrProductNotFound
	}
	return variant, nil
}

type fakeCart struct {
	items []models.CartItem
	err   error
}

func (f *fakeCart) GetCartItems(_ context.Context, _ int64) ([]models.CartItem, error) {
	return f.items, f.err
}

// fakeStorage keeps transactions in a map and honors the conditional
// PENDING -> terminal contract of the real store
type fakeStorage struct {
	mu           sync.Mutex
	transactions map[string]models.Transaction

	saveErr      error
	casErr       error
	decrementErr error

	decrementCalls int
	decrementLines [][]models.TransactionLine
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{transactions: make(map[string]models.Transaction)}
}

func (f *fakeStorage) SaveTransaction(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	if f.saveErr != nil {
		return models.Transaction{}, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.transactions[tx.OrderID]; exists {
		return models.Transaction{}, customerrors.ErrDuplicateOrderID
	}
	tx.TransactionID = int64(len(f.transactions) + 1)
	f.transactions[tx.OrderID] = tx
	return tx, nil
}

func (f *fakeStorage) GetTransactionByOrderID(_ context.Context, orderID string) (models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[orderID]
	if !ok {
		return models.Transaction{}, customerrors.ErrTransactionNotFound
	}
	return tx, nil
}

func (f *fakeStorage) UpdateStatusIfPending(_ context.Context, orderID string, to models.PaymentStatus) (bool, error) {
	if f.casErr != nil {
		return false, f.casErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[orderID]
	if !ok || tx.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	tx.PaymentStatus = to
	f.transactions[orderID] = tx
	return true, nil
}

func (f *fakeStorage) DecrementStock(_ context.Context, lines []models.TransactionLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decrementCalls++
	f.decrementLines = append(f.decrementLines, lines)
	return f.decrementErr
}

type fakeGateway struct {
	chargeFunc func(ctx context.Context, req ports.ChargeRequest) (ports.ChargeResponse, error)
	verifyFunc func(payload []byte) (models.PaymentNotification, error)

	chargeRequests []ports.ChargeRequest
}

func (f *fakeGateway) Charge(ctx context.Context, req ports.ChargeRequest) (ports.ChargeResponse, error) {
	f.chargeRequests = append(f.chargeRequests, req)
	if f.chargeFunc != nil {
		return f.chargeFunc(ctx, req)
	}
	return ports.ChargeResponse{Token: "token-1", RedirectURL: "https://pay.example/token-1"}, nil
}

func (f *fakeGateway) VerifyNotification(payload []byte) (models.PaymentNotification, error) {
	if f.verifyFunc != nil {
		return f.verifyFunc(payload)
	}
	return models.PaymentNotification{}, customerrors.ErrVerificationFailed
}

type fakeRates struct {
	mu    sync.Mutex
	calls []string

	ratesFunc func(courier string) ([]models.ShippingQuote, error)
}

func (f *fakeRates) GetRates(_ context.Context, _, _ string, _ int64, courier string) ([]models.ShippingQuote, error) {
	f.mu.Lock()
	f.calls = append(f.calls, courier)
	f.mu.Unlock()
	return f.ratesFunc(courier)
}

type fakeQuoteCache struct {
	mu     sync.Mutex
	values map[string][]models.ShippingQuote

	getErr error
	setErr error

	hits   int
	misses int
	sets   int
}

func newFakeQuoteCache() *fakeQuoteCache {
	return &fakeQuoteCache{values: make(map[string][]models.ShippingQuote)}
}

func (f *fakeQuoteCache) Get(_ context.Context, key string) ([]models.ShippingQuote, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	quotes, ok := f.values[key]
	if !ok {
		f.misses++
		return nil, false, nil
	}
	f.hits++
	return quotes, true, nil
}

func (f *fakeQuoteCache) Set(_ context.Context, key string, quotes []models.ShippingQuote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.values[key] = quotes
	return nil
}

type fakeEvents struct {
	mu         sync.Mutex
	published  []models.OrderPaidEvent
	publishErr error
}

func (f *fakeEvents) PublishOrderPaid(_ context.Context, event models.OrderPaidEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, event)
	return nil
}
