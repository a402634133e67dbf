package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
)

// QuoteService resolves shipping quotes from the external rate API,
// one request per courier, with a redis cache in front
type QuoteService struct {
	rates   ports.RateProvider
	cache   ports.QuoteCache
	timeout time.Duration
}

// NewQuoteService creates a new QuoteService. cache may be nil, then every call
// goes straight to the rate API
func NewQuoteService(rates ports.RateProvider, cache ports.QuoteCache, timeout time.Duration) *QuoteService {
	return &QuoteService{
		rates:   rates,
		cache:   cache,
		timeout: timeout,
	}
}

// GetQuotes merges the rate options of all requested couriers into a flat list.
//
// Requests fan out in parallel, each bounded by the configured timeout. A failed
// courier fails the whole lookup as ErrShippingUnavailable; an empty merged list
// is a valid answer meaning no service covers the destination, and the caller
// must block checkout instead of treating it as zero cost
func (s *QuoteService) GetQuotes(ctx context.Context, originID, destinationID string, weightGrams int64, couriers []string) ([]models.ShippingQuote, error) {
	if weightGrams <= 0 {
		return nil, customerrors.ErrInvalidWeight
	}
	if len(couriers) == 0 {
		return nil, fmt.Errorf("at least one courier is required: %w", customerrors.ErrShippingUnavailable)
	}

	perCourier := make([][]models.ShippingQuote, len(couriers))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, courier := range couriers {
		eg.Go(func() error {
			quotes, err := s.quotesForCourier(egCtx, originID, destinationID, weightGrams, courier)
			if err != nil {
				return err
			}
			perCourier[i] = quotes
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		if customerrors.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("couldn't resolve shipping quotes: %w", err)
	}

	merged := make([]models.ShippingQuote, 0)
	for _, quotes := range perCourier {
		merged = append(merged, quotes...)
	}
	return merged, nil
}

func (s *QuoteService) quotesForCourier(ctx context.Context, originID, destinationID string, weightGrams int64, courier string) ([]models.ShippingQuote, error) {
	key := fmt.Sprintf("rates:%s:%s:%d:%s", originID, destinationID, weightGrams, courier)

	// cache errors degrade to a direct API call, they never fail the lookup
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.GetOrCreateLoggerFromCtx(ctx).Warn(ctx, "quote cache read failed",
				zap.String("key", key), zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	quotes, err := s.rates.GetRates(callCtx, originID, destinationID, weightGrams, courier)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, quotes); err != nil {
			logger.GetOrCreateLoggerFromCtx(ctx).Warn(ctx, "quote cache write failed",
				zap.String("key", key), zap.Error(err))
		}
	}

	return quotes, nil
}

// CheapestQuote picks the option with globally minimum cost; ties go to the
// first-encountered option. Used when the customer made no explicit choice
func CheapestQuote(quotes []models.ShippingQuote) (models.ShippingQuote, bool) {
	if len(quotes) == 0 {
		return models.ShippingQuote{}, false
	}
	best := quotes[0]
	for _, q := range quotes[1:] {
		if q.Cost < best.Cost {
			best = q
		}
	}
	return best, true
}
