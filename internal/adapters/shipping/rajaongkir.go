package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
)

// RateClient is the RajaOngkir-style implementation of ports.RateProvider.
// It is a pure external read and holds no state besides credentials
type RateClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRateClient creates a rate API client with a bounded request timeout
func NewRateClient(baseURL, apiKey string, timeout time.Duration) *RateClient {
	return &RateClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// rateResponse mirrors the provider's nested /cost payload
type rateResponse struct {
	RajaOngkir struct {
		Status struct {
			Code        int    `json:"code"`
			Description string `json:"description"`
		} `json:"status"`
		Results []struct {
			Code  string `json:"code"`
			Name  string `json:"name"`
			Costs []struct {
				Service     string `json:"service"`
				Description string `json:"description"`
				Cost        []struct {
					Value int64  `json:"value"`
					ETD   string `json:"etd"`
				} `json:"cost"`
			} `json:"costs"`
		} `json:"results"`
	} `json:"rajaongkir"`
}

// GetRates asks the provider for all services of one courier on one route.
//
// Each courier+service pair is flattened into one quote whose cost is the first
// entry of the provider's nested cost array. An empty result list means the
// courier doesn't serve the destination; it is returned as-is, never as cost 0
func (r *RateClient) GetRates(ctx context.Context, originID, destinationID string, weightGrams int64, courier string) ([]models.ShippingQuote, error) {
	form := url.Values{}
	form.Set("origin", originID)
	form.Set("destination", destinationID)
	form.Set("weight", strconv.FormatInt(weightGrams, 10))
	form.Set("courier", courier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/cost", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("couldn't build rate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate request for courier %s failed: %w: %w", courier, customerrors.ErrShippingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rate API returned status %d (%s): %w",
			resp.StatusCode, strings.TrimSpace(string(body)), customerrors.ErrShippingUnavailable)
	}

	var parsed rateResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("couldn't decode rate response: %w: %w", customerrors.ErrShippingUnavailable, err)
	}
	if parsed.RajaOngkir.Status.Code != http.StatusOK {
		return nil, fmt.Errorf("rate API rejected request: %s: %w",
			parsed.RajaOngkir.Status.Description, customerrors.ErrShippingUnavailable)
	}

	quotes := make([]models.ShippingQuote, 0)
	for _, result := range parsed.RajaOngkir.Results {
		for _, service := range result.Costs {
			if len(service.Cost) == 0 {
				continue
			}
			quotes = append(quotes, models.ShippingQuote{
				CourierCode:   result.Code,
				ServiceName:   service.Service,
				Description:   service.Description,
				Cost:          service.Cost[0].Value,
				ETA:           service.Cost[0].ETD,
				OriginID:      originID,
				DestinationID: destinationID,
			})
		}
	}

	return quotes, nil
}
