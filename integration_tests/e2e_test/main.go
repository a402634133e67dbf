package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/adapters/gateway"
)

// checkoutRequest mirrors the POST /api/v1/checkout payload
type checkoutRequest struct {
	CustomerID    int64          `json:"customer_id"`
	Items         []checkoutItem `json:"items"`
	PaymentMethod string         `json:"payment_method"`
}

type checkoutItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type checkoutResponse struct {
	OrderID     string `json:"order_id"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"payment_status"`
	Token       string `json:"token"`
}

type orderResponse struct {
	OrderID       string `json:"order_id"`
	TotalAmount   int64  `json:"total_amount"`
	PaymentStatus string `json:"payment_status"`
}

// TestResult is a result of driving 1 order through the full payment flow
type TestResult struct {
	OrderID          string
	TotalAmount      int64
	Settled          bool
	IdempotentRepeat bool
	Error            error
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()
	baseURL := os.Getenv("INTEGRATION_TESTS_BASE_URL")
	serverKey := os.Getenv("INTEGRATION_TESTS_SERVER_KEY")

	client := &http.Client{Timeout: 30 * time.Second}

	// Step 1: create checkouts through POST
	orders, err := createCheckouts(ctx, client, baseURL, 20)
	if err != nil {
		logger.Fatal("Failed to create checkouts", zap.Error(err))
	}
	logger.Info("Created checkouts", zap.Int("count", len(orders)))

	// Step 2: settle each order with a signed webhook, repeat it, and verify
	// the repeat changes nothing
	results := settleAndVerify(ctx, client, baseURL, serverKey, orders)

	analyzeResults(results, logger)
}

// createCheckouts posts n checkout attempts for the seeded demo customers
func createCheckouts(ctx context.Context, client *http.Client, baseURL string, n int) ([]checkoutResponse, error) {
	orders := make([]checkoutResponse, 0, n)

	for i := 0; i < n; i++ {
		req := checkoutRequest{
			CustomerID: int64(1 + i%4),
			Items: []checkoutItem{
				{ProductID: int64(1 + i%8), Quantity: 1 + i%3},
			},
			PaymentMethod: "bank_transfer",
		}

		jsonData, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal checkout %d: %w", i, err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/checkout", bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request %d: %w", i, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("failed to send checkout %d: %w", i, err)
		}

		if resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status for checkout %d: %d, body: %s", i, resp.StatusCode, string(body))
		}

		var created checkoutResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode checkout %d: %w", i, err)
		}
		resp.Body.Close()

		orders = append(orders, created)
	}

	return orders, nil
}

// settleAndVerify delivers a signed settlement webhook per order, repeats the
// exact same delivery, and checks the final order state over the read endpoint
func settleAndVerify(ctx context.Context, client *http.Client, baseURL, serverKey string, orders []checkoutResponse) []TestResult {
	results := make([]TestResult, len(orders))
	var wg sync.WaitGroup

	for i, order := range orders {
		wg.Add(1)
		go func(idx int, order checkoutResponse) {
			defer wg.Done()

			result := TestResult{OrderID: order.OrderID, TotalAmount: order.TotalAmount}

			payload := settlementPayload(order, serverKey)

			if err := postNotification(ctx, client, baseURL, payload); err != nil {
				result.Error = err
				results[idx] = result
				return
			}

			first, err := getOrder(ctx, client, baseURL, order.OrderID)
			if err != nil {
				result.Error = err
				results[idx] = result
				return
			}
			result.Settled = first.PaymentStatus == "SUCCESS"

			// the same webhook again must be acknowledged and change nothing
			if err := postNotification(ctx, client, baseURL, payload); err != nil {
				result.Error = err
				results[idx] = result
				return
			}

			second, err := getOrder(ctx, client, baseURL, order.OrderID)
			if err != nil {
				result.Error = err
			} else {
				result.IdempotentRepeat = second.PaymentStatus == first.PaymentStatus &&
					second.TotalAmount == first.TotalAmount
			}

			results[idx] = result
		}(i, order)
	}

	wg.Wait()
	return results
}

func settlementPayload(order checkoutResponse, serverKey string) []byte {
	amount := fmt.Sprintf("%d.00", order.TotalAmount)
	payload, _ := json.Marshal(map[string]string{
		"order_id":           order.OrderID,
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       amount,
		"payment_type":       "bank_transfer",
		"signature_key":      gateway.Signature(order.OrderID, "200", amount, serverKey),
	})
	return payload
}

func postNotification(ctx context.Context, client *http.Client, baseURL string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/payment/notification", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected notification status: %d", resp.StatusCode)
	}
	return nil
}

func getOrder(ctx context.Context, client *http.Client, baseURL, orderID string) (orderResponse, error) {
	var order orderResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/orders/"+orderID, nil)
	if err != nil {
		return order, fmt.Errorf("failed to create order request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return order, fmt.Errorf("GET request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return order, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return order, fmt.Errorf("failed to decode response: %w", err)
	}

	return order, nil
}

// analyzeResults reports how many orders settled and stayed settled
func analyzeResults(results []TestResult, logger *zap.Logger) {
	total := len(results)
	settled := 0
	idempotent := 0

	for _, result := range results {
		if result.Error != nil {
			logger.Error("Flow failed for order",
				zap.String("order_id", result.OrderID),
				zap.Error(result.Error))
			continue
		}
		if result.Settled {
			settled++
		}
		if result.IdempotentRepeat {
			idempotent++
		}
	}

	logger.Info("Integration Test Results",
		zap.Int("total_orders", total),
		zap.Int("settled", settled),
		zap.Int("idempotent_repeats", idempotent),
		zap.Int("failures", total-settled))

	saveResultsToFile(results, "integration_test_results.json")
}

// saveResultsToFile stores the raw results as JSON for later inspection
func saveResultsToFile(results []TestResult, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		log.Printf("Failed to create results file: %v", err)
		return
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		log.Printf("Failed to encode results: %v", err)
	}
}
