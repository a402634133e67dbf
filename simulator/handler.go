package simulator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nezferoz/fashion-park-sub001/internal/adapters/gateway"
)

type chargeRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
}

type chargeResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	SignatureKey      string `json:"signature_key"`
}

// NewChargeHandler accepts snap charge requests and answers with a fresh token.
// After SettleDelayMS it posts a signed settlement notification back to the
// checkout service, so a local compose setup can play out the full payment flow
func NewChargeHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, _, ok := r.BasicAuth(); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(r.Body)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, "Bad request: "+err.Error(), http.StatusBadRequest)
			return
		}

		var req chargeRequest
		if err = json.Unmarshal(body, &req); err != nil || req.TransactionDetails.OrderID == "" {
			http.Error(w, "Bad request: invalid charge body", http.StatusBadRequest)
			return
		}

		token := uuid.NewString()
		go settleLater(cfg, req.TransactionDetails.OrderID, req.TransactionDetails.GrossAmount)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(chargeResponse{
			Token:       token,
			RedirectURL: "http://localhost:" + cfg.HttpPort + "/snap/v2/vtweb/" + token,
		})
	}
}

func settleLater(cfg *Config, orderID string, grossAmount int64) {
	time.Sleep(time.Duration(cfg.SettleDelayMS) * time.Millisecond)

	amount := fmt.Sprintf("%d.00", grossAmount)
	payload := notification{
		OrderID:           orderID,
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       amount,
		PaymentType:       "bank_transfer",
		SignatureKey:      gateway.Signature(orderID, "200", amount, cfg.ServerKey),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal notification for %s: %v", orderID, err)
		return
	}

	resp, err := http.Post(cfg.CallbackURL, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Printf("post notification for %s: %v", orderID, err)
		return
	}
	defer resp.Body.Close()
	log.Printf("settled %s, callback answered %d", orderID, resp.StatusCode)
}

func NewMux(cfg *Config) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/snap/v1/transactions", NewChargeHandler(cfg))
	return mux
}
