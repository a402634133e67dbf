package shipping

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
)

const costResponse = `{
	"rajaongkir": {
		"status": {"code": 200, "description": "OK"},
		"results": [{
			"code": "jne",
			"name": "Jalur Nugraha Ekakurir (JNE)",
			"costs": [
				{"service": "OKE", "description": "Ongkos Kirim Ekonomis", "cost": [{"value": 38000, "etd": "4-5"}]},
				{"service": "REG", "description": "Layanan Reguler", "cost": [{"value": 44000, "etd": "2-3"}]},
				{"service": "YES", "description": "Yakin Esok Sampai", "cost": []}
			]
		}]
	}
}`

func TestRateClient_GetRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cost", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "501", r.PostForm.Get("origin"))
		assert.Equal(t, "114", r.PostForm.Get("destination"))
		assert.Equal(t, "1300", r.PostForm.Get("weight"))
		assert.Equal(t, "jne", r.PostForm.Get("courier"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, costResponse)
	}))
	defer server.Close()

	client := NewRateClient(server.URL, "test-key", time.Second)
	quotes, err := client.GetRates(context.Background(), "501", "114", 1300, "jne")
	require.NoError(t, err)

	// the YES service has no cost entries and is skipped
	require.Len(t, quotes, 2)
	assert.Equal(t, "jne", quotes[0].CourierCode)
	assert.Equal(t, "OKE", quotes[0].ServiceName)
	assert.Equal(t, int64(38000), quotes[0].Cost)
	assert.Equal(t, "4-5", quotes[0].ETA)
	assert.Equal(t, "114", quotes[0].DestinationID)
}

func TestRateClient_GetRates_NoCoverage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"rajaongkir": {"status": {"code": 200}, "results": []}}`)
	}))
	defer server.Close()

	client := NewRateClient(server.URL, "test-key", time.Second)
	quotes, err := client.GetRates(context.Background(), "501", "999", 1300, "jne")
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestRateClient_GetRates_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "invalid key", http.StatusBadRequest)
			},
		},
		{
			name: "provider-level rejection",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = fmt.Fprint(w, `{"rajaongkir": {"status": {"code": 400, "description": "Invalid key"}}}`)
			},
		},
		{
			name: "broken body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = fmt.Fprint(w, `not json`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewRateClient(server.URL, "test-key", time.Second)
			_, err := client.GetRates(context.Background(), "501", "114", 1300, "jne")
			assert.ErrorIs(t, err, customerrors.ErrShippingUnavailable)
		})
	}
}

func TestRateClient_GetRates_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = fmt.Fprint(w, costResponse)
	}))
	defer server.Close()

	client := NewRateClient(server.URL, "test-key", 20*time.Millisecond)
	_, err := client.GetRates(context.Background(), "501", "114", 1300, "jne")
	assert.ErrorIs(t, err, customerrors.ErrShippingUnavailable)
}
