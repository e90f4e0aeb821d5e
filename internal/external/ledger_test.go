package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
)

func newLedgerServer(t *testing.T, handler http.HandlerFunc) *LedgerClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewLedgerClient(LedgerConfig{BaseURL: server.URL + "/", Timeout: time.Second})
}

func TestListSales(t *testing.T) {
	client := newLedgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sales", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]models.Sale{
			{ID: "s1", Seats: []string{"A1-ESQ", "A2-ESQ"}, TotalValue: 2000},
		})
	})

	sales, err := client.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, []string{"A1-ESQ", "A2-ESQ"}, sales[0].Seats)
	assert.Equal(t, int64(2000), sales[0].TotalValue)
}

func TestCreateSale(t *testing.T) {
	client := newLedgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.CreateSaleRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Jane", req.BuyerName)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Sale{ID: "new", BuyerName: req.BuyerName, Seats: req.Seats, TotalValue: req.TotalValue})
	})

	sale, err := client.CreateSale(context.Background(), models.CreateSaleRequest{
		BuyerName: "Jane", BuyerPhone: "555", Seats: []string{"A1-ESQ"}, TotalValue: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", sale.ID)
	assert.Equal(t, int64(1000), sale.TotalValue)
}

func TestCreateSaleRejected(t *testing.T) {
	client := newLedgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"seats are required"}`))
	})

	_, err := client.CreateSale(context.Background(), models.CreateSaleRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLedgerUnavailable)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "seats are required")
}

func TestDeleteSale(t *testing.T) {
	client := newLedgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/sales/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.DeleteSale(context.Background(), "s1"))

	err := client.DeleteSale(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTicketPrice(t *testing.T) {
	client := newLedgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/settings", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":1,"ticket_price":1500}`))
	})

	price, err := client.TicketPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), price)
}

func TestServerErrorIsLedgerUnavailable(t *testing.T) {
	client := newLedgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListSales(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrLedgerUnavailable)
}

func TestUnreachableLedger(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewLedgerClient(LedgerConfig{BaseURL: server.URL, Timeout: time.Second})

	_, err := client.TicketPrice(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrLedgerUnavailable)
}

func TestMalformedBody(t *testing.T) {
	client := newLedgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.ListSales(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrLedgerUnavailable)
}

func TestContextCancel(t *testing.T) {
	client := newLedgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.ListSales(ctx)
	assert.ErrorIs(t, err, apperrors.ErrLedgerUnavailable)
}
