package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/models"
)

// fakeLedger implements just enough of the ledger API for the validator
type fakeLedger struct {
	mu    sync.Mutex
	sales map[string]models.Sale
	// brokenDelete makes DELETE return 200 instead of 204
	brokenDelete bool
}

func (f *fakeLedger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/settings":
		_ = json.NewEncoder(w).Encode(models.Settings{ID: 1, TicketPrice: 1000})
	case r.Method == http.MethodGet && r.URL.Path == "/api/students":
		_, _ = w.Write([]byte(`[]`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/sales":
		list := []models.Sale{}
		for _, s := range f.sales {
			list = append(list, s)
		}
		_ = json.NewEncoder(w).Encode(list)
	case r.Method == http.MethodGet && r.URL.Path == "/api/sales/stats":
		_ = json.NewEncoder(w).Encode(models.SalesStatsResponse{SalesCount: int64(len(f.sales))})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/sales/seat/"):
		seat := strings.TrimPrefix(r.URL.Path, "/api/sales/seat/")
		for _, s := range f.sales {
			for _, id := range s.Seats {
				if id == seat {
					_ = json.NewEncoder(w).Encode(models.SeatSaleResponse{SeatID: seat, Sale: &s})
					return
				}
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPost && r.URL.Path == "/api/sales":
		var req models.CreateSaleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Seats) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s := models.Sale{ID: "probe", BuyerName: req.BuyerName, Seats: req.Seats, TotalValue: req.TotalValue}
		f.sales[s.ID] = s
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(s)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/sales/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/sales/")
		if _, ok := f.sales[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.sales, id)
		if f.brokenDelete {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestValidateAll(t *testing.T) {
	ledger := &fakeLedger{sales: map[string]models.Sale{}}
	server := httptest.NewServer(ledger)
	defer server.Close()

	require.NoError(t, RunValidation(server.URL))
	assert.Empty(t, ledger.sales)
}

func TestValidateAllReportsContractBreak(t *testing.T) {
	ledger := &fakeLedger{sales: map[string]models.Sale{}, brokenDelete: true}
	server := httptest.NewServer(ledger)
	defer server.Close()

	err := RunValidation(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 204, got 200")
}

func TestValidateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	assert.Error(t, RunValidation(server.URL))
}
