package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
)

// LedgerClient talks to the ledger server over its HTTP API. Every transport or
// server failure is reported as errors.ErrLedgerUnavailable.
type LedgerClient struct {
	baseURL    string
	httpClient *http.Client
}

type LedgerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewLedgerClient(cfg LedgerConfig) *LedgerClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &LedgerClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ListSales - все продажи, новые первыми
func (lc *LedgerClient) ListSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	if err := lc.do(ctx, http.MethodGet, "/api/sales", nil, http.StatusOK, &sales); err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// CreateSale records a sale atomically
func (lc *LedgerClient) CreateSale(ctx context.Context, req models.CreateSaleRequest) (*models.Sale, error) {
	var sale models.Sale
	if err := lc.do(ctx, http.MethodPost, "/api/sales", req, http.StatusCreated, &sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	return &sale, nil
}

// DeleteSale removes a sale. Seat status is not touched; the next reconciliation picks it up.
func (lc *LedgerClient) DeleteSale(ctx context.Context, saleID string) error {
	path := "/api/sales/" + url.PathEscape(saleID)
	if err := lc.do(ctx, http.MethodDelete, path, nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return nil
}

// TicketPrice reads the current unit price in cents
func (lc *LedgerClient) TicketPrice(ctx context.Context) (int64, error) {
	var settings models.Settings
	if err := lc.do(ctx, http.MethodGet, "/api/settings", nil, http.StatusOK, &settings); err != nil {
		return 0, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.TicketPrice, nil
}

// Ping checks that the ledger answers its health endpoint
func (lc *LedgerClient) Ping(ctx context.Context) error {
	return lc.do(ctx, http.MethodGet, "/health", nil, http.StatusOK, nil)
}

func (lc *LedgerClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, lc.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := lc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", apperrors.ErrLedgerUnavailable, err)
	}

	return nil
}

func statusError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	msg := fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
	if body.Error != "" {
		msg += ": " + body.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w: %s", apperrors.ErrLedgerUnavailable, apperrors.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w: %s", apperrors.ErrLedgerUnavailable, apperrors.ErrInvalidInput, msg)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrLedgerUnavailable, msg)
	}
}
