package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"boxoffice/internal/models"
)

// probeSeat is outside every venue layout, so terminals report it as unknown
// instead of marking a real seat sold while the probe sale exists.
const probeSeat = "ZZ999-VAL"

// ContractValidator - проверка контракта реестра продаж на живом сервере
type ContractValidator struct {
	baseURL string
	client  *http.Client
}

// NewContractValidator создает новый валидатор
func NewContractValidator(baseURL string) *ContractValidator {
	return &ContractValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ValidateAll проверяет все endpoints реестра. Созданная продажа удаляется в конце.
func (v *ContractValidator) ValidateAll() error {
	slog.Info("Validating ledger API", "url", v.baseURL)

	price, err := v.validateSettings()
	if err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}

	if err := v.validateStudents(); err != nil {
		return fmt.Errorf("students validation failed: %w", err)
	}

	if err := v.validateSales(price); err != nil {
		return fmt.Errorf("sales validation failed: %w", err)
	}

	slog.Info("Ledger API is valid")
	return nil
}

func (v *ContractValidator) validateSettings() (int64, error) {
	var settings models.Settings
	if err := v.call(http.MethodGet, "/api/settings", nil, http.StatusOK, &settings); err != nil {
		return 0, err
	}
	if settings.TicketPrice < 0 {
		return 0, fmt.Errorf("GET /api/settings: negative ticket_price %d", settings.TicketPrice)
	}
	return settings.TicketPrice, nil
}

func (v *ContractValidator) validateStudents() error {
	var students []models.Student
	return v.call(http.MethodGet, "/api/students", nil, http.StatusOK, &students)
}

func (v *ContractValidator) validateSales(price int64) error {
	// POST /api/sales с пустым списком мест должен быть отклонен
	if err := v.call(http.MethodPost, "/api/sales", models.CreateSaleRequest{
		BuyerName: "validator", BuyerPhone: "000",
	}, http.StatusBadRequest, nil); err != nil {
		return err
	}

	var created models.Sale
	if err := v.call(http.MethodPost, "/api/sales", models.CreateSaleRequest{
		BuyerName:  "validator",
		BuyerPhone: "000",
		Seats:      []string{probeSeat},
		TotalValue: price,
	}, http.StatusCreated, &created); err != nil {
		return err
	}
	if created.ID == "" {
		return fmt.Errorf("POST /api/sales: expected non-empty id")
	}
	if created.TotalValue != price {
		return fmt.Errorf("POST /api/sales: total_value %d, want %d", created.TotalValue, price)
	}

	checkErr := v.checkCreated(created)

	// удаляем пробную продажу даже если проверки выше упали
	if err := v.call(http.MethodDelete, "/api/sales/"+created.ID, nil, http.StatusNoContent, nil); err != nil {
		return err
	}
	if checkErr != nil {
		return checkErr
	}

	return v.call(http.MethodDelete, "/api/sales/"+created.ID, nil, http.StatusNotFound, nil)
}

func (v *ContractValidator) checkCreated(created models.Sale) error {
	var sales []models.Sale
	if err := v.call(http.MethodGet, "/api/sales", nil, http.StatusOK, &sales); err != nil {
		return err
	}
	found := false
	for _, s := range sales {
		if s.ID == created.ID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("GET /api/sales: created sale %s not listed", created.ID)
	}

	var bySeat models.SeatSaleResponse
	if err := v.call(http.MethodGet, "/api/sales/seat/"+probeSeat, nil, http.StatusOK, &bySeat); err != nil {
		return err
	}
	if bySeat.Sale == nil || bySeat.Sale.ID != created.ID {
		return fmt.Errorf("GET /api/sales/seat: expected sale %s", created.ID)
	}

	var stats models.SalesStatsResponse
	return v.call(http.MethodGet, "/api/sales/stats", nil, http.StatusOK, &stats)
}

func (v *ContractValidator) call(method, path string, body interface{}, want int, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequest(method, v.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: expected %d, got %d", method, path, want, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
		}
	}
	return nil
}

// RunValidation запускает валидацию API
func RunValidation(baseURL string) error {
	return NewContractValidator(baseURL).ValidateAll()
}
