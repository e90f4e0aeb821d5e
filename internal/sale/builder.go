// Package sale turns the terminal's selection into a sale record on the ledger.
package sale

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
)

var (
	ErrEmptySelection   = errors.New("selection is empty")
	ErrMissingBuyerInfo = errors.New("buyer name and phone are required")
)

// ValidationError is a user-correctable problem with the sale input
type ValidationError struct {
	Reason error
	Field  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %v", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// Ledger is the create side of the ledger gateway
type Ledger interface {
	CreateSale(ctx context.Context, req models.CreateSaleRequest) (*models.Sale, error)
}

// PriceSource returns the unit ticket price in cents
type PriceSource interface {
	TicketPrice(ctx context.Context) (int64, error)
}

// Selection is what the builder needs from the seat store
type Selection interface {
	Selection() []string
	CommitSale(ids []string) int
}

// Request is the buyer data entered at the terminal
type Request struct {
	BuyerName  string
	BuyerPhone string
	StudentID  *string
}

// Builder validates and submits sales
type Builder struct {
	// one sale in flight per terminal
	submitMu sync.Mutex

	ledger    Ledger
	prices    PriceSource
	selection Selection
	now       func() time.Time

	// OnCommitted runs after the ledger confirmed a sale and its seats were marked sold
	OnCommitted func(sale *models.Sale)
}

func NewBuilder(ledger Ledger, prices PriceSource, selection Selection) *Builder {
	return &Builder{
		ledger:    ledger,
		prices:    prices,
		selection: selection,
		now:       time.Now,
	}
}

// Build validates buyer input and prices the seats. It has no side effects.
func Build(req Request, seats []string, unitPrice int64, at time.Time) (models.CreateSaleRequest, error) {
	name := strings.TrimSpace(req.BuyerName)
	phone := strings.TrimSpace(req.BuyerPhone)

	if len(seats) == 0 {
		return models.CreateSaleRequest{}, &ValidationError{Reason: ErrEmptySelection, Field: "seats"}
	}
	if name == "" {
		return models.CreateSaleRequest{}, &ValidationError{Reason: ErrMissingBuyerInfo, Field: "buyer_name"}
	}
	if phone == "" {
		return models.CreateSaleRequest{}, &ValidationError{Reason: ErrMissingBuyerInfo, Field: "buyer_phone"}
	}

	var studentID *string
	if req.StudentID != nil && strings.TrimSpace(*req.StudentID) != "" {
		id := strings.TrimSpace(*req.StudentID)
		studentID = &id
	}

	saleDate := at.UnixMilli()
	return models.CreateSaleRequest{
		BuyerName:  name,
		BuyerPhone: phone,
		StudentID:  studentID,
		Seats:      append([]string(nil), seats...),
		TotalValue: int64(len(seats)) * unitPrice,
		SaleDate:   &saleDate,
	}, nil
}

// Submit sells the current selection. The price is read at commit time.
// On any ledger failure the selection is left untouched so the clerk can retry.
// Overlapping calls run one after another; the later one sees what the earlier
// one left in the selection.
func (b *Builder) Submit(ctx context.Context, req Request) (*models.Sale, error) {
	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	seats := b.selection.Selection()

	// validate before touching the network
	if _, err := Build(req, seats, 0, b.now()); err != nil {
		return nil, err
	}

	price, err := b.prices.TicketPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket price: %w", ledgerUnavailable(err))
	}

	createReq, err := Build(req, seats, price, b.now())
	if err != nil {
		return nil, err
	}

	sale, err := b.ledger.CreateSale(ctx, createReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", ledgerUnavailable(err))
	}

	// only the seats that were sold; picks made meanwhile stay selected
	sold := b.selection.CommitSale(createReq.Seats)
	logger.WithContext(ctx).Info("Sale committed",
		"sale_id", sale.ID,
		"seats", len(createReq.Seats),
		"total_value", createReq.TotalValue,
		"marked_sold", sold)

	if b.OnCommitted != nil {
		b.OnCommitted(sale)
	}

	return sale, nil
}

func ledgerUnavailable(err error) error {
	if errors.Is(err, apperrors.ErrLedgerUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", apperrors.ErrLedgerUnavailable, err)
}
