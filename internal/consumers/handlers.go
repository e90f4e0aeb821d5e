package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/stan.go"

	"boxoffice/internal/models"
)

// Indexer is the write side of the sales search index
type Indexer interface {
	IndexSale(ctx context.Context, sale *models.Sale) error
	DeleteSale(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// SaleSource re-reads a sale when an event arrives without its body
type SaleSource interface {
	GetByID(ctx context.Context, id string) (*models.Sale, error)
}

var errMalformedEvent = errors.New("malformed sales event")

type Handlers struct {
	index   Indexer
	sales   SaleSource
	timeout time.Duration
}

func NewHandlers(index Indexer, sales SaleSource) *Handlers {
	return &Handlers{
		index:   index,
		sales:   sales,
		timeout: 10 * time.Second,
	}
}

// HandleSalesChanged проецирует изменения реестра в поисковый индекс.
// Без Ack сообщение будет доставлено повторно после AckWait.
func (h *Handlers) HandleSalesChanged(m *stan.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	err := h.Process(ctx, m.Data)
	switch {
	case err == nil:
	case errors.Is(err, errMalformedEvent):
		// повтор не поможет
		slog.Error("Dropping sales event", "sequence", m.Sequence, "error", err)
	default:
		slog.Error("Failed to index sales event, will be redelivered", "sequence", m.Sequence, "error", err)
		return
	}

	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack sales event", "sequence", m.Sequence, "error", err)
	}
}

// Process applies one sales.changed payload to the index
func (h *Handlers) Process(ctx context.Context, data []byte) error {
	var event models.SalesChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	slog.Debug("Processing sales changed event", "action", event.Action, "sale_id", event.SaleID)

	switch event.Action {
	case models.SaleActionCreated:
		sale := event.Sale
		if sale == nil {
			if event.SaleID == "" {
				return fmt.Errorf("%w: created event without sale id", errMalformedEvent)
			}
			var err error
			sale, err = h.sales.GetByID(ctx, event.SaleID)
			if err != nil {
				return fmt.Errorf("failed to load sale %s: %w", event.SaleID, err)
			}
			if sale == nil {
				// удалена раньше, чем мы успели её проиндексировать
				return nil
			}
		}
		if err := h.index.IndexSale(ctx, sale); err != nil {
			return fmt.Errorf("failed to index sale %s: %w", sale.ID, err)
		}

	case models.SaleActionDeleted:
		if event.SaleID == "" {
			return fmt.Errorf("%w: deleted event without sale id", errMalformedEvent)
		}
		if err := h.index.DeleteSale(ctx, event.SaleID); err != nil {
			return fmt.Errorf("failed to delete sale %s from index: %w", event.SaleID, err)
		}

	case models.SaleActionReset:
		if err := h.index.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}

	default:
		return fmt.Errorf("%w: unknown action %q", errMalformedEvent, event.Action)
	}

	return nil
}
