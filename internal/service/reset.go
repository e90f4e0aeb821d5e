package service

import (
	"context"
	"fmt"
	"time"

	"boxoffice/internal/logger"
	"boxoffice/internal/messaging"
	"boxoffice/internal/models"
)

type ResetService struct {
	sales     SaleStore
	publisher messaging.Publisher
}

func NewResetService(sales SaleStore, publisher messaging.Publisher) *ResetService {
	return &ResetService{
		sales:     sales,
		publisher: publisher,
	}
}

// ResetLedger removes all sales before a new show. Students and settings are kept.
func (s *ResetService) ResetLedger(ctx context.Context) (int64, error) {
	log := logger.WithContext(ctx)
	log.Info("Starting ledger reset")

	deleted, err := s.sales.DeleteAll(ctx)
	if err != nil {
		log.Error("Failed to delete all sales", "error", err)
		return 0, fmt.Errorf("failed to delete all sales: %w", err)
	}
	log.Info("Ledger reset completed successfully", "deleted", deleted)

	if s.publisher != nil {
		event := models.SalesChangedEvent{Action: models.SaleActionReset, Timestamp: time.Now().UTC()}
		if err := s.publisher.Publish(models.EventSalesChanged, event); err != nil {
			log.Error("Failed to publish reset event", "error", err)
		}
	}

	return deleted, nil
}
