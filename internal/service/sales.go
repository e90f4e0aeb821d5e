package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
)

type SalesService struct {
	sales     SaleStore
	students  StudentStore
	searcher  SaleSearcher
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewSalesService(sales SaleStore, students StudentStore, searcher SaleSearcher, publisher messaging.Publisher, m *metrics.Metrics) *SalesService {
	return &SalesService{
		sales:     sales,
		students:  students,
		searcher:  searcher,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *SalesService) List(ctx context.Context) ([]models.Sale, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// Create records a sale. Seat ids are not checked against any layout and no
// cross-sale locking is done: two terminals may sell the same seat and the
// terminals detect it on reconciliation.
func (s *SalesService) Create(ctx context.Context, req *models.CreateSaleRequest) (*models.Sale, error) {
	sale, err := s.newSale(req)
	if err != nil {
		return nil, err
	}

	if sale.StudentID != nil {
		if _, err := uuid.Parse(*sale.StudentID); err != nil {
			return nil, fmt.Errorf("%w: unknown student %s", apperrors.ErrInvalidInput, *sale.StudentID)
		}
		student, err := s.students.GetByID(ctx, *sale.StudentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get student: %w", err)
		}
		if student == nil {
			return nil, fmt.Errorf("%w: unknown student %s", apperrors.ErrInvalidInput, *sale.StudentID)
		}
		sale.Student = &models.StudentRef{StudentName: student.StudentName, ResponsibleName: student.ResponsibleName}
	}

	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	logger.WithContext(ctx).Info("Sale created", "sale_id", sale.ID, "seats", len(sale.Seats), "total_value", sale.TotalValue)

	if s.metrics != nil {
		s.metrics.SalesCreated.Inc()
		s.metrics.TicketsSold.Add(float64(len(sale.Seats)))
	}

	s.publish(ctx, models.SalesChangedEvent{
		Action:    models.SaleActionCreated,
		SaleID:    sale.ID,
		Seats:     sale.Seats,
		Sale:      sale,
		Timestamp: s.now().UTC(),
	})

	return sale, nil
}

func (s *SalesService) newSale(req *models.CreateSaleRequest) (*models.Sale, error) {
	name := strings.TrimSpace(req.BuyerName)
	phone := strings.TrimSpace(req.BuyerPhone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: buyer_name and buyer_phone are required", apperrors.ErrInvalidInput)
	}
	if len(req.Seats) == 0 {
		return nil, fmt.Errorf("%w: seats are required", apperrors.ErrInvalidInput)
	}
	if req.TotalValue < 0 {
		return nil, fmt.Errorf("%w: total_value must be >= 0", apperrors.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(req.Seats))
	seats := make([]string, 0, len(req.Seats))
	for _, id := range req.Seats {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: empty seat id", apperrors.ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate seat %s", apperrors.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
		seats = append(seats, id)
	}

	saleDate := s.now().UTC()
	if req.SaleDate != nil {
		saleDate = time.UnixMilli(*req.SaleDate).UTC()
	}

	var studentID *string
	if req.StudentID != nil && strings.TrimSpace(*req.StudentID) != "" {
		id := strings.TrimSpace(*req.StudentID)
		studentID = &id
	}

	return &models.Sale{
		BuyerName:  name,
		BuyerPhone: phone,
		StudentID:  studentID,
		Seats:      seats,
		TotalValue: req.TotalValue,
		SaleDate:   saleDate,
	}, nil
}

// Delete removes a sale. Terminals reopen its seats on their next reconciliation.
func (s *SalesService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ErrNotFound
	}

	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return apperrors.ErrNotFound
	}

	deleted, err := s.sales.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if !deleted {
		return apperrors.ErrNotFound
	}

	logger.WithContext(ctx).Info("Sale deleted", "sale_id", id, "seats", sale.Seats)

	if s.metrics != nil {
		s.metrics.SalesDeleted.Inc()
	}

	s.publish(ctx, models.SalesChangedEvent{
		Action:    models.SaleActionDeleted,
		SaleID:    id,
		Seats:     sale.Seats,
		Timestamp: s.now().UTC(),
	})

	return nil
}

// FindBySeat returns the sale holding a seat
func (s *SalesService) FindBySeat(ctx context.Context, seatID string) (*models.Sale, error) {
	sale, err := s.sales.GetBySeat(ctx, strings.TrimSpace(seatID))
	if err != nil {
		return nil, fmt.Errorf("failed to find sale by seat: %w", err)
	}
	if sale == nil {
		return nil, apperrors.ErrNotFound
	}
	return sale, nil
}

// Search uses the index when available and falls back to PostgreSQL
func (s *SalesService) Search(ctx context.Context, params models.SearchSalesParams) ([]models.Sale, error) {
	if params.Date != "" {
		if _, err := time.Parse("2006-01-02", params.Date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", apperrors.ErrInvalidInput)
		}
	}

	if s.searcher != nil {
		sales, err := s.searcher.Search(ctx, params)
		if err == nil {
			return sales, nil
		}
		logger.WithContext(ctx).Warn("Search index unavailable, falling back to database", "error", err)
	}

	sales, err := s.sales.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search sales: %w", err)
	}
	return sales, nil
}

func (s *SalesService) Stats(ctx context.Context) (*models.SalesStatsResponse, error) {
	stats, err := s.sales.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales stats: %w", err)
	}
	return stats, nil
}

// publish logs but never fails the request: terminals still converge on their timer
func (s *SalesService) publish(ctx context.Context, event models.SalesChangedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(models.EventSalesChanged, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish sales changed event", "error", err, "action", event.Action, "sale_id", event.SaleID)
	}
}
