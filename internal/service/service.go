package service

import (
	"context"

	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
)

// SaleStore is the durable ledger table
type SaleStore interface {
	List(ctx context.Context) ([]models.Sale, error)
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, id string) (*models.Sale, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetBySeat(ctx context.Context, seatID string) (*models.Sale, error)
	Search(ctx context.Context, params models.SearchSalesParams) ([]models.Sale, error)
	Stats(ctx context.Context) (*models.SalesStatsResponse, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type StudentStore interface {
	List(ctx context.Context) ([]models.Student, error)
	GetByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, s *models.Student) error
	Update(ctx context.Context, s *models.Student) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	UpdateTicketPrice(ctx context.Context, price int64) (*models.Settings, error)
}

// SaleSearcher is the optional full-text index over sales
type SaleSearcher interface {
	Search(ctx context.Context, params models.SearchSalesParams) ([]models.Sale, error)
}

type Services struct {
	Sales    *SalesService
	Students *StudentService
	Settings *SettingsService
	Reset    *ResetService
}

// NewServices wires the ledger services. searcher and publisher may be nil.
func NewServices(repos *repository.Repositories, searcher SaleSearcher, publisher messaging.Publisher, m *metrics.Metrics) *Services {
	return &Services{
		Sales:    NewSalesService(repos.Sales, repos.Students, searcher, publisher, m),
		Students: NewStudentService(repos.Students),
		Settings: NewSettingsService(repos.Settings),
		Reset:    NewResetService(repos.Sales, publisher),
	}
}
