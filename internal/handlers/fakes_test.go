package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"boxoffice/internal/models"
	"boxoffice/internal/service"
)

type memSales struct {
	mu    sync.Mutex
	sales []models.Sale
}

func (m *memSales) List(ctx context.Context) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Sale{}, m.sales...), nil
}

func (m *memSales) Create(ctx context.Context, sale *models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sale.ID = uuid.NewString()
	sale.CreatedAt = time.Now()
	m.sales = append([]models.Sale{*sale}, m.sales...)
	return nil
}

func (m *memSales) GetByID(ctx context.Context, id string) (*models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memSales) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sales {
		if s.ID == id {
			m.sales = append(m.sales[:i], m.sales[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memSales) GetBySeat(ctx context.Context, seatID string) (*models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		for _, id := range s.Seats {
			if id == seatID {
				return &s, nil
			}
		}
	}
	return nil, nil
}

func (m *memSales) Search(ctx context.Context, params models.SearchSalesParams) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Sale{}
	for _, s := range m.sales {
		if params.Query == "" || strings.Contains(strings.ToLower(s.BuyerName), strings.ToLower(params.Query)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSales) Stats(ctx context.Context) (*models.SalesStatsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats models.SalesStatsResponse
	for _, s := range m.sales {
		stats.SalesCount++
		stats.TicketsSold += int64(len(s.Seats))
		stats.TotalRevenue += s.TotalValue
	}
	return &stats, nil
}

func (m *memSales) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.sales))
	m.sales = nil
	return n, nil
}

type memStudents struct {
	mu       sync.Mutex
	students map[string]models.Student
}

func (m *memStudents) List(ctx context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Student{}
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStudents) GetByID(ctx context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStudents) Create(ctx context.Context, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.NewString()
	m.students[s.ID] = *s
	return nil
}

func (m *memStudents) Update(ctx context.Context, s *models.Student) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[s.ID]; !ok {
		return false, nil
	}
	m.students[s.ID] = *s
	return true, nil
}

func (m *memStudents) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return false, nil
	}
	delete(m.students, id)
	return true, nil
}

type memSettings struct {
	mu       sync.Mutex
	settings models.Settings
}

func (m *memSettings) Get(ctx context.Context) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	return &s, nil
}

func (m *memSettings) UpdateTicketPrice(ctx context.Context, price int64) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.TicketPrice = price
	m.settings.UpdatedAt = time.Now()
	s := m.settings
	return &s, nil
}

func newMemServices(price int64) *service.Services {
	sales := &memSales{}
	students := &memStudents{students: map[string]models.Student{}}
	return &service.Services{
		Sales:    service.NewSalesService(sales, students, nil, nil, nil),
		Students: service.NewStudentService(students),
		Settings: service.NewSettingsService(&memSettings{settings: models.Settings{ID: 1, TicketPrice: price}}),
		Reset:    service.NewResetService(sales, nil),
	}
}
