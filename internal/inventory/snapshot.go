package inventory

import (
	"context"
	"fmt"
	"time"

	"boxoffice/internal/models"
)

// Snapshot is the durable form of a store
type Snapshot struct {
	Seats    []models.Seat `json:"seats"`
	Selected []string      `json:"selected"`
	SavedAt  time.Time     `json:"saved_at"`
}

// Persister is a durable key-value slot for the latest snapshot.
// Load returns nil, nil when nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Restore reloads the last saved snapshot so a restarted terminal does not show
// an all-available map until the first reconciliation. Seats missing from the
// current catalog are ignored and the selection is re-validated.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}

	snap, err := s.persister.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load seat snapshot: %w", err)
	}
	if snap == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, saved := range snap.Seats {
		seat, ok := s.seats[saved.ID]
		if !ok {
			continue
		}
		switch saved.Status {
		case models.SeatSold, models.SeatBlocked:
			seat.Status = saved.Status
		default:
			seat.Status = models.SeatAvailable
		}
	}

	s.selected = nil
	for _, id := range snap.Selected {
		seat, ok := s.seats[id]
		if !ok || seat.Status != models.SeatAvailable || s.isSelected(id) {
			continue
		}
		seat.Status = models.SeatSelected
		s.selected = append(s.selected, id)
	}

	s.commit(ChangeRestore, nil)
	return true, nil
}

// Occupancy projects the current state for the public panel
func (s *Store) Occupancy() models.OccupancyResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resp models.OccupancyResponse
	bySector := make(map[models.Sector]*models.SectorOccupancy)

	for _, id := range s.order {
		seat := s.seats[id]
		sec, ok := bySector[seat.Sector]
		if !ok {
			sec = &models.SectorOccupancy{Sector: seat.Sector, Label: seat.Sector.Label()}
			bySector[seat.Sector] = sec
		}

		resp.Total++
		sec.Total++
		switch seat.Status {
		case models.SeatAvailable:
			resp.Available++
			sec.Available++
		case models.SeatSelected:
			resp.Selected++
			sec.Selected++
		case models.SeatSold:
			resp.Sold++
			sec.Sold++
		case models.SeatBlocked:
			resp.Blocked++
			sec.Blocked++
		}
	}

	for _, sector := range models.Sectors {
		if sec, ok := bySector[sector]; ok {
			resp.Sectors = append(resp.Sectors, *sec)
		}
	}

	return resp
}
