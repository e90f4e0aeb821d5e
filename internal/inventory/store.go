// Package inventory holds the terminal-local view of every seat and the
// selection the terminal is building. Remote sales always win: Reconcile
// overwrites local status from the ledger's sold set.
package inventory

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"boxoffice/internal/models"
)

var ErrUnknownSeat = errors.New("unknown seat")

// ChangeKind names the mutation that produced a Change
type ChangeKind string

const (
	ChangeSelect    ChangeKind = "select"
	ChangeDeselect  ChangeKind = "deselect"
	ChangeClear     ChangeKind = "clear"
	ChangeSale      ChangeKind = "sale"
	ChangeReconcile ChangeKind = "reconcile"
	ChangeRestore   ChangeKind = "restore"
	ChangeBlock     ChangeKind = "block"
	ChangeUnblock   ChangeKind = "unblock"
)

// Change is delivered to subscribers after every mutation
type Change struct {
	Kind      ChangeKind    `json:"kind"`
	Seats     []models.Seat `json:"seats"`
	Selected  []string      `json:"selected"`
	Conflicts []string      `json:"conflicts,omitempty"`
}

// SeatSet is a set of seat ids
type SeatSet map[string]struct{}

// NewSeatSet builds a set from ids
func NewSeatSet(ids ...string) SeatSet {
	set := make(SeatSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership
func (s SeatSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// ReconcileResult describes what a reconcile pass changed
type ReconcileResult struct {
	// Conflicts are seats this terminal had selected that another sale took
	Conflicts []string
	// Unknown are sold ids that are not part of the venue catalog
	Unknown  []string
	Sold     int
	Reopened int
}

// Store is the seat state of one terminal. All mutations are serialised.
type Store struct {
	mu       sync.Mutex
	order    []string
	seats    map[string]*models.Seat
	selected []string

	persister   Persister
	saveTimeout time.Duration
	logger      *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Option configures a Store
type Option func(*Store)

// WithPersister mirrors every change to a durable snapshot slot
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the store logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSaveTimeout bounds a single snapshot write
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) { s.saveTimeout = d }
}

// New seeds a store from the layout catalog
func New(catalog []models.Seat, opts ...Option) *Store {
	s := &Store{
		order:       make([]string, 0, len(catalog)),
		seats:       make(map[string]*models.Seat, len(catalog)),
		saveTimeout: 2 * time.Second,
		logger:      slog.Default(),
		subs:        make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, seat := range catalog {
		if _, dup := s.seats[seat.ID]; dup {
			continue
		}
		seat := seat
		s.order = append(s.order, seat.ID)
		s.seats[seat.ID] = &seat
	}

	return s
}

// Select marks an AVAILABLE seat as SELECTED and appends it to the selection.
// It returns false when the seat is not selectable or already selected.
func (s *Store) Select(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[id]
	if !ok {
		return false, ErrUnknownSeat
	}
	if seat.Status != models.SeatAvailable || s.isSelected(id) {
		return false, nil
	}

	seat.Status = models.SeatSelected
	s.selected = append(s.selected, id)
	s.commit(ChangeSelect, nil)
	return true, nil
}

// Deselect returns a SELECTED seat to AVAILABLE. SOLD and BLOCKED seats are never touched.
func (s *Store) Deselect(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[id]
	if !ok {
		return false, ErrUnknownSeat
	}
	if !s.removeSelected(id) {
		return false, nil
	}

	if seat.Status == models.SeatSelected {
		seat.Status = models.SeatAvailable
	}
	s.commit(ChangeDeselect, nil)
	return true, nil
}

// ClearSelection releases every SELECTED seat and empties the selection.
// It returns the number of seats released.
func (s *Store) ClearSelection() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for _, id := range s.order {
		seat := s.seats[id]
		if seat.Status == models.SeatSelected {
			seat.Status = models.SeatAvailable
			released++
		}
	}
	s.selected = nil
	s.commit(ChangeClear, nil)
	return released
}

// CommitSale marks the seats of a sale the ledger just accepted as SOLD and
// drops them from the selection. Seats selected while the sale was in flight
// stay selected. The next reconcile pass still overwrites these statuses.
func (s *Store) CommitSale(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sold := 0
	for _, id := range ids {
		seat, ok := s.seats[id]
		if !ok {
			continue
		}
		s.removeSelected(id)
		if seat.Status != models.SeatSold {
			seat.Status = models.SeatSold
			sold++
		}
	}
	s.commit(ChangeSale, nil)
	return sold
}

// Reconcile recomputes every seat from scratch against the ledger's sold set:
// sold wins, then the local selection, then sticky BLOCKED, else AVAILABLE.
func (s *Store) Reconcile(sold SeatSet) ReconcileResult {
	var result ReconcileResult

	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range sold {
		if _, ok := s.seats[id]; !ok {
			result.Unknown = append(result.Unknown, id)
		}
	}
	sort.Strings(result.Unknown)

	kept := s.selected[:0:0]
	for _, id := range s.selected {
		if sold.Has(id) {
			result.Conflicts = append(result.Conflicts, id)
			continue
		}
		kept = append(kept, id)
	}
	s.selected = kept

	for _, id := range s.order {
		seat := s.seats[id]
		prev := seat.Status
		switch {
		case sold.Has(id):
			seat.Status = models.SeatSold
			result.Sold++
		case s.isSelected(id):
			seat.Status = models.SeatSelected
		case prev == models.SeatBlocked:
			seat.Status = models.SeatBlocked
		default:
			seat.Status = models.SeatAvailable
			if prev == models.SeatSold {
				result.Reopened++
			}
		}
	}
	s.commit(ChangeReconcile, result.Conflicts)
	return result
}

// Block takes an AVAILABLE seat out of sale. BLOCKED survives reconciliation
// until the ledger reports the seat sold.
func (s *Store) Block(id string) (bool, error) {
	return s.setAdministrative(id, models.SeatAvailable, models.SeatBlocked, ChangeBlock)
}

// Unblock returns a BLOCKED seat to AVAILABLE
func (s *Store) Unblock(id string) (bool, error) {
	return s.setAdministrative(id, models.SeatBlocked, models.SeatAvailable, ChangeUnblock)
}

func (s *Store) setAdministrative(id string, from, to models.SeatStatus, kind ChangeKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[id]
	if !ok {
		return false, ErrUnknownSeat
	}
	if seat.Status != from {
		return false, nil
	}

	seat.Status = to
	s.commit(kind, nil)
	return true, nil
}

// Seats returns a copy of the catalog in layout order
func (s *Store) Seats() []models.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySeats()
}

// Seat returns a single seat
func (s *Store) Seat(id string) (models.Seat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[id]
	if !ok {
		return models.Seat{}, false
	}
	return *seat, true
}

// Selection returns the selection in the order seats were picked
func (s *Store) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

// Snapshot captures the full state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn for every future change and returns its cancel func.
// fn runs while the store is locked and must not call back into the store.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) isSelected(id string) bool {
	for _, sel := range s.selected {
		if sel == id {
			return true
		}
	}
	return false
}

func (s *Store) removeSelected(id string) bool {
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) copySeats() []models.Seat {
	out := make([]models.Seat, len(s.order))
	for i, id := range s.order {
		out[i] = *s.seats[id]
	}
	return out
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		Seats:    s.copySeats(),
		Selected: append([]string(nil), s.selected...),
		SavedAt:  time.Now().UTC(),
	}
}

// commit persists the current state and notifies subscribers. Callers hold s.mu,
// so subscribers observe changes in mutation order.
func (s *Store) commit(kind ChangeKind, conflicts []string) {
	snap := s.snapshot()

	if s.persister != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		if err := s.persister.Save(ctx, snap); err != nil {
			s.logger.Warn("Failed to persist seat snapshot", "error", err, "change", kind)
		}
		cancel()
	}

	s.notify(Change{
		Kind:      kind,
		Seats:     snap.Seats,
		Selected:  snap.Selected,
		Conflicts: conflicts,
	})
}

func (s *Store) notify(change Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
