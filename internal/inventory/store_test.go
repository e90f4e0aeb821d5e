package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/layout"
	"boxoffice/internal/models"
)

type memoryPersister struct {
	mu    sync.Mutex
	saved *Snapshot
	saves int
	err   error
}

func (m *memoryPersister) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.saved, nil
}

func (m *memoryPersister) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.saved = &snap
	return nil
}

func newTestStore(opts ...Option) *Store {
	return New(layout.Generate(layout.TwoSector()), opts...)
}

func status(t *testing.T, s *Store, id string) models.SeatStatus {
	t.Helper()
	seat, ok := s.Seat(id)
	require.True(t, ok, id)
	return seat.Status
}

func TestSelectIsIdempotent(t *testing.T) {
	s := newTestStore()

	ok, err := s.Select("A1-ESQ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Select("A1-ESQ")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"A1-ESQ"}, s.Selection())
	assert.Equal(t, models.SeatSelected, status(t, s, "A1-ESQ"))
}

func TestSelectKeepsPickOrder(t *testing.T) {
	s := newTestStore()
	for _, id := range []string{"C3-DIR", "A1-ESQ", "B2-ESQ"} {
		_, err := s.Select(id)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"C3-DIR", "A1-ESQ", "B2-ESQ"}, s.Selection())
}

func TestSelectUnknownSeat(t *testing.T) {
	s := newTestStore()

	_, err := s.Select("Z99-CEN")
	assert.ErrorIs(t, err, ErrUnknownSeat)

	_, err = s.Deselect("Z99-CEN")
	assert.ErrorIs(t, err, ErrUnknownSeat)
}

func TestSelectSoldSeatIsNoop(t *testing.T) {
	s := newTestStore()
	s.Reconcile(NewSeatSet("A1-ESQ"))

	ok, err := s.Select("A1-ESQ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.Selection())
	assert.Equal(t, models.SeatSold, status(t, s, "A1-ESQ"))
}

func TestDeselectNeverTouchesSoldOrBlocked(t *testing.T) {
	s := newTestStore()
	s.Reconcile(NewSeatSet("A1-ESQ"))
	_, err := s.Block("A2-ESQ")
	require.NoError(t, err)

	ok, err := s.Deselect("A1-ESQ")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Deselect("A2-ESQ")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, models.SeatSold, status(t, s, "A1-ESQ"))
	assert.Equal(t, models.SeatBlocked, status(t, s, "A2-ESQ"))
}

func TestDeselectReleasesSeat(t *testing.T) {
	s := newTestStore()
	_, _ = s.Select("A1-ESQ")
	_, _ = s.Select("A2-ESQ")

	ok, err := s.Deselect("A1-ESQ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"A2-ESQ"}, s.Selection())
	assert.Equal(t, models.SeatAvailable, status(t, s, "A1-ESQ"))
}

func TestClearSelection(t *testing.T) {
	s := newTestStore()
	_, _ = s.Select("A1-ESQ")
	_, _ = s.Select("A2-ESQ")
	s.Reconcile(NewSeatSet("B1-DIR"))

	released := s.ClearSelection()
	assert.Equal(t, 2, released)
	assert.Empty(t, s.Selection())
	assert.Equal(t, models.SeatAvailable, status(t, s, "A1-ESQ"))
	assert.Equal(t, models.SeatSold, status(t, s, "B1-DIR"))
}

func TestReconcileConvergesAndIsIdempotent(t *testing.T) {
	s := newTestStore()
	_, _ = s.Select("C1-ESQ")
	sold := NewSeatSet("A1-ESQ", "U28-DIR")

	first := s.Reconcile(sold)
	assert.Equal(t, 2, first.Sold)
	before := s.Snapshot()

	second := s.Reconcile(sold)
	after := s.Snapshot()

	assert.Equal(t, first.Sold, second.Sold)
	assert.Empty(t, second.Conflicts)
	assert.Equal(t, before.Seats, after.Seats)
	assert.Equal(t, before.Selected, after.Selected)

	for _, seat := range after.Seats {
		switch {
		case sold.Has(seat.ID):
			assert.Equal(t, models.SeatSold, seat.Status, seat.ID)
		case seat.ID == "C1-ESQ":
			assert.Equal(t, models.SeatSelected, seat.Status)
		default:
			assert.Equal(t, models.SeatAvailable, seat.Status, seat.ID)
		}
	}
}

func TestReconcileResolvesConflictInFavourOfLedger(t *testing.T) {
	s := newTestStore()
	_, _ = s.Select("D5-ESQ")
	_, _ = s.Select("D6-ESQ")

	result := s.Reconcile(NewSeatSet("D5-ESQ"))

	assert.Equal(t, []string{"D5-ESQ"}, result.Conflicts)
	assert.Equal(t, []string{"D6-ESQ"}, s.Selection())
	assert.Equal(t, models.SeatSold, status(t, s, "D5-ESQ"))
	assert.Equal(t, models.SeatSelected, status(t, s, "D6-ESQ"))
}

func TestReconcileReopensDeletedSale(t *testing.T) {
	s := newTestStore()
	s.Reconcile(NewSeatSet("E1-ESQ", "E2-ESQ"))

	result := s.Reconcile(NewSeatSet("E2-ESQ"))

	assert.Equal(t, 1, result.Reopened)
	assert.Equal(t, models.SeatAvailable, status(t, s, "E1-ESQ"))
	assert.Equal(t, models.SeatSold, status(t, s, "E2-ESQ"))
}

func TestReconcileReportsUnknownSeats(t *testing.T) {
	s := newTestStore()

	result := s.Reconcile(NewSeatSet("A1-ESQ", "ZZ1-CEN"))

	assert.Equal(t, []string{"ZZ1-CEN"}, result.Unknown)
	assert.Equal(t, 1, result.Sold)
}

func TestReconcileUnknownSeatsAreSorted(t *testing.T) {
	s := newTestStore()
	sold := NewSeatSet("ZZ3-CEN", "A1-ESQ", "ZZ1-CEN", "QQ7-CEN", "ZZ2-CEN")

	for i := 0; i < 10; i++ {
		result := s.Reconcile(sold)
		assert.Equal(t, []string{"QQ7-CEN", "ZZ1-CEN", "ZZ2-CEN", "ZZ3-CEN"}, result.Unknown)
	}
}

func TestBlockedIsStickyUntilSold(t *testing.T) {
	s := newTestStore()

	ok, err := s.Block("F1-ESQ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Select("F1-ESQ")
	assert.False(t, ok)

	s.Reconcile(NewSeatSet())
	assert.Equal(t, models.SeatBlocked, status(t, s, "F1-ESQ"))

	s.Reconcile(NewSeatSet("F1-ESQ"))
	assert.Equal(t, models.SeatSold, status(t, s, "F1-ESQ"))

	ok, err = s.Unblock("F1-ESQ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnblock(t *testing.T) {
	s := newTestStore()
	_, _ = s.Block("F2-ESQ")

	ok, err := s.Unblock("F2-ESQ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.SeatAvailable, status(t, s, "F2-ESQ"))
}

// Basic sale: select two seats, ledger confirms, seats sold right away, next sync agrees
func TestSaleLifecycle(t *testing.T) {
	s := newTestStore()
	_, _ = s.Select("A1-ESQ")
	_, _ = s.Select("A2-ESQ")

	sold := s.CommitSale([]string{"A1-ESQ", "A2-ESQ"})
	assert.Equal(t, 2, sold)
	assert.Empty(t, s.Selection())
	assert.Equal(t, models.SeatSold, status(t, s, "A1-ESQ"))

	result := s.Reconcile(NewSeatSet("A1-ESQ", "A2-ESQ"))
	assert.Equal(t, 0, result.Reopened)
	assert.Equal(t, models.SeatSold, status(t, s, "A1-ESQ"))
	assert.Equal(t, models.SeatSold, status(t, s, "A2-ESQ"))
	assert.Empty(t, s.Selection())
}

func TestCommitSaleKeepsLaterPicks(t *testing.T) {
	s := newTestStore()
	_, _ = s.Select("A1-ESQ")
	_, _ = s.Select("A2-ESQ")
	// picked while the sale was in flight
	_, _ = s.Select("A3-ESQ")

	s.CommitSale([]string{"A1-ESQ", "A2-ESQ", "ZZ9-CEN"})

	assert.Equal(t, []string{"A3-ESQ"}, s.Selection())
	assert.Equal(t, models.SeatSelected, status(t, s, "A3-ESQ"))

	ok, err := s.Select("A1-ESQ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.SeatSold, status(t, s, "A1-ESQ"))
}

func TestCommittedSaleReopensWhenLedgerDropsIt(t *testing.T) {
	s := newTestStore()
	_, _ = s.Select("A1-ESQ")
	s.CommitSale([]string{"A1-ESQ"})

	result := s.Reconcile(NewSeatSet())

	assert.Equal(t, 1, result.Reopened)
	assert.Equal(t, models.SeatAvailable, status(t, s, "A1-ESQ"))
}

func TestReconcileConvergesFromDifferentStartingStates(t *testing.T) {
	stale := newTestStore()
	stale.Reconcile(NewSeatSet("B1-ESQ", "B2-ESQ", "C1-DIR"))
	_, _ = stale.Select("D1-ESQ")
	stale.CommitSale([]string{"D1-ESQ"})
	_, _ = stale.Select("E1-ESQ")

	fresh := newTestStore()
	_, _ = fresh.Select("E1-ESQ")

	sold := NewSeatSet("B2-ESQ", "A1-DIR", "QQ1-CEN")
	a := stale.Reconcile(sold)
	b := fresh.Reconcile(sold)

	assert.Equal(t, stale.Seats(), fresh.Seats())
	assert.Equal(t, stale.Selection(), fresh.Selection())
	assert.Equal(t, a.Sold, b.Sold)
	assert.Equal(t, a.Unknown, b.Unknown)
	assert.Equal(t, 3, a.Reopened)
	assert.Equal(t, 0, b.Reopened)
}

func TestPersisterReceivesEveryChange(t *testing.T) {
	p := &memoryPersister{}
	s := newTestStore(WithPersister(p))

	_, _ = s.Select("A1-ESQ")
	s.Reconcile(NewSeatSet("B1-ESQ"))

	require.NotNil(t, p.saved)
	assert.Equal(t, 2, p.saves)
	assert.Equal(t, []string{"A1-ESQ"}, p.saved.Selected)
}

func TestPersisterFailureDoesNotBlockMutation(t *testing.T) {
	p := &memoryPersister{err: errors.New("redis down")}
	s := newTestStore(WithPersister(p))

	ok, err := s.Select("A1-ESQ")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRestore(t *testing.T) {
	p := &memoryPersister{}
	first := newTestStore(WithPersister(p))
	first.Reconcile(NewSeatSet("A1-ESQ"))
	_, _ = first.Block("A3-ESQ")
	_, _ = first.Select("A2-ESQ")

	// stale entries from an older catalog
	p.saved.Seats = append(p.saved.Seats, models.Seat{ID: "Z1-CEN", Status: models.SeatSold})
	p.saved.Selected = append(p.saved.Selected, "Z1-CEN", "A1-ESQ", "A2-ESQ")

	second := newTestStore(WithPersister(p))
	restored, err := second.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, restored)

	assert.Equal(t, models.SeatSold, status(t, second, "A1-ESQ"))
	assert.Equal(t, models.SeatSelected, status(t, second, "A2-ESQ"))
	assert.Equal(t, models.SeatBlocked, status(t, second, "A3-ESQ"))
	assert.Equal(t, []string{"A2-ESQ"}, second.Selection())
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	s := newTestStore(WithPersister(&memoryPersister{}))
	restored, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)

	restored, err = newTestStore().Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestRestoreLoadError(t *testing.T) {
	s := newTestStore(WithPersister(&memoryPersister{err: errors.New("boom")}))
	_, err := s.Restore(context.Background())
	assert.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	s := newTestStore()

	var kinds []ChangeKind
	var conflicts []string
	cancel := s.Subscribe(func(c Change) {
		kinds = append(kinds, c.Kind)
		conflicts = append(conflicts, c.Conflicts...)
	})

	_, _ = s.Select("A1-ESQ")
	s.Reconcile(NewSeatSet("A1-ESQ"))
	cancel()
	s.ClearSelection()

	assert.Equal(t, []ChangeKind{ChangeSelect, ChangeReconcile}, kinds)
	assert.Equal(t, []string{"A1-ESQ"}, conflicts)
}

func TestOccupancy(t *testing.T) {
	s := newTestStore()
	_, _ = s.Select("A1-ESQ")
	_, _ = s.Block("A2-ESQ")
	s.Reconcile(NewSeatSet("A1-DIR", "A2-DIR"))

	occ := s.Occupancy()
	assert.Equal(t, 634, occ.Total)
	assert.Equal(t, 1, occ.Selected)
	assert.Equal(t, 1, occ.Blocked)
	assert.Equal(t, 2, occ.Sold)
	assert.Equal(t, 630, occ.Available)

	require.Len(t, occ.Sectors, 2)
	assert.Equal(t, models.SectorLeft, occ.Sectors[0].Sector)
	assert.Equal(t, models.SectorRight, occ.Sectors[1].Sector)
	assert.Equal(t, 2, occ.Sectors[1].Sold)
	assert.Equal(t, occ.Total, occ.Sectors[0].Total+occ.Sectors[1].Total)
}

func TestConcurrentSelectDeselect(t *testing.T) {
	s := newTestStore()
	seats := s.Seats()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := i; j < len(seats); j += 8 {
				_, _ = s.Select(seats[j].ID)
				if j%2 == 0 {
					_, _ = s.Deselect(seats[j].ID)
				}
			}
		}(i)
	}
	wg.Wait()

	selected := s.Selection()
	occ := s.Occupancy()
	assert.Equal(t, len(selected), occ.Selected)
	assert.Equal(t, len(seats)/2, len(selected))
}
