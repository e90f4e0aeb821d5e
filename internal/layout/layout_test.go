package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/models"
)

func TestBuiltinLayoutsAreValid(t *testing.T) {
	for _, name := range Names() {
		cfg, err := Lookup(name)
		require.NoError(t, err)
		assert.NoError(t, Validate(cfg), name)
	}
}

func TestGenerateTotality(t *testing.T) {
	for _, name := range Names() {
		cfg, _ := Lookup(name)
		seats := Generate(cfg)

		assert.Len(t, seats, Capacity(cfg), name)

		ids := make(map[string]struct{}, len(seats))
		for _, seat := range seats {
			_, dup := ids[seat.ID]
			assert.False(t, dup, "duplicate seat id %s", seat.ID)
			ids[seat.ID] = struct{}{}
			assert.Equal(t, models.SeatAvailable, seat.Status)
			assert.Equal(t, SeatID(seat.Row, seat.Number, seat.Sector), seat.ID)
		}
	}
}

func TestTwoSectorCapacity(t *testing.T) {
	cfg := TwoSector()

	assert.Equal(t, 634, Capacity(cfg))
	assert.Len(t, cfg.Rows, 21)
	assert.False(t, HasSector(cfg, models.SectorCenter))

	seats := Generate(cfg)
	assert.Equal(t, "A1-ESQ", seats[0].ID)
	assert.Equal(t, "A4-ESQ", seats[3].ID)
	assert.Equal(t, "A1-DIR", seats[4].ID)
}

func TestThreeSectorCapacity(t *testing.T) {
	cfg := ThreeSector()

	assert.Equal(t, 520, Capacity(cfg))
	assert.True(t, HasSector(cfg, models.SectorCenter))
	for _, rc := range cfg.Rows {
		assert.NotEqual(t, "I", rc.Row)
		assert.NotEqual(t, "O", rc.Row)
	}
}

func TestLookupDefaultAndUnknown(t *testing.T) {
	cfg, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, TwoSectorName, cfg.Name)

	_, err = Lookup("opera-house")
	assert.Error(t, err)
}

func TestValidateRejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no name", Config{Rows: []RowConfig{{Row: "A", Left: Range{1, 2}}}}},
		{"no rows", Config{Name: "x"}},
		{"bad row", Config{Name: "x", Rows: []RowConfig{{Row: "a", Left: Range{1, 2}}}}},
		{"duplicate row", Config{Name: "x", Rows: []RowConfig{{Row: "A", Left: Range{1, 2}}, {Row: "A", Left: Range{1, 2}}}}},
		{"zero start", Config{Name: "x", Rows: []RowConfig{{Row: "A", Left: Range{0, 2}}}}},
		{"empty row", Config{Name: "x", Rows: []RowConfig{{Row: "A"}}}},
		{"overlap", Config{Name: "x", ContinuousNumbering: true, Rows: []RowConfig{
			{Row: "A", Left: Range{1, 5}, Center: Range{5, 8}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate(tt.cfg))
		})
	}
}

func TestValidateAllowsIndependentNumbering(t *testing.T) {
	cfg := Config{Name: "x", Rows: []RowConfig{{Row: "A", Left: Range{1, 3}, Right: Range{1, 3}}}}
	assert.NoError(t, Validate(cfg))
}

func TestParseSeatID(t *testing.T) {
	row, number, sector, err := ParseSeatID("U28-DIR")
	require.NoError(t, err)
	assert.Equal(t, "U", row)
	assert.Equal(t, 28, number)
	assert.Equal(t, models.SectorRight, sector)

	for _, bad := range []string{"", "A1", "A-ESQ", "a1-ESQ", "A1-XYZ", "A0-ESQ"} {
		_, _, _, err := ParseSeatID(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studio.yaml")
	content := `name: studio
continuous_numbering: true
rows:
  - row: A
    left: {from: 1, to: 2}
    center: {from: 3, to: 6}
    right: {from: 7, to: 8}
  - row: B
    left: {from: 1, to: 3}
    right: {from: 4, to: 6}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "studio", cfg.Name)
	assert.Equal(t, 14, Capacity(cfg))

	resolved, err := Resolve(TwoSectorName, path)
	require.NoError(t, err)
	assert.Equal(t, "studio", resolved.Name)
}

func TestLoadFileRejectsOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := `name: bad
continuous_numbering: true
rows:
  - row: A
    left: {from: 1, to: 4}
    right: {from: 4, to: 8}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
