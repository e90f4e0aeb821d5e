// Package layout builds the immutable seat catalog of the venue from a static
// per-row configuration table.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"boxoffice/internal/models"
)

// Range is an inclusive range of seat numbers. The zero value is empty.
type Range struct {
	From int `mapstructure:"from" json:"from"`
	To   int `mapstructure:"to" json:"to"`
}

// Empty reports whether the range contains no seats
func (r Range) Empty() bool {
	return r.To < r.From || (r.From == 0 && r.To == 0)
}

// Size returns the number of seats in the range
func (r Range) Size() int {
	if r.Empty() {
		return 0
	}
	return r.To - r.From + 1
}

func (r Range) overlaps(o Range) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.From <= o.To && o.From <= r.To
}

// RowConfig holds the per-sector number ranges of a single row
type RowConfig struct {
	Row    string `mapstructure:"row" json:"row"`
	Left   Range  `mapstructure:"left" json:"left"`
	Center Range  `mapstructure:"center" json:"center"`
	Right  Range  `mapstructure:"right" json:"right"`
}

// Range returns the configured range for a sector
func (rc RowConfig) Range(sector models.Sector) Range {
	switch sector {
	case models.SectorLeft:
		return rc.Left
	case models.SectorCenter:
		return rc.Center
	case models.SectorRight:
		return rc.Right
	}
	return Range{}
}

// Config is a complete venue table. Rows are listed in catalog order.
// With ContinuousNumbering the ranges of one row must not overlap, otherwise
// every sector is numbered on its own and the sector suffix keeps ids distinct.
type Config struct {
	Name                string      `mapstructure:"name" json:"name"`
	ContinuousNumbering bool        `mapstructure:"continuous_numbering" json:"continuous_numbering"`
	Rows                []RowConfig `mapstructure:"rows" json:"rows"`
}

// SeatID renders the composite identity of a seat, e.g. "A1-ESQ"
func SeatID(row string, number int, sector models.Sector) string {
	return row + strconv.Itoa(number) + "-" + sector.Suffix()
}

// ParseSeatID splits a seat identity back into its parts. Only rendering code
// should need this; the inventory treats ids as opaque keys.
func ParseSeatID(id string) (row string, number int, sector models.Sector, err error) {
	dash := strings.LastIndex(id, "-")
	if dash < 2 {
		return "", 0, "", fmt.Errorf("invalid seat id %q", id)
	}

	sector, ok := models.SectorFromSuffix(id[dash+1:])
	if !ok {
		return "", 0, "", fmt.Errorf("invalid sector in seat id %q", id)
	}

	row = id[:1]
	if row[0] < 'A' || row[0] > 'Z' {
		return "", 0, "", fmt.Errorf("invalid row in seat id %q", id)
	}

	number, err = strconv.Atoi(id[1:dash])
	if err != nil || number < 1 {
		return "", 0, "", fmt.Errorf("invalid seat number in seat id %q", id)
	}

	return row, number, sector, nil
}

// Generate emits one AVAILABLE seat per (row, sector, number) of the table.
func Generate(cfg Config) []models.Seat {
	seats := make([]models.Seat, 0, Capacity(cfg))
	for _, rc := range cfg.Rows {
		for _, sector := range models.Sectors {
			r := rc.Range(sector)
			if r.Empty() {
				continue
			}
			for n := r.From; n <= r.To; n++ {
				seats = append(seats, models.Seat{
					ID:     SeatID(rc.Row, n, sector),
					Sector: sector,
					Row:    rc.Row,
					Number: n,
					Status: models.SeatAvailable,
				})
			}
		}
	}
	return seats
}

// Capacity returns the total number of seats described by the table
func Capacity(cfg Config) int {
	total := 0
	for _, rc := range cfg.Rows {
		total += rc.Left.Size() + rc.Center.Size() + rc.Right.Size()
	}
	return total
}

// HasSector reports whether any row of the table uses the sector
func HasSector(cfg Config, sector models.Sector) bool {
	for _, rc := range cfg.Rows {
		if !rc.Range(sector).Empty() {
			return true
		}
	}
	return false
}

// Validate checks the static table for data bugs
func Validate(cfg Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("layout name is empty")
	}
	if len(cfg.Rows) == 0 {
		return fmt.Errorf("layout %s has no rows", cfg.Name)
	}

	rows := make(map[string]struct{}, len(cfg.Rows))
	for _, rc := range cfg.Rows {
		if len(rc.Row) != 1 || rc.Row[0] < 'A' || rc.Row[0] > 'Z' {
			return fmt.Errorf("layout %s: invalid row %q", cfg.Name, rc.Row)
		}
		if _, dup := rows[rc.Row]; dup {
			return fmt.Errorf("layout %s: duplicate row %s", cfg.Name, rc.Row)
		}
		rows[rc.Row] = struct{}{}

		size := 0
		for _, sector := range models.Sectors {
			r := rc.Range(sector)
			if r.Empty() {
				continue
			}
			if r.From < 1 {
				return fmt.Errorf("layout %s: row %s %s range starts at %d", cfg.Name, rc.Row, sector, r.From)
			}
			size += r.Size()
		}
		if size == 0 {
			return fmt.Errorf("layout %s: row %s has no seats", cfg.Name, rc.Row)
		}

		if cfg.ContinuousNumbering {
			if rc.Left.overlaps(rc.Center) || rc.Left.overlaps(rc.Right) || rc.Center.overlaps(rc.Right) {
				return fmt.Errorf("layout %s: row %s has overlapping sector ranges", cfg.Name, rc.Row)
			}
		}
	}

	seen := make(map[string]struct{}, Capacity(cfg))
	for _, seat := range Generate(cfg) {
		if _, dup := seen[seat.ID]; dup {
			return fmt.Errorf("layout %s: duplicate seat id %s", cfg.Name, seat.ID)
		}
		seen[seat.ID] = struct{}{}
	}

	return nil
}

// RowCount summarises one row for inspection tools
type RowCount struct {
	Row    string
	Left   int
	Center int
	Right  int
}

// Summary returns per-row seat counts in table order
func Summary(cfg Config) []RowCount {
	out := make([]RowCount, len(cfg.Rows))
	for i, rc := range cfg.Rows {
		out[i] = RowCount{Row: rc.Row, Left: rc.Left.Size(), Center: rc.Center.Size(), Right: rc.Right.Size()}
	}
	return out
}
