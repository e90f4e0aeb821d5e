package layout

import (
	"fmt"
	"sort"
)

const (
	TwoSectorName   = "two-sector"
	ThreeSectorName = "three-sector"

	// DefaultName is the layout used when nothing else is configured
	DefaultName = TwoSectorName
)

// twoSectorCounts is the number of seats on each side of rows A..U
var twoSectorCounts = []struct {
	row   string
	seats int
}{
	{"A", 4}, {"B", 6}, {"C", 7}, {"D", 8}, {"E", 9}, {"F", 10}, {"G", 11},
	{"H", 12}, {"I", 13}, {"J", 14}, {"K", 15}, {"L", 16}, {"M", 17}, {"N", 18},
	{"O", 19}, {"P", 20}, {"Q", 21}, {"R", 22}, {"S", 23}, {"T", 24}, {"U", 28},
}

// threeSectorCounts lists left/center/right widths; rows I and O are skipped
var threeSectorCounts = []struct {
	row                 string
	left, center, right int
}{
	{"A", 3, 6, 3}, {"B", 3, 7, 3}, {"C", 4, 7, 4}, {"D", 4, 8, 4}, {"E", 5, 8, 5},
	{"F", 5, 9, 5}, {"G", 6, 9, 6}, {"H", 6, 10, 6}, {"J", 7, 10, 7}, {"K", 7, 11, 7},
	{"L", 8, 11, 8}, {"M", 8, 12, 8}, {"N", 9, 12, 9}, {"P", 9, 13, 9}, {"Q", 10, 13, 10},
	{"R", 10, 14, 10}, {"S", 11, 14, 11}, {"T", 11, 15, 11}, {"U", 12, 15, 12}, {"V", 12, 16, 12},
}

// TwoSector is the system-of-record venue: PNE ESQ and PNE DIR blocks, each numbered from 1.
func TwoSector() Config {
	cfg := Config{Name: TwoSectorName}
	for _, c := range twoSectorCounts {
		cfg.Rows = append(cfg.Rows, RowConfig{
			Row:   c.row,
			Left:  Range{From: 1, To: c.seats},
			Right: Range{From: 1, To: c.seats},
		})
	}
	return cfg
}

// ThreeSector adds a central block; numbers run continuously from left to right.
func ThreeSector() Config {
	cfg := Config{Name: ThreeSectorName, ContinuousNumbering: true}
	for _, c := range threeSectorCounts {
		cfg.Rows = append(cfg.Rows, RowConfig{
			Row:    c.row,
			Left:   Range{From: 1, To: c.left},
			Center: Range{From: c.left + 1, To: c.left + c.center},
			Right:  Range{From: c.left + c.center + 1, To: c.left + c.center + c.right},
		})
	}
	return cfg
}

var registry = map[string]func() Config{
	TwoSectorName:   TwoSector,
	ThreeSectorName: ThreeSector,
}

// Lookup returns a built-in layout by name
func Lookup(name string) (Config, error) {
	if name == "" {
		name = DefaultName
	}
	build, ok := registry[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown layout %q (known: %v)", name, Names())
	}
	return build(), nil
}

// Names lists the built-in layouts
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
