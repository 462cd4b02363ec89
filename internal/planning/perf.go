// Package planning derives the flight planning from a route: performance
// lookup, fuel accounting under a fuel policy, mass & balance, and the
// takeoff/landing runway analysis.
package planning

import (
	"fmt"
	"sort"

	"github.com/yegors/fms/internal/measure"
)

// PerformanceRow gives the cruise speed and fuel flow holding up to the
// row's ceiling.
type PerformanceRow struct {
	Ceiling measure.VerticalDistance
	TAS     measure.Speed
	FF      measure.FuelFlow
}

// Performance is a step function from level to (TAS, fuel flow): the row
// with the smallest ceiling at or above the queried level answers.
type Performance struct {
	rows []PerformanceRow
}

// NewPerformance returns a performance table. The rows are sorted by
// ascending ceiling. Panics on an empty table.
func NewPerformance(rows []PerformanceRow) *Performance {
	if len(rows) == 0 {
		panic("planning: performance table must have at least one row")
	}
	sorted := make([]PerformanceRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ceiling.Cmp(sorted[j].Ceiling) < 0
	})
	return &Performance{rows: sorted}
}

// PerformanceFunc samples an opaque performance oracle in 1000 ft steps up
// to the ceiling, so arbitrary POH curves plug in without table authoring.
func PerformanceFunc(f func(measure.VerticalDistance) (measure.Speed, measure.FuelFlow), ceiling measure.VerticalDistance) *Performance {
	var rows []PerformanceRow
	level := measure.Gnd()
	ft := 0
	for level.Cmp(ceiling) <= 0 {
		tas, ff := f(level)
		rows = append(rows, PerformanceRow{Ceiling: levelOrGround(ft), TAS: tas, FF: ff})
		ft += 1000
		level = measure.Altitude(ft)
	}
	return NewPerformance(rows)
}

func levelOrGround(ft int) measure.VerticalDistance {
	if ft == 0 {
		return measure.Gnd()
	}
	return measure.Altitude(ft)
}

// AboveCeilingError flags a queried level above the highest table ceiling.
// The lookup clamps to the last row; the planning carries the diagnostic.
type AboveCeilingError struct {
	Level measure.VerticalDistance
}

func (e AboveCeilingError) Error() string {
	return fmt.Sprintf("planning: level %s above performance ceiling", e.Level)
}

// Lookup returns the row covering the level. The second return value is true
// when the level exceeds the highest ceiling and the last row was clamped.
func (p *Performance) Lookup(level measure.VerticalDistance) (PerformanceRow, bool) {
	for _, row := range p.rows {
		if row.Ceiling.Cmp(level) >= 0 {
			return row, false
		}
	}
	return p.rows[len(p.rows)-1], true
}
