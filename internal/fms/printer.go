package fms

import (
	"fmt"
	"strings"

	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/planning"
	"github.com/yegors/fms/internal/route"
)

// DefaultLineLength is the column width Print uses when none is given.
const DefaultLineLength = 40

// Printer renders a route and planning as fixed-width text with the
// sections ROUTE, FUEL and MASS & BALANCE.
type Printer struct {
	LineLength int
}

// Print renders the route and, when present, the planning. Either argument
// may be nil.
func (p Printer) Print(rt *route.Route, plan *planning.FlightPlanning) string {
	width := p.LineLength
	if width <= 0 {
		width = DefaultLineLength
	}

	var b strings.Builder

	if rt != nil {
		p.writeRoute(&b, width, rt)
	}
	if plan != nil {
		if plan.Fuel != nil {
			p.writeFuel(&b, width, plan.Fuel)
		}
		p.writeMB(&b, width, plan)
	}

	return b.String()
}

func (p Printer) writeSection(b *strings.Builder, width int, title string) {
	rule := strings.Repeat("-", width)
	fmt.Fprintf(b, "%s\n-- %s\n%s\n\n", rule, title, rule)
}

// keyValue writes the key at the left margin and the value right-aligned on
// the same line.
func keyValue(b *strings.Builder, width int, key, value string) {
	pad := width - len(key) - 1
	if pad < 1 {
		pad = 1
	}
	fmt.Fprintf(b, "%s %*s\n", key, pad, value)
}

func (p Printer) writeRoute(b *strings.Builder, width int, rt *route.Route) {
	p.writeSection(b, width, "ROUTE")

	col := (width - 10) / 3
	if col < 7 {
		col = 7
	}

	for _, leg := range rt.Legs() {
		course := leg.MagneticCourse().String()
		courseLabel := "TRK"
		if mh := leg.MagneticHeading(); mh != nil {
			course = mh.String()
			courseLabel = "HDG"
		}

		ete := "--:--"
		if t := leg.ETE(); t != nil {
			ete = measure.FormatDuration(*t)
		}

		fmt.Fprintf(b, "%-10s%*s%*s%*s\n", "TO", col, courseLabel, col, "DIST", col, "ETE")
		fmt.Fprintf(b, "%-10s%*s%*s%*s\n\n",
			leg.To.Ident,
			col, course,
			col, fmt.Sprintf("%.1f NM", leg.Distance().Convert(measure.UnitNauticalMiles).Value()),
			col, ete)
	}

	keyValue(b, width, "DIST", fmt.Sprintf("%.1f NM", rt.Distance().Convert(measure.UnitNauticalMiles).Value()))
	if ete := rt.ETE(); ete != nil {
		keyValue(b, width, "ETE", measure.FormatDuration(*ete))
	}
	b.WriteString("\n")
}

func (p Printer) writeFuel(b *strings.Builder, width int, fuel *planning.FuelPlanning) {
	p.writeSection(b, width, "FUEL")

	liters := func(f measure.Fuel) string { return fmt.Sprintf("%.0f L", f.Liters()) }

	keyValue(b, width, "TRIP", liters(fuel.Trip))
	keyValue(b, width, "TAXI", liters(fuel.Taxi))
	if fuel.Alternate.Liters() > 0 {
		keyValue(b, width, "ALTERNATE", liters(fuel.Alternate))
	}
	keyValue(b, width, "RESERVE", liters(fuel.Reserve))
	keyValue(b, width, "MINIMUM", liters(fuel.Min))
	keyValue(b, width, "EXTRA", liters(fuel.Extra))
	keyValue(b, width, "TOTAL", liters(fuel.OnRamp))
	b.WriteString("\n")
}

func (p Printer) writeMB(b *strings.Builder, width int, plan *planning.FlightPlanning) {
	p.writeSection(b, width, "MASS & BALANCE")

	if mb := plan.MB; mb != nil {
		col := (width - 14) / 2
		if col < 9 {
			col = 9
		}
		fmt.Fprintf(b, "%-14s%*s%*s\n", "", col, "MASS", col, "BALANCE")
		fmt.Fprintf(b, "%-14s%*s%*s\n", "ON RAMP",
			col, fmt.Sprintf("%.0f kg", mb.MassOnRamp.Convert(measure.UnitKilograms).Value()),
			col, fmt.Sprintf("%.2f m", mb.BalanceOnRamp.SI()))
		fmt.Fprintf(b, "%-14s%*s%*s\n", "AFTER LANDING",
			col, fmt.Sprintf("%.0f kg", mb.MassAfterLanding.Convert(measure.UnitKilograms).Value()),
			col, fmt.Sprintf("%.2f m", mb.BalanceAfterLanding.SI()))
	}

	balanced := "NO"
	if plan.Balanced {
		balanced = "YES"
	}
	b.WriteString("\n")
	keyValue(b, width, "BALANCED", balanced)
}
