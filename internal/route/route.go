// Package route turns a terse planning string into an ordered chain of
// resolved legs. The decoder consults the navigation database for fixes and
// airways and the magnetic model for course conversion; the wind triangle is
// solved per leg as the route assembles.
package route

import (
	"fmt"
	"strings"
	"time"

	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
)

// EmptyError reports a route string with no tokens.
type EmptyError struct{}

func (EmptyError) Error() string { return "route: empty token sequence" }

// UnresolvedError reports a token no database entry matched, or an airway
// exit fix that does not lie on the airway. Position is the zero-based token
// index; for an airway exit it is the index of the airway token.
type UnresolvedError struct {
	Ident    string
	Position int
}

func (e UnresolvedError) Error() string {
	return fmt.Sprintf("route: unresolved ident %q at position %d", e.Ident, e.Position)
}

// LegInfeasibleError flags a leg the wind makes unflyable at the planned
// TAS. The route is still produced; the leg has no ground speed or ETE.
type LegInfeasibleError struct {
	Index int
}

func (e LegInfeasibleError) Error() string {
	return fmt.Sprintf("route: leg %d infeasible for the given wind and TAS", e.Index)
}

// Route is a decoded sequence of legs plus the cruise parameters the legs
// were solved with. A route is rebuilt from scratch whenever its inputs
// change; holders of legs must not retain them across a rebuild.
type Route struct {
	legs        []*Leg
	cruiseSpeed *measure.Speed
	cruiseLevel *measure.VerticalDistance
	wind        *measure.Wind
	alternate   *Leg
	magvar      geo.MagVarSource
}

// Decode resolves the whitespace-separated, case-insensitive route string
// against the navigation database. No partial route is produced: any
// unresolved token fails the decode.
func Decode(s string, db *nd.Database, magvar geo.MagVarSource) (*Route, error) {
	tokens := strings.Fields(strings.ToUpper(s))
	if len(tokens) == 0 {
		return nil, EmptyError{}
	}

	r := &Route{magvar: magvar}

	var fixes []*nd.Fix
	var prev *nd.Fix
	var lastAirport *nd.Airport
	var pendingAirway *nd.Airway
	pendingAirwayPos := 0

	for pos, tok := range tokens {
		if wind, err := measure.ParseWind(tok); err == nil {
			if r.wind == nil {
				r.wind = &wind
			}
			continue
		}
		if speed, err := measure.ParseSpeed(tok); err == nil {
			if r.cruiseSpeed == nil {
				r.cruiseSpeed = &speed
			}
			continue
		}
		if tok == "VFR" {
			// VFR cruise leaves the level open.
			continue
		}
		if level, err := measure.ParseVerticalDistance(tok); err == nil {
			if r.cruiseLevel == nil {
				r.cruiseLevel = &level
			}
			continue
		}

		// An airway enters at the previously resolved fix and runs until
		// the next token, which must name the exit fix on the airway.
		if awy := db.Airway(tok); awy != nil && prev != nil && awy.Contains(prev.Ident) {
			pendingAirway = awy
			pendingAirwayPos = pos
			continue
		}

		fix := resolveFix(db, tok, prev, lastAirport)
		if fix == nil {
			return nil, UnresolvedError{Ident: tok, Position: pos}
		}

		if pendingAirway != nil {
			if !pendingAirway.Contains(fix.Ident) {
				return nil, UnresolvedError{Ident: fix.Ident, Position: pendingAirwayPos}
			}
			fixes = append(fixes, pendingAirway.Between(prev.Ident, fix.Ident)...)
			pendingAirway = nil
		} else {
			fixes = append(fixes, fix)
		}

		prev = fixes[len(fixes)-1]
		if prev.Kind == nd.KindAirport {
			if a := db.LookupAirport(prev.Ident); a != nil {
				lastAirport = a
			}
		}
	}

	if len(fixes) == 0 {
		return nil, EmptyError{}
	}

	for i := 0; i+1 < len(fixes); i++ {
		r.legs = append(r.legs, NewLeg(fixes[i], fixes[i+1], r.cruiseLevel, r.cruiseSpeed, r.wind, magvar))
	}

	return r, nil
}

// resolveFix resolves a token in priority order: exact ICAO airport, named
// waypoint or navaid, then a reporting point given as the two-letter airport
// suffix plus code, scoped to the most recent preceding airport. Among
// ambiguous candidates the one closest to the previously resolved fix wins;
// ties resolve by lexicographic region.
func resolveFix(db *nd.Database, token string, prev *nd.Fix, lastAirport *nd.Airport) *nd.Fix {
	if a := db.LookupAirport(token); a != nil {
		return &a.Fix
	}

	var candidates []*nd.Fix
	for _, f := range db.LookupFix(token) {
		if f.Kind != nd.KindAirport {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 && lastAirport != nil && len(token) > 2 {
		icao := strings.ToUpper(lastAirport.ICAO)
		if len(icao) == 4 && strings.HasPrefix(token, icao[2:]) {
			code := token[2:]
			for _, f := range db.LookupFix(code) {
				if f.Kind == nd.KindReportingPoint && strings.EqualFold(f.Region, icao) {
					candidates = append(candidates, f)
				}
			}
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if prev == nil {
			if c.Region < best.Region {
				best = c
			}
			continue
		}
		dCand := geo.Distance(prev.Coord, c.Coord).SI()
		dBest := geo.Distance(prev.Coord, best.Coord).SI()
		if dCand < dBest || (dCand == dBest && c.Region < best.Region) {
			best = c
		}
	}
	return best
}

// Legs returns the legs of the route in input order.
func (r *Route) Legs() []*Leg { return r.legs }

// Diagnostics returns a LegInfeasibleError for every leg the wind triangle
// could not be solved for.
func (r *Route) Diagnostics() []error {
	var out []error
	for i, l := range r.legs {
		if l.Infeasible() {
			out = append(out, LegInfeasibleError{Index: i})
		}
	}
	return out
}

// CruiseSpeed returns the route-level true airspeed, or nil.
func (r *Route) CruiseSpeed() *measure.Speed { return r.cruiseSpeed }

// CruiseLevel returns the route-level cruise level, or nil for VFR routes
// flown without one.
func (r *Route) CruiseLevel() *measure.VerticalDistance { return r.cruiseLevel }

// Wind returns the route-level wind, or nil.
func (r *Route) Wind() *measure.Wind { return r.wind }

// SetAlternate adds a diversion leg from the route's destination to the
// fix. Passing nil removes the alternate.
func (r *Route) SetAlternate(fix *nd.Fix) {
	if fix == nil {
		r.alternate = nil
		return
	}
	if len(r.legs) == 0 {
		return
	}
	last := r.legs[len(r.legs)-1]
	r.alternate = NewLeg(last.To, fix, r.cruiseLevel, r.cruiseSpeed, r.wind, r.magvar)
}

// Alternate returns the leg to the alternate, or nil.
func (r *Route) Alternate() *Leg { return r.alternate }

// Distance returns the total route distance.
func (r *Route) Distance() measure.Length {
	total := measure.NauticalMiles(0)
	for _, l := range r.legs {
		total = total.Add(l.Distance())
	}
	return total
}

// ETE returns the summed time en route of all feasible legs, or nil when no
// leg has one.
func (r *Route) ETE() *time.Duration {
	var total time.Duration
	any := false
	for _, l := range r.legs {
		if ete := l.ETE(); ete != nil {
			total += *ete
			any = true
		}
	}
	if !any {
		return nil
	}
	return &total
}
