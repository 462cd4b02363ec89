// Package fms is the flight management façade. It owns the navigation
// database, the decoded route and the flight planning, and moves between the
// states Fresh, NDLoaded, Routed and Planned as inputs arrive. Mutating an
// earlier input rebuilds every downstream derivation from scratch.
//
// An FMS is not safe for concurrent mutation. Once Planned, all derived
// state is memoized and the instance may be shared for read-only queries.
package fms

import (
	"fmt"

	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/nd"
	"github.com/yegors/fms/internal/nd/arinc424"
	"github.com/yegors/fms/internal/nd/openair"
	"github.com/yegors/fms/internal/planning"
	"github.com/yegors/fms/internal/route"
	"github.com/yegors/fms/pkg/logger"
)

// State is the lifecycle position of the FMS.
type State int

const (
	StateFresh State = iota
	StateNDLoaded
	StateRouted
	StatePlanned
)

func (s State) String() string {
	switch s {
	case StateNDLoaded:
		return "nd-loaded"
	case StateRouted:
		return "routed"
	case StatePlanned:
		return "planned"
	default:
		return "fresh"
	}
}

// InputFormat selects the navigation data parser.
type InputFormat int

const (
	FormatARINC424 InputFormat = iota
	FormatOpenAir
)

// StateError reports an operation attempted in a state that does not allow
// it.
type StateError struct {
	Op    string
	State State
}

func (e StateError) Error() string {
	return fmt.Sprintf("fms: %s not possible in state %s", e.Op, e.State)
}

// FMS coordinates the navigation database, route and flight planning.
type FMS struct {
	db     *nd.Database
	magvar geo.MagVarSource
	log    *logger.Logger

	// context: the raw inputs every reevaluation replays
	routeStr     string
	alternateRaw string
	builder      *planning.Builder

	route *route.Route
	plan  *planning.FlightPlanning
	state State
}

// New returns a fresh FMS using the given magnetic variation source. The
// logger may be nil.
func New(magvar geo.MagVarSource, log *logger.Logger) *FMS {
	if magvar == nil {
		magvar = geo.NoVariation{}
	}
	if log != nil {
		log = log.Named("fms")
	}
	return &FMS{db: nd.NewDatabase(), magvar: magvar, log: log, state: StateFresh}
}

// State returns the current lifecycle state.
func (f *FMS) State() State { return f.state }

// ND returns the navigation database.
func (f *FMS) ND() *nd.Database { return f.db }

// NDRead parses navigation data from s and merges it into the database.
// Across reads the database is union-merged with first-in wins. A read
// invalidates and replays the decoded route and planning.
func (f *FMS) NDRead(s string, format InputFormat) error {
	switch format {
	case FormatARINC424:
		res := arinc424.Parse(s, f.log)
		res.MergeInto(f.db)
	case FormatOpenAir:
		res := openair.Parse(s, f.log)
		res.MergeInto(f.db)
	default:
		return fmt.Errorf("fms: unknown input format %d", format)
	}
	if f.state == StateFresh {
		f.state = StateNDLoaded
	}
	return f.reevaluate()
}

// Decode resolves the route string against the database. Requires navigation
// data; on failure the FMS keeps its previous route state.
func (f *FMS) Decode(routeStr string) error {
	if f.db.IsEmpty() {
		return StateError{Op: "decode", State: f.state}
	}
	if f.state == StateFresh {
		// navigation data can arrive by direct merge (e.g. a storage
		// restore) without a read
		f.state = StateNDLoaded
	}
	prev := f.routeStr
	f.routeStr = routeStr
	if err := f.reevaluate(); err != nil {
		f.routeStr = prev
		if prev == "" {
			f.state = StateNDLoaded
			f.route = nil
			f.plan = nil
		}
		return err
	}
	return nil
}

// SetAlternate resolves the ident and adds the diversion leg to the route.
func (f *FMS) SetAlternate(ident string) error {
	if f.state < StateRouted {
		return StateError{Op: "set alternate", State: f.state}
	}
	prev := f.alternateRaw
	f.alternateRaw = ident
	if err := f.reevaluate(); err != nil {
		f.alternateRaw = prev
		return err
	}
	return nil
}

// SetFlightPlanning stores the builder and derives the planning. Requires a
// decoded route.
func (f *FMS) SetFlightPlanning(b *planning.Builder) error {
	if f.state < StateRouted {
		return StateError{Op: "set flight planning", State: f.state}
	}
	f.builder = b
	return f.reevaluate()
}

// Route returns the decoded route, or nil. The value is invalidated by any
// state transition.
func (f *FMS) Route() *route.Route { return f.route }

// FlightPlanning returns the derived planning, or nil. The value is
// invalidated by any state transition.
func (f *FMS) FlightPlanning() *planning.FlightPlanning { return f.plan }

// Print renders the route and planning with the given line length.
func (f *FMS) Print(lineLength int) string {
	p := Printer{LineLength: lineLength}
	return p.Print(f.route, f.plan)
}

// reevaluate replays the stored inputs: decode the route, resolve the
// alternate, rebuild the planning. A failing decode or alternate lookup
// returns before anything is replaced, so the previous route and planning
// stay in place; a failing planning build drops the planning.
func (f *FMS) reevaluate() error {
	if f.routeStr == "" {
		return nil
	}

	rt, err := route.Decode(f.routeStr, f.db, f.magvar)
	if err != nil {
		return err
	}

	if f.alternateRaw != "" {
		fixes := f.db.LookupFix(f.alternateRaw)
		if len(fixes) == 0 {
			return route.UnresolvedError{Ident: f.alternateRaw}
		}
		rt.SetAlternate(fixes[0])
	}

	f.route = rt
	f.state = StateRouted
	f.plan = nil

	if f.builder != nil {
		plan, err := f.builder.Build(rt)
		if err != nil {
			return err
		}
		f.plan = plan
		f.state = StatePlanned
		if f.log != nil {
			f.log.Info("Flight planning rebuilt",
				logger.Int("legs", len(rt.Legs())),
				logger.Int("diagnostics", len(plan.Diagnostics)))
		}
	}

	return nil
}
