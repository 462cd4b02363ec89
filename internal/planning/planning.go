package planning

import (
	"fmt"

	"github.com/yegors/fms/internal/aircraft"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/route"
)

// Builder collects the planning inputs. Build derives a fresh FlightPlanning
// from a route; nothing is computed incrementally.
type Builder struct {
	Aircraft *aircraft.Aircraft
	Loads    []measure.Mass
	Policy   FuelPolicy
	Taxi     measure.Fuel
	Reserve  Reserve
	Perf     *Performance

	// Optional runway analysis inputs.
	Takeoff *RunwayRequest
	Landing *RunwayRequest
}

// RunwayRequest carries the inputs of one runway analysis.
type RunwayRequest struct {
	Bases           []PerformanceBase
	POHFactors      []Factor
	PlanningFactors []Factor
	Conditions      Conditions
}

// FlightPlanning is the derived plan: fuel accounting, mass & balance and
// the optional runway analyses. It is rebuilt from scratch whenever an input
// changes.
type FlightPlanning struct {
	Fuel     *FuelPlanning
	MB       *aircraft.MassAndBalance
	Balanced bool

	TakeoffAnalysis *RunwayAnalysis
	LandingAnalysis *RunwayAnalysis

	// Diagnostics the planning survives: above-ceiling clamps, an
	// out-of-envelope center of gravity, insufficient runway.
	Diagnostics []error
}

// Build derives the flight planning for the route.
func (b *Builder) Build(rt *route.Route) (*FlightPlanning, error) {
	if b.Aircraft == nil {
		return nil, fmt.Errorf("planning: no aircraft set")
	}
	if b.Perf == nil {
		return nil, fmt.Errorf("planning: no performance set")
	}

	fp := &FlightPlanning{}

	// The flight is a single cruise segment at the route's level; climb
	// fuel stays zero until distinct climb rows exist in the performance
	// data.
	level := measure.Gnd()
	if l := rt.CruiseLevel(); l != nil {
		level = *l
	}
	row, above := b.Perf.Lookup(level)
	if above {
		fp.Diagnostics = append(fp.Diagnostics, AboveCeilingError{Level: level})
	}

	zero := measure.Fuel{Type: b.Aircraft.FuelType}
	trip := zero
	for _, leg := range rt.Legs() {
		if ete := leg.ETE(); ete != nil {
			trip = trip.Add(row.FF.Over(*ete))
		}
	}

	alternate := zero
	if alt := rt.Alternate(); alt != nil {
		if ete := alt.ETE(); ete != nil {
			alternate = alternate.Add(row.FF.Over(*ete))
		}
	}

	reserve := row.FF.Over(b.Reserve.Duration)

	fuel, err := newFuelPlanning(b.Aircraft, b.Policy, b.Taxi, trip, alternate, reserve)
	if err != nil {
		return nil, err
	}
	fp.Fuel = fuel

	mb, err := b.Aircraft.MassAndBalance(b.Loads, fuel.TankFuelOnRamp, fuel.TankFuelAfterLanding)
	if err != nil {
		return nil, err
	}
	fp.MB = mb
	fp.Balanced = b.Aircraft.IsBalanced(mb)
	if !fp.Balanced {
		// report the ramp point, or the landing point when only that one
		// lies outside the envelope
		out := aircraft.OutOfEnvelopeError{Mass: mb.MassOnRamp, Arm: mb.BalanceOnRamp}
		ramp := &aircraft.MassAndBalance{
			MassOnRamp: mb.MassOnRamp, MassAfterLanding: mb.MassOnRamp,
			BalanceOnRamp: mb.BalanceOnRamp, BalanceAfterLanding: mb.BalanceOnRamp,
		}
		if b.Aircraft.CGEnvelope.Contains(ramp) {
			out = aircraft.OutOfEnvelopeError{Mass: mb.MassAfterLanding, Arm: mb.BalanceAfterLanding}
		}
		fp.Diagnostics = append(fp.Diagnostics, out)
	}

	if b.Takeoff != nil {
		c := b.Takeoff.Conditions
		c.Mass = mb.MassOnRamp
		fp.TakeoffAnalysis = AnalyzeRunway(b.Takeoff.Bases, b.Takeoff.POHFactors, b.Takeoff.PlanningFactors, c)
		if diag := fp.TakeoffAnalysis.Diagnostic(); diag != nil {
			fp.Diagnostics = append(fp.Diagnostics, diag)
		}
	}
	if b.Landing != nil {
		c := b.Landing.Conditions
		c.Mass = mb.MassAfterLanding
		fp.LandingAnalysis = AnalyzeRunway(b.Landing.Bases, b.Landing.POHFactors, b.Landing.PlanningFactors, c)
		if diag := fp.LandingAnalysis.Diagnostic(); diag != nil {
			fp.Diagnostics = append(fp.Diagnostics, diag)
		}
	}

	return fp, nil
}
