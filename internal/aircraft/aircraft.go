// Package aircraft models the airframe for planning: loading stations, fuel
// tanks, the center-of-gravity envelope and the mass & balance computation.
package aircraft

import (
	"fmt"

	"github.com/yegors/fms/internal/measure"
)

// Station is a position along the longitudinal axis at which mass can be
// loaded.
type Station struct {
	Arm         measure.Length
	Description string
}

// FuelTank is a tank with its usable capacity and arm.
type FuelTank struct {
	Capacity measure.Volume
	Arm      measure.Length
}

// Aircraft describes one airframe. Construct with New, which enforces the
// model invariants.
type Aircraft struct {
	Registration string
	Stations     []Station
	EmptyMass    measure.Mass
	EmptyBalance measure.Length
	FuelType     measure.FuelType
	Tanks        []FuelTank
	CGEnvelope   CGEnvelope
	Notes        string
}

// New validates and returns the aircraft. It panics on invariant violations:
// an empty CG envelope, a non-positive empty mass, a non-positive station
// arm or a negative tank capacity. Such inputs are refused at construction
// so every aircraft in the system is well formed.
func New(a Aircraft) *Aircraft {
	if len(a.CGEnvelope.Limits) == 0 {
		panic("aircraft: CG envelope must have at least one vertex")
	}
	if a.EmptyMass.SI() <= 0 {
		panic(fmt.Sprintf("aircraft %s: empty mass must be positive", a.Registration))
	}
	for _, s := range a.Stations {
		if s.Arm.SI() <= 0 {
			panic(fmt.Sprintf("aircraft %s: station arm must be positive", a.Registration))
		}
	}
	for _, t := range a.Tanks {
		if t.Capacity.SI() < 0 {
			panic(fmt.Sprintf("aircraft %s: tank capacity must not be negative", a.Registration))
		}
	}
	return &a
}

// UsableFuel returns the fuel filling every tank to capacity.
func (a *Aircraft) UsableFuel() measure.Fuel {
	total := measure.CubicMeters(0)
	for _, t := range a.Tanks {
		total = total.Add(t.Capacity)
	}
	return measure.FuelFromVolume(total, a.FuelType)
}

// MassAndBalance computes the ramp and landing mass and balance for the
// given station loads and fuel states. Loads map to stations by index; the
// fuel volumes map to tanks by index.
func (a *Aircraft) MassAndBalance(loads []measure.Mass, fuelOnRamp, fuelAfterLanding []measure.Volume) (*MassAndBalance, error) {
	if len(loads) != len(a.Stations) {
		return nil, fmt.Errorf("aircraft %s: %d loads for %d stations", a.Registration, len(loads), len(a.Stations))
	}
	if len(fuelOnRamp) != len(a.Tanks) || len(fuelAfterLanding) != len(a.Tanks) {
		return nil, fmt.Errorf("aircraft %s: fuel distribution does not match %d tanks", a.Registration, len(a.Tanks))
	}

	massRamp := a.EmptyMass
	massLanding := a.EmptyMass
	momentRamp := a.EmptyMass.Moment(a.EmptyBalance)
	momentLanding := momentRamp

	for i, load := range loads {
		massRamp = massRamp.Add(load)
		massLanding = massLanding.Add(load)
		momentRamp += load.Moment(a.Stations[i].Arm)
		momentLanding += load.Moment(a.Stations[i].Arm)
	}

	density := a.FuelType.Density()
	for i := range a.Tanks {
		ramp := fuelOnRamp[i].MulDensity(density)
		landing := fuelAfterLanding[i].MulDensity(density)
		massRamp = massRamp.Add(ramp)
		massLanding = massLanding.Add(landing)
		momentRamp += ramp.Moment(a.Tanks[i].Arm)
		momentLanding += landing.Moment(a.Tanks[i].Arm)
	}

	return &MassAndBalance{
		MassOnRamp:          massRamp,
		MassAfterLanding:    massLanding,
		BalanceOnRamp:       measure.Meters(momentRamp / massRamp.SI()),
		BalanceAfterLanding: measure.Meters(momentLanding / massLanding.SI()),
	}, nil
}

// IsBalanced reports whether both the ramp and landing points lie inside the
// aircraft's CG envelope.
func (a *Aircraft) IsBalanced(mb *MassAndBalance) bool {
	return a.CGEnvelope.Contains(mb)
}

// MassAndBalance holds the computed mass and center of gravity on ramp and
// after landing.
type MassAndBalance struct {
	MassOnRamp          measure.Mass
	MassAfterLanding    measure.Mass
	BalanceOnRamp       measure.Length
	BalanceAfterLanding measure.Length
}
