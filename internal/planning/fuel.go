package planning

import (
	"fmt"
	"time"

	"github.com/yegors/fms/internal/aircraft"
	"github.com/yegors/fms/internal/measure"
)

// PolicyKind selects how the fuel on ramp is determined.
type PolicyKind int

const (
	PolicyMinimum PolicyKind = iota
	PolicyMaximum
	PolicyManual
	PolicyAtLanding
	PolicyExtra
)

// FuelPolicy is the closed set of fueling strategies. The Fuel operand is
// meaningful for the manual, at-landing and extra kinds.
type FuelPolicy struct {
	Kind PolicyKind
	Fuel measure.Fuel
}

// MinimumFuel plans exactly the required minimum.
func MinimumFuel() FuelPolicy { return FuelPolicy{Kind: PolicyMinimum} }

// MaximumFuel plans full tanks.
func MaximumFuel() FuelPolicy { return FuelPolicy{Kind: PolicyMaximum} }

// ManualFuel plans a fixed amount on ramp.
func ManualFuel(f measure.Fuel) FuelPolicy { return FuelPolicy{Kind: PolicyManual, Fuel: f} }

// FuelAtLanding plans so the given amount remains after landing.
func FuelAtLanding(f measure.Fuel) FuelPolicy { return FuelPolicy{Kind: PolicyAtLanding, Fuel: f} }

// ExtraFuel plans the minimum plus the given extra.
func ExtraFuel(f measure.Fuel) FuelPolicy { return FuelPolicy{Kind: PolicyExtra, Fuel: f} }

// Reserve sets how much reserve fuel to plan. Only a manual duration is
// supported; the reserve burns at the cruise fuel flow.
type Reserve struct {
	Duration time.Duration
}

// OverFuelingError reports a required fuel amount exceeding the summed tank
// capacity.
type OverFuelingError struct {
	Required measure.Volume
	Capacity measure.Volume
}

func (e OverFuelingError) Error() string {
	return fmt.Sprintf("planning: required fuel %s exceeds tank capacity %s", e.Required, e.Capacity)
}

// InsufficientFuelError reports a manual fuel amount below the required
// minimum.
type InsufficientFuelError struct {
	OnRamp measure.Fuel
	Min    measure.Fuel
}

func (e InsufficientFuelError) Error() string {
	return fmt.Sprintf("planning: fuel on ramp %s below required minimum %s", e.OnRamp, e.Min)
}

// FuelPlanning is the resolved fuel plan of a flight.
type FuelPlanning struct {
	Taxi         measure.Fuel
	Climb        measure.Fuel
	Trip         measure.Fuel
	Alternate    measure.Fuel
	Reserve      measure.Fuel
	Extra        measure.Fuel
	Min          measure.Fuel
	OnRamp       measure.Fuel
	AfterLanding measure.Fuel

	// Fuel distribution over the aircraft's tanks, by tank index.
	TankFuelOnRamp       []measure.Volume
	TankFuelAfterLanding []measure.Volume
}

// newFuelPlanning resolves the fuel policy. Trip, alternate and reserve fuel
// are already computed from the performance table; the policy fixes the
// amount on ramp and the distribution over the tanks.
func newFuelPlanning(ac *aircraft.Aircraft, policy FuelPolicy, taxi, trip, alternate, reserve measure.Fuel) (*FuelPlanning, error) {
	zero := measure.Fuel{Type: ac.FuelType}

	fp := &FuelPlanning{
		Taxi:      taxi,
		Climb:     zero,
		Trip:      trip,
		Alternate: alternate,
		Reserve:   reserve,
	}
	fp.Min = taxi.Add(trip).Add(reserve).Add(alternate)

	switch policy.Kind {
	case PolicyMinimum:
		fp.OnRamp = fp.Min
		fp.Extra = zero
	case PolicyMaximum:
		fp.OnRamp = ac.UsableFuel()
		fp.Extra = fp.OnRamp.Sub(fp.Min)
	case PolicyManual:
		fp.OnRamp = policy.Fuel
		fp.Extra = fp.OnRamp.Sub(fp.Min)
		if fp.Extra.IsNegative() {
			return nil, InsufficientFuelError{OnRamp: fp.OnRamp, Min: fp.Min}
		}
	case PolicyAtLanding:
		fp.OnRamp = policy.Fuel.Add(trip).Add(taxi)
		fp.Extra = fp.OnRamp.Sub(fp.Min)
	case PolicyExtra:
		fp.OnRamp = fp.Min.Add(policy.Fuel)
		fp.Extra = policy.Fuel
	}

	fp.AfterLanding = fp.OnRamp.Sub(taxi).Sub(trip).Sub(alternate)

	var err error
	fp.TankFuelOnRamp, err = fillTanks(ac, fp.OnRamp)
	if err != nil {
		return nil, err
	}
	fp.TankFuelAfterLanding = drainTanks(ac, fp.TankFuelOnRamp, fp.OnRamp.Sub(fp.AfterLanding))

	return fp, nil
}

// fillTanks allocates the fuel across the tanks in definition order, each up
// to capacity. Fuel left over after the last tank is an over-fueling error.
func fillTanks(ac *aircraft.Aircraft, fuel measure.Fuel) ([]measure.Volume, error) {
	remaining := fuel.Volume().SI()
	out := make([]measure.Volume, len(ac.Tanks))
	for i, t := range ac.Tanks {
		take := remaining
		if capacity := t.Capacity.SI(); take > capacity {
			take = capacity
		}
		out[i] = measure.CubicMeters(take).Convert(measure.UnitLiters)
		remaining -= take
	}
	if remaining > 1e-9 {
		capacity := measure.CubicMeters(0)
		for _, t := range ac.Tanks {
			capacity = capacity.Add(t.Capacity)
		}
		return nil, OverFuelingError{
			Required: fuel.Volume().Convert(measure.UnitLiters),
			Capacity: capacity.Convert(measure.UnitLiters),
		}
	}
	return out, nil
}

// drainTanks removes the burned fuel from the ramp distribution in reverse
// tank order.
func drainTanks(ac *aircraft.Aircraft, onRamp []measure.Volume, burned measure.Fuel) []measure.Volume {
	remaining := burned.Volume().SI()
	out := make([]measure.Volume, len(onRamp))
	copy(out, onRamp)
	for i := len(out) - 1; i >= 0 && remaining > 0; i-- {
		have := out[i].SI()
		take := remaining
		if take > have {
			take = have
		}
		out[i] = measure.CubicMeters(have - take).Convert(measure.UnitLiters)
		remaining -= take
	}
	return out
}
