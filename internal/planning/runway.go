package planning

import (
	"fmt"
	"sort"

	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
)

// Applies selects which distance a correction factor scales.
type Applies int

const (
	ToGroundRoll Applies = iota
	ToDistance50ft
	ToBoth
)

// PerformanceBase is one published takeoff or landing distance pair at a
// temperature and field elevation.
type PerformanceBase struct {
	Temperature  measure.Temperature
	Elevation    measure.Length
	GroundRoll   measure.Length
	Distance50ft measure.Length
}

// Conditions are the actual conditions a runway analysis evaluates under.
type Conditions struct {
	Temperature measure.Temperature
	Elevation   measure.Length
	Wind        measure.Wind
	Runway      *nd.Runway
	Mass        measure.Mass
	RWYCC       nd.RunwayConditionCode
}

// Headwind returns the wind component along the runway, positive on the
// nose.
func (c Conditions) Headwind() measure.Speed {
	if c.Runway == nil {
		return measure.Knots(0)
	}
	return c.Wind.Headwind(c.Runway.TrueBearing)
}

// Factor is one multiplicative distance correction. Factors apply in
// configured order: POH factors first, planning margins after.
type Factor interface {
	AppliesTo() Applies
	// Coefficient returns the relative distance change under the given
	// conditions; the distance is multiplied by 1 + coefficient.
	Coefficient(c Conditions) float64
}

// RatedFactor is a fixed coefficient, e.g. +0.15 for the FSM 3/75 margin or
// -0.10 for a headwind credit taken from the POH.
type RatedFactor struct {
	Applies Applies
	Value   float64
}

// Rated returns a fixed-coefficient factor.
func Rated(applies Applies, value float64) RatedFactor {
	return RatedFactor{Applies: applies, Value: value}
}

func (f RatedFactor) AppliesTo() Applies             { return f.Applies }
func (f RatedFactor) Coefficient(Conditions) float64 { return f.Value }

// RangedInfluence selects the condition a ranged factor scales with.
type RangedInfluence int

const (
	ByHeadwind RangedInfluence = iota
	ByTailwind
	ByElevation
	ByMass
)

// RangedFactor scales a coefficient linearly with an actual condition, e.g.
// -10% ground roll per 9 kt headwind.
type RangedFactor struct {
	Applies Applies
	Of      RangedInfluence
	Value   float64
	// PerSI is the amount of the influence, in its SI unit, at which the
	// full Value applies.
	PerSI float64
}

// RangedByHeadwind returns a factor of value per the given headwind.
func RangedByHeadwind(applies Applies, value float64, per measure.Speed) RangedFactor {
	return RangedFactor{Applies: applies, Of: ByHeadwind, Value: value, PerSI: per.SI()}
}

// RangedByTailwind returns a factor of value per the given tailwind.
func RangedByTailwind(applies Applies, value float64, per measure.Speed) RangedFactor {
	return RangedFactor{Applies: applies, Of: ByTailwind, Value: value, PerSI: per.SI()}
}

// RangedByElevation returns a factor of value per the given field elevation.
func RangedByElevation(applies Applies, value float64, per measure.Length) RangedFactor {
	return RangedFactor{Applies: applies, Of: ByElevation, Value: value, PerSI: per.SI()}
}

// RangedByMass returns a factor of value per the given mass.
func RangedByMass(applies Applies, value float64, per measure.Mass) RangedFactor {
	return RangedFactor{Applies: applies, Of: ByMass, Value: value, PerSI: per.SI()}
}

func (f RangedFactor) AppliesTo() Applies { return f.Applies }

func (f RangedFactor) Coefficient(c Conditions) float64 {
	if f.PerSI == 0 {
		return 0
	}
	var actual float64
	switch f.Of {
	case ByHeadwind:
		actual = c.Headwind().SI()
		if actual < 0 {
			return 0
		}
	case ByTailwind:
		actual = -c.Headwind().SI()
		if actual < 0 {
			return 0
		}
	case ByElevation:
		actual = c.Elevation.SI()
	case ByMass:
		actual = c.Mass.SI()
	}
	return f.Value * (actual / f.PerSI)
}

// InsufficientRunwayError flags a distance over the 50 ft obstacle longer
// than the available runway.
type InsufficientRunwayError struct {
	Deficit measure.Length
}

func (e InsufficientRunwayError) Error() string {
	return fmt.Sprintf("planning: runway short by %s", e.Deficit)
}

// RunwayAnalysis is the corrected takeoff or landing distance prediction.
type RunwayAnalysis struct {
	Headwind        measure.Speed
	Crosswind       measure.Speed
	GroundRoll      measure.Length
	Distance50ft    measure.Length
	RemainingRunway measure.Length
	Insufficient    bool
}

// AnalyzeRunway interpolates the base distances at the actual temperature
// and elevation, applies the POH factors in order and the planning factors
// after them, and checks the result against the available runway length.
func AnalyzeRunway(bases []PerformanceBase, pohFactors, planningFactors []Factor, c Conditions) *RunwayAnalysis {
	groundRoll, dist50 := interpolateBases(bases, c)

	apply := func(factors []Factor) {
		for _, f := range factors {
			coeff := 1 + f.Coefficient(c)
			switch f.AppliesTo() {
			case ToGroundRoll:
				groundRoll = groundRoll.Mul(coeff)
			case ToDistance50ft:
				dist50 = dist50.Mul(coeff)
			case ToBoth:
				groundRoll = groundRoll.Mul(coeff)
				dist50 = dist50.Mul(coeff)
			}
		}
	}
	apply(pohFactors)
	apply(planningFactors)

	analysis := &RunwayAnalysis{
		GroundRoll:   groundRoll,
		Distance50ft: dist50,
	}
	if c.Runway != nil {
		analysis.Headwind = c.Wind.Headwind(c.Runway.TrueBearing).Convert(measure.UnitKnots)
		analysis.Crosswind = c.Wind.Crosswind(c.Runway.TrueBearing).Convert(measure.UnitKnots)
		analysis.RemainingRunway = c.Runway.Length.Sub(dist50)
		analysis.Insufficient = analysis.RemainingRunway.SI() < 0
	}
	return analysis
}

// Diagnostic returns the insufficient-runway error when the analysis does
// not fit, or nil.
func (a *RunwayAnalysis) Diagnostic() error {
	if !a.Insufficient {
		return nil
	}
	return InsufficientRunwayError{Deficit: a.RemainingRunway.Mul(-1)}
}

// interpolateBases bilinearly interpolates ground roll and 50 ft distance
// over the temperature and elevation grid. A single base is used as-is;
// conditions outside the grid clamp to the edge.
func interpolateBases(bases []PerformanceBase, c Conditions) (measure.Length, measure.Length) {
	switch len(bases) {
	case 0:
		return measure.Meters(0), measure.Meters(0)
	case 1:
		return bases[0].GroundRoll, bases[0].Distance50ft
	}

	// Interpolate over temperature within each elevation, then over
	// elevation between the two bracketing rows.
	byElev := make(map[float64][]PerformanceBase)
	var elevs []float64
	for _, b := range bases {
		e := b.Elevation.SI()
		if _, ok := byElev[e]; !ok {
			elevs = append(elevs, e)
		}
		byElev[e] = append(byElev[e], b)
	}
	sort.Float64s(elevs)

	lo, hi := bracket(elevs, c.Elevation.SI())
	grLo, d50Lo := interpolateTemperature(byElev[lo], c.Temperature)
	if lo == hi {
		return measure.Meters(grLo), measure.Meters(d50Lo)
	}
	grHi, d50Hi := interpolateTemperature(byElev[hi], c.Temperature)

	t := (c.Elevation.SI() - lo) / (hi - lo)
	return measure.Meters(grLo + t*(grHi-grLo)), measure.Meters(d50Lo + t*(d50Hi-d50Lo))
}

func interpolateTemperature(bases []PerformanceBase, temp measure.Temperature) (groundRoll, dist50 float64) {
	if len(bases) == 1 {
		return bases[0].GroundRoll.SI(), bases[0].Distance50ft.SI()
	}
	sorted := make([]PerformanceBase, len(bases))
	copy(sorted, bases)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Temperature.K() < sorted[j].Temperature.K() })

	var temps []float64
	for _, b := range sorted {
		temps = append(temps, b.Temperature.K())
	}
	lo, hi := bracket(temps, temp.K())
	var bLo, bHi PerformanceBase
	for _, b := range sorted {
		if b.Temperature.K() == lo {
			bLo = b
		}
		if b.Temperature.K() == hi {
			bHi = b
		}
	}
	if lo == hi {
		return bLo.GroundRoll.SI(), bLo.Distance50ft.SI()
	}
	t := (temp.K() - lo) / (hi - lo)
	return bLo.GroundRoll.SI() + t*(bHi.GroundRoll.SI()-bLo.GroundRoll.SI()),
		bLo.Distance50ft.SI() + t*(bHi.Distance50ft.SI()-bLo.Distance50ft.SI())
}

// bracket returns the two values of the sorted slice enclosing v, clamping
// at the ends.
func bracket(sorted []float64, v float64) (lo, hi float64) {
	lo, hi = sorted[0], sorted[0]
	for _, s := range sorted {
		if s <= v {
			lo = s
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] >= v {
			hi = sorted[i]
		}
	}
	if v < sorted[0] {
		lo, hi = sorted[0], sorted[0]
	}
	if v > sorted[len(sorted)-1] {
		lo, hi = sorted[len(sorted)-1], sorted[len(sorted)-1]
	}
	return lo, hi
}
