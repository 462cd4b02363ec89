package planning

import (
	"errors"
	"math"
	"testing"

	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
)

func runway(lengthM, bearingDeg float64) *nd.Runway {
	return &nd.Runway{
		Designator:  "33",
		TrueBearing: measure.TrueDegrees(bearingDeg),
		Length:      measure.Meters(lengthM),
		Surface:     nd.SurfaceAsphalt,
		RWYCC:       6,
	}
}

func TestFactorChain(t *testing.T) {
	// 400 m base, -10% headwind credit, +15% FSM 3/75 margin:
	// 400 * 0.9 * 1.15 = 414 m
	base := []PerformanceBase{{
		Temperature:  measure.Celsius(15),
		Elevation:    measure.Feet(53),
		GroundRoll:   measure.Meters(400),
		Distance50ft: measure.Meters(400),
	}}
	poh := []Factor{Rated(ToBoth, -0.10)}
	planning := []Factor{Rated(ToBoth, 0.15)}

	a := AnalyzeRunway(base, poh, planning, Conditions{
		Temperature: measure.Celsius(15),
		Elevation:   measure.Feet(53),
		Runway:      runway(800, 330),
	})

	if got := a.GroundRoll.SI(); math.Abs(got-414) > 0.01 {
		t.Errorf("ground roll: got %.1f m, want 414", got)
	}
	if got := a.Distance50ft.SI(); math.Abs(got-414) > 0.01 {
		t.Errorf("distance over 50 ft: got %.1f m, want 414", got)
	}
	if got := a.RemainingRunway.SI(); math.Abs(got-386) > 0.01 {
		t.Errorf("remaining runway: got %.1f m, want 386", got)
	}
	if a.Insufficient {
		t.Errorf("800 m runway should suffice")
	}
}

func TestFactorAppliesToGroundRollOnly(t *testing.T) {
	base := []PerformanceBase{{
		GroundRoll:   measure.Meters(400),
		Distance50ft: measure.Meters(600),
	}}
	a := AnalyzeRunway(base, []Factor{Rated(ToGroundRoll, 0.10)}, nil, Conditions{
		Runway: runway(800, 330),
	})
	if got := a.GroundRoll.SI(); math.Abs(got-440) > 0.01 {
		t.Errorf("ground roll: got %.1f, want 440", got)
	}
	if got := a.Distance50ft.SI(); math.Abs(got-600) > 0.01 {
		t.Errorf("distance over 50 ft changed: got %.1f, want 600", got)
	}
}

func TestRangedHeadwindFactor(t *testing.T) {
	base := []PerformanceBase{{
		GroundRoll:   measure.Meters(400),
		Distance50ft: measure.Meters(600),
	}}
	// -10% per 9 kt headwind; 18 kt on the nose of runway 33
	factors := []Factor{RangedByHeadwind(ToBoth, -0.10, measure.Knots(9))}

	a := AnalyzeRunway(base, factors, nil, Conditions{
		Wind:   measure.Wind{Direction: measure.TrueDegrees(330), Speed: measure.Knots(18)},
		Runway: runway(800, 330),
	})

	if got := a.GroundRoll.SI(); math.Abs(got-320) > 0.5 {
		t.Errorf("ground roll with 18 kt headwind: got %.1f, want 320", got)
	}
	if got := a.Headwind.Knots(); math.Abs(got-18) > 0.1 {
		t.Errorf("headwind: got %.1f kt, want 18", got)
	}
}

func TestRangedHeadwindIgnoresTailwind(t *testing.T) {
	base := []PerformanceBase{{
		GroundRoll:   measure.Meters(400),
		Distance50ft: measure.Meters(600),
	}}
	factors := []Factor{RangedByHeadwind(ToBoth, -0.10, measure.Knots(9))}

	// wind from behind runway 33
	a := AnalyzeRunway(base, factors, nil, Conditions{
		Wind:   measure.Wind{Direction: measure.TrueDegrees(150), Speed: measure.Knots(18)},
		Runway: runway(800, 330),
	})
	if got := a.GroundRoll.SI(); math.Abs(got-400) > 0.01 {
		t.Errorf("headwind credit applied for tailwind: got %.1f, want 400", got)
	}
}

func TestRangedTailwindFactor(t *testing.T) {
	base := []PerformanceBase{{
		GroundRoll:   measure.Meters(400),
		Distance50ft: measure.Meters(600),
	}}
	// +10% per 2 kt tailwind
	factors := []Factor{RangedByTailwind(ToGroundRoll, 0.10, measure.Knots(2))}

	a := AnalyzeRunway(base, factors, nil, Conditions{
		Wind:   measure.Wind{Direction: measure.TrueDegrees(150), Speed: measure.Knots(4)},
		Runway: runway(800, 330),
	})
	if got := a.GroundRoll.SI(); math.Abs(got-480) > 0.5 {
		t.Errorf("ground roll with 4 kt tailwind: got %.1f, want 480", got)
	}
}

func TestInsufficientRunway(t *testing.T) {
	base := []PerformanceBase{{
		GroundRoll:   measure.Meters(400),
		Distance50ft: measure.Meters(700),
	}}
	a := AnalyzeRunway(base, []Factor{Rated(ToBoth, 0.15)}, nil, Conditions{
		Runway: runway(600, 330),
	})

	if !a.Insufficient {
		t.Fatalf("want insufficient runway")
	}
	diag := a.Diagnostic()
	var insufficient InsufficientRunwayError
	if !errors.As(diag, &insufficient) {
		t.Fatalf("got %v, want InsufficientRunwayError", diag)
	}
	// 700 * 1.15 = 805 on a 600 m runway leaves a 205 m deficit
	if got := insufficient.Deficit.SI(); math.Abs(got-205) > 0.5 {
		t.Errorf("deficit: got %.1f m, want 205", got)
	}
}

func TestBilinearInterpolation(t *testing.T) {
	bases := []PerformanceBase{
		{Temperature: measure.Celsius(0), Elevation: measure.Feet(0), GroundRoll: measure.Meters(400), Distance50ft: measure.Meters(600)},
		{Temperature: measure.Celsius(30), Elevation: measure.Feet(0), GroundRoll: measure.Meters(500), Distance50ft: measure.Meters(700)},
		{Temperature: measure.Celsius(0), Elevation: measure.Feet(4000), GroundRoll: measure.Meters(500), Distance50ft: measure.Meters(760)},
		{Temperature: measure.Celsius(30), Elevation: measure.Feet(4000), GroundRoll: measure.Meters(640), Distance50ft: measure.Meters(900)},
	}

	// midway in both temperature and elevation
	a := AnalyzeRunway(bases, nil, nil, Conditions{
		Temperature: measure.Celsius(15),
		Elevation:   measure.Feet(2000),
		Runway:      runway(1500, 330),
	})

	wantGR := (400.0+500.0)/2/2 + (500.0+640.0)/2/2 // 510
	if got := a.GroundRoll.SI(); math.Abs(got-wantGR) > 0.5 {
		t.Errorf("interpolated ground roll: got %.1f, want %.1f", got, wantGR)
	}

	// outside the grid clamps to the edge
	a = AnalyzeRunway(bases, nil, nil, Conditions{
		Temperature: measure.Celsius(45),
		Elevation:   measure.Feet(8000),
		Runway:      runway(1500, 330),
	})
	if got := a.GroundRoll.SI(); math.Abs(got-640) > 0.5 {
		t.Errorf("clamped ground roll: got %.1f, want 640", got)
	}
}

func TestSingleBaseUsedAsIs(t *testing.T) {
	base := []PerformanceBase{{
		Temperature:  measure.Celsius(15),
		Elevation:    measure.Feet(0),
		GroundRoll:   measure.Meters(400),
		Distance50ft: measure.Meters(600),
	}}
	a := AnalyzeRunway(base, nil, nil, Conditions{
		Temperature: measure.Celsius(35), // far from the base, still as-is
		Runway:      runway(800, 330),
	})
	if got := a.GroundRoll.SI(); got != 400 {
		t.Errorf("single base: got %.1f, want 400", got)
	}
}
