package route

import (
	"math"
	"testing"

	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
)

func fixAt(ident string, lat, lon float64) *nd.Fix {
	return &nd.Fix{Ident: ident, Kind: nd.KindWaypoint, Region: "ENRT",
		Coord: geo.Coordinate{Latitude: lat, Longitude: lon}}
}

// legUnderWind builds a northbound leg of about 60 NM with the given wind
// and TAS.
func legUnderWind(tasKt, windDirDeg, windKt float64) *Leg {
	from := fixAt("FROM", 50.0, 8.0)
	to := fixAt("TO", 51.0, 8.0)
	tas := measure.Knots(tasKt)
	wind := measure.Wind{Direction: measure.TrueDegrees(windDirDeg), Speed: measure.Knots(windKt)}
	return NewLeg(from, to, nil, &tas, &wind, geo.NoVariation{})
}

func TestLegHeadwind(t *testing.T) {
	leg := legUnderWind(100, 0, 20)

	if wca := leg.WCA(); wca == nil || math.Abs(wca.Degrees()) > 0.1 && math.Abs(wca.Degrees()-360) > 0.1 {
		t.Errorf("headwind WCA: got %v, want 0", wca)
	}
	if gs := leg.GroundSpeed(); gs == nil || math.Abs(gs.Knots()-80) > 0.5 {
		t.Errorf("headwind GS: got %v, want 80", gs)
	}
}

func TestLegTailwind(t *testing.T) {
	leg := legUnderWind(100, 180, 20)
	if gs := leg.GroundSpeed(); gs == nil || math.Abs(gs.Knots()-120) > 0.5 {
		t.Errorf("tailwind GS: got %v, want 120", gs)
	}
}

func TestLegCrosswindCorrection(t *testing.T) {
	// wind from the east on a northbound course corrects to the right
	leg := legUnderWind(100, 90, 20)

	wca := leg.WCA()
	if wca == nil {
		t.Fatalf("no WCA")
	}
	want := math.Asin(0.2) * 180 / math.Pi // 11.54 deg
	if math.Abs(wca.Degrees()-want) > 0.1 {
		t.Errorf("crosswind WCA: got %.2f, want %.2f", wca.Degrees(), want)
	}
	th := leg.TrueHeading()
	if th == nil || math.Abs(th.Degrees()-want) > 0.2 {
		t.Errorf("crosswind TH: got %v, want %.2f", th, want)
	}
	// pure crosswind still slows the leg slightly
	if gs := leg.GroundSpeed(); gs == nil || math.Abs(gs.Knots()-100*math.Cos(math.Asin(0.2))) > 0.5 {
		t.Errorf("crosswind GS: got %v", gs)
	}
}

func TestLegWCAFromLawOfSines(t *testing.T) {
	// Eastbound at 100 kt with 50 kt wind from the south: the law of
	// sines gives a 30 degree correction into the wind.
	from := fixAt("FROM", 50.0, 8.0)
	to := fixAt("TO", 50.0, 9.5)
	tas := measure.Knots(100)
	wind := measure.Wind{Direction: measure.TrueDegrees(180), Speed: measure.Knots(50)}
	leg := NewLeg(from, to, nil, &tas, &wind, geo.NoVariation{})

	wca := leg.WCA()
	if wca == nil {
		t.Fatalf("no WCA")
	}
	deg := wca.Degrees()
	if deg > 180 {
		deg -= 360
	}
	if math.Abs(deg-30) > 1 {
		t.Errorf("WCA: got %.1f, want 30 (into the wind)", deg)
	}
}

func TestLegInfeasibleOnTheNose(t *testing.T) {
	// 50 kt directly on the nose at 40 kt TAS: ground speed would be
	// negative.
	leg := legUnderWind(40, 0, 50)

	if !leg.Infeasible() {
		t.Fatalf("leg should be infeasible")
	}
	if leg.GroundSpeed() != nil || leg.ETE() != nil {
		t.Errorf("infeasible leg carries GS/ETE")
	}
	// geodesy is still available
	if leg.Distance().SI() <= 0 {
		t.Errorf("infeasible leg lost its distance")
	}
}

func TestLegInfeasibleCrosswindExceedsTAS(t *testing.T) {
	leg := legUnderWind(40, 90, 50)
	if !leg.Infeasible() {
		t.Fatalf("leg should be infeasible with crosswind above TAS")
	}
	if leg.WCA() != nil {
		t.Errorf("WCA defined for unholdable crosswind")
	}
}

func TestLegWithoutWind(t *testing.T) {
	from := fixAt("FROM", 50.0, 8.0)
	to := fixAt("TO", 51.0, 8.0)
	tas := measure.Knots(100)
	leg := NewLeg(from, to, nil, &tas, nil, geo.NoVariation{})

	if leg.WCA() != nil || leg.TrueHeading() != nil || leg.MagneticHeading() != nil {
		t.Errorf("leg without wind should have no wind triangle")
	}
	if gs := leg.GroundSpeed(); gs == nil || gs.Knots() != 100 {
		t.Errorf("calm air GS: got %v, want the TAS", gs)
	}
	if leg.ETE() == nil {
		t.Errorf("calm air leg should have an ETE")
	}
	if leg.Bearing().Radians() < 0 || leg.Bearing().Radians() >= 2*math.Pi {
		t.Errorf("bearing out of range")
	}
}

func TestLegWithoutTAS(t *testing.T) {
	from := fixAt("FROM", 50.0, 8.0)
	to := fixAt("TO", 51.0, 8.0)
	leg := NewLeg(from, to, nil, nil, nil, geo.NoVariation{})

	if leg.GroundSpeed() != nil || leg.ETE() != nil {
		t.Errorf("leg without TAS should have no GS or ETE")
	}
}

func TestLegMagneticCourse(t *testing.T) {
	from := fixAt("FROM", 50.0, 8.0)
	to := fixAt("TO", 51.0, 8.0)
	leg := NewLeg(from, to, nil, nil, nil, fixedVariation{deg: 3.0})

	// northbound true course, 3 degrees east declination
	want := 357.0
	if mc := leg.MagneticCourse().Degrees(); math.Abs(mc-want) > 0.2 {
		t.Errorf("magnetic course: got %.1f, want %.1f", mc, want)
	}
	if leg.MagneticCourse().Unit() != measure.UnitDegreesMagnetic {
		t.Errorf("magnetic course unit: got %v", leg.MagneticCourse().Unit())
	}
}
