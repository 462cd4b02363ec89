package planning

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/yegors/fms/internal/aircraft"
	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
	"github.com/yegors/fms/internal/nd/arinc424"
	"github.com/yegors/fms/internal/route"
)

const hamburgRecords = `SEURP EDDHEDA        0        N N53374900E009591762E002000053                   P    MWGE    HAMBURG                       356462409
SEURPCEDDHED N1    ED0    V     N53482105E010015451                                 WGE           NOVEMBER1                359892409
SEURPCEDDHED N2    ED0    V     N53405701E010000576                                 WGE           NOVEMBER2                359902409
SEURP EDHFEDA        0        N N53593300E009343600E000000082                   P    MWGE    ITZEHOE/HUNGRIGER WOLF        320782409
`

// c172 is the planning scenario airframe: a C172 with a Diesel engine.
func c172(tankLiters float64) *aircraft.Aircraft {
	return aircraft.New(aircraft.Aircraft{
		Registration: "N12345",
		Stations: []aircraft.Station{
			{Arm: measure.Meters(0.94), Description: "front seats"},
			{Arm: measure.Meters(1.85), Description: "back seats"},
			{Arm: measure.Meters(2.41), Description: "first cargo compartment"},
			{Arm: measure.Meters(3.12), Description: "second cargo compartment"},
		},
		EmptyMass:    measure.Kilograms(807),
		EmptyBalance: measure.Meters(1.0),
		FuelType:     measure.Diesel,
		Tanks: []aircraft.FuelTank{
			{Capacity: measure.Liters(tankLiters), Arm: measure.Meters(1.22)},
		},
		CGEnvelope: aircraft.CGEnvelope{Limits: []aircraft.CGLimit{
			{Mass: measure.Kilograms(0), Arm: measure.Meters(0.89)},
			{Mass: measure.Kilograms(885), Arm: measure.Meters(0.89)},
			{Mass: measure.Kilograms(1111), Arm: measure.Meters(1.02)},
			{Mass: measure.Kilograms(1111), Arm: measure.Meters(1.20)},
			{Mass: measure.Kilograms(0), Arm: measure.Meters(1.20)},
		}},
	})
}

func c172Performance() *Performance {
	return NewPerformance([]PerformanceRow{{
		Ceiling: measure.Altitude(2500),
		TAS:     measure.Knots(107),
		FF:      measure.FuelFlow{PerHour: measure.FuelFromVolume(measure.Liters(21), measure.Diesel)},
	}})
}

func hamburgRoute(t *testing.T) *route.Route {
	t.Helper()
	db := nd.NewDatabase()
	arinc424.Parse(hamburgRecords, nil).MergeInto(db)
	rt, err := route.Decode("29020KT N0107 A0250 EDDH DHN2 DHN1 EDHF", db, geo.NoVariation{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rt
}

func diesel(liters float64) measure.Fuel {
	return measure.FuelFromVolume(measure.Liters(liters), measure.Diesel)
}

func c172Builder(policy FuelPolicy, tankLiters float64) *Builder {
	return &Builder{
		Aircraft: c172(tankLiters),
		Loads: []measure.Mass{
			measure.Kilograms(80), // pilot in the front
			measure.Kilograms(0),
			measure.Kilograms(0),
			measure.Kilograms(0),
		},
		Policy:  policy,
		Taxi:    diesel(10),
		Reserve: Reserve{Duration: 30 * time.Minute},
		Perf:    c172Performance(),
	}
}

func TestC172ManualFuelPlanning(t *testing.T) {
	rt := hamburgRoute(t)
	plan, err := c172Builder(ManualFuel(diesel(80)), 168.8).Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	fuel := plan.Fuel
	if fuel == nil {
		t.Fatalf("no fuel planning")
	}

	// 20 minutes en route at 21 L/h is about 7 L trip fuel
	if trip := fuel.Trip.Liters(); math.Abs(trip-6.7) > 1.2 {
		t.Errorf("trip fuel: got %.1f L, want ~6.7", trip)
	}
	if reserve := fuel.Reserve.Liters(); math.Abs(reserve-10.5) > 0.01 {
		t.Errorf("reserve fuel: got %.1f L, want 10.5", reserve)
	}
	if min := fuel.Min.Liters(); math.Abs(min-27) > 1.5 {
		t.Errorf("minimum fuel: got %.1f L, want ~27", min)
	}
	if onRamp := fuel.OnRamp.Liters(); math.Abs(onRamp-80) > 1e-6 {
		t.Errorf("fuel on ramp: got %.1f L, want 80", onRamp)
	}
	if extra := fuel.Extra.Liters(); math.Abs(extra-53) > 1.5 {
		t.Errorf("extra fuel: got %.1f L, want ~53", extra)
	}
	if after := fuel.AfterLanding.Liters(); math.Abs(after-63.3) > 1.5 {
		t.Errorf("fuel after landing: got %.1f L, want ~63", after)
	}

	// fuel accounting closes: after landing + taxi + trip + alternate = on ramp
	sum := fuel.AfterLanding.Add(fuel.Taxi).Add(fuel.Trip).Add(fuel.Alternate)
	if math.Abs(sum.Liters()-fuel.OnRamp.Liters()) > 0.01 {
		t.Errorf("fuel accounting: %v + taxi + trip != on ramp %v", fuel.AfterLanding, fuel.OnRamp)
	}

	mb := plan.MB
	if mb == nil {
		t.Fatalf("no mass and balance")
	}
	if mass := mb.MassOnRamp.SI(); math.Abs(mass-954) > 2 {
		t.Errorf("mass on ramp: got %.1f kg, want ~954", mass)
	}
	if !plan.Balanced {
		t.Errorf("plan should be balanced")
	}
	if len(plan.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", plan.Diagnostics)
	}
}

func TestOverFueling(t *testing.T) {
	rt := hamburgRoute(t)
	_, err := c172Builder(ManualFuel(diesel(80)), 60).Build(rt)

	var over OverFuelingError
	if !errors.As(err, &over) {
		t.Fatalf("got %v, want OverFuelingError", err)
	}
	if math.Abs(over.Required.Value()-80) > 0.01 {
		t.Errorf("required: got %v, want 80 L", over.Required)
	}
	if math.Abs(over.Capacity.Value()-60) > 0.01 {
		t.Errorf("capacity: got %v, want 60 L", over.Capacity)
	}
}

func TestManualFuelBelowMinimumFails(t *testing.T) {
	rt := hamburgRoute(t)
	_, err := c172Builder(ManualFuel(diesel(15)), 168.8).Build(rt)

	var insufficient InsufficientFuelError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want InsufficientFuelError", err)
	}
}

func TestMinimumPolicy(t *testing.T) {
	rt := hamburgRoute(t)
	plan, err := c172Builder(MinimumFuel(), 168.8).Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fuel := plan.Fuel
	if math.Abs(fuel.OnRamp.Liters()-fuel.Min.Liters()) > 1e-6 {
		t.Errorf("minimum policy: on ramp %v != min %v", fuel.OnRamp, fuel.Min)
	}
	if fuel.Extra.Liters() != 0 {
		t.Errorf("minimum policy: extra %v, want 0", fuel.Extra)
	}
}

func TestMaximumPolicy(t *testing.T) {
	rt := hamburgRoute(t)
	plan, err := c172Builder(MaximumFuel(), 168.8).Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fuel := plan.Fuel
	if math.Abs(fuel.OnRamp.Liters()-168.8) > 0.01 {
		t.Errorf("maximum policy: on ramp %v, want 168.8 L", fuel.OnRamp)
	}
	wantExtra := fuel.OnRamp.Liters() - fuel.Min.Liters()
	if math.Abs(fuel.Extra.Liters()-wantExtra) > 0.01 {
		t.Errorf("maximum policy: extra %v, want %v", fuel.Extra.Liters(), wantExtra)
	}
}

func TestExtraPolicy(t *testing.T) {
	rt := hamburgRoute(t)
	plan, err := c172Builder(ExtraFuel(diesel(20)), 168.8).Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fuel := plan.Fuel
	if math.Abs(fuel.OnRamp.Liters()-(fuel.Min.Liters()+20)) > 0.01 {
		t.Errorf("extra policy: on ramp %v, want min + 20", fuel.OnRamp)
	}
}

func TestAtLandingPolicy(t *testing.T) {
	rt := hamburgRoute(t)
	plan, err := c172Builder(FuelAtLanding(diesel(40)), 168.8).Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fuel := plan.Fuel
	want := 40 + fuel.Trip.Liters() + fuel.Taxi.Liters()
	if math.Abs(fuel.OnRamp.Liters()-want) > 0.01 {
		t.Errorf("at-landing policy: on ramp %v, want %v", fuel.OnRamp.Liters(), want)
	}
}

func TestAboveCeilingDiagnostic(t *testing.T) {
	db := nd.NewDatabase()
	arinc424.Parse(hamburgRecords, nil).MergeInto(db)
	rt, err := route.Decode("N0107 F100 EDDH EDHF", db, geo.NoVariation{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	plan, err := c172Builder(MinimumFuel(), 168.8).Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	found := false
	for _, d := range plan.Diagnostics {
		var above AboveCeilingError
		if errors.As(d, &above) {
			found = true
		}
	}
	if !found {
		t.Errorf("want AboveCeilingError diagnostic, got %v", plan.Diagnostics)
	}
	// values are clamped to the last row, so a fuel plan still exists
	if plan.Fuel == nil || plan.Fuel.Trip.Liters() <= 0 {
		t.Errorf("clamped planning missing trip fuel")
	}
}

func TestOutOfEnvelopeStillPlans(t *testing.T) {
	rt := hamburgRoute(t)
	b := c172Builder(ManualFuel(diesel(80)), 168.8)
	// a very heavy load in the rear cargo pushes the CG out
	b.Loads = []measure.Mass{
		measure.Kilograms(80),
		measure.Kilograms(0),
		measure.Kilograms(0),
		measure.Kilograms(200),
	}
	plan, err := b.Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if plan.Balanced {
		t.Errorf("plan should be out of envelope")
	}
	found := false
	for _, d := range plan.Diagnostics {
		var out aircraft.OutOfEnvelopeError
		if errors.As(d, &out) {
			found = true
		}
	}
	if !found {
		t.Errorf("want OutOfEnvelopeError diagnostic")
	}
}

func TestAlternateFuel(t *testing.T) {
	db := nd.NewDatabase()
	arinc424.Parse(hamburgRecords, nil).MergeInto(db)
	rt, err := route.Decode("N0107 A0250 EDDH EDHF", db, geo.NoVariation{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rt.SetAlternate(&db.LookupAirport("EDDH").Fix)

	plan, err := c172Builder(MinimumFuel(), 168.8).Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fuel := plan.Fuel
	if fuel.Alternate.Liters() <= 0 {
		t.Errorf("alternate fuel: got %v, want > 0", fuel.Alternate)
	}
	want := fuel.Taxi.Liters() + fuel.Trip.Liters() + fuel.Reserve.Liters() + fuel.Alternate.Liters()
	if math.Abs(fuel.Min.Liters()-want) > 0.01 {
		t.Errorf("min with alternate: got %v, want %v", fuel.Min.Liters(), want)
	}
}

func TestTankDistribution(t *testing.T) {
	rt := hamburgRoute(t)
	b := c172Builder(ManualFuel(diesel(80)), 168.8)
	// split the fuel over two tanks: first fills to capacity, rest in
	// the second; draining happens in reverse order
	b.Aircraft = aircraft.New(aircraft.Aircraft{
		Registration: "D-TANK",
		Stations:     []aircraft.Station{{Arm: measure.Meters(0.94)}},
		EmptyMass:    measure.Kilograms(807),
		EmptyBalance: measure.Meters(1.0),
		FuelType:     measure.Diesel,
		Tanks: []aircraft.FuelTank{
			{Capacity: measure.Liters(50), Arm: measure.Meters(1.2)},
			{Capacity: measure.Liters(120), Arm: measure.Meters(1.3)},
		},
		CGEnvelope: aircraft.CGEnvelope{Limits: []aircraft.CGLimit{
			{Mass: measure.Kilograms(0), Arm: measure.Meters(0.5)},
			{Mass: measure.Kilograms(2000), Arm: measure.Meters(0.5)},
			{Mass: measure.Kilograms(2000), Arm: measure.Meters(2.0)},
			{Mass: measure.Kilograms(0), Arm: measure.Meters(2.0)},
		}},
	})
	b.Loads = []measure.Mass{measure.Kilograms(80)}

	plan, err := b.Build(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fuel := plan.Fuel

	if math.Abs(fuel.TankFuelOnRamp[0].Value()-50) > 0.01 {
		t.Errorf("first tank on ramp: got %v, want 50 L", fuel.TankFuelOnRamp[0])
	}
	if math.Abs(fuel.TankFuelOnRamp[1].Value()-30) > 0.01 {
		t.Errorf("second tank on ramp: got %v, want 30 L", fuel.TankFuelOnRamp[1])
	}

	// the burn comes out of the last tank first
	burned := fuel.OnRamp.Liters() - fuel.AfterLanding.Liters()
	if burned < 30 {
		wantSecond := 30 - burned
		if math.Abs(fuel.TankFuelAfterLanding[1].Value()-wantSecond) > 0.05 {
			t.Errorf("second tank after landing: got %v, want %.1f L", fuel.TankFuelAfterLanding[1], wantSecond)
		}
		if math.Abs(fuel.TankFuelAfterLanding[0].Value()-50) > 0.01 {
			t.Errorf("first tank untouched: got %v, want 50 L", fuel.TankFuelAfterLanding[0])
		}
	}
}

func TestPerformanceLookup(t *testing.T) {
	perf := NewPerformance([]PerformanceRow{
		{Ceiling: measure.Altitude(4000), TAS: measure.Knots(109), FF: measure.FuelFlow{PerHour: diesel(22)}},
		{Ceiling: measure.Altitude(2000), TAS: measure.Knots(107), FF: measure.FuelFlow{PerHour: diesel(21)}},
		{Ceiling: measure.Altitude(8000), TAS: measure.Knots(112), FF: measure.FuelFlow{PerHour: diesel(20)}},
	})

	row, above := perf.Lookup(measure.Altitude(1500))
	if above || row.TAS.Value() != 107 {
		t.Errorf("lookup 1500: got %v kt above=%v, want 107", row.TAS.Value(), above)
	}
	row, above = perf.Lookup(measure.Altitude(2000))
	if above || row.TAS.Value() != 107 {
		t.Errorf("lookup 2000 (boundary): got %v kt, want 107", row.TAS.Value())
	}
	row, above = perf.Lookup(measure.Altitude(3000))
	if above || row.TAS.Value() != 109 {
		t.Errorf("lookup 3000: got %v kt, want 109", row.TAS.Value())
	}
	row, above = perf.Lookup(measure.FL(150))
	if !above {
		t.Errorf("lookup FL150: want above-ceiling clamp")
	}
	if row.TAS.Value() != 112 {
		t.Errorf("clamped row: got %v kt, want 112", row.TAS.Value())
	}
}

func TestPerformanceFunc(t *testing.T) {
	perf := PerformanceFunc(func(vd measure.VerticalDistance) (measure.Speed, measure.FuelFlow) {
		if vd.Cmp(measure.Altitude(4000)) >= 0 {
			return measure.Knots(109), measure.FuelFlow{PerHour: diesel(20)}
		}
		return measure.Knots(107), measure.FuelFlow{PerHour: diesel(21)}
	}, measure.Altitude(10000))

	row, above := perf.Lookup(measure.Altitude(2500))
	if above || row.TAS.Value() != 107 {
		t.Errorf("sampled lookup 2500: got %v kt, want 107", row.TAS.Value())
	}
	row, _ = perf.Lookup(measure.Altitude(9500))
	if row.TAS.Value() != 109 {
		t.Errorf("sampled lookup 9500: got %v kt, want 109", row.TAS.Value())
	}
}
