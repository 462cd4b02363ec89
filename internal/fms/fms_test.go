package fms

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yegors/fms/internal/aircraft"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/planning"
	"github.com/yegors/fms/internal/route"
)

const hamburgRecords = `SEURP EDDHEDA        0        N N53374900E009591762E002000053                   P    MWGE    HAMBURG                       356462409
SEURPCEDDHED N1    ED0    V     N53482105E010015451                                 WGE           NOVEMBER1                359892409
SEURPCEDDHED N2    ED0    V     N53405701E010000576                                 WGE           NOVEMBER2                359902409
SEURP EDHFEDA        0        N N53593300E009343600E000000082                   P    MWGE    ITZEHOE/HUNGRIGER WOLF        320782409
`

const hamburgCTR = `AC CTR
AN HAMBURG CTR
AH 1500 FT MSL
AL GND
DP 53:43:00 N 009:53:00 E
DP 53:43:00 N 010:05:00 E
DP 53:33:00 N 010:05:00 E
`

func c172Builder() *planning.Builder {
	ac := aircraft.New(aircraft.Aircraft{
		Registration: "N12345",
		Stations:     []aircraft.Station{{Arm: measure.Meters(0.94), Description: "front seats"}},
		EmptyMass:    measure.Kilograms(807),
		EmptyBalance: measure.Meters(1.0),
		FuelType:     measure.Diesel,
		Tanks:        []aircraft.FuelTank{{Capacity: measure.Liters(168.8), Arm: measure.Meters(1.22)}},
		CGEnvelope: aircraft.CGEnvelope{Limits: []aircraft.CGLimit{
			{Mass: measure.Kilograms(0), Arm: measure.Meters(0.89)},
			{Mass: measure.Kilograms(885), Arm: measure.Meters(0.89)},
			{Mass: measure.Kilograms(1111), Arm: measure.Meters(1.02)},
			{Mass: measure.Kilograms(1111), Arm: measure.Meters(1.20)},
			{Mass: measure.Kilograms(0), Arm: measure.Meters(1.20)},
		}},
	})
	return &planning.Builder{
		Aircraft: ac,
		Loads:    []measure.Mass{measure.Kilograms(80)},
		Policy:   planning.ManualFuel(measure.FuelFromVolume(measure.Liters(80), measure.Diesel)),
		Taxi:     measure.FuelFromVolume(measure.Liters(10), measure.Diesel),
		Reserve:  planning.Reserve{Duration: 30 * time.Minute},
		Perf: planning.NewPerformance([]planning.PerformanceRow{{
			Ceiling: measure.Altitude(2500),
			TAS:     measure.Knots(107),
			FF:      measure.FuelFlow{PerHour: measure.FuelFromVolume(measure.Liters(21), measure.Diesel)},
		}}),
	}
}

func TestStateMachine(t *testing.T) {
	f := New(nil, nil)

	if f.State() != StateFresh {
		t.Fatalf("initial state: got %v", f.State())
	}

	// decode before any navigation data fails
	err := f.Decode("EDDH EDHF")
	var stateErr StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("decode on fresh FMS: got %v, want StateError", err)
	}

	if err := f.NDRead(hamburgRecords, FormatARINC424); err != nil {
		t.Fatalf("nd read: %v", err)
	}
	if f.State() != StateNDLoaded {
		t.Errorf("after nd read: got %v, want nd-loaded", f.State())
	}

	// a decode failure leaves the FMS in NDLoaded
	err = f.Decode("EDDH NOWHERE")
	var unresolved route.UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("got %v, want UnresolvedError", err)
	}
	if f.State() != StateNDLoaded {
		t.Errorf("after failed decode: got %v, want nd-loaded", f.State())
	}
	if f.Route() != nil {
		t.Errorf("failed decode produced a route")
	}

	if err := f.Decode("29020KT N0107 A0250 EDDH DHN2 DHN1 EDHF"); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.State() != StateRouted {
		t.Errorf("after decode: got %v, want routed", f.State())
	}
	if len(f.Route().Legs()) != 3 {
		t.Errorf("got %d legs, want 3", len(f.Route().Legs()))
	}

	if err := f.SetFlightPlanning(c172Builder()); err != nil {
		t.Fatalf("set flight planning: %v", err)
	}
	if f.State() != StatePlanned {
		t.Errorf("after planning: got %v, want planned", f.State())
	}
	if f.FlightPlanning() == nil || f.FlightPlanning().Fuel == nil {
		t.Fatalf("no flight planning derived")
	}
}

func TestPlanningBeforeRouteFails(t *testing.T) {
	f := New(nil, nil)
	if err := f.NDRead(hamburgRecords, FormatARINC424); err != nil {
		t.Fatalf("nd read: %v", err)
	}
	var stateErr StateError
	if err := f.SetFlightPlanning(c172Builder()); !errors.As(err, &stateErr) {
		t.Errorf("planning before route: got %v, want StateError", err)
	}
}

func TestNDReadReplaysDownstream(t *testing.T) {
	f := New(nil, nil)
	if err := f.NDRead(hamburgRecords, FormatARINC424); err != nil {
		t.Fatalf("nd read: %v", err)
	}
	if err := f.Decode("N0107 A0250 EDDH DHN2 EDHF"); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := f.SetFlightPlanning(c172Builder()); err != nil {
		t.Fatalf("set flight planning: %v", err)
	}
	planBefore := f.FlightPlanning()

	// merging more data rebuilds route and planning from scratch
	if err := f.NDRead(hamburgCTR, FormatOpenAir); err != nil {
		t.Fatalf("second nd read: %v", err)
	}
	if f.State() != StatePlanned {
		t.Errorf("after re-read: got %v, want planned", f.State())
	}
	if f.FlightPlanning() == planBefore {
		t.Errorf("planning not rebuilt after ND mutation")
	}
	if len(f.ND().Airspaces()) != 1 {
		t.Errorf("airspace not merged")
	}
}

func TestSetAlternateResolvesIdent(t *testing.T) {
	f := New(nil, nil)
	if err := f.NDRead(hamburgRecords, FormatARINC424); err != nil {
		t.Fatalf("nd read: %v", err)
	}
	if err := f.Decode("N0107 A0250 EDDH EDHF"); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var unresolved route.UnresolvedError
	if err := f.SetAlternate("NOWHERE"); !errors.As(err, &unresolved) {
		t.Errorf("unknown alternate: got %v, want UnresolvedError", err)
	}

	if err := f.SetAlternate("EDDH"); err != nil {
		t.Fatalf("set alternate: %v", err)
	}
	alt := f.Route().Alternate()
	if alt == nil || alt.To.Ident != "EDDH" {
		t.Errorf("alternate leg: got %v", alt)
	}
}

func TestPrintSections(t *testing.T) {
	f := New(nil, nil)
	if err := f.NDRead(hamburgRecords, FormatARINC424); err != nil {
		t.Fatalf("nd read: %v", err)
	}
	if err := f.Decode("29020KT N0107 A0250 EDDH DHN2 DHN1 EDHF"); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := f.SetFlightPlanning(c172Builder()); err != nil {
		t.Fatalf("set flight planning: %v", err)
	}

	out := f.Print(40)

	for _, want := range []string{"ROUTE", "FUEL", "MASS & BALANCE", "BALANCED", "TOTAL", "ON RAMP"} {
		if !strings.Contains(out, want) {
			t.Errorf("printed plan missing %q:\n%s", want, out)
		}
	}
	for _, ident := range []string{"N2", "N1", "EDHF"} {
		if !strings.Contains(out, ident) {
			t.Errorf("printed plan missing leg to %q", ident)
		}
	}
	if !strings.Contains(out, "YES") {
		t.Errorf("plan should print as balanced:\n%s", out)
	}
}

// Decoding and printing a single-leg route keeps the leg identities and
// distances of the decoded route.
func TestPrintRoundTrip(t *testing.T) {
	f := New(nil, nil)
	if err := f.NDRead(hamburgRecords, FormatARINC424); err != nil {
		t.Fatalf("nd read: %v", err)
	}
	if err := f.Decode("N0107 A0250 EDDH EDHF"); err != nil {
		t.Fatalf("decode: %v", err)
	}

	legs := f.Route().Legs()
	if len(legs) != 1 {
		t.Fatalf("got %d legs, want 1", len(legs))
	}

	out := f.Print(40)
	if !strings.Contains(out, "EDHF") {
		t.Errorf("printed route missing destination:\n%s", out)
	}
	nm := legs[0].Distance().Convert(measure.UnitNauticalMiles).Value()
	wantDist := fmt.Sprintf("%.1f NM", nm)
	if !strings.Contains(out, wantDist) {
		t.Errorf("printed route missing distance %s:\n%s", wantDist, out)
	}
}
