// Package nd holds the navigation database: the indexed, immutable store of
// fixes, airports, runways, airways and airspaces that route decoding draws
// from. Entries are created by the parsers and frozen afterwards.
package nd

import (
	"fmt"

	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/measure"
)

// FixKind classifies a fix.
type FixKind int

const (
	KindWaypoint FixKind = iota
	KindAirport
	KindNavAid
	KindReportingPoint
)

func (k FixKind) String() string {
	switch k {
	case KindAirport:
		return "airport"
	case KindNavAid:
		return "navaid"
	case KindReportingPoint:
		return "reporting-point"
	default:
		return "waypoint"
	}
}

// Fix is a named point in space. Region is the terminal area the fix belongs
// to (the airport ident for terminal waypoints, "ENRT" for enroute fixes).
type Fix struct {
	Ident     string
	Kind      FixKind
	Coord     geo.Coordinate
	Region    string
	Name      string
	Elevation *measure.Length // nil when the source record carries none
}

func (f *Fix) String() string {
	return fmt.Sprintf("%s (%s)", f.Ident, f.Kind)
}

// Surface is the runway surface type.
type Surface int

const (
	SurfaceAsphalt Surface = iota
	SurfaceConcrete
	SurfaceGrass
	SurfaceGravel
	SurfaceWater
)

func (s Surface) String() string {
	switch s {
	case SurfaceConcrete:
		return "concrete"
	case SurfaceGrass:
		return "grass"
	case SurfaceGravel:
		return "gravel"
	case SurfaceWater:
		return "water"
	default:
		return "asphalt"
	}
}

// RunwayConditionCode is the 0..6 RWYCC reported for a runway, 6 being dry.
type RunwayConditionCode int

// Runway describes a single landing direction of a runway.
type Runway struct {
	Designator  string // e.g. "09L"
	TrueBearing measure.Angle
	Length      measure.Length
	Width       measure.Length
	Surface     Surface
	RWYCC       RunwayConditionCode
	Threshold   geo.Coordinate
}

// Airport is a fix with an ICAO identifier and runways.
type Airport struct {
	Fix
	ICAO    string
	Runways []Runway
}

// Runway returns the runway with the given designator, or nil.
func (a *Airport) Runway(designator string) *Runway {
	for i := range a.Runways {
		if a.Runways[i].Designator == designator {
			return &a.Runways[i]
		}
	}
	return nil
}

// Airway is a named ordered polyline of fixes with a level band.
type Airway struct {
	Name     string
	MinLevel measure.VerticalDistance
	MaxLevel measure.VerticalDistance
	Fixes    []*Fix
}

// index returns the position of the fix with the given ident on the airway,
// or -1.
func (a *Airway) index(ident string) int {
	for i, f := range a.Fixes {
		if f.Ident == ident {
			return i
		}
	}
	return -1
}

// Contains reports whether a fix with the given ident lies on the airway.
func (a *Airway) Contains(ident string) bool { return a.index(ident) >= 0 }

// Between returns the fixes strictly after entry up to and including exit, in
// the airway's natural order. When the exit precedes the entry the slice is
// walked backwards. Either ident missing yields nil.
func (a *Airway) Between(entry, exit string) []*Fix {
	i, j := a.index(entry), a.index(exit)
	if i < 0 || j < 0 || i == j {
		return nil
	}
	var out []*Fix
	if i < j {
		for k := i + 1; k <= j; k++ {
			out = append(out, a.Fixes[k])
		}
	} else {
		for k := i - 1; k >= j; k-- {
			out = append(out, a.Fixes[k])
		}
	}
	return out
}

// AirspaceClass is the ICAO airspace class letter.
type AirspaceClass string

// Airspace is a named volume read from OpenAir data.
type Airspace struct {
	Name    string
	Class   AirspaceClass
	Floor   measure.VerticalDistance
	Ceiling measure.VerticalDistance
	Polygon []geo.Coordinate
}
