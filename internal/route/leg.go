package route

import (
	"math"
	"time"

	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
)

// Leg is a path from one fix to another. The derived geodesy and wind
// triangle are computed once at construction and memoized on the leg; a leg
// is never mutated, mutated inputs produce a new leg.
type Leg struct {
	From  *nd.Fix
	To    *nd.Fix
	Level *measure.VerticalDistance
	Wind  *measure.Wind
	TAS   *measure.Speed

	bearing    measure.Angle
	mc         measure.Angle
	dist       measure.Length
	wca        *measure.Angle
	th         *measure.Angle
	mh         *measure.Angle
	gs         *measure.Speed
	ete        *time.Duration
	infeasible bool
}

// NewLeg builds a leg and solves its geodesy and wind triangle. The magnetic
// variation at the leg's starting fix converts true courses to magnetic.
func NewLeg(from, to *nd.Fix, level *measure.VerticalDistance, tas *measure.Speed, wind *measure.Wind, magvar geo.MagVarSource) *Leg {
	l := &Leg{From: from, To: to, Level: level, Wind: wind, TAS: tas}

	l.bearing = geo.Bearing(from.Coord, to.Coord)
	l.dist = geo.Distance(from.Coord, to.Coord)

	// Declination is east positive, and magnetic = true - easterly
	// variation.
	variation := magvar.Variation(from.Coord)
	l.mc = measure.MagneticRadians(l.bearing.Radians() - variation)

	if tas == nil {
		return l
	}
	if wind == nil {
		// calm air: no wind triangle, the TAS carries over the ground
		gs := *tas
		l.gs = &gs
		ete := eteFor(l.dist, gs.SI())
		l.ete = &ete
		return l
	}

	v := tas.SI()
	ws := wind.Speed.SI()
	windAngle := wind.Direction.Radians() - l.bearing.Radians()

	cross := ws * math.Sin(windAngle)
	if math.Abs(cross) > v {
		// The wind correction angle is undefined: the crosswind exceeds
		// what the airspeed can hold against.
		l.infeasible = true
		return l
	}

	wca := math.Asin(cross / v)
	th := measure.TrueRadians(l.bearing.Radians() + wca)
	mh := measure.MagneticRadians(th.Radians() - variation)
	wcaAngle := measure.TrueRadians(wca)
	l.wca = &wcaAngle
	l.th = &th
	l.mh = &mh

	gs := v*math.Cos(wca) - ws*math.Cos(windAngle)
	if gs <= 0 {
		l.infeasible = true
		return l
	}
	gsSpeed := measure.Knots(measure.MetersPerSecond(gs).Knots())
	l.gs = &gsSpeed

	ete := eteFor(l.dist, gs)
	l.ete = &ete

	return l
}

// eteFor returns the time to cover the distance at the ground speed in m/s,
// rounded to the nearest second.
func eteFor(dist measure.Length, gsSI float64) time.Duration {
	hours := dist.SI() / (gsSI * 3600)
	return measure.RoundDuration(time.Duration(hours * float64(time.Hour)))
}

// Bearing returns the true bearing between the leg's fixes.
func (l *Leg) Bearing() measure.Angle { return l.bearing }

// MagneticCourse returns the course over ground referenced to magnetic north
// at the leg's starting fix.
func (l *Leg) MagneticCourse() measure.Angle { return l.mc }

// Distance returns the great-circle distance of the leg.
func (l *Leg) Distance() measure.Length { return l.dist }

// WCA returns the wind correction angle, or nil when no wind triangle could
// be solved.
func (l *Leg) WCA() *measure.Angle { return l.wca }

// TrueHeading returns the heading correcting for wind drift, or nil.
func (l *Leg) TrueHeading() *measure.Angle { return l.th }

// MagneticHeading returns the wind-corrected heading referenced to magnetic
// north, or nil.
func (l *Leg) MagneticHeading() *measure.Angle { return l.mh }

// GroundSpeed returns the speed over ground, or nil for an infeasible leg.
func (l *Leg) GroundSpeed() *measure.Speed { return l.gs }

// ETE returns the estimated time en route rounded to the nearest second, or
// nil for an infeasible leg.
func (l *Leg) ETE() *time.Duration { return l.ete }

// Infeasible reports whether the wind makes the leg unflyable at the given
// TAS. The leg still carries bearing and distance.
func (l *Leg) Infeasible() bool { return l.infeasible }
