package api

import (
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
	"github.com/yegors/fms/internal/planning"
	"github.com/yegors/fms/internal/route"
)

// FixResponse is the JSON shape of one fix.
type FixResponse struct {
	Ident       string   `json:"ident"`
	Kind        string   `json:"kind"`
	Region      string   `json:"region,omitempty"`
	Name        string   `json:"name,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ElevationFt *float64 `json:"elevation_ft,omitempty"`
}

// RunwayResponse is the JSON shape of one runway.
type RunwayResponse struct {
	Designator     string  `json:"designator"`
	TrueBearingDeg float64 `json:"true_bearing_deg"`
	LengthM        float64 `json:"length_m"`
	WidthM         float64 `json:"width_m"`
	Surface        string  `json:"surface"`
	RWYCC          int     `json:"rwycc"`
}

// AirportResponse is the JSON shape of one airport.
type AirportResponse struct {
	FixResponse
	ICAO    string           `json:"icao"`
	Runways []RunwayResponse `json:"runways"`
}

// LegResponse is the JSON shape of one leg.
type LegResponse struct {
	From               string   `json:"from"`
	To                 string   `json:"to"`
	BearingDeg         float64  `json:"bearing_deg"`
	MagneticCourseDeg  float64  `json:"magnetic_course_deg"`
	DistanceNM         float64  `json:"distance_nm"`
	TrueHeadingDeg     *float64 `json:"true_heading_deg,omitempty"`
	MagneticHeadingDeg *float64 `json:"magnetic_heading_deg,omitempty"`
	GroundSpeedKt      *float64 `json:"ground_speed_kt,omitempty"`
	ETESeconds         *int     `json:"ete_seconds,omitempty"`
	Infeasible         bool     `json:"infeasible,omitempty"`
}

// RouteResponse is the JSON shape of a decoded route.
type RouteResponse struct {
	Legs            []LegResponse `json:"legs"`
	TotalDistanceNM float64       `json:"total_distance_nm"`
	TotalETESeconds *int          `json:"total_ete_seconds,omitempty"`
}

// FuelResponse is the JSON shape of the fuel plan, in liters.
type FuelResponse struct {
	Taxi         float64 `json:"taxi"`
	Trip         float64 `json:"trip"`
	Alternate    float64 `json:"alternate"`
	Reserve      float64 `json:"reserve"`
	Extra        float64 `json:"extra"`
	Min          float64 `json:"min"`
	OnRamp       float64 `json:"on_ramp"`
	AfterLanding float64 `json:"after_landing"`
}

// MBResponse is the JSON shape of the mass & balance.
type MBResponse struct {
	MassOnRampKg         float64 `json:"mass_on_ramp_kg"`
	MassAfterLandingKg   float64 `json:"mass_after_landing_kg"`
	BalanceOnRampM       float64 `json:"balance_on_ramp_m"`
	BalanceAfterLandingM float64 `json:"balance_after_landing_m"`
	Balanced             bool    `json:"balanced"`
}

// PlanResponse is the JSON shape of the flight planning.
type PlanResponse struct {
	Fuel        *FuelResponse `json:"fuel,omitempty"`
	MB          *MBResponse   `json:"mass_and_balance,omitempty"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
}

func fixJSON(f *nd.Fix) FixResponse {
	resp := FixResponse{
		Ident:     f.Ident,
		Kind:      f.Kind.String(),
		Region:    f.Region,
		Name:      f.Name,
		Latitude:  f.Coord.Latitude,
		Longitude: f.Coord.Longitude,
	}
	if f.Elevation != nil {
		ft := f.Elevation.Convert(measure.UnitFeet).Value()
		resp.ElevationFt = &ft
	}
	return resp
}

func fixesJSON(fixes []*nd.Fix) []FixResponse {
	out := make([]FixResponse, len(fixes))
	for i, f := range fixes {
		out[i] = fixJSON(f)
	}
	return out
}

func airportJSON(a *nd.Airport) AirportResponse {
	resp := AirportResponse{FixResponse: fixJSON(&a.Fix), ICAO: a.ICAO}
	for _, r := range a.Runways {
		resp.Runways = append(resp.Runways, RunwayResponse{
			Designator:     r.Designator,
			TrueBearingDeg: r.TrueBearing.Degrees(),
			LengthM:        r.Length.SI(),
			WidthM:         r.Width.SI(),
			Surface:        r.Surface.String(),
			RWYCC:          int(r.RWYCC),
		})
	}
	return resp
}

func legJSON(l *route.Leg) LegResponse {
	resp := LegResponse{
		From:              l.From.Ident,
		To:                l.To.Ident,
		BearingDeg:        l.Bearing().Degrees(),
		MagneticCourseDeg: l.MagneticCourse().Degrees(),
		DistanceNM:        l.Distance().Convert(measure.UnitNauticalMiles).Value(),
		Infeasible:        l.Infeasible(),
	}
	if th := l.TrueHeading(); th != nil {
		v := th.Degrees()
		resp.TrueHeadingDeg = &v
	}
	if mh := l.MagneticHeading(); mh != nil {
		v := mh.Degrees()
		resp.MagneticHeadingDeg = &v
	}
	if gs := l.GroundSpeed(); gs != nil {
		v := gs.Knots()
		resp.GroundSpeedKt = &v
	}
	if ete := l.ETE(); ete != nil {
		v := int(ete.Seconds())
		resp.ETESeconds = &v
	}
	return resp
}

func routeJSON(rt *route.Route) RouteResponse {
	resp := RouteResponse{
		TotalDistanceNM: rt.Distance().Convert(measure.UnitNauticalMiles).Value(),
	}
	for _, l := range rt.Legs() {
		resp.Legs = append(resp.Legs, legJSON(l))
	}
	if ete := rt.ETE(); ete != nil {
		v := int(ete.Seconds())
		resp.TotalETESeconds = &v
	}
	return resp
}

func planJSON(plan *planning.FlightPlanning) PlanResponse {
	resp := PlanResponse{}
	if plan == nil {
		return resp
	}
	if f := plan.Fuel; f != nil {
		resp.Fuel = &FuelResponse{
			Taxi:         f.Taxi.Liters(),
			Trip:         f.Trip.Liters(),
			Alternate:    f.Alternate.Liters(),
			Reserve:      f.Reserve.Liters(),
			Extra:        f.Extra.Liters(),
			Min:          f.Min.Liters(),
			OnRamp:       f.OnRamp.Liters(),
			AfterLanding: f.AfterLanding.Liters(),
		}
	}
	if mb := plan.MB; mb != nil {
		resp.MB = &MBResponse{
			MassOnRampKg:         mb.MassOnRamp.Convert(measure.UnitKilograms).Value(),
			MassAfterLandingKg:   mb.MassAfterLanding.Convert(measure.UnitKilograms).Value(),
			BalanceOnRampM:       mb.BalanceOnRamp.SI(),
			BalanceAfterLandingM: mb.BalanceAfterLanding.SI(),
			Balanced:             plan.Balanced,
		}
	}
	for _, d := range plan.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, d.Error())
	}
	return resp
}
