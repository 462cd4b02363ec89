// Package api exposes the FMS over HTTP: navigation data ingest, route
// decoding, flight planning, runway analysis and the printed plan.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yegors/fms/internal/config"
	"github.com/yegors/fms/internal/fms"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
	"github.com/yegors/fms/internal/planning"
	"github.com/yegors/fms/internal/route"
	"github.com/yegors/fms/internal/websocket"
	"github.com/yegors/fms/pkg/logger"
)

// Handler contains the API handlers. The FMS is not safe for concurrent
// mutation, so every handler that changes state holds the mutex.
type Handler struct {
	mu       sync.Mutex
	fms      *fms.FMS
	profiles map[string]*config.AircraftProfile
	config   *config.Config
	logger   *logger.Logger
	wsServer *websocket.Server
}

// NewHandler creates a new API handler.
func NewHandler(f *fms.FMS, profiles map[string]*config.AircraftProfile, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server) *Handler {
	return &Handler{
		fms:      f,
		profiles: profiles,
		config:   cfg,
		logger:   log.Named("api-handler"),
		wsServer: wsServer,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// NDReadRequest is the body of POST /nd.
type NDReadRequest struct {
	Format string `json:"format"` // "arinc424" or "openair"
	Data   string `json:"data"`
}

// ReadND parses navigation data into the FMS database.
func (h *Handler) ReadND(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	var req NDReadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var format fms.InputFormat
	switch req.Format {
	case "arinc424", "":
		format = fms.FormatARINC424
	case "openair":
		format = fms.FormatOpenAir
	default:
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", req.Format))
		return
	}

	h.mu.Lock()
	err = h.fms.NDRead(req.Data, format)
	db := h.fms.ND()
	counts := map[string]int{
		"fixes":    len(db.Fixes()),
		"airports": len(db.Airports()),
		"airways":  len(db.Airways()),
	}
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	if h.wsServer != nil {
		h.wsServer.Broadcast(websocket.MessageTypeNDLoaded, counts)
	}
	h.writeJSON(w, http.StatusOK, counts)
}

// GetFix returns all fixes stored under an ident.
func (h *Handler) GetFix(w http.ResponseWriter, r *http.Request) {
	ident := chi.URLParam(r, "ident")
	h.mu.Lock()
	fixes := h.fms.ND().LookupFix(ident)
	h.mu.Unlock()
	if len(fixes) == 0 {
		h.writeError(w, http.StatusNotFound, fmt.Errorf("no fix %q", ident))
		return
	}
	h.writeJSON(w, http.StatusOK, fixesJSON(fixes))
}

// GetAirport returns an airport with its runways.
func (h *Handler) GetAirport(w http.ResponseWriter, r *http.Request) {
	icao := chi.URLParam(r, "icao")
	h.mu.Lock()
	aprt := h.fms.ND().LookupAirport(icao)
	h.mu.Unlock()
	if aprt == nil {
		h.writeError(w, http.StatusNotFound, fmt.Errorf("no airport %q", icao))
		return
	}
	h.writeJSON(w, http.StatusOK, airportJSON(aprt))
}

// DecodeRequest is the body of POST /route/decode.
type DecodeRequest struct {
	Route     string `json:"route"`
	Alternate string `json:"alternate,omitempty"`
}

// DecodeRoute decodes a planning string into legs.
func (h *Handler) DecodeRoute(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	h.mu.Lock()
	err := h.fms.Decode(req.Route)
	if err == nil && req.Alternate != "" {
		err = h.fms.SetAlternate(req.Alternate)
	}
	var rt *route.Route
	if err == nil {
		rt = h.fms.Route()
	}
	h.mu.Unlock()

	if err != nil {
		status := http.StatusUnprocessableEntity
		var unresolved route.UnresolvedError
		if errors.As(err, &unresolved) {
			status = http.StatusNotFound
		}
		h.writeError(w, status, err)
		return
	}

	resp := routeJSON(rt)
	if h.wsServer != nil {
		h.wsServer.Broadcast(websocket.MessageTypeRouteUpdate, resp)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// PlanningRequest is the body of POST /planning.
type PlanningRequest struct {
	Aircraft       string    `json:"aircraft"` // profile registration
	LoadsKg        []float64 `json:"loads_kg"`
	Policy         string    `json:"policy"` // "minimum", "maximum", "manual", "at-landing", "extra"
	PolicyLiters   float64   `json:"policy_liters,omitempty"`
	TaxiLiters     float64   `json:"taxi_liters,omitempty"`
	ReserveMinutes int       `json:"reserve_minutes,omitempty"`
}

// SetPlanning builds the flight planning for the decoded route.
func (h *Handler) SetPlanning(w http.ResponseWriter, r *http.Request) {
	var req PlanningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	profile, ok := h.profiles[req.Aircraft]
	if !ok {
		h.writeError(w, http.StatusNotFound, fmt.Errorf("no aircraft profile %q", req.Aircraft))
		return
	}
	ac, err := profile.Aircraft()
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	perf, err := profile.PerformanceTable(ac.FuelType)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	policy, err := parsePolicy(req, ac.FuelType)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	taxi := req.TaxiLiters
	if taxi == 0 {
		taxi = h.config.Planning.TaxiFuelLiters
	}
	reserve := time.Duration(req.ReserveMinutes) * time.Minute
	if reserve == 0 {
		reserve = h.config.ReserveDuration()
	}

	loads := make([]measure.Mass, len(req.LoadsKg))
	for i, kg := range req.LoadsKg {
		loads[i] = measure.Kilograms(kg)
	}

	builder := &planning.Builder{
		Aircraft: ac,
		Loads:    loads,
		Policy:   policy,
		Taxi:     measure.FuelFromVolume(measure.Liters(taxi), ac.FuelType),
		Reserve:  planning.Reserve{Duration: reserve},
		Perf:     perf,
	}

	h.mu.Lock()
	err = h.fms.SetFlightPlanning(builder)
	var plan *planning.FlightPlanning
	if err == nil {
		plan = h.fms.FlightPlanning()
	}
	h.mu.Unlock()

	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	resp := planJSON(plan)
	if h.wsServer != nil {
		h.wsServer.Broadcast(websocket.MessageTypePlanUpdate, resp)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func parsePolicy(req PlanningRequest, ft measure.FuelType) (planning.FuelPolicy, error) {
	amount := measure.FuelFromVolume(measure.Liters(req.PolicyLiters), ft)
	switch req.Policy {
	case "minimum", "":
		return planning.MinimumFuel(), nil
	case "maximum":
		return planning.MaximumFuel(), nil
	case "manual":
		return planning.ManualFuel(amount), nil
	case "at-landing":
		return planning.FuelAtLanding(amount), nil
	case "extra":
		return planning.ExtraFuel(amount), nil
	default:
		return planning.FuelPolicy{}, fmt.Errorf("unknown fuel policy %q", req.Policy)
	}
}

// RunwayAnalysisRequest is the body of POST /planning/runway-analysis. It is
// a standalone computation and does not require FMS state.
type RunwayAnalysisRequest struct {
	Bases []struct {
		TemperatureC  float64 `json:"temperature_c"`
		ElevationFt   float64 `json:"elevation_ft"`
		GroundRollM   float64 `json:"ground_roll_m"`
		Distance50ftM float64 `json:"distance_50ft_m"`
	} `json:"bases"`
	POHFactors      []FactorRequest `json:"poh_factors"`
	PlanningFactors []FactorRequest `json:"planning_factors"`
	TemperatureC    float64         `json:"temperature_c"`
	ElevationFt     float64         `json:"elevation_ft"`
	Wind            string          `json:"wind"` // e.g. "29020KT"
	RunwayBearing   float64         `json:"runway_bearing_deg"`
	RunwayLengthM   float64         `json:"runway_length_m"`
	MassKg          float64         `json:"mass_kg"`
}

// FactorRequest is one distance correction factor.
type FactorRequest struct {
	Kind      string  `json:"kind"`       // "rated" or "ranged"
	AppliesTo string  `json:"applies_to"` // "ground-roll", "distance-50ft", "both"
	Value     float64 `json:"value"`
	Of        string  `json:"of,omitempty"` // ranged: "headwind", "tailwind", "elevation", "mass"
	PerKnots  float64 `json:"per_knots,omitempty"`
	PerFeet   float64 `json:"per_feet,omitempty"`
	PerKg     float64 `json:"per_kg,omitempty"`
}

// AnalyzeRunway computes a takeoff or landing distance prediction.
func (h *Handler) AnalyzeRunway(w http.ResponseWriter, r *http.Request) {
	var req RunwayAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var bases []planning.PerformanceBase
	for _, b := range req.Bases {
		bases = append(bases, planning.PerformanceBase{
			Temperature:  measure.Celsius(b.TemperatureC),
			Elevation:    measure.Feet(b.ElevationFt),
			GroundRoll:   measure.Meters(b.GroundRollM),
			Distance50ft: measure.Meters(b.Distance50ftM),
		})
	}

	poh, err := parseFactors(req.POHFactors)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	plan, err := parseFactors(req.PlanningFactors)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var wind measure.Wind
	if req.Wind != "" {
		wind, err = measure.ParseWind(req.Wind)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	rwy := &nd.Runway{
		TrueBearing: measure.TrueDegrees(req.RunwayBearing),
		Length:      measure.Meters(req.RunwayLengthM),
	}

	analysis := planning.AnalyzeRunway(bases, poh, plan, planning.Conditions{
		Temperature: measure.Celsius(req.TemperatureC),
		Elevation:   measure.Feet(req.ElevationFt),
		Wind:        wind,
		Runway:      rwy,
		Mass:        measure.Kilograms(req.MassKg),
	})

	resp := map[string]any{
		"ground_roll_m":      analysis.GroundRoll.SI(),
		"distance_50ft_m":    analysis.Distance50ft.SI(),
		"remaining_runway_m": analysis.RemainingRunway.SI(),
		"headwind_kt":        analysis.Headwind.Knots(),
		"crosswind_kt":       analysis.Crosswind.Knots(),
		"insufficient":       analysis.Insufficient,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func parseFactors(reqs []FactorRequest) ([]planning.Factor, error) {
	var out []planning.Factor
	for _, f := range reqs {
		var applies planning.Applies
		switch f.AppliesTo {
		case "ground-roll", "":
			applies = planning.ToGroundRoll
		case "distance-50ft":
			applies = planning.ToDistance50ft
		case "both":
			applies = planning.ToBoth
		default:
			return nil, fmt.Errorf("unknown applies_to %q", f.AppliesTo)
		}
		switch f.Kind {
		case "rated", "":
			out = append(out, planning.Rated(applies, f.Value))
		case "ranged":
			switch f.Of {
			case "headwind":
				out = append(out, planning.RangedByHeadwind(applies, f.Value, measure.Knots(f.PerKnots)))
			case "tailwind":
				out = append(out, planning.RangedByTailwind(applies, f.Value, measure.Knots(f.PerKnots)))
			case "elevation":
				out = append(out, planning.RangedByElevation(applies, f.Value, measure.Feet(f.PerFeet)))
			case "mass":
				out = append(out, planning.RangedByMass(applies, f.Value, measure.Kilograms(f.PerKg)))
			default:
				return nil, fmt.Errorf("unknown ranged influence %q", f.Of)
			}
		default:
			return nil, fmt.Errorf("unknown factor kind %q", f.Kind)
		}
	}
	return out, nil
}

// PrintPlan renders the current route and planning as fixed-width text.
func (h *Handler) PrintPlan(w http.ResponseWriter, r *http.Request) {
	width := h.config.Planning.PrinterLineLength
	if q := r.URL.Query().Get("width"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 {
			width = v
		}
	}

	h.mu.Lock()
	out := h.fms.Print(width)
	state := h.fms.State()
	h.mu.Unlock()

	if state < fms.StateRouted {
		h.writeError(w, http.StatusConflict, fms.StateError{Op: "print", State: state})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(out))
}

// GetState reports the FMS lifecycle state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	state := h.fms.State()
	h.mu.Unlock()
	h.writeJSON(w, http.StatusOK, map[string]string{"state": state.String()})
}
