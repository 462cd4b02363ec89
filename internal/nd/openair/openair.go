// Package openair parses OpenAir airspace descriptions. The format is
// line-oriented: an airspace under construction accumulates commands until
// the next AC command starts a new one.
package openair

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
	"github.com/yegors/fms/pkg/logger"
)

// Diagnostic reports a line the parser had to skip.
type Diagnostic struct {
	Line   int
	Reason string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("openair: line %d: %s", d.Line, d.Reason)
}

// Result is the outcome of one parse.
type Result struct {
	Airspaces   []*nd.Airspace
	Diagnostics []Diagnostic
}

// MergeInto merges the parsed airspaces into the database.
func (r *Result) MergeInto(db *nd.Database) {
	for _, a := range r.Airspaces {
		db.InsertAirspace(a)
	}
}

// arc resolution in degrees per polygon segment.
const arcStepDeg = 10.0

// builder accumulates commands for the airspace under construction.
type builder struct {
	started   bool
	class     nd.AirspaceClass
	name      string
	floor     measure.VerticalDistance
	ceiling   measure.VerticalDistance
	polygon   []geo.Coordinate
	center    *geo.Coordinate // V X= variable
	clockwise bool            // V D= variable, default clockwise
}

func newBuilder() *builder {
	return &builder{ceiling: measure.Unlimited(), clockwise: true}
}

func (b *builder) finish() *nd.Airspace {
	if !b.started || len(b.polygon) == 0 {
		return nil
	}
	poly := b.polygon
	if poly[0] != poly[len(poly)-1] {
		poly = append(poly, poly[0])
	}
	return &nd.Airspace{
		Name:    b.name,
		Class:   b.class,
		Floor:   b.floor,
		Ceiling: b.ceiling,
		Polygon: poly,
	}
}

// Parse decodes OpenAir commands from s. Comments run from `*` to the end of
// the line. Unknown commands are skipped silently; malformed operands skip
// the line and emit a diagnostic. The logger may be nil.
func Parse(s string, log *logger.Logger) *Result {
	if log != nil {
		log = log.Named("openair")
	}

	res := &Result{}
	b := newBuilder()
	flush := func() {
		if as := b.finish(); as != nil {
			res.Airspaces = append(res.Airspaces, as)
		}
		b = newBuilder()
	}

	lineNr := 0
	for _, raw := range strings.Split(s, "\n") {
		lineNr++
		line := raw
		if i := strings.Index(line, "*"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd := line
		operand := ""
		if i := strings.IndexByte(line, ' '); i > 0 {
			cmd, operand = line[:i], strings.TrimSpace(line[i+1:])
		}

		switch strings.ToUpper(cmd) {
		case "AC":
			flush()
			b.started = true
			b.class = nd.AirspaceClass(operand)
		case "AN":
			b.name = operand
		case "AH":
			vd, err := parseVerticalDistance(operand)
			if err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNr, Reason: err.Error()})
				continue
			}
			b.ceiling = vd
		case "AL":
			vd, err := parseVerticalDistance(operand)
			if err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNr, Reason: err.Error()})
				continue
			}
			b.floor = vd
		case "DP":
			c, err := parseCoordinate(operand)
			if err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNr, Reason: err.Error()})
				continue
			}
			b.polygon = append(b.polygon, c)
		case "V":
			if err := b.setVariable(operand); err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNr, Reason: err.Error()})
			}
		case "DC":
			radius, err := strconv.ParseFloat(operand, 64)
			if err != nil || b.center == nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNr, Reason: fmt.Sprintf("circle %q without valid center", operand)})
				continue
			}
			b.polygon = append(b.polygon, circle(*b.center, radius)...)
		case "DB":
			from, to, err := parseArcEndpoints(operand)
			if err != nil || b.center == nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNr, Reason: fmt.Sprintf("arc %q without valid center", operand)})
				continue
			}
			b.polygon = append(b.polygon, arc(*b.center, from, to, b.clockwise)...)
		}
	}
	flush()

	if log != nil {
		log.Info("Parsed OpenAir airspaces",
			logger.Int("airspaces", len(res.Airspaces)),
			logger.Int("diagnostics", len(res.Diagnostics)))
	}

	return res
}

func (b *builder) setVariable(operand string) error {
	switch {
	case strings.HasPrefix(operand, "X="):
		c, err := parseCoordinate(strings.TrimPrefix(operand, "X="))
		if err != nil {
			return err
		}
		b.center = &c
		return nil
	case strings.HasPrefix(operand, "D=+"):
		b.clockwise = true
		return nil
	case strings.HasPrefix(operand, "D=-"):
		b.clockwise = false
		return nil
	default:
		// other variables (airway width etc.) are not used here
		return nil
	}
}

// parseCoordinate decodes `DD:MM:SS N DDD:MM:SS E`.
func parseCoordinate(s string) (geo.Coordinate, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ':' })
	if len(parts) != 8 {
		return geo.Coordinate{}, fmt.Errorf("malformed coordinate %q", s)
	}
	num := make([]int, 6)
	idx := 0
	for _, p := range []string{parts[0], parts[1], parts[2], parts[4], parts[5], parts[6]} {
		v, err := strconv.Atoi(p)
		if err != nil {
			return geo.Coordinate{}, fmt.Errorf("malformed coordinate %q", s)
		}
		num[idx] = v
		idx++
	}
	lat := geo.DMSToDecimal(num[0], num[1], num[2], 0)
	lon := geo.DMSToDecimal(num[3], num[4], num[5], 0)
	switch parts[3] {
	case "N":
	case "S":
		lat = -lat
	default:
		return geo.Coordinate{}, fmt.Errorf("malformed latitude hemisphere in %q", s)
	}
	switch parts[7] {
	case "E":
	case "W":
		lon = -lon
	default:
		return geo.Coordinate{}, fmt.Errorf("malformed longitude hemisphere in %q", s)
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}

// parseVerticalDistance decodes OpenAir level forms: `GND`, `SFC`, `UNLIM`,
// `FL95`, `2500 FT`, `1500 FT AGL`, `4500 FT MSL`.
func parseVerticalDistance(s string) (measure.VerticalDistance, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch u {
	case "GND", "SFC":
		return measure.Gnd(), nil
	case "UNLIM", "UNLIMITED":
		return measure.Unlimited(), nil
	}

	digits := strings.TrimFunc(u, func(r rune) bool { return r < '0' || r > '9' })
	suffix := strings.TrimSpace(strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, u))
	v, err := strconv.Atoi(digits)
	if err != nil {
		return measure.VerticalDistance{}, fmt.Errorf("malformed level %q", s)
	}
	switch suffix {
	case "FL":
		return measure.FL(v), nil
	case "FT AGL", "AGL":
		return measure.AGL(v), nil
	case "FT MSL", "MSL":
		return measure.MSL(v), nil
	case "FT":
		return measure.Altitude(v), nil
	default:
		return measure.VerticalDistance{}, fmt.Errorf("malformed level %q", s)
	}
}

// parseArcEndpoints decodes the `DB` operand: two coordinates separated by a
// comma.
func parseArcEndpoints(s string) (geo.Coordinate, geo.Coordinate, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return geo.Coordinate{}, geo.Coordinate{}, fmt.Errorf("malformed arc %q", s)
	}
	from, err := parseCoordinate(strings.TrimSpace(parts[0]))
	if err != nil {
		return geo.Coordinate{}, geo.Coordinate{}, err
	}
	to, err := parseCoordinate(strings.TrimSpace(parts[1]))
	if err != nil {
		return geo.Coordinate{}, geo.Coordinate{}, err
	}
	return from, to, nil
}

// circle approximates a circle of the given radius in NM around the center.
func circle(center geo.Coordinate, radiusNM float64) []geo.Coordinate {
	var out []geo.Coordinate
	for deg := 0.0; deg < 360; deg += arcStepDeg {
		out = append(out, project(center, deg, radiusNM))
	}
	return out
}

// arc approximates the arc from one endpoint to the other around the center.
func arc(center geo.Coordinate, from, to geo.Coordinate, clockwise bool) []geo.Coordinate {
	radius := geo.Distance(center, from).Convert(measure.UnitNauticalMiles).Value()
	start := geo.Bearing(center, from).Degrees()
	end := geo.Bearing(center, to).Degrees()

	var out []geo.Coordinate
	if clockwise {
		if end <= start {
			end += 360
		}
		for deg := start; deg < end; deg += arcStepDeg {
			out = append(out, project(center, deg, radius))
		}
	} else {
		if end >= start {
			end -= 360
		}
		for deg := start; deg > end; deg -= arcStepDeg {
			out = append(out, project(center, deg, radius))
		}
	}
	out = append(out, to)
	return out
}

// project returns the coordinate at the given true bearing and distance from
// the origin on the spherical earth.
func project(origin geo.Coordinate, bearingDeg, distNM float64) geo.Coordinate {
	lat1 := origin.Latitude * math.Pi / 180
	lon1 := origin.Longitude * math.Pi / 180
	brg := bearingDeg * math.Pi / 180
	d := distNM / geo.EarthRadiusNM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(math.Sin(brg)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return geo.Coordinate{Latitude: lat2 * 180 / math.Pi, Longitude: lon2 * 180 / math.Pi}
}
