// Package arinc424 parses ARINC 424 fixed-column records into navigation
// database entries. The parser consumes an in-memory string of
// newline-terminated records; file handling belongs to the caller.
package arinc424

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
	"github.com/yegors/fms/pkg/logger"
)

// Diagnostic reports a record the parser had to skip. The parse itself
// continues; diagnostics surface what was dropped.
type Diagnostic struct {
	Line   int
	Column int
	Reason string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("arinc424: line %d col %d: %s", d.Line, d.Column, d.Reason)
}

// Result is the outcome of one parse. Within a parse, duplicate primaries
// resolve last-in wins; merging results into a database is first-in wins.
type Result struct {
	Airports    []*nd.Airport
	Waypoints   []*nd.Fix
	NavAids     []*nd.Fix
	Airways     []*nd.Airway
	Diagnostics []Diagnostic
}

// MergeInto merges the parsed entries into the database.
func (r *Result) MergeInto(db *nd.Database) {
	for _, a := range r.Airports {
		db.InsertAirport(a)
	}
	for _, w := range r.Waypoints {
		db.InsertFix(w)
	}
	for _, n := range r.NavAids {
		db.InsertFix(n)
	}
	for _, a := range r.Airways {
		db.InsertAirway(a)
	}
}

// airwaySegment is one ER record before the airway is assembled.
type airwaySegment struct {
	seq      int
	fixIdent string
	minLevel measure.VerticalDistance
	maxLevel measure.VerticalDistance
}

// Parse decodes ARINC 424 records from s. Unknown record types are skipped
// silently; malformed fields skip the record and emit a diagnostic. The
// logger may be nil.
func Parse(s string, log *logger.Logger) *Result {
	if log != nil {
		log = log.Named("arinc424")
	}

	res := &Result{}
	airports := make(map[string]*nd.Airport)
	airportOrder := []string{}
	waypoints := make(map[string]*nd.Fix)
	waypointOrder := []string{}
	navaids := make(map[string]*nd.Fix)
	navaidOrder := []string{}
	airwayWIP := make(map[string][]airwaySegment)
	airwayOrder := []string{}
	var runwayLines []struct {
		line string
		nr   int
	}

	lineNr := 0
	for _, line := range strings.Split(s, "\n") {
		lineNr++
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if len(line) < 6 || line[0] != 'S' {
			continue
		}
		// Continuation records beyond the primary carry extra data we do
		// not decode; the last seen primary wins.
		if len(line) > 21 && line[21] != ' ' && line[21] != '0' && line[21] != '1' {
			continue
		}

		switch line[4:6] {
		case "EA", "PC":
			fix, diag := parseWaypoint(line, lineNr)
			if diag != nil {
				res.Diagnostics = append(res.Diagnostics, *diag)
				continue
			}
			key := fix.Region + "/" + fix.Ident
			if _, seen := waypoints[key]; !seen {
				waypointOrder = append(waypointOrder, key)
			}
			waypoints[key] = fix

		case "P ":
			if len(line) < 13 {
				continue
			}
			switch line[12] {
			case 'A':
				aprt, diag := parseAirport(line, lineNr)
				if diag != nil {
					res.Diagnostics = append(res.Diagnostics, *diag)
					continue
				}
				if _, seen := airports[aprt.ICAO]; !seen {
					airportOrder = append(airportOrder, aprt.ICAO)
				}
				airports[aprt.ICAO] = aprt
			case 'G':
				runwayLines = append(runwayLines, struct {
					line string
					nr   int
				}{line, lineNr})
			}

		case "D ", "DB":
			fix, diag := parseNavAid(line, lineNr)
			if diag != nil {
				res.Diagnostics = append(res.Diagnostics, *diag)
				continue
			}
			if _, seen := navaids[fix.Ident]; !seen {
				navaidOrder = append(navaidOrder, fix.Ident)
			}
			navaids[fix.Ident] = fix

		case "ER":
			name, seg, diag := parseAirwaySegment(line, lineNr)
			if diag != nil {
				res.Diagnostics = append(res.Diagnostics, *diag)
				continue
			}
			if _, seen := airwayWIP[name]; !seen {
				airwayOrder = append(airwayOrder, name)
			}
			airwayWIP[name] = append(airwayWIP[name], seg)
		}
	}

	for _, icao := range airportOrder {
		res.Airports = append(res.Airports, airports[icao])
	}
	for _, key := range waypointOrder {
		res.Waypoints = append(res.Waypoints, waypoints[key])
	}
	for _, id := range navaidOrder {
		res.NavAids = append(res.NavAids, navaids[id])
	}

	// Runways need their airports, so they resolve after the full pass.
	for _, rl := range runwayLines {
		icao, rwy, diag := parseRunway(rl.line, rl.nr)
		if diag != nil {
			res.Diagnostics = append(res.Diagnostics, *diag)
			continue
		}
		aprt, ok := airports[icao]
		if !ok {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Line: rl.nr, Column: 7, Reason: fmt.Sprintf("runway for unknown airport %s", icao),
			})
			continue
		}
		aprt.Runways = append(aprt.Runways, *rwy)
	}

	// Airways assemble from their sequenced segments. Segments naming a fix
	// this parse never saw are dropped so the database invariant holds:
	// every airway member is present in the ident index.
	lookup := func(ident string) *nd.Fix {
		for _, w := range waypoints {
			if w.Ident == ident {
				return w
			}
		}
		if n, ok := navaids[ident]; ok {
			return n
		}
		for _, a := range airports {
			if a.Ident == ident {
				return &a.Fix
			}
		}
		return nil
	}
	for _, name := range airwayOrder {
		segs := airwayWIP[name]
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].seq < segs[j].seq })
		awy := &nd.Airway{Name: name, MinLevel: measure.Gnd(), MaxLevel: measure.Unlimited()}
		for _, seg := range segs {
			fix := lookup(seg.fixIdent)
			if fix == nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Column: 30, Reason: fmt.Sprintf("airway %s references unknown fix %s", name, seg.fixIdent),
				})
				continue
			}
			awy.Fixes = append(awy.Fixes, fix)
			if seg.minLevel.Kind != measure.VerticalGround && awy.MinLevel.Kind == measure.VerticalGround {
				awy.MinLevel = seg.minLevel
			}
			if seg.maxLevel.Kind != measure.VerticalUnlimited && awy.MaxLevel.Kind == measure.VerticalUnlimited {
				awy.MaxLevel = seg.maxLevel
			}
		}
		if len(awy.Fixes) > 1 {
			res.Airways = append(res.Airways, awy)
		}
	}

	if log != nil {
		log.Info("Parsed ARINC 424 records",
			logger.Int("airports", len(res.Airports)),
			logger.Int("waypoints", len(res.Waypoints)),
			logger.Int("navaids", len(res.NavAids)),
			logger.Int("airways", len(res.Airways)),
			logger.Int("diagnostics", len(res.Diagnostics)))
		for _, d := range res.Diagnostics {
			log.Warn("Skipped record", logger.Int("line", d.Line), logger.String("reason", d.Reason))
		}
	}

	return res
}

// field returns the trimmed column range [from, to) or "" when the line is
// too short.
func field(line string, from, to int) string {
	if len(line) < to {
		return ""
	}
	return strings.TrimSpace(line[from:to])
}

// parseLatitude decodes the packed N|S DDMMSSss form at the given offset.
func parseLatitude(line string, at int) (float64, error) {
	if len(line) < at+9 {
		return 0, fmt.Errorf("latitude column missing")
	}
	s := line[at : at+9]
	deg, err1 := strconv.Atoi(s[1:3])
	min, err2 := strconv.Atoi(s[3:5])
	sec, err3 := strconv.Atoi(s[5:7])
	csec, err4 := strconv.Atoi(s[7:9])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0, fmt.Errorf("malformed latitude %q", s)
	}
	v := geo.DMSToDecimal(deg, min, sec, csec)
	switch s[0] {
	case 'N':
		return v, nil
	case 'S':
		return -v, nil
	default:
		return 0, fmt.Errorf("malformed latitude %q", s)
	}
}

// parseLongitude decodes the packed E|W DDDMMSSss form at the given offset.
func parseLongitude(line string, at int) (float64, error) {
	if len(line) < at+10 {
		return 0, fmt.Errorf("longitude column missing")
	}
	s := line[at : at+10]
	deg, err1 := strconv.Atoi(s[1:4])
	min, err2 := strconv.Atoi(s[4:6])
	sec, err3 := strconv.Atoi(s[6:8])
	csec, err4 := strconv.Atoi(s[8:10])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0, fmt.Errorf("malformed longitude %q", s)
	}
	v := geo.DMSToDecimal(deg, min, sec, csec)
	switch s[0] {
	case 'E':
		return v, nil
	case 'W':
		return -v, nil
	default:
		return 0, fmt.Errorf("malformed longitude %q", s)
	}
}

func parseCoordinate(line string, lineNr int) (geo.Coordinate, *Diagnostic) {
	lat, err := parseLatitude(line, 32)
	if err != nil {
		return geo.Coordinate{}, &Diagnostic{Line: lineNr, Column: 33, Reason: err.Error()}
	}
	lon, err := parseLongitude(line, 41)
	if err != nil {
		return geo.Coordinate{}, &Diagnostic{Line: lineNr, Column: 42, Reason: err.Error()}
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}

// parseAirport decodes a P-section primary (subsection A) record.
func parseAirport(line string, lineNr int) (*nd.Airport, *Diagnostic) {
	ident := field(line, 6, 10)
	if ident == "" {
		return nil, &Diagnostic{Line: lineNr, Column: 7, Reason: "missing airport ident"}
	}
	coord, diag := parseCoordinate(line, lineNr)
	if diag != nil {
		return nil, diag
	}

	aprt := &nd.Airport{
		Fix: nd.Fix{
			Ident:  ident,
			Kind:   nd.KindAirport,
			Coord:  coord,
			Region: field(line, 10, 12),
			Name:   field(line, 93, 123),
		},
		ICAO: ident,
	}

	// Elevation in feet follows the magnetic variation column.
	if elev := field(line, 56, 61); elev != "" {
		if ft, err := strconv.Atoi(elev); err == nil {
			l := measure.Feet(float64(ft))
			aprt.Elevation = &l
		}
	}

	return aprt, nil
}

// parseWaypoint decodes an enroute (EA) or terminal (PC) waypoint record.
// Terminal waypoints become reporting points scoped to their airport.
func parseWaypoint(line string, lineNr int) (*nd.Fix, *Diagnostic) {
	ident := field(line, 13, 18)
	if ident == "" {
		return nil, &Diagnostic{Line: lineNr, Column: 14, Reason: "missing waypoint ident"}
	}
	coord, diag := parseCoordinate(line, lineNr)
	if diag != nil {
		return nil, diag
	}

	region := field(line, 6, 10)
	kind := nd.KindWaypoint
	if line[4:6] == "PC" && region != "ENRT" {
		kind = nd.KindReportingPoint
	}

	return &nd.Fix{
		Ident:  ident,
		Kind:   kind,
		Coord:  coord,
		Region: region,
		Name:   field(line, 98, 123),
	}, nil
}

// parseNavAid decodes a VOR (D-section, blank subsection) or NDB (DB) record.
func parseNavAid(line string, lineNr int) (*nd.Fix, *Diagnostic) {
	ident := field(line, 13, 17)
	if ident == "" {
		return nil, &Diagnostic{Line: lineNr, Column: 14, Reason: "missing navaid ident"}
	}
	coord, diag := parseCoordinate(line, lineNr)
	if diag != nil {
		return nil, diag
	}
	return &nd.Fix{
		Ident:  ident,
		Kind:   nd.KindNavAid,
		Coord:  coord,
		Region: field(line, 6, 10),
		Name:   field(line, 93, 123),
	}, nil
}

// parseRunway decodes a P-section runway (subsection G) record and returns
// the airport it belongs to.
func parseRunway(line string, lineNr int) (string, *nd.Runway, *Diagnostic) {
	icao := field(line, 6, 10)
	id := field(line, 13, 18)
	if icao == "" || !strings.HasPrefix(id, "RW") {
		return "", nil, &Diagnostic{Line: lineNr, Column: 14, Reason: "malformed runway ident"}
	}

	rwy := &nd.Runway{Designator: strings.TrimPrefix(id, "RW"), Surface: nd.SurfaceAsphalt, RWYCC: 6}

	if l := field(line, 22, 27); l != "" {
		ft, err := strconv.Atoi(l)
		if err != nil {
			return "", nil, &Diagnostic{Line: lineNr, Column: 23, Reason: fmt.Sprintf("malformed runway length %q", l)}
		}
		rwy.Length = measure.Feet(float64(ft))
	}

	// Bearing is in tenths of a degree; a trailing T marks a true-north
	// reference, otherwise the value is magnetic and stored as-is relative
	// to true north (the data is survey-derived and close enough for the
	// headwind decomposition the analysis needs).
	if b := field(line, 27, 31); b != "" {
		deg, err := strconv.Atoi(strings.TrimSuffix(b, "T"))
		if err != nil {
			return "", nil, &Diagnostic{Line: lineNr, Column: 28, Reason: fmt.Sprintf("malformed runway bearing %q", b)}
		}
		rwy.TrueBearing = measure.TrueDegrees(float64(deg) / 10)
	}

	if coord, diag := parseCoordinate(line, lineNr); diag == nil {
		rwy.Threshold = coord
	}

	if w := field(line, 77, 80); w != "" {
		if ft, err := strconv.Atoi(w); err == nil {
			rwy.Width = measure.Feet(float64(ft))
		}
	}

	return icao, rwy, nil
}

// parseAirwaySegment decodes an enroute airway (ER) record.
func parseAirwaySegment(line string, lineNr int) (string, airwaySegment, *Diagnostic) {
	name := field(line, 13, 18)
	if name == "" {
		return "", airwaySegment{}, &Diagnostic{Line: lineNr, Column: 14, Reason: "missing airway ident"}
	}
	seqStr := field(line, 25, 29)
	seq, err := strconv.Atoi(seqStr)
	if err != nil {
		return "", airwaySegment{}, &Diagnostic{Line: lineNr, Column: 26, Reason: fmt.Sprintf("malformed sequence number %q", seqStr)}
	}
	fixIdent := field(line, 29, 34)
	if fixIdent == "" {
		return "", airwaySegment{}, &Diagnostic{Line: lineNr, Column: 30, Reason: "missing airway fix ident"}
	}

	seg := airwaySegment{
		seq:      seq,
		fixIdent: fixIdent,
		minLevel: measure.Gnd(),
		maxLevel: measure.Unlimited(),
	}
	if v := field(line, 83, 88); v != "" && allDigits(v) {
		ft, _ := strconv.Atoi(v)
		seg.minLevel = measure.Altitude(ft)
	}
	if v := field(line, 88, 93); v != "" && allDigits(v) {
		ft, _ := strconv.Atoi(v)
		seg.maxLevel = measure.Altitude(ft)
	}
	return name, seg, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
