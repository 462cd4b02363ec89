package nd

import (
	"strings"
)

// Database is the navigation database. It is append-only while a parse merges
// entries in and is treated as frozen afterwards; rebuilding requires a new
// parse. Lookups are case-insensitive.
type Database struct {
	byIdent   map[string][]*Fix
	byICAO    map[string]*Airport
	airways   map[string]*Airway
	airspaces []*Airspace
}

// NewDatabase returns an empty navigation database.
func NewDatabase() *Database {
	return &Database{
		byIdent: make(map[string][]*Fix),
		byICAO:  make(map[string]*Airport),
		airways: make(map[string]*Airway),
	}
}

// IsEmpty reports whether no fixes have been inserted.
func (d *Database) IsEmpty() bool { return len(d.byIdent) == 0 }

// InsertFix adds a fix under its ident. A fix with the same ident, kind and
// region as an existing one is ignored: across parses the database is
// union-merged with first-in wins.
func (d *Database) InsertFix(f *Fix) {
	key := strings.ToUpper(f.Ident)
	for _, existing := range d.byIdent[key] {
		if existing.Kind == f.Kind && existing.Region == f.Region {
			return
		}
	}
	d.byIdent[key] = append(d.byIdent[key], f)
}

// InsertAirport adds an airport and indexes its fix. First-in wins on the
// ICAO identifier.
func (d *Database) InsertAirport(a *Airport) {
	key := strings.ToUpper(a.ICAO)
	if _, ok := d.byICAO[key]; ok {
		return
	}
	d.byICAO[key] = a
	d.InsertFix(&a.Fix)
}

// InsertAirway adds an airway. First-in wins on the name. Every fix on the
// airway is inserted so the ident index always covers airway members.
func (d *Database) InsertAirway(a *Airway) {
	key := strings.ToUpper(a.Name)
	if _, ok := d.airways[key]; ok {
		return
	}
	d.airways[key] = a
	for _, f := range a.Fixes {
		d.InsertFix(f)
	}
}

// InsertAirspace adds an airspace volume.
func (d *Database) InsertAirspace(a *Airspace) {
	d.airspaces = append(d.airspaces, a)
}

// LookupFix returns all fixes stored under the ident.
func (d *Database) LookupFix(ident string) []*Fix {
	return d.byIdent[strings.ToUpper(ident)]
}

// LookupAirport returns the airport with the ICAO identifier, or nil.
func (d *Database) LookupAirport(icao string) *Airport {
	return d.byICAO[strings.ToUpper(icao)]
}

// Airway returns the airway with the given name, or nil.
func (d *Database) Airway(name string) *Airway {
	return d.airways[strings.ToUpper(name)]
}

// Airspaces returns all airspace volumes.
func (d *Database) Airspaces() []*Airspace { return d.airspaces }

// Airports returns all airports in the database.
func (d *Database) Airports() []*Airport {
	out := make([]*Airport, 0, len(d.byICAO))
	for _, a := range d.byICAO {
		out = append(out, a)
	}
	return out
}

// Fixes returns all fixes in the database.
func (d *Database) Fixes() []*Fix {
	var out []*Fix
	for _, fs := range d.byIdent {
		out = append(out, fs...)
	}
	return out
}

// Airways returns all airways in the database.
func (d *Database) Airways() []*Airway {
	out := make([]*Airway, 0, len(d.airways))
	for _, a := range d.airways {
		out = append(out, a)
	}
	return out
}

// Merge copies every entry of src into the database, keeping existing entries
// on collision.
func (d *Database) Merge(src *Database) {
	for _, a := range src.byICAO {
		d.InsertAirport(a)
	}
	for _, fs := range src.byIdent {
		for _, f := range fs {
			d.InsertFix(f)
		}
	}
	for _, a := range src.airways {
		d.InsertAirway(a)
	}
	for _, a := range src.airspaces {
		d.InsertAirspace(a)
	}
}
