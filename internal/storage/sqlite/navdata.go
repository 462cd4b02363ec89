// Package sqlite persists the parsed navigation database. A parse of a large
// ARINC 424 file is expensive; dumping the resulting entries lets the server
// restart without reparsing.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/nd"
	"github.com/yegors/fms/pkg/logger"
	_ "modernc.org/sqlite"
)

// NavDataStorage is a SQLite-backed store for navigation database entries.
type NavDataStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewNavDataStorage opens (and if needed initializes) the database at path.
func NewNavDataStorage(dbPath string, log *logger.Logger) (*NavDataStorage, error) {
	storageLogger := log.Named("sqlite")
	storageLogger.Info("Initializing navigation data storage", logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db, storageLogger); err != nil {
		db.Close()
		return nil, err
	}

	return &NavDataStorage{db: db, logger: storageLogger}, nil
}

// Close closes the database connection.
func (s *NavDataStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func initSchema(db *sql.DB, log *logger.Logger) error {
	log.Info("Initializing database schema")

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fixes (
			ident TEXT NOT NULL,
			kind INTEGER NOT NULL,
			region TEXT NOT NULL,
			name TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			elevation_ft REAL,
			PRIMARY KEY (ident, kind, region)
		)`,
		`CREATE TABLE IF NOT EXISTS airports (
			icao TEXT PRIMARY KEY,
			region TEXT NOT NULL,
			name TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			elevation_ft REAL
		)`,
		`CREATE TABLE IF NOT EXISTS runways (
			icao TEXT NOT NULL,
			designator TEXT NOT NULL,
			true_bearing_deg REAL NOT NULL,
			length_m REAL NOT NULL,
			width_m REAL NOT NULL,
			surface INTEGER NOT NULL,
			rwycc INTEGER NOT NULL,
			threshold_lat REAL,
			threshold_lon REAL,
			PRIMARY KEY (icao, designator)
		)`,
		`CREATE TABLE IF NOT EXISTS airways (
			name TEXT PRIMARY KEY,
			min_level_kind INTEGER NOT NULL,
			min_level_ft INTEGER NOT NULL,
			max_level_kind INTEGER NOT NULL,
			max_level_ft INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS airway_fixes (
			airway TEXT NOT NULL,
			seq INTEGER NOT NULL,
			ident TEXT NOT NULL,
			kind INTEGER NOT NULL,
			region TEXT NOT NULL,
			PRIMARY KEY (airway, seq)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Save writes the full content of the navigation database, replacing any
// previous dump.
func (s *NavDataStorage) Save(db *nd.Database) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"fixes", "airports", "runways", "airways", "airway_fixes"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, f := range db.Fixes() {
		var elev any
		if f.Elevation != nil {
			elev = f.Elevation.Convert(measure.UnitFeet).Value()
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO fixes (ident, kind, region, name, latitude, longitude, elevation_ft)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.Ident, int(f.Kind), f.Region, f.Name, f.Coord.Latitude, f.Coord.Longitude, elev,
		); err != nil {
			return fmt.Errorf("failed to insert fix %s: %w", f.Ident, err)
		}
	}

	for _, a := range db.Airports() {
		var elev any
		if a.Elevation != nil {
			elev = a.Elevation.Convert(measure.UnitFeet).Value()
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO airports (icao, region, name, latitude, longitude, elevation_ft)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.ICAO, a.Region, a.Name, a.Coord.Latitude, a.Coord.Longitude, elev,
		); err != nil {
			return fmt.Errorf("failed to insert airport %s: %w", a.ICAO, err)
		}
		for _, r := range a.Runways {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO runways (icao, designator, true_bearing_deg, length_m, width_m, surface, rwycc, threshold_lat, threshold_lon)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ICAO, r.Designator, r.TrueBearing.Degrees(), r.Length.SI(), r.Width.SI(),
				int(r.Surface), int(r.RWYCC), r.Threshold.Latitude, r.Threshold.Longitude,
			); err != nil {
				return fmt.Errorf("failed to insert runway %s/%s: %w", a.ICAO, r.Designator, err)
			}
		}
	}

	for _, awy := range db.Airways() {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO airways (name, min_level_kind, min_level_ft, max_level_kind, max_level_ft)
			 VALUES (?, ?, ?, ?, ?)`,
			awy.Name, int(awy.MinLevel.Kind), awy.MinLevel.Feet, int(awy.MaxLevel.Kind), awy.MaxLevel.Feet,
		); err != nil {
			return fmt.Errorf("failed to insert airway %s: %w", awy.Name, err)
		}
		for i, f := range awy.Fixes {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO airway_fixes (airway, seq, ident, kind, region) VALUES (?, ?, ?, ?, ?)`,
				awy.Name, i, f.Ident, int(f.Kind), f.Region,
			); err != nil {
				return fmt.Errorf("failed to insert airway fix %s/%s: %w", awy.Name, f.Ident, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.logger.Info("Saved navigation data",
		logger.Int("fixes", len(db.Fixes())),
		logger.Int("airports", len(db.Airports())),
		logger.Int("airways", len(db.Airways())))
	return nil
}

// Load reads a previously saved navigation database.
func (s *NavDataStorage) Load() (*nd.Database, error) {
	db := nd.NewDatabase()
	fixIndex := make(map[string]*nd.Fix)

	key := func(ident string, kind int, region string) string {
		return fmt.Sprintf("%s/%d/%s", ident, kind, region)
	}

	rows, err := s.db.Query(`SELECT icao, region, name, latitude, longitude, elevation_ft FROM airports`)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a nd.Airport
		var elev sql.NullFloat64
		if err := rows.Scan(&a.ICAO, &a.Region, &a.Name, &a.Coord.Latitude, &a.Coord.Longitude, &elev); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		a.Ident = a.ICAO
		a.Kind = nd.KindAirport
		if elev.Valid {
			l := measure.Feet(elev.Float64)
			a.Elevation = &l
		}
		if err := s.loadRunways(&a); err != nil {
			return nil, err
		}
		db.InsertAirport(&a)
		fixIndex[key(a.Ident, int(a.Kind), a.Region)] = &a.Fix
	}

	fixRows, err := s.db.Query(`SELECT ident, kind, region, name, latitude, longitude, elevation_ft FROM fixes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixes: %w", err)
	}
	defer fixRows.Close()
	for fixRows.Next() {
		var f nd.Fix
		var kind int
		var elev sql.NullFloat64
		if err := fixRows.Scan(&f.Ident, &kind, &f.Region, &f.Name, &f.Coord.Latitude, &f.Coord.Longitude, &elev); err != nil {
			return nil, fmt.Errorf("failed to scan fix: %w", err)
		}
		f.Kind = nd.FixKind(kind)
		if elev.Valid {
			l := measure.Feet(elev.Float64)
			f.Elevation = &l
		}
		if f.Kind == nd.KindAirport {
			continue // airports were loaded with their runways
		}
		db.InsertFix(&f)
		fixIndex[key(f.Ident, kind, f.Region)] = &f
	}

	awyRows, err := s.db.Query(`SELECT name, min_level_kind, min_level_ft, max_level_kind, max_level_ft FROM airways`)
	if err != nil {
		return nil, fmt.Errorf("failed to query airways: %w", err)
	}
	defer awyRows.Close()
	for awyRows.Next() {
		var name string
		var minKind, minFt, maxKind, maxFt int
		if err := awyRows.Scan(&name, &minKind, &minFt, &maxKind, &maxFt); err != nil {
			return nil, fmt.Errorf("failed to scan airway: %w", err)
		}
		awy := &nd.Airway{
			Name:     name,
			MinLevel: measure.VerticalDistance{Kind: measure.VerticalKind(minKind), Feet: minFt},
			MaxLevel: measure.VerticalDistance{Kind: measure.VerticalKind(maxKind), Feet: maxFt},
		}
		memberRows, err := s.db.Query(`SELECT ident, kind, region FROM airway_fixes WHERE airway = ? ORDER BY seq`, name)
		if err != nil {
			return nil, fmt.Errorf("failed to query airway fixes: %w", err)
		}
		for memberRows.Next() {
			var ident, region string
			var kind int
			if err := memberRows.Scan(&ident, &kind, &region); err != nil {
				memberRows.Close()
				return nil, fmt.Errorf("failed to scan airway fix: %w", err)
			}
			if f, ok := fixIndex[key(ident, kind, region)]; ok {
				awy.Fixes = append(awy.Fixes, f)
			}
		}
		memberRows.Close()
		if len(awy.Fixes) > 1 {
			db.InsertAirway(awy)
		}
	}

	return db, nil
}

func (s *NavDataStorage) loadRunways(a *nd.Airport) error {
	rows, err := s.db.Query(
		`SELECT designator, true_bearing_deg, length_m, width_m, surface, rwycc, threshold_lat, threshold_lon
		 FROM runways WHERE icao = ?`, a.ICAO)
	if err != nil {
		return fmt.Errorf("failed to query runways for %s: %w", a.ICAO, err)
	}
	defer rows.Close()
	for rows.Next() {
		var r nd.Runway
		var bearingDeg, lengthM, widthM float64
		var surface, rwycc int
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&r.Designator, &bearingDeg, &lengthM, &widthM, &surface, &rwycc, &lat, &lon); err != nil {
			return fmt.Errorf("failed to scan runway: %w", err)
		}
		r.TrueBearing = measure.TrueDegrees(bearingDeg)
		r.Length = measure.Meters(lengthM)
		r.Width = measure.Meters(widthM)
		r.Surface = nd.Surface(surface)
		r.RWYCC = nd.RunwayConditionCode(rwycc)
		if lat.Valid && lon.Valid {
			r.Threshold = geo.Coordinate{Latitude: lat.Float64, Longitude: lon.Float64}
		}
		a.Runways = append(a.Runways, r)
	}
	return nil
}
