package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/yegors/fms/internal/aircraft"
	"github.com/yegors/fms/internal/measure"
	"github.com/yegors/fms/internal/planning"
)

// AircraftProfile is the on-disk description of one airframe, including its
// cruise performance table.
type AircraftProfile struct {
	Registration string  `toml:"registration"` // Tail number, e.g. "D-EABC"
	FuelType     string  `toml:"fuel_type"`    // "diesel", "jet-a" or "avgas"
	EmptyMassKg  float64 `toml:"empty_mass_kg"`
	EmptyBalance float64 `toml:"empty_balance_m"`
	Notes        string  `toml:"notes"`

	Stations []StationProfile `toml:"station"`  // Loading stations in arm order
	Tanks    []TankProfile    `toml:"tank"`     // Fuel tanks in fueling order
	Envelope []EnvelopePoint  `toml:"envelope"` // CG envelope polygon vertices

	Performance []PerformanceRowProfile `toml:"performance"` // Cruise rows by ascending ceiling
}

// StationProfile is one loading station.
type StationProfile struct {
	ArmM        float64 `toml:"arm_m"`
	Description string  `toml:"description"`
}

// TankProfile is one fuel tank.
type TankProfile struct {
	CapacityLiters float64 `toml:"capacity_liters"`
	ArmM           float64 `toml:"arm_m"`
}

// EnvelopePoint is one CG envelope vertex.
type EnvelopePoint struct {
	MassKg float64 `toml:"mass_kg"`
	ArmM   float64 `toml:"arm_m"`
}

// PerformanceRowProfile is one cruise performance row.
type PerformanceRowProfile struct {
	CeilingFt          int     `toml:"ceiling_ft"`
	TASKnots           float64 `toml:"tas_knots"`
	FuelFlowLitersPerH float64 `toml:"fuel_flow_liters_per_hour"`
}

// LoadAircraftProfile reads an aircraft profile file.
func LoadAircraftProfile(path string) (*AircraftProfile, error) {
	var p AircraftProfile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("failed to decode aircraft profile %s: %w", path, err)
	}
	return &p, nil
}

// fuelType maps the profile's fuel type name.
func (p *AircraftProfile) fuelType() (measure.FuelType, error) {
	switch p.FuelType {
	case "diesel", "":
		return measure.Diesel, nil
	case "jet-a":
		return measure.JetA, nil
	case "avgas":
		return measure.AvGas, nil
	default:
		return measure.Diesel, fmt.Errorf("unknown fuel type %q", p.FuelType)
	}
}

// Aircraft converts the profile to the planning model.
func (p *AircraftProfile) Aircraft() (*aircraft.Aircraft, error) {
	ft, err := p.fuelType()
	if err != nil {
		return nil, err
	}

	a := aircraft.Aircraft{
		Registration: p.Registration,
		EmptyMass:    measure.Kilograms(p.EmptyMassKg),
		EmptyBalance: measure.Meters(p.EmptyBalance),
		FuelType:     ft,
		Notes:        p.Notes,
	}
	for _, s := range p.Stations {
		a.Stations = append(a.Stations, aircraft.Station{
			Arm:         measure.Meters(s.ArmM),
			Description: s.Description,
		})
	}
	for _, t := range p.Tanks {
		a.Tanks = append(a.Tanks, aircraft.FuelTank{
			Capacity: measure.Liters(t.CapacityLiters),
			Arm:      measure.Meters(t.ArmM),
		})
	}
	for _, v := range p.Envelope {
		a.CGEnvelope.Limits = append(a.CGEnvelope.Limits, aircraft.CGLimit{
			Mass: measure.Kilograms(v.MassKg),
			Arm:  measure.Meters(v.ArmM),
		})
	}

	if len(a.CGEnvelope.Limits) == 0 || a.EmptyMass.SI() <= 0 {
		return nil, fmt.Errorf("aircraft profile %s: incomplete mass & balance data", p.Registration)
	}
	return aircraft.New(a), nil
}

// PerformanceTable converts the profile's performance rows to the planning
// table.
func (p *AircraftProfile) PerformanceTable(fuelType measure.FuelType) (*planning.Performance, error) {
	if len(p.Performance) == 0 {
		return nil, fmt.Errorf("aircraft profile %s: no performance rows", p.Registration)
	}
	var rows []planning.PerformanceRow
	for _, r := range p.Performance {
		rows = append(rows, planning.PerformanceRow{
			Ceiling: measure.Altitude(r.CeilingFt),
			TAS:     measure.Knots(r.TASKnots),
			FF: measure.FuelFlow{
				PerHour: measure.FuelFromVolume(measure.Liters(r.FuelFlowLitersPerH), fuelType),
			},
		})
	}
	return planning.NewPerformance(rows), nil
}

// ReserveDuration returns the configured default reserve.
func (c *Config) ReserveDuration() time.Duration {
	return time.Duration(c.Planning.ReserveMinutes) * time.Minute
}
