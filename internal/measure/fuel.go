package measure

import (
	"fmt"
	"time"
)

// FuelType identifies the fuel an aircraft burns. The densities are the ISA
// sea-level values used for volume/mass conversion.
type FuelType int

const (
	Diesel FuelType = iota
	JetA
	AvGas
)

// Density returns the ISA density of the fuel type.
func (t FuelType) Density() Density {
	switch t {
	case JetA:
		return KgPerLiter(0.80)
	case AvGas:
		return KgPerLiter(0.72)
	default:
		return KgPerLiter(0.838)
	}
}

func (t FuelType) String() string {
	switch t {
	case JetA:
		return "Jet-A"
	case AvGas:
		return "AvGas"
	default:
		return "Diesel"
	}
}

// Fuel is an amount of fuel of a given type, stored as mass so that volume
// follows from the type's density.
type Fuel struct {
	Type FuelType
	Mass Mass
}

// FuelFromVolume returns the fuel of the given type filling the volume.
func FuelFromVolume(v Volume, t FuelType) Fuel {
	return Fuel{Type: t, Mass: v.MulDensity(t.Density())}
}

// Volume returns the volume the fuel occupies at the type's ISA density.
func (f Fuel) Volume() Volume {
	return Liters(UnitLiters.fromSI(f.Mass.SI() / f.Type.Density().SI()))
}

// Liters returns the fuel volume in liters.
func (f Fuel) Liters() float64 { return f.Volume().Value() }

// Add returns f + r. Both operands must share a fuel type.
func (f Fuel) Add(r Fuel) Fuel {
	return Fuel{Type: f.Type, Mass: f.Mass.Add(r.Mass)}
}

// Sub returns f - r. Both operands must share a fuel type.
func (f Fuel) Sub(r Fuel) Fuel {
	return Fuel{Type: f.Type, Mass: f.Mass.Sub(r.Mass)}
}

// Mul scales the fuel amount by a factor.
func (f Fuel) Mul(v float64) Fuel {
	return Fuel{Type: f.Type, Mass: f.Mass.Mul(v)}
}

// IsNegative reports whether the amount is below zero.
func (f Fuel) IsNegative() bool { return f.Mass.SI() < 0 }

func (f Fuel) String() string {
	return fmt.Sprintf("%.0f L", f.Liters())
}

// FuelFlow is a fuel consumption rate per hour.
type FuelFlow struct {
	PerHour Fuel
}

// Over returns the fuel burned at this rate over the duration.
func (ff FuelFlow) Over(d time.Duration) Fuel {
	return ff.PerHour.Mul(d.Hours())
}
