// Package measure provides the typed physical quantities used throughout the
// planning core. Each quantity is a small value type carrying a scalar and the
// unit it was entered in. Arithmetic between two values of the same quantity
// converts the right-hand operand into the left's unit first, so a value keeps
// the unit a user entered it with.
package measure

import (
	"fmt"
	"math"
	"time"
)

// Conversion factors to SI units.
const (
	metersPerFoot         = 0.3048
	metersPerNauticalMile = 1852.0
	metersPerInch         = 0.0254
	kilogramsPerPound     = 0.45359237
	mpsPerKnot            = 0.514444
	pascalsPerHPa         = 100.0
	pascalsPerInHg        = 3386.389
	cubicMetersPerLiter   = 0.001

	// Speed of sound at ISA sea level, used to anchor Mach conversions.
	soundSpeedMPS = 340.294
)

// LengthUnit enumerates the recognized length units.
type LengthUnit int

const (
	UnitMeters LengthUnit = iota // SI
	UnitFeet
	UnitNauticalMiles
	UnitInches
)

// Symbol returns the display symbol of the unit.
func (u LengthUnit) Symbol() string {
	switch u {
	case UnitFeet:
		return "ft"
	case UnitNauticalMiles:
		return "NM"
	case UnitInches:
		return "in"
	default:
		return "m"
	}
}

func (u LengthUnit) toSI(v float64) float64 {
	switch u {
	case UnitFeet:
		return v * metersPerFoot
	case UnitNauticalMiles:
		return v * metersPerNauticalMile
	case UnitInches:
		return v * metersPerInch
	default:
		return v
	}
}

func (u LengthUnit) fromSI(v float64) float64 {
	switch u {
	case UnitFeet:
		return v / metersPerFoot
	case UnitNauticalMiles:
		return v / metersPerNauticalMile
	case UnitInches:
		return v / metersPerInch
	default:
		return v
	}
}

// Length is a distance tagged with the unit it was entered in.
type Length struct {
	value float64
	unit  LengthUnit
}

// Meters returns a length in meters.
func Meters(v float64) Length { return Length{v, UnitMeters} }

// Feet returns a length in feet.
func Feet(v float64) Length { return Length{v, UnitFeet} }

// NauticalMiles returns a length in nautical miles.
func NauticalMiles(v float64) Length { return Length{v, UnitNauticalMiles} }

// Inches returns a length in inches.
func Inches(v float64) Length { return Length{v, UnitInches} }

// Value returns the scalar in the length's own unit.
func (l Length) Value() float64 { return l.value }

// Unit returns the unit the length was entered in.
func (l Length) Unit() LengthUnit { return l.unit }

// SI returns the length in meters.
func (l Length) SI() float64 { return l.unit.toSI(l.value) }

// Convert returns the same length expressed in another unit.
func (l Length) Convert(u LengthUnit) Length {
	return Length{u.fromSI(l.SI()), u}
}

// Add returns l + r in l's unit.
func (l Length) Add(r Length) Length {
	return Length{l.value + l.unit.fromSI(r.SI()), l.unit}
}

// Sub returns l - r in l's unit.
func (l Length) Sub(r Length) Length {
	return Length{l.value - l.unit.fromSI(r.SI()), l.unit}
}

// Mul scales the length by a factor.
func (l Length) Mul(f float64) Length { return Length{l.value * f, l.unit} }

// Ratio returns l / r as a dimensionless factor.
func (l Length) Ratio(r Length) float64 { return l.SI() / r.SI() }

// DivDuration returns the speed covering this length in d, in the SI unit.
func (l Length) DivDuration(d time.Duration) Speed {
	return MetersPerSecond(l.SI() / d.Seconds())
}

// Cmp compares two lengths: -1 if l < r, 0 if equal, 1 if l > r.
func (l Length) Cmp(r Length) int {
	a, b := l.SI(), r.SI()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String formats the length in NM when longer than one nautical mile,
// otherwise in whole meters.
func (l Length) String() string {
	if nm := UnitNauticalMiles.fromSI(l.SI()); nm > 1.0 {
		return fmt.Sprintf("%.1f NM", nm)
	}
	return fmt.Sprintf("%.0f m", l.SI())
}

// MassUnit enumerates the recognized mass units.
type MassUnit int

const (
	UnitKilograms MassUnit = iota // SI
	UnitPounds
)

// Symbol returns the display symbol of the unit.
func (u MassUnit) Symbol() string {
	if u == UnitPounds {
		return "lb"
	}
	return "kg"
}

func (u MassUnit) toSI(v float64) float64 {
	if u == UnitPounds {
		return v * kilogramsPerPound
	}
	return v
}

func (u MassUnit) fromSI(v float64) float64 {
	if u == UnitPounds {
		return v / kilogramsPerPound
	}
	return v
}

// Mass is a mass tagged with the unit it was entered in.
type Mass struct {
	value float64
	unit  MassUnit
}

// Kilograms returns a mass in kilograms.
func Kilograms(v float64) Mass { return Mass{v, UnitKilograms} }

// Pounds returns a mass in pounds.
func Pounds(v float64) Mass { return Mass{v, UnitPounds} }

// Value returns the scalar in the mass's own unit.
func (m Mass) Value() float64 { return m.value }

// Unit returns the unit the mass was entered in.
func (m Mass) Unit() MassUnit { return m.unit }

// SI returns the mass in kilograms.
func (m Mass) SI() float64 { return m.unit.toSI(m.value) }

// Convert returns the same mass expressed in another unit.
func (m Mass) Convert(u MassUnit) Mass { return Mass{u.fromSI(m.SI()), u} }

// Add returns m + r in m's unit.
func (m Mass) Add(r Mass) Mass { return Mass{m.value + m.unit.fromSI(r.SI()), m.unit} }

// Sub returns m - r in m's unit.
func (m Mass) Sub(r Mass) Mass { return Mass{m.value - m.unit.fromSI(r.SI()), m.unit} }

// Mul scales the mass by a factor.
func (m Mass) Mul(f float64) Mass { return Mass{m.value * f, m.unit} }

// Ratio returns m / r as a dimensionless factor.
func (m Mass) Ratio(r Mass) float64 { return m.SI() / r.SI() }

// Moment returns mass times arm in SI units (kg·m).
func (m Mass) Moment(arm Length) float64 { return m.SI() * arm.SI() }

func (m Mass) String() string {
	return fmt.Sprintf("%.0f %s", m.value, m.unit.Symbol())
}

// VolumeUnit enumerates the recognized volume units.
type VolumeUnit int

const (
	UnitCubicMeters VolumeUnit = iota // SI
	UnitLiters
)

// Symbol returns the display symbol of the unit.
func (u VolumeUnit) Symbol() string {
	if u == UnitLiters {
		return "L"
	}
	return "m³"
}

func (u VolumeUnit) toSI(v float64) float64 {
	if u == UnitLiters {
		return v * cubicMetersPerLiter
	}
	return v
}

func (u VolumeUnit) fromSI(v float64) float64 {
	if u == UnitLiters {
		return v / cubicMetersPerLiter
	}
	return v
}

// Volume is a volume tagged with the unit it was entered in.
type Volume struct {
	value float64
	unit  VolumeUnit
}

// CubicMeters returns a volume in cubic meters.
func CubicMeters(v float64) Volume { return Volume{v, UnitCubicMeters} }

// Liters returns a volume in liters.
func Liters(v float64) Volume { return Volume{v, UnitLiters} }

// Value returns the scalar in the volume's own unit.
func (v Volume) Value() float64 { return v.value }

// Unit returns the unit the volume was entered in.
func (v Volume) Unit() VolumeUnit { return v.unit }

// SI returns the volume in cubic meters.
func (v Volume) SI() float64 { return v.unit.toSI(v.value) }

// Convert returns the same volume expressed in another unit.
func (v Volume) Convert(u VolumeUnit) Volume { return Volume{u.fromSI(v.SI()), u} }

// Add returns v + r in v's unit.
func (v Volume) Add(r Volume) Volume { return Volume{v.value + v.unit.fromSI(r.SI()), v.unit} }

// Sub returns v - r in v's unit.
func (v Volume) Sub(r Volume) Volume { return Volume{v.value - v.unit.fromSI(r.SI()), v.unit} }

// MulDensity returns the mass of this volume at the given density.
func (v Volume) MulDensity(d Density) Mass {
	return Kilograms(v.SI() * d.SI())
}

func (v Volume) String() string {
	return fmt.Sprintf("%.0f %s", v.value, v.unit.Symbol())
}

// Density is a mass per volume, stored in kg/m³.
type Density struct {
	kgPerM3 float64
}

// KgPerLiter returns a density given in kg/L.
func KgPerLiter(v float64) Density { return Density{v / cubicMetersPerLiter} }

// KgPerCubicMeter returns a density given in kg/m³.
func KgPerCubicMeter(v float64) Density { return Density{v} }

// SI returns the density in kg/m³.
func (d Density) SI() float64 { return d.kgPerM3 }

// PressureUnit enumerates the recognized pressure units.
type PressureUnit int

const (
	UnitPascals PressureUnit = iota // SI
	UnitHectopascals
	UnitInchesOfMercury
)

// Symbol returns the display symbol of the unit.
func (u PressureUnit) Symbol() string {
	switch u {
	case UnitHectopascals:
		return "hPa"
	case UnitInchesOfMercury:
		return "inHg"
	default:
		return "Pa"
	}
}

func (u PressureUnit) toSI(v float64) float64 {
	switch u {
	case UnitHectopascals:
		return v * pascalsPerHPa
	case UnitInchesOfMercury:
		return v * pascalsPerInHg
	default:
		return v
	}
}

func (u PressureUnit) fromSI(v float64) float64 {
	switch u {
	case UnitHectopascals:
		return v / pascalsPerHPa
	case UnitInchesOfMercury:
		return v / pascalsPerInHg
	default:
		return v
	}
}

// Pressure is a pressure tagged with the unit it was entered in.
type Pressure struct {
	value float64
	unit  PressureUnit
}

// Pascals returns a pressure in Pa.
func Pascals(v float64) Pressure { return Pressure{v, UnitPascals} }

// Hectopascals returns a pressure in hPa.
func Hectopascals(v float64) Pressure { return Pressure{v, UnitHectopascals} }

// InchesOfMercury returns a pressure in inHg.
func InchesOfMercury(v float64) Pressure { return Pressure{v, UnitInchesOfMercury} }

// Value returns the scalar in the pressure's own unit.
func (p Pressure) Value() float64 { return p.value }

// Unit returns the unit the pressure was entered in.
func (p Pressure) Unit() PressureUnit { return p.unit }

// SI returns the pressure in pascals.
func (p Pressure) SI() float64 { return p.unit.toSI(p.value) }

// Convert returns the same pressure expressed in another unit.
func (p Pressure) Convert(u PressureUnit) Pressure { return Pressure{u.fromSI(p.SI()), u} }

func (p Pressure) String() string {
	return fmt.Sprintf("%.2f %s", p.value, p.unit.Symbol())
}

// Temperature is a temperature stored in kelvin.
type Temperature struct {
	kelvin float64
}

// Celsius returns a temperature given in °C.
func Celsius(v float64) Temperature { return Temperature{v + 273.15} }

// Kelvin returns a temperature given in K.
func Kelvin(v float64) Temperature { return Temperature{v} }

// C returns the temperature in °C.
func (t Temperature) C() float64 { return t.kelvin - 273.15 }

// K returns the temperature in K.
func (t Temperature) K() float64 { return t.kelvin }

func (t Temperature) String() string {
	return fmt.Sprintf("%.0f°C", t.C())
}

// FormatDuration renders a duration as HH:MM, the planning output format.
func FormatDuration(d time.Duration) string {
	mins := int(math.Round(d.Minutes()))
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// RoundDuration rounds a duration to the nearest second.
func RoundDuration(d time.Duration) time.Duration {
	return d.Round(time.Second)
}
