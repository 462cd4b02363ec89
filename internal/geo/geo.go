// Package geo computes great-circle bearing and distance on the spherical
// earth approximation and provides magnetic variation through the World
// Magnetic Model.
package geo

import (
	"fmt"
	"math"

	"github.com/yegors/fms/internal/measure"
)

// EarthRadiusNM is the mean earth radius used by the spherical approximation.
const EarthRadiusNM = 3440.065

// Coordinate is a WGS-84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Distance returns the great-circle distance between two coordinates using
// the haversine formula.
func Distance(a, b Coordinate) measure.Length {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return measure.NauticalMiles(EarthRadiusNM * c)
}

// Bearing returns the initial true-north bearing from a to b.
func Bearing(a, b Coordinate) measure.Angle {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return measure.TrueRadians(math.Atan2(y, x))
}

// DMSToDecimal converts degrees, minutes, seconds and centiseconds to decimal
// degrees.
func DMSToDecimal(deg, min, sec, centisec int) float64 {
	return float64(deg) + float64(min)/60 + (float64(sec)+float64(centisec)/100)/3600
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}
