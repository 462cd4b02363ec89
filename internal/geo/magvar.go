package geo

import (
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// MagVarModel yields the magnetic variation (declination) at a position for a
// fixed epoch date. The coefficient table is the embedded World Magnetic
// Model; the epoch is captured at construction and never refreshed.
type MagVarModel struct {
	epoch time.Time
}

// NewMagVarModel returns a model evaluating the WMM at the given epoch.
func NewMagVarModel(epoch time.Time) *MagVarModel {
	return &MagVarModel{epoch: epoch}
}

// Epoch returns the date the model evaluates the WMM at.
func (m *MagVarModel) Epoch() time.Time { return m.epoch }

// Variation returns the signed magnetic declination at the coordinate in
// radians, east positive. A position the model cannot evaluate yields zero.
func (m *MagVarModel) Variation(c Coordinate) float64 {
	loc := egm96.NewLocationGeodetic(c.Latitude, c.Longitude, 0)
	mag, err := wmm.CalculateWMMMagneticField(loc, m.epoch)
	if err != nil {
		return 0
	}
	return mag.D() * degToRad
}

const degToRad = 0.017453292519943295

// MagVarSource is the oracle the route solver consults for declination. The
// zero-variation source stands in where no model is configured.
type MagVarSource interface {
	Variation(c Coordinate) float64
}

// NoVariation is a MagVarSource that always reports zero declination.
type NoVariation struct{}

// Variation implements MagVarSource.
func (NoVariation) Variation(Coordinate) float64 { return 0 }
