package aircraft

import (
	"github.com/yegors/fms/internal/measure"
)

// CGLimit is one vertex of the center-of-gravity envelope.
type CGLimit struct {
	Mass measure.Mass
	Arm  measure.Length
}

// CGEnvelope is the closed polygon in (mass, arm) space the center of
// gravity must stay inside. The first vertex closes the polygon; an explicit
// duplicate of it at the end is accepted.
type CGEnvelope struct {
	Limits []CGLimit
}

// OutOfEnvelopeError reports a mass/arm point outside the envelope.
type OutOfEnvelopeError struct {
	Mass measure.Mass
	Arm  measure.Length
}

func (e OutOfEnvelopeError) Error() string {
	return "aircraft: center of gravity outside envelope at " + e.Mass.String() + " / " + e.Arm.String()
}

// Contains reports whether the ramp and landing points of the mass & balance
// both lie inside the envelope.
func (e CGEnvelope) Contains(mb *MassAndBalance) bool {
	return e.contains(mb.MassOnRamp, mb.BalanceOnRamp) &&
		e.contains(mb.MassAfterLanding, mb.BalanceAfterLanding)
}

// contains runs a ray cast with the even-odd rule. The arm is the x axis and
// the mass the y axis; points on an edge count as inside.
func (e CGEnvelope) contains(mass measure.Mass, arm measure.Length) bool {
	x := arm.SI()
	y := mass.SI()

	n := len(e.Limits)
	if n == 0 {
		return false
	}

	inside := false
	for i := 0; i < n; i++ {
		a := e.Limits[i]
		b := e.Limits[(i+1)%n]
		x1, y1 := a.Arm.SI(), a.Mass.SI()
		x2, y2 := b.Arm.SI(), b.Mass.SI()

		if onSegment(x, y, x1, y1, x2, y2) {
			return true
		}

		if (y1 > y) != (y2 > y) {
			xi := x1 + (y-y1)/(y2-y1)*(x2-x1)
			if x < xi {
				inside = !inside
			}
		}
	}
	return inside
}

const edgeEps = 1e-9

// onSegment reports whether (x, y) lies on the segment (x1, y1)-(x2, y2).
func onSegment(x, y, x1, y1, x2, y2 float64) bool {
	cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
	if cross > edgeEps || cross < -edgeEps {
		return false
	}
	if x < min(x1, x2)-edgeEps || x > max(x1, x2)+edgeEps {
		return false
	}
	if y < min(y1, y2)-edgeEps || y > max(y1, y2)+edgeEps {
		return false
	}
	return true
}
