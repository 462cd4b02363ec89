package measure

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Wind is a wind vector given as the direction it blows from and its speed.
type Wind struct {
	Direction Angle
	Speed     Speed
}

// ParseWind parses a METAR-style wind group, e.g. `29020KT` for 20 kt from
// 290° or `29010MPS` for 10 m/s from 290°.
func ParseWind(s string) (Wind, error) {
	if len(s) < 7 {
		return Wind{}, fmt.Errorf("wind %q: too short", s)
	}
	dir := s[0:3]
	spd := s[3:5]
	unit := s[5:]
	if !allDigits(dir) || !allDigits(spd) {
		return Wind{}, fmt.Errorf("wind %q: want DDDFF followed by unit", s)
	}
	d, _ := strconv.Atoi(dir)
	v, _ := strconv.Atoi(spd)
	switch strings.ToUpper(unit) {
	case "KT":
		return Wind{Direction: TrueDegrees(float64(d)), Speed: Knots(float64(v))}, nil
	case "MPS":
		return Wind{Direction: TrueDegrees(float64(d)), Speed: MetersPerSecond(float64(v))}, nil
	default:
		return Wind{}, fmt.Errorf("wind %q: unknown unit %q", s, unit)
	}
}

// Headwind returns the wind component blowing against the given course.
// Positive values are headwind, negative tailwind.
func (w Wind) Headwind(course Angle) Speed {
	return w.Speed.Mul(math.Cos(w.Direction.Diff(course)))
}

// Crosswind returns the wind component across the given course.
func (w Wind) Crosswind(course Angle) Speed {
	return w.Speed.Mul(math.Sin(w.Direction.Diff(course)))
}

func (w Wind) String() string {
	return fmt.Sprintf("%03.0f/%.0f kt", w.Direction.Degrees(), w.Speed.Knots())
}
