package timeseries

import (
	"math"
	"time"
)

// Point is one day-over-day change.
// HasPrior is false for the first day of a series, whose change is undefined.
type Point struct {
	Date     time.Time
	Value    int64
	HasPrior bool
}

// Delta is a series of day-over-day changes, aligned with the Series it
// was computed from.
type Delta struct {
	Points []Point
	Name   string
}

// Len returns the number of points, including the leading undefined one.
func (d *Delta) Len() int {
	return len(d.Points)
}

// Floats returns the changes as floats with NaN where no prior value exists.
func (d *Delta) Floats() []float64 {
	out := make([]float64, len(d.Points))
	for i, p := range d.Points {
		if !p.HasPrior {
			out[i] = math.NaN()
			continue
		}
		out[i] = float64(p.Value)
	}
	return out
}

// Last returns the final point. It panics on an empty delta.
func (d *Delta) Last() Point {
	return d.Points[len(d.Points)-1]
}

// Max returns the index of the largest defined change, the first one on
// ties. ok is false when no point is defined.
func (d *Delta) Max() (idx int, ok bool) {
	idx = -1
	for i, p := range d.Points {
		if !p.HasPrior {
			continue
		}
		if idx < 0 || p.Value > d.Points[idx].Value {
			idx = i
		}
	}
	return idx, idx >= 0
}
