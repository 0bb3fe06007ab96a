// Package curve holds the sampled-curve numerics shared by the record model
// and the exporters: linear interpolation, cumulative trapezoid integration,
// curve merging and axis manipulation.
package curve

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Curve is a sampled x/y relationship. The JSON representation is the
// two-row matrix [[x...],[y...]] used by the datasheet exchange files.
type Curve struct {
	X []float64
	Y []float64
}

// New builds a curve from two axes of equal length.
func New(x, y []float64) (Curve, error) {
	c := Curve{X: x, Y: y}
	if err := c.Validate(); err != nil {
		return Curve{}, err
	}
	return c, nil
}

// Validate checks the axis invariants: equal lengths and at least two samples.
func (c Curve) Validate() error {
	if len(c.X) != len(c.Y) {
		return fmt.Errorf("curve axes have mismatched lengths %d and %d", len(c.X), len(c.Y))
	}
	if len(c.X) < 2 {
		return fmt.Errorf("curve needs at least 2 samples, got %d", len(c.X))
	}
	return nil
}

// Len returns the number of samples.
func (c Curve) Len() int { return len(c.X) }

// IsZero reports whether the curve carries no samples at all.
func (c Curve) IsZero() bool { return len(c.X) == 0 && len(c.Y) == 0 }

// Clone returns a deep copy.
func (c Curve) Clone() Curve {
	out := Curve{X: make([]float64, len(c.X)), Y: make([]float64, len(c.Y))}
	copy(out.X, c.X)
	copy(out.Y, c.Y)
	return out
}

// MarshalJSON encodes the curve as [[x...],[y...]].
func (c Curve) MarshalJSON() ([]byte, error) {
	if c.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal([2][]float64{c.X, c.Y})
}

// UnmarshalJSON accepts the two-row matrix form. null yields a zero curve.
func (c *Curve) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Curve{}
		return nil
	}
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != 2 {
		return fmt.Errorf("curve matrix needs 2 rows, got %d", len(rows))
	}
	c.X = rows[0]
	c.Y = rows[1]
	return nil
}

// Interp evaluates the curve at x by piecewise linear interpolation. Outside
// the sampled range the edge value is returned (clamped, never extrapolated).
// The x axis must be sorted ascending.
func (c Curve) Interp(x float64) float64 {
	n := len(c.X)
	if n == 0 {
		return math.NaN()
	}
	if x <= c.X[0] {
		return c.Y[0]
	}
	if x >= c.X[n-1] {
		return c.Y[n-1]
	}
	i := sort.SearchFloat64s(c.X, x)
	x0, x1 := c.X[i-1], c.X[i]
	y0, y1 := c.Y[i-1], c.Y[i]
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Nearest returns the index of the sample whose x value is closest to x.
// Ties keep the earlier sample.
func (c Curve) Nearest(x float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, xi := range c.X {
		if d := math.Abs(xi - x); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Resample evaluates the curve on n evenly spaced points over [x0, x1].
func (c Curve) Resample(x0, x1 float64, n int) Curve {
	out := Curve{X: make([]float64, n), Y: make([]float64, n)}
	if n == 1 {
		out.X[0] = x0
		out.Y[0] = c.Interp(x0)
		return out
	}
	step := (x1 - x0) / float64(n-1)
	for i := 0; i < n; i++ {
		x := x0 + float64(i)*step
		out.X[i] = x
		out.Y[i] = c.Interp(x)
	}
	return out
}

// CumTrapz integrates the curve cumulatively with the trapezoidal rule,
// starting at zero on the first sample. The result shares the x axis.
func (c Curve) CumTrapz() Curve {
	out := Curve{X: append([]float64(nil), c.X...), Y: make([]float64, len(c.X))}
	for i := 1; i < len(c.X); i++ {
		dx := c.X[i] - c.X[i-1]
		out.Y[i] = out.Y[i-1] + 0.5*(c.Y[i]+c.Y[i-1])*dx
	}
	return out
}

// WeightedCumTrapz integrates x*y(x) cumulatively, used for the stored-energy
// curve E(v) = integral of v*C(v) dv.
func (c Curve) WeightedCumTrapz() Curve {
	weighted := Curve{X: c.X, Y: make([]float64, len(c.X))}
	for i, x := range c.X {
		weighted.Y[i] = x * c.Y[i]
	}
	return weighted.CumTrapz()
}

// ScaleX multiplies the x axis by f, returning a new curve.
func (c Curve) ScaleX(f float64) Curve {
	out := c.Clone()
	for i := range out.X {
		out.X[i] *= f
	}
	return out
}

// ScaleY multiplies the y axis by f, returning a new curve.
func (c Curve) ScaleY(f float64) Curve {
	out := c.Clone()
	for i := range out.Y {
		out.Y[i] *= f
	}
	return out
}

// Merge combines a full-range curve with a fine-grained curve covering a
// sub-range. Samples of the fine curve win inside its range; the coarse
// curve contributes only samples beyond the fine curve's maximum x. The
// result is sorted by x with duplicate x values resolved toward the fine
// curve. Datasheets often give a coarse capacitance curve plus a zoomed
// detail curve, which is the use case here.
func Merge(coarse, fine Curve) Curve {
	if fine.Len() == 0 {
		return coarse.Clone()
	}
	fineMax := fine.X[0]
	for _, x := range fine.X {
		if x > fineMax {
			fineMax = x
		}
	}
	merged := fine.Clone()
	for i, x := range coarse.X {
		if x > fineMax {
			merged.X = append(merged.X, x)
			merged.Y = append(merged.Y, coarse.Y[i])
		}
	}
	sort.Sort(byX{&merged})
	return merged
}

// Restrict returns the sub-curve with x in [x0, x1] inclusive.
func (c Curve) Restrict(x0, x1 float64) Curve {
	var out Curve
	for i, x := range c.X {
		if x >= x0 && x <= x1 {
			out.X = append(out.X, x)
			out.Y = append(out.Y, c.Y[i])
		}
	}
	return out
}

// NegateAndAppend mirrors the curve into the third quadrant, dropping
// duplicated zero samples. Used to give MOSFET forward characteristics a
// reverse-conduction branch for the circuit-simulator exporters.
func (c Curve) NegateAndAppend() Curve {
	var out Curve
	for i := len(c.X) - 1; i >= 0; i-- {
		if c.X[i] == 0 && c.Y[i] == 0 {
			continue
		}
		out.X = append(out.X, -c.X[i])
		out.Y = append(out.Y, -c.Y[i])
	}
	out.X = append(out.X, c.X...)
	out.Y = append(out.Y, c.Y...)
	return out
}

// MonotonicY reports whether the y axis never decreases.
func (c Curve) MonotonicY() bool {
	for i := 1; i < len(c.Y); i++ {
		if c.Y[i] < c.Y[i-1] {
			return false
		}
	}
	return true
}

type byX struct{ c *Curve }

func (s byX) Len() int           { return len(s.c.X) }
func (s byX) Less(i, j int) bool { return s.c.X[i] < s.c.X[j] }
func (s byX) Swap(i, j int) {
	s.c.X[i], s.c.X[j] = s.c.X[j], s.c.X[i]
	s.c.Y[i], s.c.Y[j] = s.c.Y[j], s.c.Y[i]
}
