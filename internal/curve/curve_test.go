package curve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadAxes(t *testing.T) {
	_, err := New([]float64{0, 1}, []float64{0})
	assert.Error(t, err)

	_, err = New([]float64{0}, []float64{0})
	assert.Error(t, err)

	c, err := New([]float64{0, 1}, []float64{0, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestInterp(t *testing.T) {
	c := Curve{X: []float64{0, 10, 20}, Y: []float64{0, 1.0, 2.2}}

	assert.Equal(t, 0.0, c.Interp(0))
	assert.Equal(t, 1.0, c.Interp(10))
	assert.InDelta(t, 0.5, c.Interp(5), 1e-12)
	assert.InDelta(t, 1.6, c.Interp(15), 1e-12)

	// Clamped at both ends, never extrapolated.
	assert.Equal(t, 0.0, c.Interp(-5))
	assert.Equal(t, 2.2, c.Interp(100))
}

func TestNearestKeepsEarlierOnTie(t *testing.T) {
	c := Curve{X: []float64{0, 10, 20}, Y: []float64{1, 2, 3}}
	assert.Equal(t, 0, c.Nearest(5))
	assert.Equal(t, 1, c.Nearest(11))
	assert.Equal(t, 2, c.Nearest(500))
}

func TestResample(t *testing.T) {
	c := Curve{X: []float64{0, 10}, Y: []float64{0, 10}}
	r := c.Resample(0, 10, 5)
	require.Equal(t, 5, r.Len())
	assert.Equal(t, []float64{0, 2.5, 5, 7.5, 10}, r.X)
	assert.Equal(t, []float64{0, 2.5, 5, 7.5, 10}, r.Y)

	one := c.Resample(4, 8, 1)
	require.Equal(t, 1, one.Len())
	assert.Equal(t, 4.0, one.X[0])
	assert.Equal(t, 4.0, one.Y[0])
}

func TestCumTrapz(t *testing.T) {
	// Constant y=2 over [0,3]: integral is 2x.
	c := Curve{X: []float64{0, 1, 3}, Y: []float64{2, 2, 2}}
	q := c.CumTrapz()
	assert.Equal(t, []float64{0, 1, 3}, q.X)
	assert.InDelta(t, 0, q.Y[0], 1e-12)
	assert.InDelta(t, 2, q.Y[1], 1e-12)
	assert.InDelta(t, 6, q.Y[2], 1e-12)
	assert.True(t, q.MonotonicY())
}

func TestWeightedCumTrapz(t *testing.T) {
	// Constant C(v)=1: integral of v dv is v^2/2.
	c := Curve{X: []float64{0, 1, 2}, Y: []float64{1, 1, 1}}
	e := c.WeightedCumTrapz()
	assert.InDelta(t, 0, e.Y[0], 1e-12)
	assert.InDelta(t, 0.5, e.Y[1], 1e-12)
	assert.InDelta(t, 2.0, e.Y[2], 1e-12)
}

func TestScaleAxes(t *testing.T) {
	c := Curve{X: []float64{1, 2}, Y: []float64{3, 4}}
	sx := c.ScaleX(2)
	sy := c.ScaleY(2)
	assert.Equal(t, []float64{2, 4}, sx.X)
	assert.Equal(t, []float64{3, 4}, sx.Y)
	assert.Equal(t, []float64{1, 2}, sy.X)
	assert.Equal(t, []float64{6, 8}, sy.Y)
	// Originals untouched.
	assert.Equal(t, []float64{1, 2}, c.X)
	assert.Equal(t, []float64{3, 4}, c.Y)
}

func TestMergePrefersFineCurve(t *testing.T) {
	coarse := Curve{X: []float64{0, 100, 200, 400}, Y: []float64{10, 20, 30, 40}}
	fine := Curve{X: []float64{0, 50, 100}, Y: []float64{11, 15, 21}}

	m := Merge(coarse, fine)
	require.Equal(t, 5, m.Len())
	assert.Equal(t, []float64{0, 50, 100, 200, 400}, m.X)
	// Inside the fine range the fine samples win.
	assert.Equal(t, []float64{11, 15, 21, 30, 40}, m.Y)
}

func TestMergeRoundTrip(t *testing.T) {
	c := Curve{X: []float64{0, 1, 2, 3}, Y: []float64{0, 10, 20, 30}}

	// Merging a curve with its own restriction to a prefix of the x range
	// gives the curve back unchanged.
	m := Merge(c, c.Restrict(0, 2))
	assert.Equal(t, c.X, m.X)
	assert.Equal(t, c.Y, m.Y)

	// This only holds for restrictions anchored at the curve start: coarse
	// samples below the fine range are dropped, so an interior sub-range
	// loses the samples in front of it.
	m = Merge(c, c.Restrict(1, 2))
	assert.Equal(t, []float64{1, 2, 3}, m.X)
	assert.Equal(t, []float64{10, 20, 30}, m.Y)
}

func TestMergeWithEmptyFine(t *testing.T) {
	coarse := Curve{X: []float64{0, 1}, Y: []float64{5, 6}}
	m := Merge(coarse, Curve{})
	assert.Equal(t, coarse.X, m.X)
	assert.Equal(t, coarse.Y, m.Y)
}

func TestRestrict(t *testing.T) {
	c := Curve{X: []float64{0, 1, 2, 3}, Y: []float64{0, 10, 20, 30}}
	r := c.Restrict(1, 2)
	assert.Equal(t, []float64{1, 2}, r.X)
	assert.Equal(t, []float64{10, 20}, r.Y)
}

func TestNegateAndAppend(t *testing.T) {
	c := Curve{X: []float64{0, 1, 2}, Y: []float64{0, 5, 9}}
	m := c.NegateAndAppend()
	// The origin sample is not duplicated.
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, m.X)
	assert.Equal(t, []float64{-9, -5, 0, 5, 9}, m.Y)
}

func TestJSONRoundTrip(t *testing.T) {
	c := Curve{X: []float64{0, 1.5}, Y: []float64{2, 3}}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[[0,1.5],[2,3]]`, string(data))

	var back Curve
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c, back)
}

func TestJSONZeroCurveIsNull(t *testing.T) {
	data, err := json.Marshal(Curve{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var c Curve
	require.NoError(t, json.Unmarshal([]byte("null"), &c))
	assert.True(t, c.IsZero())
}

func TestJSONRejectsWrongRowCount(t *testing.T) {
	var c Curve
	err := json.Unmarshal([]byte(`[[1,2]]`), &c)
	assert.Error(t, err)
}
