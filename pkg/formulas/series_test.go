package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := RollingMean(values, 3)

	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestRollingMeanWindowLargerThanSeries(t *testing.T) {
	out := RollingMean([]float64{1, 2}, 5)

	require.Len(t, out, 2)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMASeedIsFirstObservation(t *testing.T) {
	values := []float64{10, 11, 12, 13}
	out := EMA(values, 12)

	require.Len(t, out, 4)
	assert.Equal(t, 10.0, out[0])

	// Recompute by hand with alpha = 2/13
	alpha := 2.0 / 13.0
	expected := 10.0
	for i := 1; i < len(values); i++ {
		expected = alpha*values[i] + (1-alpha)*expected
		assert.InDelta(t, expected, out[i], 1e-12)
	}
}

func TestEMAConstantSeries(t *testing.T) {
	out := EMA([]float64{5, 5, 5, 5, 5}, 3)
	for _, v := range out {
		assert.InDelta(t, 5.0, v, 1e-12)
	}
}

func TestPctChange(t *testing.T) {
	out := PctChange([]float64{100, 110, 99})

	require.Len(t, out, 2)
	assert.InDelta(t, 0.10, out[0], 1e-9)
	assert.InDelta(t, -0.10, out[1], 1e-9)
}

func TestPctChangeShortSeries(t *testing.T) {
	assert.Empty(t, PctChange([]float64{42}))
	assert.Empty(t, PctChange(nil))
}

func TestCumMax(t *testing.T) {
	out := CumMax([]float64{3, 1, 4, 1, 5, 2})
	assert.Equal(t, []float64{3, 3, 4, 4, 5, 5}, out)
}

func TestDiff(t *testing.T) {
	out := Diff([]float64{1, 4, 2})
	assert.Equal(t, []float64{3, -2}, out)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.14, Round2(3.14159))
	assert.Equal(t, -2.57, Round2(-2.567))
	assert.Equal(t, 0.0, Round2(0))
}

func TestStdDevTooFewSamples(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{1.5}))
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestMeanEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
}
