package formulas

import "math"

// RollingMean computes the trailing-window arithmetic mean of a series.
// Positions with fewer than `window` observations behind them are NaN,
// matching the rolling-window convention where the head of the output is
// undefined rather than partially averaged.
func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}

	return out
}

// EMA computes the exponential moving average with smoothing factor
// 2/(span+1), seeded by the first observation. This is the recursive
// (pandas adjust=false) convention:
//
//	ema[0] = values[0]
//	ema[i] = alpha*values[i] + (1-alpha)*ema[i-1]
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}

// PctChange converts a series of values into period-over-period fractional
// returns: out[i] = (values[i+1] - values[i]) / values[i].
// A zero denominator yields a zero return for that period.
func PctChange(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i-1] = (values[i] - values[i-1]) / values[i-1]
		}
	}

	return out
}

// Diff returns first differences: out[i] = values[i+1] - values[i].
func Diff(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}

	return out
}

// CumMax computes the running maximum of a series.
func CumMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	max := values[0]
	for i, v := range values {
		if v > max {
			max = v
		}
		out[i] = max
	}

	return out
}

// Round2 rounds a value to 2 decimal places. Applied at output boundaries
// only; internal computations retain full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2Ptr rounds a nullable value to 2 decimal places, passing nil through.
func Round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}
