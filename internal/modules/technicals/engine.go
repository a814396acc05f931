package technicals

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
	"github.com/harshyadavv2456/wealthpulse-backend/pkg/formulas"
)

// Indicator spans. A series of 200+ points gives full fidelity; shorter
// series yield nil for the indicators whose window they cannot fill.
const (
	smaShortWindow = 50
	smaLongWindow  = 200
	rsiPeriod      = 14
	macdFastSpan   = 12
	macdSlowSpan   = 26
	macdSignalSpan = 9
)

// Compute derives the full indicator bundle from a closing-price series.
// Values are rounded to 2 decimal places here, at the output boundary;
// everything internal retains full precision. Nil fields mean insufficient
// history, never zero.
func Compute(closes []float64) *domain.Technicals {
	macd, signal, histogram := MACD(closes)

	return &domain.Technicals{
		SMA50:     formulas.Round2Ptr(SMA(closes, smaShortWindow)),
		SMA200:    formulas.Round2Ptr(SMA(closes, smaLongWindow)),
		RSI14:     formulas.Round2Ptr(RSI(closes, rsiPeriod)),
		MACD:      formulas.Round2Ptr(macd),
		Signal:    formulas.Round2Ptr(signal),
		Histogram: formulas.Round2Ptr(histogram),
	}
}

// SMA returns the trailing simple moving average, or nil when the series is
// shorter than the window.
func SMA(closes []float64, window int) *float64 {
	if len(closes) < window {
		return nil
	}

	sma := talib.Sma(closes, window)
	if len(sma) == 0 {
		return nil
	}

	last := sma[len(sma)-1]
	if math.IsNaN(last) {
		return nil
	}

	return &last
}

// RSI computes the Relative Strength Index over simple rolling averages of
// gains and losses (losses taken as absolute values):
//
//	RSI = 100 - 100/(1 + avgGain/avgLoss)
//
// A zero average loss means RSI is 100 by convention. Returns nil when the
// series has fewer than period+1 points.
func RSI(closes []float64, period int) *float64 {
	if len(closes) < period+1 {
		return nil
	}

	deltas := formulas.Diff(closes)

	gains := make([]float64, len(deltas))
	losses := make([]float64, len(deltas))
	for i, d := range deltas {
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	avgGains := formulas.RollingMean(gains, period)
	avgLosses := formulas.RollingMean(losses, period)

	avgGain := avgGains[len(avgGains)-1]
	avgLoss := avgLosses[len(avgLosses)-1]
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return nil
	}

	// All-gain window: the division-by-zero case is defined as RSI 100.
	if avgLoss == 0 {
		rsi := 100.0
		return &rsi
	}

	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)

	return &rsi
}

// MACD computes MACD(12,26), its signal line (EMA 9 of MACD) and the
// histogram. All three EMAs use the recursive convention seeded by the
// first observation, so histogram == macd - signal holds exactly at full
// precision.
func MACD(closes []float64) (macd, signal, histogram *float64) {
	if len(closes) == 0 {
		return nil, nil, nil
	}

	emaFast := formulas.EMA(closes, macdFastSpan)
	emaSlow := formulas.EMA(closes, macdSlowSpan)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = emaFast[i] - emaSlow[i]
	}

	signalSeries := formulas.EMA(macdSeries, macdSignalSpan)

	m := macdSeries[len(macdSeries)-1]
	s := signalSeries[len(signalSeries)-1]
	h := m - s

	return &m, &s, &h
}
