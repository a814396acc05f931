package funds

import (
	"math"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
	"github.com/harshyadavv2456/wealthpulse-backend/pkg/formulas"
)

// riskFreeRate is the fixed annual risk-free rate used by the Sharpe
// approximation (5%).
const riskFreeRate = 0.05

// horizon is one trailing-return lookback, measured in NAV entries.
type horizon struct {
	label string
	days  int
}

// Trailing-return horizons. The lookback is index-based (entry count), not
// calendar-based: it assumes one NAV per calendar day, and any upstream gap
// skews the horizon accordingly. Known approximation, kept for numeric
// compatibility.
var horizons = []horizon{
	{"1m", 30},
	{"3m", 90},
	{"6m", 180},
	{"1y", 365},
	{"3y", 1095},
	{"5y", 1825},
}

// Analytics is the derived bundle for a fund's NAV series. It is always
// recomputed together with the series it derives from, never cached on its
// own.
type Analytics struct {
	Returns     map[string]float64 `json:"returns"`
	RiskMetrics domain.RiskMetrics `json:"risk_metrics"`
}

// Analyze computes trailing returns and risk metrics from a cleaned,
// date-ascending NAV series. Percentages are rounded to 2 decimals here, at
// the output boundary.
func Analyze(series domain.NavSeries) *Analytics {
	values := series.Values()
	monthly := MonthlyReturns(series)

	return &Analytics{
		Returns: TrailingReturns(series),
		RiskMetrics: domain.RiskMetrics{
			Volatility:  formulas.Round2(Volatility(monthly)),
			MaxDrawdown: formulas.Round2(MaxDrawdown(values)),
			Sharpe:      formulas.Round2Ptr(Sharpe(monthly)),
		},
	}
}

// TrailingReturns computes the percentage return for each horizon whose
// entry count the series exceeds. A horizon with too few entries is simply
// absent from the result.
func TrailingReturns(series domain.NavSeries) map[string]float64 {
	out := make(map[string]float64, len(horizons))
	if len(series) == 0 {
		return out
	}

	latest := series[len(series)-1].NAV
	for _, h := range horizons {
		if len(series) <= h.days {
			continue
		}

		base := series[len(series)-1-h.days].NAV
		if base == 0 {
			continue
		}

		out[h.label] = formulas.Round2((latest - base) / base * 100)
	}

	return out
}

// MonthlyReturns resamples the series to the last observation of each
// calendar month and returns the fractional month-over-month changes.
func MonthlyReturns(series domain.NavSeries) []float64 {
	if len(series) == 0 {
		return []float64{}
	}

	var monthEnds []float64
	for i, e := range series {
		if i+1 < len(series) {
			next := series[i+1].Date
			if next.Year() == e.Date.Year() && next.Month() == e.Date.Month() {
				continue
			}
		}
		monthEnds = append(monthEnds, e.NAV)
	}

	return formulas.PctChange(monthEnds)
}

// Volatility is the sample standard deviation of monthly returns, as a
// percentage. Zero when fewer than two monthly observations exist.
func Volatility(monthlyReturns []float64) float64 {
	if len(monthlyReturns) < 2 {
		return 0
	}
	return formulas.StdDev(monthlyReturns) * 100
}

// MaxDrawdown is the most negative peak-to-trough decline over the series,
// as a negative percentage. Zero for a non-decreasing series.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	runningMax := formulas.CumMax(values)

	maxDrawdown := 0.0
	for i, v := range values {
		if runningMax[i] <= 0 {
			continue
		}
		drawdown := (v - runningMax[i]) / runningMax[i]
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown * 100
}

// Sharpe is the simplified annualized Sharpe ratio over monthly returns:
//
//	(mean*12 - riskFree) / (stdev*sqrt(12))
//
// An empty sample yields 0 (intentional placeholder, matching volatility's
// default); a zero standard deviation is a defined error case and yields
// nil rather than a fabricated number.
func Sharpe(monthlyReturns []float64) *float64 {
	if len(monthlyReturns) == 0 {
		zero := 0.0
		return &zero
	}

	stdev := formulas.StdDev(monthlyReturns)
	if stdev == 0 {
		return nil
	}

	annualReturn := formulas.Mean(monthlyReturns) * 12
	sharpe := (annualReturn - riskFreeRate) / (stdev * math.Sqrt(12))

	return &sharpe
}
