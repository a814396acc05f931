package projections

import (
	"fmt"
	"math"
	"time"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
	"github.com/harshyadavv2456/wealthpulse-backend/pkg/formulas"
)

// SIPResult is the projected outcome of a systematic investment plan.
type SIPResult struct {
	MonthlyAmount float64 `json:"monthly_amount"`
	Years         int     `json:"years"`
	AnnualRate    float64 `json:"annual_rate"`
	TotalInvested float64 `json:"total_invested"`
	FutureValue   float64 `json:"future_value"`
	Gain          float64 `json:"gain"`
}

// SWPResult is the amortization outcome of a systematic withdrawal plan.
type SWPResult struct {
	Principal         float64 `json:"principal"`
	Years             int     `json:"years"`
	AnnualRate        float64 `json:"annual_rate"`
	MonthlyWithdrawal float64 `json:"monthly_withdrawal"`
	TotalWithdrawn    float64 `json:"total_withdrawn"`
	EndingBalance     float64 `json:"ending_balance"`
}

// HistoricalSIPResult is the outcome of replaying a monthly SIP against an
// actual NAV history.
type HistoricalSIPResult struct {
	MonthlyAmount  float64 `json:"monthly_amount"`
	MonthsInvested int     `json:"months_invested"`
	TotalInvested  float64 `json:"total_invested"`
	Units          float64 `json:"units"`
	CurrentValue   float64 `json:"current_value"`
	Gain           float64 `json:"gain"`
	GainPercent    float64 `json:"gain_percent"`
}

// SIPFutureValue projects a monthly contribution compounding at a nominal
// annual rate:
//
//	FV = A * (((1+m)^n - 1) / m) * (1+m),  m = rate/100/12, n = years*12
//
// A zero rate is the degenerate case FV = A*n.
func SIPFutureValue(amount float64, years int, annualRate float64) (*SIPResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: monthly amount must be positive", domain.ErrInvalidParameter)
	}
	if years <= 0 {
		return nil, fmt.Errorf("%w: years must be positive", domain.ErrInvalidParameter)
	}
	if annualRate < 0 {
		return nil, fmt.Errorf("%w: rate must not be negative", domain.ErrInvalidParameter)
	}

	months := years * 12
	monthlyRate := annualRate / 100 / 12
	invested := amount * float64(months)

	var futureValue float64
	if monthlyRate == 0 {
		futureValue = invested
	} else {
		factor := math.Pow(1+monthlyRate, float64(months))
		futureValue = amount * ((factor - 1) / monthlyRate) * (1 + monthlyRate)
	}

	return &SIPResult{
		MonthlyAmount: amount,
		Years:         years,
		AnnualRate:    annualRate,
		TotalInvested: formulas.Round2(invested),
		FutureValue:   formulas.Round2(futureValue),
		Gain:          formulas.Round2(futureValue - invested),
	}, nil
}

// SWPPlan computes the level monthly withdrawal via the annuity formula
//
//	W = P * m*(1+m)^n / ((1+m)^n - 1),  m = rate/100/12, n = years*12
//
// and then walks the balance month by month as
//
//	balance = balance*(1+rate/100)^(1/12) - W
//
// The withdrawal uses the compounded monthly rate while the balance walk
// compounds the annual rate monthly. The asymmetry changes the ending
// balance and is kept for numeric compatibility with the reference
// behavior.
func SWPPlan(principal float64, years int, annualRate float64) (*SWPResult, error) {
	if principal <= 0 {
		return nil, fmt.Errorf("%w: principal must be positive", domain.ErrInvalidParameter)
	}
	if years <= 0 {
		return nil, fmt.Errorf("%w: years must be positive", domain.ErrInvalidParameter)
	}
	if annualRate <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive", domain.ErrInvalidParameter)
	}

	months := years * 12
	monthlyRate := annualRate / 100 / 12

	factor := math.Pow(1+monthlyRate, float64(months))
	withdrawal := principal * monthlyRate * factor / (factor - 1)

	monthlyGrowth := math.Pow(1+annualRate/100, 1.0/12.0)
	balance := principal
	for i := 0; i < months; i++ {
		balance = balance*monthlyGrowth - withdrawal
	}

	return &SWPResult{
		Principal:         principal,
		Years:             years,
		AnnualRate:        annualRate,
		MonthlyWithdrawal: formulas.Round2(withdrawal),
		TotalWithdrawn:    formulas.Round2(withdrawal * float64(months)),
		EndingBalance:     formulas.Round2(balance),
	}, nil
}

// HistoricalSIP replays a monthly contribution against a NAV history: one
// buy per calendar month at the first NAV observed on or after the month's
// first day, skipping months with no such observation, valued at the
// series' last NAV.
func HistoricalSIP(series domain.NavSeries, amount float64, years int) (*HistoricalSIPResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: monthly amount must be positive", domain.ErrInvalidParameter)
	}
	if years <= 0 {
		return nil, fmt.Errorf("%w: years must be positive", domain.ErrInvalidParameter)
	}

	latest, ok := series.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: empty NAV series", domain.ErrInsufficientHistory)
	}

	end := latest.Date
	start := end.AddDate(-years, 0, 0)

	totalUnits := 0.0
	monthsInvested := 0
	for d := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !d.After(end); d = d.AddDate(0, 1, 0) {
		nav, ok := navWithinMonth(series, d)
		if !ok {
			continue
		}

		totalUnits += amount / nav
		monthsInvested++
	}

	if monthsInvested == 0 {
		return nil, fmt.Errorf("%w: no NAV observations within the horizon", domain.ErrInsufficientHistory)
	}

	invested := amount * float64(monthsInvested)
	currentValue := totalUnits * latest.NAV
	gain := currentValue - invested

	return &HistoricalSIPResult{
		MonthlyAmount:  amount,
		MonthsInvested: monthsInvested,
		TotalInvested:  formulas.Round2(invested),
		Units:          totalUnits,
		CurrentValue:   formulas.Round2(currentValue),
		Gain:           formulas.Round2(gain),
		GainPercent:    formulas.Round2(gain / invested * 100),
	}, nil
}

// navWithinMonth returns the first NAV observed in the calendar month
// starting at monthStart. The series is date-ascending.
func navWithinMonth(series domain.NavSeries, monthStart time.Time) (float64, bool) {
	nextMonth := monthStart.AddDate(0, 1, 0)
	for _, e := range series {
		if e.Date.Before(monthStart) {
			continue
		}
		if !e.Date.Before(nextMonth) {
			return 0, false
		}
		return e.NAV, true
	}
	return 0, false
}
