package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// BaseAnnualRate is the yearly rate applied before adjustments.
const BaseAnnualRate = 0.01

// SeniorAge is the age above which the senior surcharge applies.
const SeniorAge = 60

var (
	baseRate        = decimal.NewFromFloat(BaseAnnualRate)
	femaleFactor    = decimal.RequireFromString("0.95")
	seniorFactor    = decimal.RequireFromString("1.2")
	daysPerYear     = decimal.NewFromInt(365)
	percentMultiple = decimal.NewFromInt(100)
)

const secondsPerDay = 24 * 60 * 60

// CalculatePricing prices a validated quote. It is pure.
//
// All rounding is half to even: the adjusted rate to 4 places, duration in
// years and premium to 2 places. The premium uses the unrounded rate.
func CalculatePricing(q ValidatedQuote) Pricing {
	adjusted := baseRate
	if q.sex == SexFemale {
		adjusted = adjusted.Mul(femaleFactor)
	}

	if q.AgeAtStart() > SeniorAge {
		adjusted = adjusted.Mul(seniorFactor)
	}

	days := durationDays(q)
	years := decimal.NewFromInt(int64(days)).Div(daysPerYear).RoundBank(2)
	premium := decimal.NewFromFloat(q.capital).Mul(adjusted).Mul(years).RoundBank(2)

	return Pricing{
		BaseRate:      baseRate.InexactFloat64(),
		AdjustedRate:  adjusted.RoundBank(4).InexactFloat64(),
		DurationDays:  days,
		DurationYears: years.InexactFloat64(),
		Premium:       premium.InexactFloat64(),
	}
}

// DescribePricing renders the customer-facing summary of p.
func DescribePricing(p Pricing) string {
	return "Seguro prestamista com taxa base anual de " + percent(p.BaseRate) +
		"% e ajustes por sexo/idade de " + percent(p.AdjustedRate) + "%."
}

// Finite reports whether every figure of p fits a float64. A huge capital
// over a long window overflows the premium to +Inf, which JSON cannot carry.
func (p Pricing) Finite() bool {
	for _, v := range []float64{p.AdjustedRate, p.DurationYears, p.Premium} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}

	return true
}

// durationDays counts whole calendar days. Both dates are UTC midnight, and
// time.Duration would saturate past roughly 292 years.
func durationDays(q ValidatedQuote) int {
	return int((q.coverageEnd.Unix() - q.coverageStart.Unix()) / secondsPerDay)
}

// percent formats a rate as a percentage with at most two decimals,
// always showing at least one ("1.0", "0.95").
func percent(rate float64) string {
	s := decimal.NewFromFloat(rate).Mul(percentMultiple).RoundBank(2).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
