package domain

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestValidateQuoteProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cpf is accepted only with exactly 11 digits after cleaning", prop.ForAll(
		func(digits string, sep string) bool {
			var b strings.Builder
			for i, r := range digits {
				if i > 0 && i%3 == 0 {
					b.WriteString(sep)
				}
				b.WriteRune(r)
			}

			req := validRequest()
			req.CPF = Set(b.String())

			_, err := ValidateQuote(req)
			rejected := hasFieldError(err, FieldCPF)

			return rejected == (len(digits) != CPFLength)
		},
		gen.NumString(),
		gen.OneConstOf("", ".", "-", " "),
	))

	properties.Property("any missing field yields exactly one general error", prop.ForAll(
		func(mask []bool) bool {
			req := validRequest()
			fields := []*Field{
				&req.Name, &req.CPF, &req.Sex, &req.BirthDate,
				&req.Capital, &req.CoverageStart, &req.CoverageEnd,
			}

			anyMissing := false
			for i, keep := range mask {
				if !keep {
					*fields[i] = Field{}
					anyMissing = true
				}
			}

			_, err := ValidateQuote(req)
			errs := FieldErrors(err)

			if !anyMissing {
				return err == nil
			}

			return len(errs) == 1 && errs[0].Field == FieldGeneral
		},
		gen.SliceOfN(7, gen.Bool()),
	))

	properties.Property("coverage end must be strictly after start", prop.ForAll(
		func(offset int) bool {
			start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
			req := validRequest()
			req.CoverageStart = Set(start.Format(DateLayout))
			req.CoverageEnd = Set(start.AddDate(0, 0, offset).Format(DateLayout))

			_, err := ValidateQuote(req)

			return hasFieldError(err, FieldCoverageEnd) == (offset <= 0)
		},
		gen.IntRange(-400, 400),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAgeAtProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("age on the n-th birthday is n", prop.ForAll(
		func(year, month, day, years int) bool {
			birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

			return AgeAt(birth, birth.AddDate(years, 0, 0)) == years
		},
		gen.IntRange(1900, 2010),
		gen.IntRange(1, 12),
		gen.IntRange(1, 28),
		gen.IntRange(0, 100),
	))

	properties.Property("age the day before the n-th birthday is n-1", prop.ForAll(
		func(year, month, day, years int) bool {
			birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

			return AgeAt(birth, birth.AddDate(years, 0, -1)) == years-1
		},
		gen.IntRange(1900, 2010),
		gen.IntRange(1, 12),
		gen.IntRange(1, 28),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCalculatePricingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	quote := func(capital float64, days int, female bool, birthYear int) QuoteRequest {
		sex := "M"
		if female {
			sex = "F"
		}

		req := validRequest()
		req.Capital = Set(capital)
		req.Sex = Set(sex)
		req.BirthDate = Set(fmt.Sprintf("%04d-06-15", birthYear))
		req.CoverageEnd = Set(start.AddDate(0, 0, days).Format(DateLayout))

		return req
	}

	properties.Property("pricing is deterministic and bounded", prop.ForAll(
		func(capital float64, days int, female bool, birthYear int) bool {
			q, err := ValidateQuote(quote(capital, days, female, birthYear))
			if err != nil {
				return false
			}

			first, second := CalculatePricing(q), CalculatePricing(q)
			const maxRate = 0.012
			bound := capital * maxRate * first.DurationYears

			return first == second &&
				first.DurationDays == days &&
				first.AdjustedRate > 0 && first.AdjustedRate <= maxRate &&
				first.Premium >= 0 &&
				first.Premium <= bound+bound*1e-12+0.01
		},
		gen.OneGenOf(gen.Float64Range(1, 1_000_000), gen.Float64Range(1_000_000, 1e300)),
		gen.IntRange(1, 200_000),
		gen.Bool(),
		gen.IntRange(1946, 2006),
	))

	properties.Property("a validated quote never prices to infinity", prop.ForAll(
		func(capital float64, days int, female bool) bool {
			q, err := ValidateQuote(quote(capital, days, female, 1950))
			if err != nil {
				return FieldErrors(err)[0] == FieldError{FieldCapital, MsgCapitalTooLarge}
			}

			return CalculatePricing(q).Finite()
		},
		gen.Float64Range(1e300, math.MaxFloat64),
		gen.IntRange(1, 200_000),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func hasFieldError(err error, field string) bool {
	for _, fe := range FieldErrors(err) {
		if fe.Field == field {
			return true
		}
	}

	return false
}
