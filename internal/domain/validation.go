package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field names as exposed to API clients.
const (
	FieldGeneral       = "geral"
	FieldName          = "nome"
	FieldCPF           = "cpf"
	FieldSex           = "sexo"
	FieldBirthDate     = "dtnasc"
	FieldCapital       = "capital"
	FieldCoverageStart = "inicio_vig"
	FieldCoverageEnd   = "fim_vig"
)

// Age bounds at the start of coverage, inclusive.
const (
	MinAge = 18
	MaxAge = 80
)

// CPFLength is the number of digits in a taxpayer id.
const CPFLength = 11

// Validation messages returned to clients.
const (
	MsgMissingFields   = "Faltam: "
	MsgInvalidName     = "Nome inválido"
	MsgInvalidCPF      = "CPF deve ter 11 dígitos numéricos"
	MsgInvalidSex      = "Sexo deve ser 'M' ou 'F'"
	MsgInvalidDate     = "Use yyyy-MM-dd"
	MsgEndBeforeStart  = "Fim deve ser posterior ao início"
	MsgCapitalPositive = "Capital deve ser > 0"
	MsgCapitalNumeric  = "Capital numérico"
	MsgCapitalTooLarge = "Capital excede o limite suportado"
	MsgAgeOutOfRange   = "Idade no início deve estar entre 18 e 80 anos"
)

// ValidateQuote checks req and returns the validated quote.
// On failure the error is a *ValidationErrors listing every problem found.
// Missing fields short-circuit all other checks.
func ValidateQuote(req QuoteRequest) (ValidatedQuote, error) {
	if missing := missingFields(req); len(missing) > 0 {
		return ValidatedQuote{}, &ValidationErrors{Fields: []FieldError{{
			Field:   FieldGeneral,
			Message: MsgMissingFields + strings.Join(missing, ", "),
		}}}
	}

	var (
		q    ValidatedQuote
		errs ValidationErrors
	)

	addErr := errs.Add

	name, ok := req.Name.Value.(string)
	if !ok || strings.TrimSpace(name) == "" {
		addErr(FieldName, MsgInvalidName)
	}
	q.name = strings.TrimSpace(name)

	q.cpf = CleanCPF(stringify(req.CPF.Value))
	if len(q.cpf) != CPFLength {
		addErr(FieldCPF, MsgInvalidCPF)
	}

	q.sex = Sex(stringify(req.Sex.Value))
	if !q.sex.Valid() {
		addErr(FieldSex, MsgInvalidSex)
	}

	birth, birthOK := parseDate(req.BirthDate.Value)
	if !birthOK {
		addErr(FieldBirthDate, MsgInvalidDate)
	}

	start, startOK := parseDate(req.CoverageStart.Value)
	if !startOK {
		addErr(FieldCoverageStart, MsgInvalidDate)
	}

	end, endOK := parseDate(req.CoverageEnd.Value)
	if !endOK {
		addErr(FieldCoverageEnd, MsgInvalidDate)
	}

	if startOK && endOK && !end.After(start) {
		addErr(FieldCoverageEnd, MsgEndBeforeStart)
	}

	capital, err := parseNumber(req.Capital.Value)
	switch {
	case err != nil:
		addErr(FieldCapital, MsgCapitalNumeric)
	case capital <= 0:
		addErr(FieldCapital, MsgCapitalPositive)
	}

	if birthOK && startOK {
		if age := AgeAt(birth, start); age < MinAge || age > MaxAge {
			addErr(FieldBirthDate, MsgAgeOutOfRange)
		}
	}

	if err := errs.Err(); err != nil {
		return ValidatedQuote{}, err
	}

	q.birthDate, q.coverageStart, q.coverageEnd, q.capital = birth, start, end, capital

	if !CalculatePricing(q).Finite() {
		addErr(FieldCapital, MsgCapitalTooLarge)

		return ValidatedQuote{}, errs.Err()
	}

	return q, nil
}

// CleanCPF keeps only the ASCII digits of s.
func CleanCPF(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// AgeAt returns the age in whole years on ref of someone born on birth.
func AgeAt(birth, ref time.Time) int {
	age := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		age--
	}

	return age
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}

	return t, nil
}

func missingFields(req QuoteRequest) []string {
	fields := []struct {
		name string
		f    Field
	}{
		{FieldName, req.Name},
		{FieldCPF, req.CPF},
		{FieldSex, req.Sex},
		{FieldBirthDate, req.BirthDate},
		{FieldCapital, req.Capital},
		{FieldCoverageStart, req.CoverageStart},
		{FieldCoverageEnd, req.CoverageEnd},
	}

	var missing []string
	for _, f := range fields {
		if !f.f.Present {
			missing = append(missing, f.name)
		}
	}

	return missing
}

func parseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}

	t, err := ParseDate(s)

	return t, err == nil
}

type floater interface {
	Float64() (float64, error)
}

var errNotNumeric = errors.New("not a number")

// parseNumber accepts JSON numbers and numeric strings. Booleans and
// non-finite values are rejected.
func parseNumber(v any) (float64, error) {
	var (
		f   float64
		err error
	)

	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case floater:
		f, err = n.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, errNotNumeric
	}

	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}

	return f, nil
}

// stringify renders a raw value the way it appeared on the wire.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
