package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() QuoteRequest {
	return QuoteRequest{
		Name:          Set("Sr. João Silva"),
		CPF:           Set("123.456.789-01"),
		Sex:           Set("M"),
		BirthDate:     Set("1990-01-01"),
		Capital:       Set(10000.0),
		CoverageStart: Set("2025-01-01"),
		CoverageEnd:   Set("2025-12-31"),
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)

	return d
}

func TestValidateQuote_Valid(t *testing.T) {
	q, err := ValidateQuote(validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Sr. João Silva", q.Name())
	assert.Equal(t, "12345678901", q.CPF())
	assert.Equal(t, SexMale, q.Sex())
	assert.Equal(t, date(t, "1990-01-01"), q.BirthDate())
	assert.Equal(t, date(t, "2025-01-01"), q.CoverageStart())
	assert.Equal(t, date(t, "2025-12-31"), q.CoverageEnd())
	assert.InDelta(t, 10000.0, q.Capital(), 0)
	assert.Equal(t, 35, q.AgeAtStart())
}

func TestValidateQuote_TrimsName(t *testing.T) {
	req := validRequest()
	req.Name = Set("  Maria Souza \t")

	q, err := ValidateQuote(req)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", q.Name())
}

func TestValidateQuote_MissingFields(t *testing.T) {
	t.Run("all missing", func(t *testing.T) {
		_, err := ValidateQuote(QuoteRequest{})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Equal(t, []FieldError{{
			Field:   FieldGeneral,
			Message: "Faltam: nome, cpf, sexo, dtnasc, capital, inicio_vig, fim_vig",
		}}, FieldErrors(err))
	})

	t.Run("missing fields stop other checks", func(t *testing.T) {
		req := QuoteRequest{
			Name:          Set(""),
			Sex:           Set("X"),
			BirthDate:     Set("bad"),
			Capital:       Set(-1.0),
			CoverageStart: Set("2025-01-01"),
		}

		_, err := ValidateQuote(req)
		assert.Equal(t, []FieldError{{Field: FieldGeneral, Message: "Faltam: cpf, fim_vig"}}, FieldErrors(err))
	})

	t.Run("explicit null is present", func(t *testing.T) {
		req := validRequest()
		req.Name = Set(nil)

		_, err := ValidateQuote(req)
		assert.Equal(t, []FieldError{{Field: FieldName, Message: MsgInvalidName}}, FieldErrors(err))
	})
}

func TestValidateQuote_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*QuoteRequest)
		want   []FieldError
	}{
		{
			name:   "blank name",
			mutate: func(r *QuoteRequest) { r.Name = Set("   ") },
			want:   []FieldError{{FieldName, MsgInvalidName}},
		},
		{
			name:   "non-string name",
			mutate: func(r *QuoteRequest) { r.Name = Set(42.0) },
			want:   []FieldError{{FieldName, MsgInvalidName}},
		},
		{
			name:   "short cpf",
			mutate: func(r *QuoteRequest) { r.CPF = Set("123") },
			want:   []FieldError{{FieldCPF, MsgInvalidCPF}},
		},
		{
			name:   "cpf with twelve digits",
			mutate: func(r *QuoteRequest) { r.CPF = Set("123.456.789-012") },
			want:   []FieldError{{FieldCPF, MsgInvalidCPF}},
		},
		{
			name:   "cpf as json number",
			mutate: func(r *QuoteRequest) { r.CPF = Set(json.Number("12345678901")) },
			want:   nil,
		},
		{
			name:   "lowercase sex",
			mutate: func(r *QuoteRequest) { r.Sex = Set("m") },
			want:   []FieldError{{FieldSex, MsgInvalidSex}},
		},
		{
			name:   "female sex",
			mutate: func(r *QuoteRequest) { r.Sex = Set("F") },
			want:   nil,
		},
		{
			name:   "birth date in wrong format",
			mutate: func(r *QuoteRequest) { r.BirthDate = Set("01/01/1990") },
			want:   []FieldError{{FieldBirthDate, MsgInvalidDate}},
		},
		{
			name:   "non-string start date",
			mutate: func(r *QuoteRequest) { r.CoverageStart = Set(20250101.0) },
			want:   []FieldError{{FieldCoverageStart, MsgInvalidDate}},
		},
		{
			name:   "impossible end date",
			mutate: func(r *QuoteRequest) { r.CoverageEnd = Set("2025-02-30") },
			want:   []FieldError{{FieldCoverageEnd, MsgInvalidDate}},
		},
		{
			name:   "equal coverage dates",
			mutate: func(r *QuoteRequest) { r.CoverageEnd = Set("2025-01-01") },
			want:   []FieldError{{FieldCoverageEnd, MsgEndBeforeStart}},
		},
		{
			name:   "end before start",
			mutate: func(r *QuoteRequest) { r.CoverageEnd = Set("2024-12-31") },
			want:   []FieldError{{FieldCoverageEnd, MsgEndBeforeStart}},
		},
		{
			name:   "zero capital",
			mutate: func(r *QuoteRequest) { r.Capital = Set(0.0) },
			want:   []FieldError{{FieldCapital, MsgCapitalPositive}},
		},
		{
			name:   "negative capital string",
			mutate: func(r *QuoteRequest) { r.Capital = Set("-10") },
			want:   []FieldError{{FieldCapital, MsgCapitalPositive}},
		},
		{
			name:   "numeric capital string",
			mutate: func(r *QuoteRequest) { r.Capital = Set(" 2500.50 ") },
			want:   nil,
		},
		{
			name:   "capital as json number",
			mutate: func(r *QuoteRequest) { r.Capital = Set(json.Number("1e4")) },
			want:   nil,
		},
		{
			name:   "non-numeric capital",
			mutate: func(r *QuoteRequest) { r.Capital = Set("abc") },
			want:   []FieldError{{FieldCapital, MsgCapitalNumeric}},
		},
		{
			name:   "boolean capital",
			mutate: func(r *QuoteRequest) { r.Capital = Set(true) },
			want:   []FieldError{{FieldCapital, MsgCapitalNumeric}},
		},
		{
			name:   "nan capital",
			mutate: func(r *QuoteRequest) { r.Capital = Set("NaN") },
			want:   []FieldError{{FieldCapital, MsgCapitalNumeric}},
		},
		{
			name:   "age 17 at start",
			mutate: func(r *QuoteRequest) { r.BirthDate = Set("2007-06-01") },
			want:   []FieldError{{FieldBirthDate, MsgAgeOutOfRange}},
		},
		{
			name:   "age 18 at start",
			mutate: func(r *QuoteRequest) { r.BirthDate = Set("2007-01-01") },
			want:   nil,
		},
		{
			name:   "age 80 at start",
			mutate: func(r *QuoteRequest) { r.BirthDate = Set("1945-01-01") },
			want:   nil,
		},
		{
			name:   "age 81 at start",
			mutate: func(r *QuoteRequest) { r.BirthDate = Set("1944-01-01") },
			want:   []FieldError{{FieldBirthDate, MsgAgeOutOfRange}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := ValidateQuote(req)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.want, FieldErrors(err))
		})
	}
}

func TestValidateQuote_CollectsAllErrors(t *testing.T) {
	req := QuoteRequest{
		Name:          Set(""),
		CPF:           Set("abc"),
		Sex:           Set("X"),
		BirthDate:     Set("1990-13-01"),
		Capital:       Set("zero"),
		CoverageStart: Set("2025-01-10"),
		CoverageEnd:   Set("2025-01-05"),
	}

	_, err := ValidateQuote(req)
	require.Error(t, err)

	assert.Equal(t, []FieldError{
		{FieldName, MsgInvalidName},
		{FieldCPF, MsgInvalidCPF},
		{FieldSex, MsgInvalidSex},
		{FieldBirthDate, MsgInvalidDate},
		{FieldCoverageEnd, MsgEndBeforeStart},
		{FieldCapital, MsgCapitalNumeric},
	}, FieldErrors(err))
}

func TestValidateQuote_UnparseableDateSkipsCrossChecks(t *testing.T) {
	req := validRequest()
	req.CoverageStart = Set("2025/01/01")

	_, err := ValidateQuote(req)

	// Neither the ordering rule nor the age rule can run without a start date.
	assert.Equal(t, []FieldError{{FieldCoverageStart, MsgInvalidDate}}, FieldErrors(err))
}

func TestValidateQuote_CapitalThatOverflowsPremium(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		req := validRequest()
		req.Capital = Set(1.7e308)
		req.BirthDate = Set("1950-01-01")
		req.CoverageEnd = Set("2125-01-01")

		_, err := ValidateQuote(req)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Equal(t, []FieldError{{FieldCapital, MsgCapitalTooLarge}}, FieldErrors(err))
	})

	t.Run("same capital over one year still prices", func(t *testing.T) {
		req := validRequest()
		req.Capital = Set(1.7e308)

		q, err := ValidateQuote(req)
		require.NoError(t, err)
		assert.True(t, CalculatePricing(q).Finite())
	})

	t.Run("other errors are reported first", func(t *testing.T) {
		req := validRequest()
		req.Capital = Set(1.7e308)
		req.CoverageEnd = Set("2125-01-01")
		req.Sex = Set("X")

		_, err := ValidateQuote(req)
		assert.Equal(t, []FieldError{{FieldSex, MsgInvalidSex}}, FieldErrors(err))
	})
}

func TestCleanCPF(t *testing.T) {
	assert.Equal(t, "12345678901", CleanCPF("123.456.789-01"))
	assert.Equal(t, "123", CleanCPF("a1b2c3"))
	assert.Empty(t, CleanCPF("١٢٣"))
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		birth, ref string
		want       int
	}{
		{"1990-01-01", "2025-01-01", 35},
		{"1990-06-15", "2025-01-01", 34},
		{"1990-06-15", "2025-06-14", 34},
		{"1990-06-15", "2025-06-15", 35},
		{"2000-02-29", "2025-02-28", 24},
		{"2000-02-29", "2025-03-01", 25},
	}

	for _, tt := range tests {
		t.Run(tt.birth+"_"+tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeAt(date(t, tt.birth), date(t, tt.ref)))
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	err := &ValidationErrors{Fields: []FieldError{{FieldCPF, MsgInvalidCPF}, {FieldSex, MsgInvalidSex}}}

	assert.Equal(t, "validation failed: cpf: "+MsgInvalidCPF+"; sexo: "+MsgInvalidSex, err.Error())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidationErrors_Collector(t *testing.T) {
	var errs ValidationErrors
	require.NoError(t, errs.Err())

	errs.Add(FieldCapital, MsgCapitalPositive)
	errs.Add(FieldBirthDate, MsgAgeOutOfRange)

	err := errs.Err()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, []FieldError{
		{FieldCapital, MsgCapitalPositive},
		{FieldBirthDate, MsgAgeOutOfRange},
	}, FieldErrors(fmt.Errorf("creating quote: %w", err)))
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("quote", "42")

	assert.Equal(t, `quote with id "42" not found`, err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "quote not found", NewNotFoundError("quote", "").Error())
}

func TestUnavailableError(t *testing.T) {
	err := NewUnavailableError("genderize", "circuit open")

	assert.Equal(t, `service "genderize" unavailable: circuit open`, err.Error())
	assert.True(t, IsUnavailable(err))
	assert.Nil(t, FieldErrors(err))
}
