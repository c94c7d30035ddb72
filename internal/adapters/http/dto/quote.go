package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
)

// ErrMalformedBody indicates the request body is not a JSON object.
var ErrMalformedBody = errors.New("malformed request body")

// DecodeQuoteRequest reads a quote request from a JSON object.
// Keys absent from the object stay unset; an explicit null is present.
// Numbers are kept as json.Number so their literal text survives. Anything
// but whitespace after the object makes the body malformed.
func DecodeQuoteRequest(r io.Reader) (domain.QuoteRequest, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	if raw == nil {
		return domain.QuoteRequest{}, fmt.Errorf("%w: body is null", ErrMalformedBody)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.QuoteRequest{}, fmt.Errorf("%w: data after the JSON object", ErrMalformedBody)
	}

	field := func(key string) domain.Field {
		v, ok := raw[key]
		if !ok {
			return domain.Field{}
		}

		return domain.Set(v)
	}

	return domain.QuoteRequest{
		Name:          field(domain.FieldName),
		CPF:           field(domain.FieldCPF),
		Sex:           field(domain.FieldSex),
		BirthDate:     field(domain.FieldBirthDate),
		Capital:       field(domain.FieldCapital),
		CoverageStart: field(domain.FieldCoverageStart),
		CoverageEnd:   field(domain.FieldCoverageEnd),
	}, nil
}

// QuoteResponse is the wire form of a stored quote.
type QuoteResponse struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"nome"`
	CPF           string  `json:"cpf"`
	Sex           string  `json:"sexo"`
	BirthDate     string  `json:"dtnasc"`
	Capital       float64 `json:"capital"`
	CoverageStart string  `json:"inicio_vig"`
	CoverageEnd   string  `json:"fim_vig"`
	BaseRate      float64 `json:"taxa_base_anual"`
	AdjustedRate  float64 `json:"taxa_ajustada"`
	DurationDays  int     `json:"vigencia_dias"`
	DurationYears float64 `json:"vigencia_anos"`
	Premium       float64 `json:"premio"`
	Description   string  `json:"descricao"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// NewQuoteResponse converts a record to its wire form. Unsaved records
// (ID 0) have no id.
func NewQuoteResponse(rec domain.QuoteRecord) QuoteResponse {
	resp := QuoteResponse{
		Name:          rec.Name,
		CPF:           rec.CPF,
		Sex:           string(rec.Sex),
		BirthDate:     rec.BirthDate.Format(domain.DateLayout),
		Capital:       rec.Capital,
		CoverageStart: rec.CoverageStart.Format(domain.DateLayout),
		CoverageEnd:   rec.CoverageEnd.Format(domain.DateLayout),
		BaseRate:      rec.BaseRate,
		AdjustedRate:  rec.AdjustedRate,
		DurationDays:  rec.DurationDays,
		DurationYears: rec.DurationYears,
		Premium:       rec.Premium,
		Description:   rec.Description,
	}

	if rec.ID != 0 {
		resp.ID = strconv.FormatInt(rec.ID, 10)
	}

	if !rec.CreatedAt.IsZero() {
		resp.CreatedAt = rec.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	return resp
}

// NewQuoteListResponse converts records in order. The result is never nil.
func NewQuoteListResponse(records []domain.QuoteRecord) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, NewQuoteResponse(rec))
	}

	return out
}
