package app

import (
	"strconv"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// TypeQuoteCreated is the event type emitted after a quote is stored.
const TypeQuoteCreated = "cotacao.criada"

var _ ports.Event = QuoteCreated{}

// QuoteCreated announces a newly stored quote. The CPF is not included.
type QuoteCreated struct {
	Record domain.QuoteRecord
}

// EventType implements ports.Event.
func (QuoteCreated) EventType() string { return TypeQuoteCreated }

// Key implements ports.Event.
func (e QuoteCreated) Key() string { return strconv.FormatInt(e.Record.ID, 10) }

// Payload implements ports.Event.
func (e QuoteCreated) Payload() any {
	r := e.Record

	return quoteCreatedPayload{
		ID:            strconv.FormatInt(r.ID, 10),
		Sex:           string(r.Sex),
		Capital:       r.Capital,
		CoverageStart: r.CoverageStart.Format(domain.DateLayout),
		CoverageEnd:   r.CoverageEnd.Format(domain.DateLayout),
		AdjustedRate:  r.AdjustedRate,
		Premium:       r.Premium,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type quoteCreatedPayload struct {
	ID            string  `json:"id"`
	Sex           string  `json:"sexo"`
	Capital       float64 `json:"capital"`
	CoverageStart string  `json:"inicio_vig"`
	CoverageEnd   string  `json:"fim_vig"`
	AdjustedRate  float64 `json:"taxa_ajustada"`
	Premium       float64 `json:"premio"`
	CreatedAt     string  `json:"created_at"`
}
