package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
)

func TestQuoteCreated(t *testing.T) {
	rec := domain.QuoteRecord{
		ID:            42,
		Name:          "Maria Souza",
		CPF:           "12345678901",
		Sex:           domain.SexFemale,
		Capital:       10000,
		CoverageStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CoverageEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Pricing:       domain.Pricing{AdjustedRate: 0.0095, Premium: 95},
		CreatedAt:     time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	ev := QuoteCreated{Record: rec}

	assert.Equal(t, "cotacao.criada", ev.EventType())
	assert.Equal(t, "42", ev.Key())

	b, err := json.Marshal(ev.Payload())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "42",
		"sexo": "F",
		"capital": 10000,
		"inicio_vig": "2025-01-01",
		"fim_vig": "2025-12-31",
		"taxa_ajustada": 0.0095,
		"premio": 95,
		"created_at": "2025-01-01T12:00:00Z"
	}`, string(b))
	assert.NotContains(t, string(b), "12345678901")
	assert.NotContains(t, string(b), "Maria")
}
