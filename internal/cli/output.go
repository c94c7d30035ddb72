package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
)

const labelWidth = 20

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixedBank(2)
}

func rate(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// writeQuote renders one quote in the configured format.
func writeQuote(w io.Writer, format string, rec domain.QuoteRecord) error {
	if format == FormatJSON {
		return writeJSON(w, dto.NewQuoteResponse(rec))
	}

	var lines [][2]string

	if rec.ID != 0 {
		lines = append(lines, [2]string{"ID:", fmt.Sprint(rec.ID)})
	}

	lines = append(lines,
		[2]string{"Nome:", rec.Name},
		[2]string{"CPF:", rec.CPF},
		[2]string{"Sexo:", string(rec.Sex)},
		[2]string{"Nascimento:", rec.BirthDate.Format(domain.DateLayout)},
		[2]string{"Capital:", money(rec.Capital)},
		[2]string{"Vigência:", fmt.Sprintf("%s a %s (%d dias, %s anos)",
			rec.CoverageStart.Format(domain.DateLayout),
			rec.CoverageEnd.Format(domain.DateLayout),
			rec.DurationDays,
			money(rec.DurationYears),
		)},
		[2]string{"Taxa base anual:", rate(rec.BaseRate)},
		[2]string{"Taxa ajustada:", rate(rec.AdjustedRate)},
		[2]string{"Prêmio:", money(rec.Premium)},
		[2]string{"Descrição:", rec.Description},
	)

	if !rec.CreatedAt.IsZero() {
		lines = append(lines, [2]string{"Criada em:", rec.CreatedAt.UTC().Format(time.RFC3339)})
	}

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-*s%s\n", labelWidth, l[0], l[1]); err != nil {
			return err
		}
	}

	return nil
}

// writeQuoteList renders quotes as a table or a JSON array.
func writeQuoteList(w io.Writer, format string, records []domain.QuoteRecord) error {
	if format == FormatJSON {
		return writeJSON(w, dto.NewQuoteListResponse(records))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME\tSEXO\tCAPITAL\tPRÊMIO\tCRIADA EM")

	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Name, rec.Sex, money(rec.Capital), money(rec.Premium),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		)
	}

	return tw.Flush()
}

// writeFieldErrors lists validation problems, one per line.
func writeFieldErrors(w io.Writer, format string, errs []domain.FieldError) error {
	if format == FormatJSON {
		return writeJSON(w, dto.NewValidationResponse(dto.FieldDetails(errs)))
	}

	fmt.Fprintln(w, dto.ErrorValidation+":")

	for _, fe := range errs {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message); err != nil {
			return err
		}
	}

	return nil
}
