package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/storage"
	"github.com/jsamuelsen/insurance-quote-service/internal/app"
	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
)

// priceFlag binds a command line flag to a request field.
type priceFlag struct {
	name  string
	field string
	usage string
}

var priceFlags = []priceFlag{
	{name: "nome", field: domain.FieldName, usage: "nome do segurado"},
	{name: "cpf", field: domain.FieldCPF, usage: "CPF (com ou sem pontuação)"},
	{name: "sexo", field: domain.FieldSex, usage: "sexo declarado (M|F)"},
	{name: "dtnasc", field: domain.FieldBirthDate, usage: "data de nascimento (AAAA-MM-DD)"},
	{name: "capital", field: domain.FieldCapital, usage: "capital segurado"},
	{name: "inicio-vig", field: domain.FieldCoverageStart, usage: "início da vigência (AAAA-MM-DD)"},
	{name: "fim-vig", field: domain.FieldCoverageEnd, usage: "fim da vigência (AAAA-MM-DD)"},
}

// NewPriceCommand creates the price command. It validates and prices a
// quote without storing it.
func NewPriceCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Calcula o prêmio de uma cotação sem gravá-la",
		Long: `Calcula o prêmio de uma cotação sem gravá-la.

Os campos vêm das flags ou de um arquivo JSON no formato do POST /cotacoes
(--file, "-" para a entrada padrão). Flags sobrescrevem o arquivo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := priceRequest(cmd, file)
			if err != nil {
				return err
			}

			return runPrice(cmd.Context(), rootOpts, req, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `JSON request file ("-" for stdin)`)

	for _, f := range priceFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}

	return cmd
}

func priceRequest(cmd *cobra.Command, file string) (domain.QuoteRequest, error) {
	var req domain.QuoteRequest

	if file != "" {
		var r io.Reader = cmd.InOrStdin()

		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return req, WrapExitError(ExitCommandError, "reading request file", err)
			}
			defer func() { _ = f.Close() }()

			r = f
		}

		decoded, err := dto.DecodeQuoteRequest(r)
		if err != nil {
			return req, WrapExitError(ExitFailure, dto.MsgInvalidJSON, err)
		}

		req = decoded
	}

	for _, f := range priceFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}

		v, _ := cmd.Flags().GetString(f.name)
		*requestField(&req, f.field) = domain.Set(v)
	}

	return req, nil
}

func requestField(req *domain.QuoteRequest, field string) *domain.Field {
	switch field {
	case domain.FieldName:
		return &req.Name
	case domain.FieldCPF:
		return &req.CPF
	case domain.FieldSex:
		return &req.Sex
	case domain.FieldBirthDate:
		return &req.BirthDate
	case domain.FieldCapital:
		return &req.Capital
	case domain.FieldCoverageStart:
		return &req.CoverageStart
	default:
		return &req.CoverageEnd
	}
}

func runPrice(ctx context.Context, opts *RootOptions, req domain.QuoteRequest, out, errOut io.Writer) error {
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Preview never writes, but the service still needs a repository.
	store, _, err := storage.Open(ctx, config.DatabaseConfig{URL: "sqlite://:memory:", Name: "preview"}, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening preview store", err)
	}
	defer func() { _ = store.Close() }()

	svc := app.NewQuoteService(app.QuoteServiceConfig{Repository: store, Logger: logger})

	rec, err := svc.Preview(ctx, req)
	if err != nil {
		if domain.IsValidation(err) {
			if werr := writeFieldErrors(errOut, opts.Format, domain.FieldErrors(err)); werr != nil {
				return werr
			}

			return WrapExitError(ExitFailure, "quote rejected", err)
		}

		return fmt.Errorf("pricing quote: %w", err)
	}

	return writeQuote(out, opts.Format, rec)
}
