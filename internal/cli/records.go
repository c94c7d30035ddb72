package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lista as cotações gravadas, da mais recente para a mais antiga",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.withStore(cmd, func(store Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing quotes: %w", err)
				}

				return writeQuoteList(cmd.OutOrStdout(), rootOpts.Format, records)
			})
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Mostra uma cotação gravada",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(store Store) error {
				rec, err := store.GetByID(cmd.Context(), args[0])
				if domain.IsNotFound(err) {
					return WrapExitError(ExitFailure, dto.MsgQuoteNotFound, err)
				}

				if err != nil {
					return fmt.Errorf("fetching quote: %w", err)
				}

				return writeQuote(cmd.OutOrStdout(), rootOpts.Format, rec)
			})
		},
	}
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Cria a tabela de cotações se ela não existir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.withStore(cmd, func(store Store) error {
				if err := store.Migrate(cmd.Context()); err != nil {
					return WrapExitError(ExitCommandError, "migrating schema", err)
				}

				_, err := fmt.Fprintln(cmd.OutOrStdout(), "schema ok")

				return err
			})
		},
	}
}
