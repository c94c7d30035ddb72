// Package cli implements cotacoesctl, the administrative command line for
// the quote service. It shares the application core with the HTTP API.
package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/storage"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var validFormats = []string{FormatText, FormatJSON}

// Store is the quote store as the CLI uses it.
type Store interface {
	ports.QuoteRepository
	Migrate(ctx context.Context) error
	Close() error
}

// StoreOpener opens the store configured for profile.
type StoreOpener func(ctx context.Context, profile string) (Store, error)

// RootOptions holds the global flags.
type RootOptions struct {
	Format  string
	Profile string

	openStore StoreOpener
}

// NewRootCommand creates the cotacoesctl root command. A nil opener means
// OpenConfiguredStore.
func NewRootCommand(open StoreOpener) *cobra.Command {
	if open == nil {
		open = OpenConfiguredStore
	}

	opts := &RootOptions{openStore: open}

	cmd := &cobra.Command{
		Use:           "cotacoesctl",
		Short:         "Administra cotações de seguro prestamista",
		Long:          "Calcula, consulta e administra cotações usando a mesma configuração do serviço HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, validFormats))
			}

			return nil
		},
	}

	profile := os.Getenv("APP_ENV")
	if profile == "" {
		profile = "local"
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", profile, "configuration profile (configs/<profile>.yaml)")

	cmd.AddCommand(
		NewPriceCommand(opts),
		NewListCommand(opts),
		NewGetCommand(opts),
		NewMigrateCommand(opts),
	)

	return cmd
}

// OpenConfiguredStore loads the configuration for profile and opens the
// store it describes. The schema is created if missing.
func OpenConfiguredStore(ctx context.Context, profile string) (Store, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{Level: "warn", Format: "text", Service: cfg.App.Name}, os.Stderr)

	store, _, err := storage.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	return store, nil
}

func (o *RootOptions) withStore(cmd *cobra.Command, fn func(Store) error) error {
	store, err := o.openStore(cmd.Context(), o.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening quote store", err)
	}

	defer func() { _ = store.Close() }()

	return fn(store)
}
