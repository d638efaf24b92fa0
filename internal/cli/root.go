package cli

import (
	"log/slog"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/roach88/facet/internal/adapter"
	"github.com/roach88/facet/internal/schema"
	"github.com/roach88/facet/internal/settings"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the facet CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "facet",
		Short: "facet - entity mapping from database metadata",
		Long: `Gather table metadata from a database, resolve every column to an adapter,
and generate Go entity types or export rows as XML, YAML or JSON documents.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return errors.Newf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewClassesCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger returns the logger handed to mappings: warnings go to the
// diagnostic stream, and debug output only in verbose mode.
func newLogger(f *OutputFormatter) *slog.Logger {
	level := slog.LevelWarn
	if f.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f.GetErrWriter(), &slog.HandlerOptions{Level: level}))
}

// openSettings loads the settings file and opens its database.
func openSettings(f *OutputFormatter, path string) (*settings.Settings, *schema.SQLiteGatherer, error) {
	if path == "" {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeSettings, errors.New("--settings is required"))
	}
	s, err := settings.Load(path)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeSettings, err)
	}
	f.VerboseLog("Loaded settings from %s (database %s)", path, s.Database)

	g, err := schema.Open(s.Database)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeNotFound, errors.Wrapf(err, "database %s", s.Database))
	}
	return s, g, nil
}

// provider builds the format provider for a settings language tag.
func provider(locale string) (*adapter.Provider, error) {
	if locale == "" {
		return adapter.Invariant, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid locale %q", locale)
	}
	return adapter.NewProvider(tag), nil
}
