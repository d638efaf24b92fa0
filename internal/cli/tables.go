package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/facet/internal/registry"
	"github.com/roach88/facet/internal/schema"
)

// TablesOptions holds flags for the tables command.
type TablesOptions struct {
	*RootOptions
	Settings string
}

// TableInfo is one gathered table in command output.
type TableInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

// ColumnInfo is one column with its resolved adapter.
type ColumnInfo struct {
	Name       string `json:"name"`
	SQLType    string `json:"sql_type"`
	GoType     string `json:"go_type"`
	Storage    string `json:"storage_type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TablesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables and the adapter resolved for each column",
		Long: `List the tables of the configured database with each column's declared
type, the Go type it maps to, and its storage type.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Settings, "settings", "s", "facet.yaml", "settings file")

	return cmd
}

func runTables(opts *TablesOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, g, err := openSettings(f, opts.Settings)
	if err != nil {
		return err
	}
	defer g.Close()

	tables, err := g.Gather(cmd.Context(), s.Tables...)
	if err != nil {
		return gatherFailure(f, err)
	}
	f.VerboseLog("Found %d table(s)", len(tables))

	infos := make([]TableInfo, 0, len(tables))
	for _, t := range tables {
		cols, err := schema.Resolve(t, nil)
		if err != nil {
			return resolveFailure(f, err)
		}
		info := TableInfo{Name: t.Name}
		for _, c := range cols {
			info.Columns = append(info.Columns, ColumnInfo{
				Name:       c.Column.Name,
				SQLType:    c.Column.SQLType,
				GoType:     c.GoType.String(),
				Storage:    c.StorageType.String(),
				Nullable:   c.Column.Nullable,
				PrimaryKey: c.Column.PrimaryKey,
			})
		}
		infos = append(infos, info)
	}

	if f.Format == "json" {
		return f.Success(infos)
	}

	fmt.Fprintf(f.Writer, "✓ Found %d table(s)\n", len(infos))
	for _, info := range infos {
		fmt.Fprintf(f.Writer, "\n%s:\n", info.Name)
		for _, c := range info.Columns {
			flags := ""
			if c.PrimaryKey {
				flags = " (pk)"
			} else if !c.Nullable {
				flags = " (not null)"
			}
			fmt.Fprintf(f.Writer, "  %s %s → %s [%s]%s\n", c.Name, c.SQLType, c.GoType, c.Storage, flags)
		}
	}
	return nil
}

func gatherFailure(f *OutputFormatter, err error) error {
	if errors.Is(err, schema.ErrTableNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, err)
	}
	return f.Fail(ExitCommandError, ErrCodeGatherFailed, err)
}

func resolveFailure(f *OutputFormatter, err error) error {
	if errors.Is(err, registry.ErrUnsupportedType) {
		return f.Fail(ExitCommandError, ErrCodeUnsupportedType, err)
	}
	return f.Fail(ExitCommandError, ErrCodeGenerateFailed, err)
}
