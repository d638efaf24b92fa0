package cli

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/facet/internal/codegen"
)

// ClassesOptions holds flags for the classes command.
type ClassesOptions struct {
	*RootOptions
	Settings string
	Output   string // overrides output_dir from settings
}

// ClassesResult summarizes a generation run.
type ClassesResult struct {
	Package string   `json:"package"`
	Dir     string   `json:"dir"`
	Files   []string `json:"files"`
}

// NewClassesCommand creates the classes command.
func NewClassesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Generate Go entity types from database tables",
		Long: `Gather the configured tables and write one Go file per table. Each file
holds a struct with db and aspect tags ready for aspect.For.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Settings, "settings", "s", "facet.yaml", "settings file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (default: output_dir from settings)")

	return cmd
}

func runClasses(opts *ClassesOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, g, err := openSettings(f, opts.Settings)
	if err != nil {
		return err
	}
	defer g.Close()

	f.VerboseLog("Fetching database information...")
	tables, err := g.Gather(cmd.Context(), s.Tables...)
	if err != nil {
		return gatherFailure(f, err)
	}
	if len(tables) == 0 {
		return f.Fail(ExitCommandError, ErrCodeNotFound, errors.Newf("no tables found in %s", s.Database))
	}
	for _, t := range tables {
		f.VerboseLog(" [%s]: %d columns found", t.Name, len(t.Columns))
	}

	gen := &codegen.Generator{Package: s.Package}
	files := make([]codegen.File, 0, len(tables))
	for _, t := range tables {
		f.VerboseLog("Creating %s (using %s)", codegen.Identifier(t.Name), s.Language)
		file, err := gen.Generate(t)
		if err != nil {
			return resolveFailure(f, err)
		}
		files = append(files, file)
	}

	dir := s.OutputDir
	if opts.Output != "" {
		dir = opts.Output
	}
	if err := codegen.WriteAll(dir, files); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, err)
	}

	result := ClassesResult{Package: s.Package, Dir: dir}
	for _, file := range files {
		result.Files = append(result.Files, file.Name)
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ Generated %d file(s) in %s\n", len(files), dir)
	for _, name := range result.Files {
		fmt.Fprintf(f.Writer, "  %s\n", filepath.Join(dir, name))
	}
	return nil
}
