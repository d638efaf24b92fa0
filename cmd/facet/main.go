// Command facet gathers database metadata and generates or exports
// entities through aspect mappings.
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/roach88/facet/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
