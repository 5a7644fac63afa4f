package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colpack/colpack/internal/collection"
	"github.com/colpack/colpack/internal/errors"
)

func newInstalledCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "installed [flags] path [path...]",
		Short: "List collections installed below the given paths",
		Long: `
The "installed" command scans the given search paths for installed
collections, laid out as {path}/{namespace}/{name}, and prints their names
and versions. Collections without a readable MANIFEST.json or galaxy.yml are
reported with version "*".

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runInstalled(globalOptions, args)
		},
	}

	return cmd
}

func runInstalled(gopts GlobalOptions, args []string) error {
	if len(args) == 0 {
		return errors.Fatal("wrong number of parameters")
	}

	found, err := collection.FindInstalled(args, gopts.printer())
	if err != nil {
		return err
	}

	for _, coll := range found {
		_, _ = fmt.Fprintf(gopts.stdout, "%-40s %-12s %s\n", coll.FQCN(), coll.Version, coll.Path)
	}

	return nil
}
