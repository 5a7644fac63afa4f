package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/colpack/colpack/internal/collection"
	"github.com/colpack/colpack/internal/errors"
)

func newListCommand() *cobra.Command {
	var opts ListOptions

	cmd := &cobra.Command{
		Use:   "list [flags] artifact",
		Short: "List the content of a collection artifact",
		Long: `
The "list" command prints the paths recorded in an artifact's FILES.json.
With --long each line also shows the entry type and its SHA-256 digest.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runList(opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// ListOptions collects all options for the list command.
type ListOptions struct {
	Long bool
}

func (opts *ListOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.Long, "long", "l", false, "use a long listing format showing type and digest")
}

func runList(opts ListOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 1 {
		return errors.Fatal("wrong number of parameters")
	}

	filesManifest, err := collection.ReadFilesManifest(args[0])
	if err != nil {
		return err
	}

	for _, entry := range filesManifest.Files {
		if !opts.Long {
			_, _ = fmt.Fprintf(gopts.stdout, "%s\n", entry.Name)
			continue
		}

		chksum := "-"
		if entry.ChksumSHA256 != nil {
			chksum = *entry.ChksumSHA256
		}
		_, _ = fmt.Fprintf(gopts.stdout, "%-4s %-64s %s\n", entry.FType, chksum, entry.Name)
	}

	return nil
}
