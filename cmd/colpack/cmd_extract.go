package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/colpack/colpack/internal/collection"
	"github.com/colpack/colpack/internal/errors"
)

func newExtractCommand() *cobra.Command {
	var opts ExtractOptions

	cmd := &cobra.Command{
		Use:   "extract [flags] artifact [dir]",
		Short: "Extract a collection artifact",
		Long: `
The "extract" command unpacks a collection artifact into a directory,
defaulting to the current one. Every extracted file is verified against the
digest recorded in the artifact's FILES.json, and entries that would escape
the target directory are refused.

With --member only the named archive member is extracted.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runExtract(opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// ExtractOptions collects all options for the extract command.
type ExtractOptions struct {
	Member string
}

func (opts *ExtractOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.Member, "member", "", "extract only the archive member with this `name`")
}

func runExtract(opts ExtractOptions, gopts GlobalOptions, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.Fatal("wrong number of parameters")
	}

	archivePath := args[0]
	destDir := "."
	if len(args) == 2 {
		destDir = args[1]
	}

	printer := gopts.printer()

	if opts.Member != "" {
		if err := collection.ExtractTarFile(archivePath, opts.Member, destDir, ""); err != nil {
			return err
		}
		printer.P("Extracted '%s' from %s to %s", opts.Member, archivePath, destDir)
		return nil
	}

	if err := collection.ExtractAll(archivePath, destDir, printer); err != nil {
		return err
	}
	printer.P("Extracted %s to %s", archivePath, destDir)
	return nil
}
