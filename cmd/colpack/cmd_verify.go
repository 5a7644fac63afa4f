package main

import (
	"github.com/spf13/cobra"

	"github.com/colpack/colpack/internal/collection"
	"github.com/colpack/colpack/internal/errors"
)

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [flags] artifact installed-dir",
		Short: "Verify an installed collection against its artifact",
		Long: `
The "verify" command compares a collection installed at a directory with the
artifact it was installed from. The installed manifests are checked against
the artifact's copies and every file listed in the installed FILES.json is
checked against its recorded SHA-256 digest. Modified and missing files are
reported.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runVerify(globalOptions, args)
		},
	}

	return cmd
}

func runVerify(gopts GlobalOptions, args []string) error {
	if len(args) != 2 {
		return errors.Fatal("wrong number of parameters")
	}

	artifactPath, installedDir := args[0], args[1]
	printer := gopts.printer()

	mismatches, err := collection.VerifyCollection(artifactPath, installedDir, printer)
	if err != nil {
		return err
	}

	if len(mismatches) == 0 {
		printer.P("Successfully verified the collection at '%s'", installedDir)
		return nil
	}

	for _, m := range mismatches {
		switch {
		case m.Err != nil:
			printer.E("%s could not be read: %v", m.Path, m.Err)
		case m.Installed == "":
			printer.E("%s was not found in the installed collection", m.Path)
		default:
			printer.E("%s has a checksum mismatch: expected %s, found %s", m.Path, m.Expected, m.Installed)
		}
	}
	return errors.Fatalf("the collection at '%s' does not match the artifact %s", installedDir, artifactPath)
}
