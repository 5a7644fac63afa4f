package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/colpack/colpack/internal/collection"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/filter"
)

func newBuildCommand() *cobra.Command {
	var opts BuildOptions

	cmd := &cobra.Command{
		Use:   "build [flags] [collection-path]",
		Short: "Build a collection artifact",
		Long: `
The "build" command packages a collection source tree into a gzip-compressed
tar artifact named {namespace}-{name}-{version}.tar.gz. The artifact embeds a
MANIFEST.json with the collection metadata and a FILES.json listing every
included path with its SHA-256 digest.

The collection path defaults to the current directory and must contain a
galaxy.yml file.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runBuild(opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// BuildOptions collects all options for the build command.
type BuildOptions struct {
	OutputPath string
	Force      bool
	filter.IgnorePatternOptions
}

func (opts *BuildOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.OutputPath, "output-path", "", "`directory` to write the artifact to (default: the collection path)")
	f.BoolVar(&opts.Force, "force", false, "overwrite an existing artifact")
	opts.IgnorePatternOptions.Add(f)
}

func runBuild(opts BuildOptions, gopts GlobalOptions, args []string) error {
	if len(args) > 1 {
		return errors.Fatal("wrong number of parameters")
	}

	srcDir := "."
	if len(args) == 1 {
		srcDir = args[0]
	}

	patterns, err := opts.CollectPatterns()
	if err != nil {
		return err
	}

	_, err = collection.Build(collection.BuildOptions{
		SrcDir:         srcDir,
		OutputDir:      opts.OutputPath,
		Force:          opts.Force,
		IgnorePatterns: patterns,
	}, gopts.printer())
	return err
}
