package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/colpack/colpack/internal/collection"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/json"
)

func newInspectCommand() *cobra.Command {
	var opts InspectOptions

	cmd := &cobra.Command{
		Use:   "inspect [flags] artifact",
		Short: "Show the metadata of a collection artifact",
		Long: `
The "inspect" command prints the collection metadata recorded in an
artifact's MANIFEST.json.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runInspect(opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// InspectOptions collects all options for the inspect command.
type InspectOptions struct {
	JSON bool
}

func (opts *InspectOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVar(&opts.JSON, "json", false, "print the manifest as JSON")
}

func runInspect(opts InspectOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 1 {
		return errors.Fatal("wrong number of parameters")
	}

	manifest, err := collection.ReadManifest(args[0])
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(gopts.stdout)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(manifest), "Encode")
	}

	info := manifest.CollectionInfo
	_, _ = fmt.Fprintf(gopts.stdout, "Name:         %s\n", info.FQCN())
	_, _ = fmt.Fprintf(gopts.stdout, "Version:      %s\n", info.Version)
	_, _ = fmt.Fprintf(gopts.stdout, "Authors:      %s\n", strings.Join(info.Authors, ", "))
	if info.Description != "" {
		_, _ = fmt.Fprintf(gopts.stdout, "Description:  %s\n", info.Description)
	}
	if len(info.License) > 0 {
		_, _ = fmt.Fprintf(gopts.stdout, "License:      %s\n", strings.Join(info.License, ", "))
	}
	if len(info.Tags) > 0 {
		_, _ = fmt.Fprintf(gopts.stdout, "Tags:         %s\n", strings.Join(info.Tags, ", "))
	}
	if len(info.Dependencies) > 0 {
		_, _ = fmt.Fprintf(gopts.stdout, "Dependencies:\n")
		for name, constraint := range info.Dependencies {
			_, _ = fmt.Fprintf(gopts.stdout, "  %s: %s\n", name, constraint)
		}
	}
	if manifest.FileManifestFile.ChksumSHA256 != nil {
		_, _ = fmt.Fprintf(gopts.stdout, "Files:        %s (%s:%s)\n",
			manifest.FileManifestFile.Name, collection.ChecksumType, *manifest.FileManifestFile.ChksumSHA256)
	}

	return nil
}
