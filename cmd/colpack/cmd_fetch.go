package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/remote"
)

func newFetchCommand() *cobra.Command {
	var opts FetchOptions

	cmd := &cobra.Command{
		Use:   "fetch [flags] url",
		Short: "Download a collection artifact",
		Long: `
The "fetch" command downloads a collection artifact over HTTP(S) into a
directory. The download is staged in a temporary file and moved into place
once complete. When an expected SHA-256 digest is given with --hash, the
downloaded content is verified against it first.

Transient network and server errors are retried with exponential backoff.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), opts, globalOptions, args)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}

// FetchOptions collects all options for the fetch command.
type FetchOptions struct {
	OutputPath string
	Hash       string
}

func (opts *FetchOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.OutputPath, "output-path", ".", "`directory` to download the artifact to")
	f.StringVar(&opts.Hash, "hash", "", "expected SHA-256 `digest` of the artifact")
}

func runFetch(ctx context.Context, opts FetchOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 1 {
		return errors.Fatal("wrong number of parameters")
	}

	client, err := remote.NewClient(gopts.TransportOptions)
	if err != nil {
		return err
	}

	printer := gopts.printer()
	dest, err := remote.DownloadFile(ctx, client, args[0], opts.OutputPath, opts.Hash, printer)
	if err != nil {
		return err
	}

	printer.P("Downloaded %s", dest)
	return nil
}
