package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/remote"
	"github.com/colpack/colpack/internal/ui"
)

var version = "0.1.0-dev (compiled manually)"

// GlobalOptions hold all global options for colpack.
type GlobalOptions struct {
	Quiet   bool
	Verbose int

	remote.TransportOptions

	stdout io.Writer
	stderr io.Writer

	// verbosity is set as follows:
	//  0 means: don't print any messages except errors, this is used when --quiet is specified
	//  1 is the default: print essential messages
	//  2 means: print more messages, report minor things, this is used when --verbose is specified
	//  3 means: print very detailed debug messages, this is used when --verbose=2 is specified
	verbosity uint
}

var globalOptions = GlobalOptions{
	stdout: os.Stdout,
	stderr: os.Stderr,
}

func (opts *GlobalOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "do not output comprehensive progress report")
	f.CountVarP(&opts.Verbose, "verbose", "v", "be verbose (specify multiple times or a level using --verbose=n``, max level/times is 2)")
	f.StringSliceVar(&opts.RootCertFilenames, "cacert", nil, "`file` to load root certificates from (default: use system certificates or $COLPACK_CACERT)")
	f.BoolVar(&opts.InsecureTLS, "insecure-tls", false, "skip TLS certificate verification when downloading artifacts (insecure)")

	if os.Getenv("COLPACK_CACERT") != "" {
		opts.RootCertFilenames = strings.Split(os.Getenv("COLPACK_CACERT"), ",")
	}
}

func (opts *GlobalOptions) PreRun() error {
	// set verbosity, default is one
	opts.verbosity = 1
	if opts.Quiet && opts.Verbose > 0 {
		return errors.Fatal("--quiet and --verbose cannot be specified at the same time")
	}

	switch {
	case opts.Verbose >= 2:
		opts.verbosity = 3
	case opts.Verbose > 0:
		opts.verbosity = 2
	case opts.Quiet:
		opts.verbosity = 0
	}

	return nil
}

// printer returns the message sink configured by the global flags.
func (opts *GlobalOptions) printer() ui.Printer {
	return ui.NewStreamPrinter(opts.stdout, opts.stderr, opts.verbosity)
}
