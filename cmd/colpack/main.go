package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/colpack/colpack/internal/collection"
	"github.com/colpack/colpack/internal/debug"
	"github.com/colpack/colpack/internal/errors"
)

func init() {
	// don't import `go.uber.org/automaxprocs` to disable the log output
	_, _ = maxprocs.Set()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colpack",
		Short: "Build, verify and fetch collection artifacts",
		Long: `
colpack packages collection source trees into tar.gz artifacts with embedded,
checksummed manifests, and verifies, extracts and downloads such artifacts.
`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return globalOptions.PreRun()
		},
	}

	globalOptions.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newBuildCommand(),
		newExtractCommand(),
		newFetchCommand(),
		newInspectCommand(),
		newInstalledCommand(),
		newListCommand(),
		newVerifyCommand(),
		newVersionCommand(),
	)

	return cmd
}

func createGlobalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	go cleanupHandler(ch, cancel)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	return ctx
}

// cleanupHandler handles the SIGINT and SIGTERM signals.
func cleanupHandler(c <-chan os.Signal, cancel context.CancelFunc) {
	s := <-c
	debug.Log("signal %v received, cleaning up", s)
	_, _ = fmt.Fprintf(os.Stderr, "signal %v received, cleaning up\n", s)
	cancel()
}

// isExpectedError reports whether err is one of the well-known failure
// conditions whose message is already user readable.
func isExpectedError(err error) bool {
	var (
		configErr    *collection.ConfigurationError
		existsErr    *collection.ArtifactExistsError
		checksumErr  *collection.ChecksumMismatchError
		traversalErr *collection.PathTraversalError
		notFoundErr  *collection.MemberNotFoundError
		malformedErr *collection.MalformedArchiveError
	)
	return errors.As(err, &configErr) ||
		errors.As(err, &existsErr) ||
		errors.As(err, &checksumErr) ||
		errors.As(err, &traversalErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &malformedErr)
}

func main() {
	debug.Log("main %#v", os.Args)
	debug.Log("colpack %s compiled with %v on %v/%v",
		version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	ctx := createGlobalContext()
	err := newRootCommand().ExecuteContext(ctx)
	if err == nil {
		err = ctx.Err()
	}

	var exitMessage string
	switch {
	case errors.IsFatal(err):
		exitMessage = err.Error()
	case isExpectedError(err):
		exitMessage = err.Error()
	case err != nil:
		exitMessage = fmt.Sprintf("%+v", err)
	}

	var exitCode int
	switch {
	case err == nil:
		exitCode = 0
	case errors.Is(err, context.Canceled):
		exitCode = 130
	default:
		exitCode = 1
	}

	if exitCode != 0 {
		_, _ = fmt.Fprintf(globalOptions.stderr, "%v\n", exitMessage)
	}
	os.Exit(exitCode)
}
