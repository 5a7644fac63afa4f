// Package ui contains the message sink used by library code to report
// notices and warnings without depending on the CLI.
package ui

import (
	"fmt"
	"io"
)

// A Printer can print messages at different log levels.
type Printer interface {
	// E prints an error or warning message, regardless of verbosity.
	E(msg string, args ...interface{})
	// P prints a default message.
	P(msg string, args ...interface{})
	// V prints a verbose message.
	V(msg string, args ...interface{})
	// VV prints a very verbose, debug-like message.
	VV(msg string, args ...interface{})
}

// NoopPrinter discards all messages.
type NoopPrinter struct{}

var _ Printer = (*NoopPrinter)(nil)

func (*NoopPrinter) E(msg string, args ...interface{})  {}
func (*NoopPrinter) P(msg string, args ...interface{})  {}
func (*NoopPrinter) V(msg string, args ...interface{})  {}
func (*NoopPrinter) VV(msg string, args ...interface{}) {}

// StreamPrinter writes messages to a pair of output streams, honoring a
// verbosity level:
//
//	0 means: don't print any messages except errors, used for --quiet
//	1 is the default: print essential messages
//	2 means: print more messages, used for --verbose
//	3 means: print very detailed messages, used for --verbose=2
type StreamPrinter struct {
	stdout    io.Writer
	stderr    io.Writer
	verbosity uint
}

var _ Printer = (*StreamPrinter)(nil)

// NewStreamPrinter returns a Printer writing to stdout/stderr with the given
// verbosity.
func NewStreamPrinter(stdout, stderr io.Writer, verbosity uint) *StreamPrinter {
	return &StreamPrinter{stdout: stdout, stderr: stderr, verbosity: verbosity}
}

func (p *StreamPrinter) print(w io.Writer, msg string, args ...interface{}) {
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	fmt.Fprintf(w, msg, args...)
}

func (p *StreamPrinter) E(msg string, args ...interface{}) {
	p.print(p.stderr, msg, args...)
}

func (p *StreamPrinter) P(msg string, args ...interface{}) {
	if p.verbosity >= 1 {
		p.print(p.stdout, msg, args...)
	}
}

func (p *StreamPrinter) V(msg string, args ...interface{}) {
	if p.verbosity >= 2 {
		p.print(p.stdout, msg, args...)
	}
}

func (p *StreamPrinter) VV(msg string, args ...interface{}) {
	if p.verbosity >= 3 {
		p.print(p.stdout, msg, args...)
	}
}
