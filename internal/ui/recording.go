package ui

import "fmt"

// RecordingPrinter stores all messages for inspection, mainly in tests.
type RecordingPrinter struct {
	Errors   []string
	Messages []string
	Verbose  []string
}

var _ Printer = (*RecordingPrinter)(nil)

func (p *RecordingPrinter) E(msg string, args ...interface{}) {
	p.Errors = append(p.Errors, fmt.Sprintf(msg, args...))
}

func (p *RecordingPrinter) P(msg string, args ...interface{}) {
	p.Messages = append(p.Messages, fmt.Sprintf(msg, args...))
}

func (p *RecordingPrinter) V(msg string, args ...interface{}) {
	p.Verbose = append(p.Verbose, fmt.Sprintf(msg, args...))
}

func (p *RecordingPrinter) VV(msg string, args ...interface{}) {
	p.Verbose = append(p.Verbose, fmt.Sprintf(msg, args...))
}
