package genericclioptions

import (
	"fmt"
	"io"
	"os"
)

// IOStreams bundles a command's input/output/error streams so tests
// can substitute buffers for the real terminal.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	Verbose bool
}

// NewDefaultIOStreams returns streams wired to the real terminal.
func NewDefaultIOStreams() *IOStreams {
	return &IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

// Printf writes an unprefixed formatted message to Out.
func (s IOStreams) Printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Debugf writes to ErrOut only when Verbose is set.
func (s IOStreams) Debugf(format string, args ...any) {
	if s.Verbose {
		fmt.Fprintf(s.ErrOut, "debug: "+format, args...)
	}
}

// Infof writes an informational message to Out.
func (s IOStreams) Infof(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Warnf writes a warning to ErrOut.
func (s IOStreams) Warnf(format string, args ...any) {
	fmt.Fprintf(s.ErrOut, "warn: "+format, args...)
}
