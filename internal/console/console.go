// Package console prints coloured status lines for the CLI.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes prefixed messages to a writer, normally stderr
type Printer struct {
	out io.Writer
}

// New returns a Printer on os.Stderr
func New() *Printer {
	return &Printer{out: os.Stderr}
}

// NewWriter returns a Printer on w
func NewWriter(w io.Writer) *Printer {
	return &Printer{out: w}
}

// Warn prints "warning: ..." in yellow
func (p *Printer) Warn(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", color.New(color.FgYellow, color.Bold).Sprint("warning:"), fmt.Sprintf(format, args...))
}

// Info prints a plain informational line
func (p *Printer) Info(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "%s\n", fmt.Sprintf(format, args...))
}

// Success prints a line with a green check mark
func (p *Printer) Success(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}
