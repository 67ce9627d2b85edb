// cmd/slntools/output/console.go
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/willibrandon/slntools/observability"
)

// Verbosity levels
type Verbosity int

const (
	// VerbosityQuiet shows errors only
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal shows errors, warnings, and results (default)
	VerbosityNormal
	// VerbosityDetailed shows above + the files each command touches
	VerbosityDetailed
	// VerbosityDiagnostic shows above + every swap step
	VerbosityDiagnostic
)

// ParseVerbosity parses a verbosity name. Single letters (q, n, d, diag) are accepted.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(s) {
	case "q", "quiet":
		return VerbosityQuiet, nil
	case "n", "normal", "":
		return VerbosityNormal, nil
	case "d", "detailed":
		return VerbosityDetailed, nil
	case "diag", "diagnostic":
		return VerbosityDiagnostic, nil
	default:
		return VerbosityNormal, fmt.Errorf("invalid verbosity %q (expected quiet, normal, detailed or diagnostic)", s)
	}
}

func (v Verbosity) String() string {
	switch v {
	case VerbosityQuiet:
		return "quiet"
	case VerbosityDetailed:
		return "detailed"
	case VerbosityDiagnostic:
		return "diagnostic"
	default:
		return "normal"
	}
}

// Console provides output abstraction
type Console struct {
	out       io.Writer
	err       io.Writer
	verbosity Verbosity
	mu        sync.Mutex
	colors    bool
}

// NewConsole creates a new console
func NewConsole(out, err io.Writer, verbosity Verbosity) *Console {
	c := &Console{
		out:       out,
		err:       err,
		verbosity: verbosity,
		colors:    IsColorEnabled(),
	}

	if !c.colors {
		setColorOutput(false)
	}

	return c
}

// DefaultConsole creates a console with stdout/stderr and normal verbosity
func DefaultConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr, VerbosityNormal)
}

// SetVerbosity sets the verbosity level
func (c *Console) SetVerbosity(v Verbosity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbosity = v
}

// GetVerbosity returns the current verbosity level
func (c *Console) GetVerbosity() Verbosity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbosity
}

// SetColors enables or disables color output
func (c *Console) SetColors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colors = enabled
	setColorOutput(enabled)
}

// Logger returns a structured logger writing to the error stream at a level
// matching the console verbosity.
func (c *Console) Logger() observability.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verbosity == VerbosityQuiet {
		return observability.NewNullLogger()
	}
	return observability.NewLogger(c.err, observability.ParseLevel(c.verbosity.String()))
}

// Print writes to output
func (c *Console) Print(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, a...)
}

// Println writes line to output
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted output
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Success writes success message (green)
func (c *Console) Success(format string, a ...any) {
	c.colored(c.out, successColor, VerbosityNormal, format, a...)
}

// Error writes error message (red)
func (c *Console) Error(format string, a ...any) {
	c.colored(c.err, errorColor, VerbosityQuiet, "Error: "+format, a...)
}

// Warning writes warning message (yellow)
func (c *Console) Warning(format string, a ...any) {
	c.colored(c.out, warningColor, VerbosityNormal, "Warning: "+format, a...)
}

// Info writes info message (cyan)
func (c *Console) Info(format string, a ...any) {
	c.colored(c.out, infoColor, VerbosityNormal, format, a...)
}

// Debug writes debug message (white)
func (c *Console) Debug(format string, a ...any) {
	c.colored(c.out, debugColor, VerbosityDiagnostic, "[DEBUG] "+format, a...)
}

// Detail writes detailed message
func (c *Console) Detail(format string, a ...any) {
	if c.GetVerbosity() >= VerbosityDetailed {
		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintf(c.out, format+"\n", a...)
	}
}

// colored writes format in clr when the console verbosity is at least level
func (c *Console) colored(w io.Writer, clr *color.Color, level Verbosity, format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verbosity < level {
		return
	}
	if c.colors {
		_, _ = clr.Fprintf(w, format+"\n", a...)
	} else {
		fmt.Fprintf(w, format+"\n", a...)
	}
}
