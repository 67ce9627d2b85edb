// Package output provides console output formatting and colorization.
package output

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Message colors. Diagnostics are dimmed so swap results stand out.
var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	debugColor   = color.New(color.FgHiBlack)
)

// IsColorEnabled reports whether stdout is a color-capable terminal and
// NO_COLOR is unset.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// fatih/color keeps the switch process-wide
func setColorOutput(enabled bool) {
	color.NoColor = !enabled
}
