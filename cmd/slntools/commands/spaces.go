package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/willibrandon/slntools/cmd/slntools/config"
	"github.com/willibrandon/slntools/cmd/slntools/output"
	"github.com/willibrandon/slntools/textfile"
)

// SpacesOptions holds the configuration for the spaces command.
type SpacesOptions struct {
	OutputFile string
	Mode       string
	TabSize    int
}

// NewSpacesCommand creates the spaces command.
func NewSpacesCommand(console *output.Console, settings *config.Settings) *cobra.Command {
	opts := &SpacesOptions{}

	cmd := &cobra.Command{
		Use:   "spaces <FILE>",
		Short: "Report or fix tabs and spaces at the start of lines",
		Long: `Report how the lines of a text file are indented, and optionally make the
indentation consistent.

Examples:
  slntools spaces Program.cs
  slntools spaces Program.cs --mode spaces --tabsize 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("tabsize") {
				opts.TabSize = settings.Spaces.TabSize
			}
			return runSpaces(console, args[0], cmd.Flags().Changed("mode"), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "Output file (defaults to the input file)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "tabs", "Convert line starts to tabs or spaces")
	cmd.Flags().IntVar(&opts.TabSize, "tabsize", textfile.DefaultTabSize, "Columns per tab")

	return cmd
}

func runSpaces(console *output.Console, path string, fix bool, opts *SpacesOptions) error {
	var mode textfile.IndentMode
	if fix {
		var err error
		if mode, err = textfile.ParseIndentMode(opts.Mode); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	report := fmt.Sprintf("%q, %s", path, textfile.ScanIndentation(data))
	if !fix {
		console.Println(report)
		return nil
	}

	fixed, changed := textfile.FixIndentation(data, mode, opts.TabSize)

	outPath := opts.OutputFile
	if outPath == "" {
		outPath = path
	}
	if changed > 0 || outPath != path {
		if err := os.WriteFile(outPath, fixed, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		report += fmt.Sprintf(" -> %q, %s, changed=%d", outPath, mode, changed)
	}

	console.Println(report)
	return nil
}
