package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/willibrandon/slntools/cmd/slntools/output"
	"github.com/willibrandon/slntools/textfile"
)

// EndingsOptions holds the configuration for the endings command.
type EndingsOptions struct {
	OutputFile string
	Fix        string
}

// NewEndingsCommand creates the endings command.
func NewEndingsCommand(console *output.Console) *cobra.Command {
	opts := &EndingsOptions{}

	cmd := &cobra.Command{
		Use:   "endings <FILE>",
		Short: "Report or fix the line endings of a text file",
		Long: `Report the line endings of a text file, and optionally convert them.

With --fix auto the most common ending in the file is used.

Examples:
  slntools endings Program.cs
  slntools endings Program.cs --fix crlf
  slntools endings Program.cs --fix auto -o Fixed.cs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEndings(console, args[0], cmd.Flags().Changed("fix"), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "Output file (defaults to the input file)")
	cmd.Flags().StringVarP(&opts.Fix, "fix", "f", "auto", "Convert line endings to cr, lf, crlf or auto")

	return cmd
}

func runEndings(console *output.Console, path string, fix bool, opts *EndingsOptions) error {
	var ending textfile.LineEnding
	if fix {
		var err error
		if ending, err = textfile.ParseLineEnding(opts.Fix); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	stats := textfile.ScanLineEndings(data)
	report := fmt.Sprintf("%q, %s", path, stats)
	if !fix {
		console.Println(report)
		return nil
	}

	if ending == textfile.Auto {
		ending = stats.Predominant()
	}
	converted, n := textfile.ConvertLineEndings(data, ending)

	outPath := opts.OutputFile
	if outPath == "" {
		outPath = path
	}
	if stats.Count(ending)+1 != stats.Lines || outPath != path {
		if err := os.WriteFile(outPath, converted, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		report += fmt.Sprintf(" -> %q, lines=%d, %s=%d", outPath, n+1, ending, n)
	}

	console.Println(report)
	return nil
}
