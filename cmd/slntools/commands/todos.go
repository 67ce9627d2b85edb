package commands

import (
	"github.com/spf13/cobra"

	"github.com/willibrandon/slntools/cmd/slntools/config"
	"github.com/willibrandon/slntools/cmd/slntools/output"
	"github.com/willibrandon/slntools/textfile"
)

// NewTodosCommand creates the todos command.
func NewTodosCommand(console *output.Console, settings *config.Settings) *cobra.Command {
	var extensions []string

	cmd := &cobra.Command{
		Use:   "todos [DIR]",
		Short: "List TODO comments in source files",
		Long: `List "// TODO" comments in the source files under DIR (default: current directory).
bin, obj and .git directories are skipped.

Examples:
  slntools todos
  slntools todos src --ext .cs --ext .vb`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if !cmd.Flags().Changed("ext") {
				extensions = settings.Todos.Extensions
			}
			return runTodos(console, root, extensions)
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "File extensions to scan (default .cs)")

	return cmd
}

func runTodos(console *output.Console, root string, extensions []string) error {
	count := 0
	err := textfile.ScanTodos(root, extensions, func(td textfile.Todo) error {
		count++
		console.Println(td.String())
		return nil
	})
	if err != nil {
		return err
	}

	console.Detail("%d TODO comment(s) found", count)
	return nil
}
