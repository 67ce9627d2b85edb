package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/willibrandon/slntools/cmd/slntools/config"
	"github.com/willibrandon/slntools/cmd/slntools/output"
	"github.com/willibrandon/slntools/linker"
	"github.com/willibrandon/slntools/mapping"
)

// SwapOptions holds the configuration for the swap command.
type SwapOptions struct {
	SolutionDir string
	Test        bool
}

// NewSwapCommand creates the swap command.
func NewSwapCommand(console *output.Console, settings *config.Settings) *cobra.Command {
	opts := &SwapOptions{}

	cmd := &cobra.Command{
		Use:   "swap <PROJECT_NAME>",
		Short: "Swap a dependency between its NuGet package and its local source project",
		Long: `Swap a dependency between its NuGet package and its local source project.

If PROJECT_NAME is not part of the solution, every assembly reference to it is
replaced by a project reference to the local project listed in popper.config,
and the local project is added to the solution. If it is part of the solution,
the project references go back to the assembly in the packages folder and the
project is removed from the solution.

popper.config lives next to the solution:

  <Popper>
    <Project Name="Widgets" ProjectFile="$(DEV)\Widgets\Widgets.csproj" />
  </Popper>

Examples:
  slntools swap Widgets
  slntools swap Widgets --slndir src`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwap(cmd.Context(), console, settings, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SolutionDir, "slndir", "s", "", "Directory containing the solution (defaults to the nearest one above the current directory)")
	cmd.Flags().BoolVar(&opts.Test, "test", false, "Write results to *.test.* files next to the originals")
	_ = cmd.Flags().MarkHidden("test")

	return cmd
}

// runSwap implements the swap command logic.
func runSwap(ctx context.Context, console *output.Console, settings *config.Settings, name string, opts *SwapOptions) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	linkerOpts := []linker.Option{
		linker.WithLogger(console.Logger()),
		linker.WithEnv(mapping.Environ(os.Environ())),
		linker.WithWorkDir(workDir),
	}
	if opts.Test {
		linkerOpts = append(linkerOpts, linker.WithOutputMarker(settings.Swap.TestMarker))
	}

	result, err := linker.New(linkerOpts...).Swap(ctx, linker.Request{
		SolutionDir: opts.SolutionDir,
		ProjectName: name,
	})
	if err != nil {
		return err
	}

	if len(result.ModifiedProjects) == 0 {
		console.Warning("no project in %s references %s", result.SolutionPath, name)
	}

	switch result.Direction {
	case linker.ToLocal:
		console.Success("Linked %s to local project %s", name, result.LocalProjectPath)
	case linker.ToPackage:
		console.Success("Linked %s back to its package", name)
	}

	for _, path := range result.Written {
		console.Detail("  wrote %s", path)
	}

	return nil
}
