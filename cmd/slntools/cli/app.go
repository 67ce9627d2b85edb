// cmd/slntools/cli/app.go
package cli

import (
	"github.com/spf13/cobra"

	"github.com/willibrandon/slntools/cmd/slntools/config"
	"github.com/willibrandon/slntools/cmd/slntools/output"
)

var rootCmd = newRootCommand()

// Console is the global console for CLI commands
var Console *output.Console

// Settings holds the user settings. It is filled in before any command runs.
var Settings *config.Settings

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slntools",
		Short: "Visual Studio solution and source file tools",
		Long: `slntools maintains Visual Studio solutions and their source files.

swap moves a dependency between its NuGet package and its local source project.
endings, spaces and todos report on and fix source text files.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: applySettings,
		Run: func(cmd *cobra.Command, args []string) {
			// Show help when no command is provided
			_ = cmd.Help()
		},
	}

	cmd.PersistentFlags().String("config", "", "Settings file to use (default $XDG_CONFIG_HOME/slntools/config.yaml)")
	cmd.PersistentFlags().String("verbosity", "normal", "Display verbosity (quiet, normal, detailed, diagnostic)")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	Console = output.DefaultConsole()
	Settings = config.New()
}

// applySettings loads the settings file and applies it, with command line
// flags taking precedence.
func applySettings(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	*Settings = *loaded

	verbosity := Settings.Verbosity
	if f := cmd.Flags().Lookup("verbosity"); f != nil && f.Changed {
		verbosity = f.Value.String()
	}
	v, err := output.ParseVerbosity(verbosity)
	if err != nil {
		return err
	}
	Console.SetVerbosity(v)

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		Console.SetColors(false)
	} else if Settings.Color != nil {
		Console.SetColors(*Settings.Color && output.IsColorEnabled())
	}

	return nil
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
