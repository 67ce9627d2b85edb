// cmd/slntools/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/willibrandon/slntools/cmd/slntools/cli"
	"github.com/willibrandon/slntools/cmd/slntools/commands"
)

// Version information (set via ldflags during build)
var (
	version = "0.0.0-dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	// Set version info
	cli.Version = version
	cli.Commit = commit
	cli.Date = date
	cli.BuiltBy = builtBy

	// Setup version after variables are set
	cli.SetupVersion()

	// Register commands
	cli.AddCommand(commands.NewVersionCommand(cli.Console))
	cli.AddCommand(commands.NewSwapCommand(cli.Console, cli.Settings))
	cli.AddCommand(commands.NewEndingsCommand(cli.Console))
	cli.AddCommand(commands.NewSpacesCommand(cli.Console, cli.Settings))
	cli.AddCommand(commands.NewTodosCommand(cli.Console, cli.Settings))

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		os.Exit(130) // 128 + SIGINT
	}()

	// Execute CLI
	if err := cli.Execute(); err != nil {
		// SilenceErrors is set on the root command
		cli.Console.Error("%v", err)
		os.Exit(1)
	}
}
