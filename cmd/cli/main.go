package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/cmd/cli/commands"
	"github.com/jakechorley/guard-rota/pkg/utils/logging"
)

var (
	env     string
	logDir  string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:          "guard-rota",
		Short:        "Guard Rota - weekly shift scheduling for hotel security teams",
		Long:         `A CLI tool that builds weekly guard schedules from hotel requirements and worker availability.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Init(ctx, env, logging.Options{Dir: logDir, Verbose: verbose})
		},
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", logging.DefaultDir, "Directory for JSON log files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	// Add all commands
	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.AutoCmd(app))
	rootCmd.AddCommand(commands.ViewCmd(app))
	rootCmd.AddCommand(commands.HistoryCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.AvailabilityCmd(app))
	rootCmd.AddCommand(commands.RequirementsCmd(app))

	err := rootCmd.Execute()

	// Post-run hooks are skipped when a command fails, so clean up here
	if closeErr := app.Close(context.WithoutCancel(ctx)); closeErr != nil && app.Logger != nil {
		app.Logger.Warn("Failed to close connections", zap.Error(closeErr))
	}
	if app.Logger != nil {
		app.Logger.Sync()
	}

	if err != nil {
		stop()
		os.Exit(1)
	}
}
