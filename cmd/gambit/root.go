package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/gambit/internal/cli"
	"github.com/aretw0/gambit/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gambit",
	Short: "Gambit is a turn-based rules transaction kernel",
	Long: `Gambit resolves player commands into decisions, applies them atomically to the
game state and pauses whenever a rule needs a dice roll or a confirmation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("backend") {
			loaded.Store.Backend, _ = cmd.Flags().GetString("backend")
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger, err = cli.NewLogger(cfg.Log, os.Stderr)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: memory, file, sqlite or redis (default from config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (default from config)")
}
