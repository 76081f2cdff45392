package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/gambit/internal/cli"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Play a scripted turn of the skirmish scenario",
	Long: `Installs the skirmish scenario when the store is empty and plays a short turn.
Dice are rolled automatically unless --mode text, json or process is given.
In process mode the programs listed in --providers answer prompts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		quiet, _ := cmd.Flags().GetBool("quiet")
		providers, _ := cmd.Flags().GetString("providers")
		if cmd.Flags().Changed("seed") {
			cfg.Dice.Seed, _ = cmd.Flags().GetInt64("seed")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := cli.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.SeedIfEmpty(ctx); err != nil {
			return err
		}
		return cli.RunDemo(ctx, st, cli.DemoOptions{
			Mode:  mode,
			In:    os.Stdin,
			Out:   os.Stdout,
			Quiet: quiet,

			ProvidersPath: providers,
		})
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().String("mode", cli.ModeAuto, "How prompts are answered (auto, text, json, process)")
	demoCmd.Flags().String("providers", "providers.yaml", "Program allow-list for --mode process")
	demoCmd.Flags().Bool("quiet", false, "Only print prompts")
	demoCmd.Flags().Int64("seed", 0, "Dice seed (0 = random)")

	// Running gambit without a subcommand plays the demo.
	rootCmd.RunE = demoCmd.RunE
}
