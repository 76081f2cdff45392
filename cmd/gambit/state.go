package main

import (
	"fmt"
	"os"

	"github.com/aretw0/gambit/internal/cli"
	"github.com/aretw0/gambit/internal/presentation/graph"
	"github.com/aretw0/gambit/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the authoritative state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the phase and every entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cli.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		tui.NewPrinter(os.Stdout).Units(st.Kernel.State())
		return nil
	},
}

var stateBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the board as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cli.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		fmt.Print(graph.BoardMermaid(st.Kernel.State(), nil))
		return nil
	},
}

var stateHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved state snapshots (sqlite backend)",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		st, err := cli.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		if st.SQLite == nil {
			return fmt.Errorf("history needs the sqlite backend, got %q", cfg.Store.Backend)
		}
		snaps, err := st.SQLite.Versions(cmd.Context(), limit)
		if err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Printf("%6d  %-8s %s\n", s.Version, s.Phase, s.SavedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateBoardCmd)
	stateCmd.AddCommand(stateHistoryCmd)
	stateHistoryCmd.Flags().Int("limit", 20, "Maximum number of snapshots")
}
