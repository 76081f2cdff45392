package main

import (
	"fmt"

	"github.com/aretw0/gambit/internal/cli"
	"github.com/aretw0/gambit/pkg/ports"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage suspended sessions",
	Long:  `List, inspect and remove sessions waiting for an interaction response.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all suspended sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store ports.SessionStore) error {
			ids, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(ids) == 0 {
				fmt.Println("No suspended sessions found.")
				return nil
			}
			fmt.Println("Suspended Sessions:")
			for _, id := range ids {
				fmt.Println("- " + id)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a session as JSON",
	Long:  `Prints a session as JSON. Variables matching session.redact_patterns are masked unless --raw is given.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return withStore(func(store ports.SessionStore) error {
			if !raw {
				var err error
				if store, err = cli.RedactedView(store, cfg.Session); err != nil {
					return err
				}
			}
			sc, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load session '%s': %w", args[0], err)
			}
			data, err := json.MarshalIndent(sc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id]...",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return fmt.Errorf("give at least one session id or --all")
		}
		return withStore(func(store ports.SessionStore) error {
			ids := args
			if all {
				var err error
				if ids, err = store.List(cmd.Context()); err != nil {
					return fmt.Errorf("list sessions: %w", err)
				}
			}
			failed := 0
			for _, id := range ids {
				if err := store.Delete(cmd.Context(), id); err != nil {
					fmt.Printf("Error removing '%s': %v\n", id, err)
					failed++
					continue
				}
				fmt.Printf("Removed session '%s'\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("%d session(s) could not be removed", failed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
	sessionInspectCmd.Flags().Bool("raw", false, "Do not mask sensitive variables")
}

func withStore(fn func(ports.SessionStore) error) error {
	store, _, _, closers, err := cli.OpenStores(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	return fn(store)
}
