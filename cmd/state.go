package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or discard the saved wizard progress",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved wizard state",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(cfg, logger)
		if !store.Restore() {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved progress.")
			return nil
		}
		if store.IsStale() {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠️  Saved progress is stale.")
		}
		return writeJSON(cmd.OutOrStdout(), store.State())
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new run, keeping nothing from the saved one",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(cfg, logger)
		store.Restore()
		store.ResetWizard()
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Wizard reset (session %s)\n", store.State().SessionID)
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved wizard progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		newStore(cfg, logger).ClearPersistedState()
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Saved progress removed")
		return nil
	},
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
	stateCmd.AddCommand(stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
