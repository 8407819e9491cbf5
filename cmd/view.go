package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/autocommit/internal/state"
	"github.com/fakeyudi/autocommit/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Live dashboard for the running monitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := state.NewStore()
		if err != nil {
			return err
		}

		// Fall back to the plain status output when stdout is not a terminal.
		if plainOutput || !term.IsTerminal(os.Stdout.Fd()) {
			return printRun(cmd, store)
		}

		return tui.Run(store, GetConfig().Threshold())
	},
}

// printRun writes a plain-text run summary, sharing the status command's shape.
func printRun(cmd *cobra.Command, store state.Store) error {
	r, err := store.Load()
	if err != nil {
		if errors.Is(err, state.ErrNoRun) {
			cmd.Println("no monitor running")
			return nil
		}
		return err
	}
	cmd.Printf("Repo: %s (branch %s)\n", r.RepoPath, r.Branch)
	cmd.Printf("Started: %s (pid %d)\n", r.StartTime.Format(time.RFC3339), r.PID)
	cmd.Printf("Commits: %d\n", r.CommitCount)
	if r.PendingSince != nil {
		cmd.Printf("Pending since: %s\n", r.PendingSince.Format(time.RFC3339))
	}
	return nil
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
