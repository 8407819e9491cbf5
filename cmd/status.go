package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/autocommit/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of the running monitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := state.NewStore()
		if err != nil {
			return err
		}

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
		cmd.Printf("Last cycle: %s\n", r.LastCycle.Format(time.RFC3339))
		if r.PendingSince != nil {
			cmd.Printf("Pending since: %s\n", r.PendingSince.Format(time.RFC3339))
		} else {
			cmd.Println("Pending: none")
		}
		cmd.Printf("Commits: %d\n", r.CommitCount)
		if r.LastCommitTime != nil {
			cmd.Printf("Last commit: %s (%s)\n", r.LastCommitHash, r.LastCommitTime.Format(time.RFC3339))
		}
		if r.PushPending {
			cmd.Println("Push: pending retry")
		}
		if r.LastError != "" {
			cmd.Printf("Last error: %s\n", r.LastError)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
