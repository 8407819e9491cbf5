package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/autocommit/internal/gitrepo"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Stage, commit and push pending changes immediately, skipping the debounce",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		repo := gitrepo.New(cfg.RepoPath)
		isRepo, err := repo.IsRepository()
		if err != nil {
			return err
		}
		if !isRepo {
			return fmt.Errorf("%s is not a git repository", cfg.RepoPath)
		}

		if err := repo.StageAll(); err != nil {
			return err
		}
		status, err := repo.ReadStatus()
		if err != nil {
			return err
		}
		if len(status.Pending()) == 0 && len(status.Deleted) == 0 {
			cmd.Println("nothing to commit")
			return nil
		}

		now := time.Now()
		hash, err := repo.Commit(fmt.Sprintf("auto-commit %s", now.Format(time.RFC3339)),
			cfg.AuthorName, cfg.AuthorEmail, now)
		if err != nil {
			return err
		}
		cmd.Printf("committed %s\n", hash)

		if err := repo.Push(); err != nil {
			return fmt.Errorf("commit %s is local only: %w", hash, err)
		}
		cmd.Println("pushed to remote")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)
}
