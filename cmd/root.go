package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/autocommit/internal/config"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "autocommit",
	Short: "Commit and push working-tree changes once they have settled",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load and merge config layers: global file, repo file, environment.
		// Environment wins; the repo file location itself can come from
		// REPO_PATH, so the environment is read before the repo file.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		env, err := config.FromEnv()
		if err != nil {
			return err
		}
		repo, err := config.LoadRepo(config.Merge(global, env).RepoPath)
		if err != nil {
			return fmt.Errorf("loading repo config: %w", err)
		}
		cfg = config.Merge(global, repo, env)

		// Completeness is checked by the commands that actually talk to the
		// repository; status and view work without an author identity.
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}
