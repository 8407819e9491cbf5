package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/autocommit/internal/gitrepo"
	"github.com/fakeyudi/autocommit/internal/logging"
	"github.com/fakeyudi/autocommit/internal/monitor"
	"github.com/fakeyudi/autocommit/internal/state"
)

var watchMode bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor daemon in the foreground",
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

		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer logger.Sync()

		branch, err := repo.CurrentBranch()
		if err != nil {
			return err
		}

		store, err := state.NewStore()
		if err != nil {
			return err
		}
		run := &state.Run{
			ID:        uuid.New().String(),
			PID:       os.Getpid(),
			RepoPath:  cfg.RepoPath,
			Branch:    branch,
			StartTime: time.Now(),
		}

		// Cancellation is cooperative: the loop notices the signal at the
		// next inter-cycle delay and finishes the in-flight cycle first.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var wake <-chan struct{}
		if watchMode {
			wake, err = monitor.WatchActivity(ctx, cfg.RepoPath)
			if err != nil {
				return fmt.Errorf("starting filesystem watcher: %w", err)
			}
		}

		m := &monitor.Monitor{
			Repo:        repo,
			Observer:    &monitor.Observer{Repo: repo},
			Tracker:     monitor.Tracker{Threshold: cfg.Threshold()},
			Interval:    cfg.Interval(),
			AuthorName:  cfg.AuthorName,
			AuthorEmail: cfg.AuthorEmail,
			Logger:      logger,
			Status:      store,
			RunState:    run,
			Wake:        wake,
		}

		logger.Info("monitor started",
			zap.String("repo", cfg.RepoPath),
			zap.String("branch", branch),
			zap.Int("check_interval_minutes", *cfg.IntervalMinutes),
			zap.Int("inactivity_threshold_minutes", *cfg.ThresholdMinutes),
			zap.Bool("watch", watchMode))

		err = m.Run(ctx)

		// The run file describes a live daemon only.
		if derr := store.Delete(); derr != nil {
			logger.Warn("removing run status", zap.Error(derr))
		}
		return err
	},
}

func init() {
	runCmd.Flags().BoolVar(&watchMode, "watch", false, "wake the poll loop early on filesystem activity")
	rootCmd.AddCommand(runCmd)
}
