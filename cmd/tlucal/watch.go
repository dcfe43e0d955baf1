package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	appLog "tlucal/internal/log"
)

func watchCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild on the configured cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			base := filepath.Dir(root.configPath)

			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case sig := <-sigCh:
					appLog.Info("signal received, shutting down", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			rebuild := func() {
				if err := runBuild(ctx, cfg, base); err != nil {
					appLog.Error("scheduled build failed", err)
				}
			}

			c, err := newScheduler(cfg.Location(), cfg.RefreshCron, rebuild)
			if err != nil {
				appLog.Error("invalid refresh schedule", err, "refresh", cfg.RefreshCron)
				return err
			}

			rebuild()
			c.Start()
			appLog.Info("watching", "refresh", cfg.RefreshCron)

			<-ctx.Done()

			// Wait for a running build to finish.
			<-c.Stop().Done()
			appLog.Info("tlucal exiting")
			return nil
		},
	}
}

// newScheduler runs job on spec in loc. A tick that fires while the
// previous build is still running is skipped.
func newScheduler(loc *time.Location, spec string, job func()) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(skipOverlap()),
	)
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, err
	}
	return c, nil
}

func skipOverlap() cron.JobWrapper {
	return cron.SkipIfStillRunning(cronLogger{})
}

// cronLogger routes cron's logr-style calls into appLog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
