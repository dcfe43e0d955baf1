package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tlucal/internal/calendar"
	"tlucal/internal/config"
	"tlucal/internal/ics"
	appLog "tlucal/internal/log"
	"tlucal/internal/schedule"
)

func buildCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Run every configured section and write the JSON bundle and the ICS feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), cfg, filepath.Dir(root.configPath))
		},
	}
}

// loadConfig loads the config file; --log-level wins over log_level.
func loadConfig(root *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", root.configPath)
		return nil, err
	}
	if root.logLevel == "" {
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	}

	appLog.Info("effective config",
		"timezone", cfg.Timezone,
		"semester_start", cfg.SemesterStart,
		"refresh", cfg.RefreshCron,
		"recurring_events", cfg.RecurringEvents,
		"alarm_minutes", cfg.AlarmMinutes,
		"max_weeks_per_entry", cfg.MaxWeeksPerEntry,
		"output_dir", cfg.Output.Dir,
	)
	return cfg, nil
}

// runBuild loads the configured documents relative to base, normalizes
// them and writes both outputs. Section failures are logged and kept in
// the JSON bundle; only I/O and configuration problems fail the build.
func runBuild(ctx context.Context, cfg *config.Config, base string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	paths := calendar.Paths{
		Courses:       config.Resolve(base, cfg.Inputs.Courses),
		Hours:         config.Resolve(base, cfg.Inputs.Hours),
		ExamRooms:     config.Resolve(base, cfg.Inputs.ExamRooms),
		ExamSchedules: config.Resolve(base, cfg.Inputs.ExamSchedules),
		Registration:  config.Resolve(base, cfg.Inputs.Registration),
	}

	opts := calendar.Options{Schedule: schedule.Options{MaxWeeksPerEntry: cfg.MaxWeeksPerEntry}}
	if paths.Courses != "" && paths.Hours != "" {
		start, err := cfg.SemesterStartMillis()
		if err != nil {
			return err
		}
		opts.Schedule.SemesterStart = start
	}

	docs, err := calendar.Load(ctx, paths)
	if err != nil {
		return err
	}
	bundle := calendar.Build(docs, opts)

	outDir := config.Resolve(base, cfg.Output.Dir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	var jsonBuf bytes.Buffer
	if err := writeJSON(&jsonBuf, bundle); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(outDir, cfg.Output.JSON), jsonBuf.Bytes()); err != nil {
		return err
	}

	var icsBuf bytes.Buffer
	err = ics.Export(&icsBuf, bundle.Series, bundle.Exams(), ics.ExportOptions{
		Name:      cfg.CalendarName,
		Location:  cfg.Location(),
		AlarmLead: cfg.AlarmLead(),
		Recurring: cfg.RecurringEvents,
	})
	if err != nil {
		return fmt.Errorf("ics export: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(outDir, cfg.Output.ICS), icsBuf.Bytes()); err != nil {
		return err
	}

	appLog.Info("build completed",
		"output_dir", outDir,
		"failed_sections", bundle.Failed(),
		"at", time.Now().In(cfg.Location()).Format(time.RFC3339),
	)
	return nil
}

// writeFileAtomic replaces path via a temp file in the same directory so
// calendar clients never read a half-written feed.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tlucal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
