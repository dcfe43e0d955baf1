package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"tlucal/internal/config"
	"tlucal/internal/model"
	"tlucal/internal/schedule"
)

func remindersCmd(root *rootFlags) *cobra.Command {
	var coursesPath, hoursPath, semesterStart string
	var maxWeeks int

	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Generate class reminders from a course list and the period catalog",
		Long: `Generates one reminder per class meeting. The semester start is taken
from --semester-start, or from the config file when the flag is empty; the
config's max_weeks_per_entry applies only in the latter case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The config file is only read, never created, and only when
			// the semester start is not given on the command line. Its
			// window cap applies only then.
			cfg := config.DefaultConfig()
			cfg.SemesterStart = semesterStart
			if semesterStart == "" {
				loaded, err := config.Read(root.configPath)
				if err != nil {
					if errors.Is(err, fs.ErrNotExist) {
						return fmt.Errorf("no --semester-start and no config at %s", root.configPath)
					}
					return err
				}
				cfg = loaded
				if !cmd.Flags().Changed("max-weeks") {
					maxWeeks = cfg.MaxWeeksPerEntry
				}
			}
			start, err := cfg.SemesterStartMillis()
			if err != nil {
				return err
			}

			courses, err := os.ReadFile(coursesPath)
			if err != nil {
				return err
			}
			hours, err := os.ReadFile(hoursPath)
			if err != nil {
				return err
			}

			rs, err := schedule.Generate(courses, hours, schedule.Options{
				SemesterStart:    start,
				MaxWeeksPerEntry: maxWeeks,
			})
			return writeJSON(cmd.OutOrStdout(), model.NewResult(rs, err))
		},
	}

	cmd.Flags().StringVar(&coursesPath, "courses", "", "Course list JSON file")
	cmd.Flags().StringVar(&hoursPath, "hours", "", "Period catalog JSON file")
	cmd.Flags().StringVar(&semesterStart, "semester-start", "", "Semester start (epoch millis or YYYY-MM-DD)")
	cmd.Flags().IntVar(&maxWeeks, "max-weeks", 0, "Cap on weeks per timetable entry (0 = no cap)")
	_ = cmd.MarkFlagRequired("courses")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}
