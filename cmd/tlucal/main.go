package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appLog "tlucal/internal/log"
)

var version = "dev"

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Sync()
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:           "tlucal",
		Short:         "Normalize TLU student-portal JSON into schedules, reminders and calendars",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.logLevel != "" {
				appLog.SetLevel(appLog.ParseLevel(flags.logLevel))
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "tlucal.yaml", "Path to config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(coursesCmd())
	rootCmd.AddCommand(hoursCmd())
	rootCmd.AddCommand(examsCmd())
	rootCmd.AddCommand(examSchedulesCmd())
	rootCmd.AddCommand(registrationCmd())
	rootCmd.AddCommand(remindersCmd(&flags))
	rootCmd.AddCommand(buildCmd(&flags))
	rootCmd.AddCommand(watchCmd(&flags))

	return rootCmd
}
