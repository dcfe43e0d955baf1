package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tlucal/internal/course"
	"tlucal/internal/exam"
	"tlucal/internal/hourslot"
	"tlucal/internal/model"
	"tlucal/internal/registration"
)

// writeJSON prints v indented. Normalizer failures are reported inside
// the envelope, not as a command error.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// normalizeCmd wires a document normalizer to a one-argument command.
func normalizeCmd[T any](use, short string, fn func([]byte) ([]T, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), model.NewResult(fn(data)))
		},
	}
}

func coursesCmd() *cobra.Command {
	return normalizeCmd("courses", "Expand a course list into one record per timetable entry", course.Normalize)
}

func hoursCmd() *cobra.Command {
	return normalizeCmd("hours", "Parse the teaching-period catalog", hourslot.Parse)
}

func examsCmd() *cobra.Command {
	return normalizeCmd("exams", "Flatten exam-room assignments", exam.NormalizeRooms)
}

func examSchedulesCmd() *cobra.Command {
	return normalizeCmd("exam-schedules", "Parse exam schedules and their periods", exam.ParseSchedules)
}

func registrationCmd() *cobra.Command {
	return normalizeCmd("registration", "Parse a course-registration period", func(data []byte) ([]model.RegistrationPeriod, error) {
		p, err := registration.Parse(data)
		if err != nil {
			return nil, err
		}
		return []model.RegistrationPeriod{p}, nil
	})
}
