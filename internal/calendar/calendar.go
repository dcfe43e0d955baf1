// Package calendar loads the portal documents named by the configuration
// and runs every configured normalizer over them.
package calendar

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"tlucal/internal/course"
	"tlucal/internal/exam"
	"tlucal/internal/hourslot"
	appLog "tlucal/internal/log"
	"tlucal/internal/model"
	"tlucal/internal/registration"
	"tlucal/internal/schedule"
)

// Paths names the input documents. Empty means not configured.
type Paths struct {
	Courses       string
	Hours         string
	ExamRooms     string
	ExamSchedules string
	Registration  string
}

// Documents holds raw document bodies. A nil body means the section is
// not configured.
type Documents struct {
	Courses       []byte
	Hours         []byte
	ExamRooms     []byte
	ExamSchedules []byte
	Registration  []byte
}

// Load reads all configured documents concurrently. Any read failure
// cancels the rest and is returned.
func Load(ctx context.Context, p Paths) (Documents, error) {
	var docs Documents

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	read := func(path string, dst *[]byte) {
		if path == "" {
			return
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			*dst = b
			return nil
		})
	}

	read(p.Courses, &docs.Courses)
	read(p.Hours, &docs.Hours)
	read(p.ExamRooms, &docs.ExamRooms)
	read(p.ExamSchedules, &docs.ExamSchedules)
	read(p.Registration, &docs.Registration)

	if err := g.Wait(); err != nil {
		return Documents{}, err
	}
	return docs, nil
}

// Options controls Build.
type Options struct {
	Schedule schedule.Options
}

// Bundle collects one result envelope per configured section. Sections
// that were not configured stay nil.
type Bundle struct {
	Courses       *model.Result[model.CourseRecord]       `json:"courses,omitempty"`
	HourSlots     *model.Result[model.HourSlot]           `json:"hourSlots,omitempty"`
	Reminders     *model.Result[model.Reminder]           `json:"reminders,omitempty"`
	ExamRooms     *model.Result[model.ExamRoomRecord]     `json:"examRooms,omitempty"`
	ExamSchedules *model.Result[model.ExamSchedule]       `json:"examSchedules,omitempty"`
	Registration  *model.Result[model.RegistrationPeriod] `json:"registration,omitempty"`

	// Series backs the calendar export of the reminders.
	Series []schedule.Series `json:"-"`
}

// Failed lists the sections whose envelope carries an error.
func (b Bundle) Failed() []string {
	var out []string
	add := func(name string, ok bool) {
		if !ok {
			out = append(out, name)
		}
	}
	if b.Courses != nil {
		add("courses", b.Courses.OK())
	}
	if b.HourSlots != nil {
		add("hourSlots", b.HourSlots.OK())
	}
	if b.Reminders != nil {
		add("reminders", b.Reminders.OK())
	}
	if b.ExamRooms != nil {
		add("examRooms", b.ExamRooms.OK())
	}
	if b.ExamSchedules != nil {
		add("examSchedules", b.ExamSchedules.OK())
	}
	if b.Registration != nil {
		add("registration", b.Registration.OK())
	}
	return out
}

// Exams returns the normalized exam rooms, or nil when that section
// failed or is not configured.
func (b Bundle) Exams() []model.ExamRoomRecord {
	if b.ExamRooms == nil {
		return nil
	}
	return b.ExamRooms.Items
}

func envelope[T any](items []T, err error) *model.Result[T] {
	r := model.NewResult(items, err)
	return &r
}

// Build runs each configured section independently; a malformed document
// fails only its own section. Reminders need both courses and hours.
func Build(docs Documents, opts Options) Bundle {
	var b Bundle

	if docs.Courses != nil {
		b.Courses = envelope(course.Normalize(docs.Courses))
	}
	if docs.Hours != nil {
		b.HourSlots = envelope(hourslot.Parse(docs.Hours))
	}
	if docs.Courses != nil && docs.Hours != nil {
		series, err := schedule.Plan(docs.Courses, docs.Hours, opts.Schedule)
		if err == nil {
			b.Series = series
			b.Reminders = envelope(schedule.Expand(series), nil)
		} else {
			b.Reminders = envelope[model.Reminder](nil, err)
		}
	}
	if docs.ExamRooms != nil {
		b.ExamRooms = envelope(exam.NormalizeRooms(docs.ExamRooms))
	}
	if docs.ExamSchedules != nil {
		b.ExamSchedules = envelope(exam.ParseSchedules(docs.ExamSchedules))
	}
	if docs.Registration != nil {
		p, err := registration.Parse(docs.Registration)
		if err != nil {
			b.Registration = envelope[model.RegistrationPeriod](nil, err)
		} else {
			b.Registration = envelope([]model.RegistrationPeriod{p}, nil)
		}
	}

	for _, name := range b.Failed() {
		appLog.Warn("calendar: section failed", "section", name)
	}
	return b
}
