// Package schedule turns weekly timetable entries into concrete,
// absolute-time class reminders.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"github.com/tidwall/gjson"

	"tlucal/internal/field"
	"tlucal/internal/hourslot"
	appLog "tlucal/internal/log"
	"tlucal/internal/model"
)

const (
	msPerMinute = int64(60_000)
	msPerHour   = int64(3_600_000)
	msPerDay    = int64(86_400_000)

	// firstWeekday is the upstream weekIndex of the first academic day
	// (2 = Monday in the backend's numbering).
	firstWeekday = 2

	reminderIDModulus = 2147483647

	unknownRoom = "Unknown"
	unknownTime = "00:00"
)

// Options controls reminder generation.
type Options struct {
	// SemesterStart is the epoch-millis instant of day 0 of week 1.
	SemesterStart int64

	// MaxWeeksPerEntry caps the recurrence window of a single timetable
	// entry. Zero means no cap.
	MaxWeeksPerEntry int
}

// Series is one timetable entry with its hour slot resolved: a weekly
// meeting that recurs over [FromWeek, ToWeek].
type Series struct {
	CourseID    int
	CourseTitle string
	CourseCode  string
	Room        string
	DayOfWeek   int
	FromWeek    int
	ToWeek      int

	Slot    model.HourSlot
	EndSlot model.HourSlot
	HasEnd  bool

	SemesterStart int64

	// Truncated is set when MaxWeeksPerEntry shortened the window.
	Truncated bool
}

// Plan resolves every timetable entry of the course list against the hour
// slot catalog. Entries whose start slot is unknown are skipped.
func Plan(courses, hours []byte, opts Options) ([]Series, error) {
	root, err := field.ParseArray(courses)
	if err != nil {
		return nil, fmt.Errorf("courses: %w", err)
	}
	slots, err := hourslot.Parse(hours)
	if err != nil {
		return nil, fmt.Errorf("hour slots: %w", err)
	}
	ix := hourslot.NewIndex(slots)

	out := make([]Series, 0)
	skipped := 0
	truncated := 0

	for _, item := range root.Array() {
		cs, ok := field.CourseSubject.Node(item)
		if !ok {
			continue
		}
		timetables := cs.Get("timetables")
		if !timetables.IsArray() {
			continue
		}

		title := field.CourseName.String(item)
		code := field.CourseCode.String(item)
		courseID := field.Int(item, "id")

		for _, tt := range timetables.Array() {
			s, ok := resolveSeries(tt, ix)
			if !ok {
				skipped++
				continue
			}
			s.CourseID = courseID
			s.CourseTitle = title
			s.CourseCode = code
			s.SemesterStart = opts.SemesterStart

			if opts.MaxWeeksPerEntry > 0 && s.Weeks() > opts.MaxWeeksPerEntry {
				s.ToWeek = s.FromWeek + opts.MaxWeeksPerEntry - 1
				s.Truncated = true
				truncated++
				appLog.Warn("schedule: truncated recurrence window due to cap",
					"course_code", code,
					"from_week", s.FromWeek,
					"cap", opts.MaxWeeksPerEntry,
				)
			}
			out = append(out, s)
		}
	}

	appLog.Debug("schedule planned",
		"series", len(out),
		"skipped_no_slot", skipped,
		"truncated", truncated,
		"hour_slots", ix.Len(),
	)
	return out, nil
}

func resolveSeries(tt gjson.Result, ix *hourslot.Index) (Series, bool) {
	slot, ok := ix.Lookup(field.StartHour.Int(tt))
	if !ok {
		return Series{}, false
	}

	s := Series{
		DayOfWeek: field.Int(tt, "weekIndex"),
		FromWeek:  field.Int(tt, "fromWeek"),
		ToWeek:    field.Int(tt, "toWeek"),
		Slot:      slot,
		Room:      field.Room.String(tt),
	}
	if s.Room == "" {
		s.Room = unknownRoom
	}
	if end, ok := ix.Lookup(field.EndHour.Int(tt)); ok {
		s.EndSlot = end
		s.HasEnd = true
	}
	return s, true
}

// Generate plans and expands reminders for every class meeting.
func Generate(courses, hours []byte, opts Options) ([]model.Reminder, error) {
	series, err := Plan(courses, hours, opts)
	if err != nil {
		return nil, err
	}
	return Expand(series), nil
}

// Expand counts the reminders of all series first and fills an exactly
// sized slice second. Both passes walk the same series, so the count and
// the emitted events always agree.
func Expand(series []Series) []model.Reminder {
	total := 0
	for _, s := range series {
		total += s.Weeks()
	}

	out := make([]model.Reminder, 0, total)
	for _, s := range series {
		out = s.appendReminders(out)
	}
	return out
}

// Weeks is the number of occurrences in the window; an inverted window
// (ToWeek < FromWeek) is empty rather than an error.
func (s Series) Weeks() int {
	if s.ToWeek < s.FromWeek {
		return 0
	}
	return s.ToWeek - s.FromWeek + 1
}

// TriggerAt returns the epoch-millis start of the meeting in week w.
func (s Series) TriggerAt(week int) int64 {
	dayOffset := int64(week-1)*7 + int64(s.DayOfWeek-firstWeekday)
	day := s.SemesterStart + dayOffset*msPerDay
	return day + int64(s.Slot.Hour)*msPerHour + int64(s.Slot.Minute)*msPerMinute
}

// Duration is the span from the start slot to the end of the end slot, or
// zero when the end slot is unknown.
func (s Series) Duration() time.Duration {
	if !s.HasEnd {
		return 0
	}
	start := s.Slot.Hour*60 + s.Slot.Minute
	end := s.EndSlot.EndHour*60 + s.EndSlot.EndMinute
	if end <= start {
		return 0
	}
	return time.Duration(end-start) * time.Minute
}

// Reminders enumerates this series' events in week order.
func (s Series) Reminders() []model.Reminder {
	return s.appendReminders(make([]model.Reminder, 0, s.Weeks()))
}

func (s Series) appendReminders(out []model.Reminder) []model.Reminder {
	clock := s.Slot.StartString
	if clock == "" {
		clock = unknownTime
	}
	title := fmt.Sprintf("Lịch học: %s", s.CourseTitle)
	body := fmt.Sprintf("Phòng: %s | Giờ: %s", s.Room, clock)

	n := s.Weeks()
	for i := 0; i < n; i++ {
		w := s.FromWeek + i
		trigger := s.TriggerAt(w)
		out = append(out, model.Reminder{
			ID:         ReminderID(trigger),
			TriggerAt:  trigger,
			Title:      title,
			Body:       body,
			CourseCode: s.CourseCode,
			Week:       w,
			Room:       s.Room,
			Time:       clock,
		})
	}
	return out
}

// ReminderID derives a notification id from the trigger instant. Events
// about 2^31 seconds apart collide; that is accepted.
func ReminderID(triggerAt int64) int32 {
	return int32((triggerAt / 1000) % reminderIDModulus)
}

// RRule returns the weekly rule equivalent to this series, anchored at
// the first occurrence (second precision). Dtstart is UTC so the rule
// steps in whole 7-day blocks like TriggerAt, not in local wall time.
func (s Series) RRule() (*rrule.RRule, error) {
	n := s.Weeks()
	if n == 0 {
		// COUNT=0 would mean an unbounded rule.
		return nil, errors.New("schedule: empty recurrence window")
	}
	return rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   n,
		Dtstart: time.UnixMilli(s.TriggerAt(s.FromWeek)).UTC(),
	})
}
