// Package ics renders class reminders and exam rooms as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"tlucal/internal/hourslot"
	appLog "tlucal/internal/log"
	"tlucal/internal/model"
	"tlucal/internal/schedule"
)

const (
	// defaultClassLength applies when a meeting has no resolvable end slot.
	defaultClassLength = 50 * time.Minute
	defaultExamLength  = 90 * time.Minute

	productID = "-//tlucal//TLU Calendar//VI"
)

// uidSpace namespaces the name-based event UIDs.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tlucal:calendar"))

// ExportOptions controls calendar rendering.
type ExportOptions struct {
	Name string

	// Location is used to place exam dates and clock times. Nil means UTC.
	Location *time.Location

	// AlarmLead adds a display alarm this long before each class. Zero
	// disables alarms.
	AlarmLead time.Duration

	// Recurring emits one RRULE event per series instead of one event per
	// week.
	Recurring bool

	// Stamp is written as DTSTAMP. Zero means now.
	Stamp time.Time
}

// Export writes a VCALENDAR holding every class meeting of series and
// every dated exam room. Output is deterministic for a fixed Stamp.
func Export(w io.Writer, series []schedule.Series, exams []model.ExamRoomRecord, opts ExportOptions) error {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(opts.Location.String())

	classes := 0
	for _, s := range series {
		if s.Weeks() == 0 {
			continue
		}
		if opts.Recurring {
			if err := addSeries(cal, s, opts); err != nil {
				return fmt.Errorf("series %s: %w", s.CourseCode, err)
			}
			classes++
			continue
		}
		for _, r := range s.Reminders() {
			addClass(cal, s, r, opts)
			classes++
		}
	}

	examCount := 0
	for _, e := range exams {
		if e.ExamDate == 0 {
			continue
		}
		addExam(cal, e, opts)
		examCount++
	}

	appLog.Info("ics export completed",
		"class_events", classes,
		"exam_events", examCount,
		"recurring", opts.Recurring,
	)
	return cal.SerializeTo(w)
}

func classLength(s schedule.Series) time.Duration {
	if d := s.Duration(); d > 0 {
		return d
	}
	return defaultClassLength
}

func newEvent(cal *ical.Calendar, key string, stamp time.Time) *ical.VEvent {
	uid := uuid.NewSHA1(uidSpace, []byte(key)).String() + "@tlucal"
	event := cal.AddEvent(uid)
	event.SetDtStampTime(stamp)
	return event
}

func addClass(cal *ical.Calendar, s schedule.Series, r model.Reminder, opts ExportOptions) {
	key := fmt.Sprintf("class/%d/%s/%d/%d/%d", s.CourseID, s.CourseCode, s.DayOfWeek, s.Slot.ID, r.TriggerAt)
	start := time.UnixMilli(r.TriggerAt).UTC()

	event := newEvent(cal, key, opts.Stamp)
	event.SetStartAt(start)
	event.SetEndAt(start.Add(classLength(s)))
	event.SetSummary(r.Title)
	event.SetLocation(r.Room)
	event.SetDescription(r.Body)
	addAlarm(event, r.Title, opts.AlarmLead)
}

func addSeries(cal *ical.Calendar, s schedule.Series, opts ExportOptions) error {
	rule, err := s.RRule()
	if err != nil {
		return err
	}
	key := fmt.Sprintf("series/%d/%s/%d/%d/%d", s.CourseID, s.CourseCode, s.DayOfWeek, s.Slot.ID, s.FromWeek)
	// DTSTART is a UTC instant so the rule steps in fixed 7-day blocks
	// like TriggerAt, also across DST changes in Location.
	start := time.UnixMilli(s.TriggerAt(s.FromWeek)).UTC()
	first := s.Reminders()[0]

	event := newEvent(cal, key, opts.Stamp)
	event.SetStartAt(start)
	event.SetEndAt(start.Add(classLength(s)))
	event.SetSummary(first.Title)
	event.SetLocation(s.Room)
	event.SetDescription(first.Body)
	event.AddRrule(rule.OrigOptions.RRuleString())
	addAlarm(event, first.Title, opts.AlarmLead)
	return nil
}

func addAlarm(event *ical.VEvent, title string, lead time.Duration) {
	if lead <= 0 {
		return
	}
	alarm := event.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger(fmt.Sprintf("-PT%dM", int(lead/time.Minute)))
	alarm.SetProperty(ical.ComponentPropertyDescription, title)
}

func addExam(cal *ical.Calendar, e model.ExamRoomRecord, opts ExportOptions) {
	key := fmt.Sprintf("exam/%d/%s/%s", e.ID, e.ExamCode, e.ExamPeriodCode)
	day := time.UnixMilli(e.ExamDate).In(opts.Location)
	y, m, d := day.Date()

	event := newEvent(cal, key, opts.Stamp)
	event.SetSummary(fmt.Sprintf("Lịch thi: %s", e.SubjectName))
	event.SetLocation(examLocation(e))
	event.SetDescription(examDescription(e))

	start, end, ok := examClock(e.ExamTime)
	if !ok {
		event.SetAllDayStartAt(time.Date(y, m, d, 0, 0, 0, 0, opts.Location))
		event.SetAllDayEndAt(time.Date(y, m, d+1, 0, 0, 0, 0, opts.Location))
		return
	}
	startAt := time.Date(y, m, d, 0, 0, 0, 0, opts.Location).Add(start)
	event.SetStartAt(startAt)
	if end <= start {
		event.SetEndAt(startAt.Add(defaultExamLength))
	} else {
		event.SetEndAt(time.Date(y, m, d, 0, 0, 0, 0, opts.Location).Add(end))
	}
}

// examClock reads "HH:MM" or "HH:MM-HH:MM" as offsets from midnight. Codes
// without a colon (period ranges such as "10-12") are not clock times.
func examClock(s string) (start, end time.Duration, ok bool) {
	from, to, _ := strings.Cut(s, "-")
	if !strings.Contains(from, ":") {
		return 0, 0, false
	}
	h, m := hourslot.ParseClock(from)
	start = time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	if strings.Contains(to, ":") {
		h, m = hourslot.ParseClock(to)
		end = time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	}
	return start, end, true
}

func examLocation(e model.ExamRoomRecord) string {
	switch {
	case e.RoomName != "" && e.RoomBuilding != "":
		return e.RoomName + " - " + e.RoomBuilding
	case e.RoomName != "":
		return e.RoomName
	default:
		return e.RoomCode
	}
}

func examDescription(e model.ExamRoomRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mã thi: %s", e.ExamCode)
	if e.ExamTime != "" {
		fmt.Fprintf(&b, "\nGiờ: %s", e.ExamTime)
	}
	if e.ExamMethod != "" {
		fmt.Fprintf(&b, "\nHình thức: %s", e.ExamMethod)
	}
	if e.Notes != "" {
		fmt.Fprintf(&b, "\nGhi chú: %s", e.Notes)
	}
	return b.String()
}
