package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"tlucal/internal/model"
	"tlucal/internal/schedule"
)

var (
	ict   = time.FixedZone("ICT", 7*3600)
	stamp = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
)

func testSeries() []schedule.Series {
	s := schedule.Series{
		CourseID:      11,
		CourseTitle:   "Go",
		CourseCode:    "CSE101",
		Room:          "A101",
		DayOfWeek:     2,
		FromWeek:      1,
		ToWeek:        3,
		SemesterStart: 1700000000000,
	}
	s.Slot = model.HourSlot{ID: 5, StartString: "07:00", Hour: 7}
	s.EndSlot = model.HourSlot{ID: 6, EndString: "08:45", EndHour: 8, EndMinute: 45}
	s.HasEnd = true

	empty := s
	empty.CourseCode = "EMPTY"
	empty.FromWeek, empty.ToWeek = 4, 1
	return []schedule.Series{s, empty}
}

func export(t *testing.T, series []schedule.Series, exams []model.ExamRoomRecord, opts ExportOptions) (string, *ical.Calendar) {
	t.Helper()
	var buf bytes.Buffer
	if err := Export(&buf, series, exams, opts); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	cal, err := ical.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("output does not parse back: %v", err)
	}
	return buf.String(), cal
}

func TestExportPerWeekEvents(t *testing.T) {
	out, cal := export(t, testSeries(), nil, ExportOptions{
		Name:      "TLU",
		Location:  ict,
		AlarmLead: 15 * time.Minute,
		Stamp:     stamp,
	})

	events := cal.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 class events, got %d", len(events))
	}

	start, err := events[0].GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt: %v", err)
	}
	if start.UnixMilli() != 1700025200000 {
		t.Errorf("first start = %v", start.UTC())
	}
	end, err := events[0].GetEndAt()
	if err != nil {
		t.Fatalf("GetEndAt: %v", err)
	}
	if d := end.Sub(start); d != 105*time.Minute {
		t.Errorf("duration = %v, want 1h45m", d)
	}

	if p := events[0].GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Lịch học: Go" {
		t.Errorf("summary = %+v", p)
	}
	if p := events[0].GetProperty(ical.ComponentPropertyLocation); p == nil || p.Value != "A101" {
		t.Errorf("location = %+v", p)
	}

	if n := strings.Count(out, "BEGIN:VALARM"); n != 3 {
		t.Errorf("expected 3 alarms, got %d", n)
	}
	if !strings.Contains(out, "TRIGGER:-PT15M") || !strings.Contains(out, "ACTION:DISPLAY") {
		t.Errorf("alarm properties missing:\n%s", out)
	}
	if strings.Contains(out, "RRULE") {
		t.Errorf("per-week export must not carry RRULE")
	}

	seen := map[string]bool{}
	for _, ev := range events {
		if seen[ev.Id()] {
			t.Errorf("duplicate UID %s", ev.Id())
		}
		seen[ev.Id()] = true
	}
}

func TestExportRecurring(t *testing.T) {
	out, cal := export(t, testSeries(), nil, ExportOptions{Location: ict, Recurring: true, Stamp: stamp})

	if n := len(cal.Events()); n != 1 {
		t.Fatalf("expected 1 recurring event, got %d", n)
	}
	if !strings.Contains(out, "FREQ=WEEKLY") || !strings.Contains(out, "COUNT=3") {
		t.Errorf("RRULE missing:\n%s", out)
	}
	if strings.Contains(out, "BEGIN:VALARM") {
		t.Errorf("zero AlarmLead must not add alarms")
	}
}

func TestExportExams(t *testing.T) {
	exams := []model.ExamRoomRecord{
		{ID: 1, SubjectName: "Toán", ExamCode: "E1", ExamDate: 1762534800000, ExamTime: "07:00", RoomName: "325", RoomBuilding: "A2"},
		{ID: 2, SubjectName: "Lý", ExamCode: "E2", ExamDate: 1762534800000, ExamTime: "10-12", RoomCode: "PHY_10-12"},
		{ID: 3, SubjectName: "Chưa xếp", ExamCode: "E3"},
	}
	out, cal := export(t, nil, exams, ExportOptions{Location: ict, Stamp: stamp})

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 exam events (undated skipped), got %d", len(events))
	}

	start, err := events[0].GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt: %v", err)
	}
	want := time.Date(2025, 11, 8, 7, 0, 0, 0, ict)
	if !start.Equal(want) {
		t.Errorf("timed exam start = %v, want %v", start, want)
	}
	if p := events[0].GetProperty(ical.ComponentPropertyLocation); p == nil || p.Value != "325 - A2" {
		t.Errorf("exam location = %+v", p)
	}

	if !strings.Contains(out, "DTSTART;VALUE=DATE:20251108") {
		t.Errorf("period-range exam should be all-day:\n%s", out)
	}
}

func TestExportDeterministic(t *testing.T) {
	opts := ExportOptions{Name: "TLU", Location: ict, AlarmLead: time.Hour, Stamp: stamp}
	exams := []model.ExamRoomRecord{{ID: 1, ExamCode: "E1", ExamDate: 1762534800000}}

	a, _ := export(t, testSeries(), exams, opts)
	b, _ := export(t, testSeries(), exams, opts)
	if a != b {
		t.Errorf("identical input produced different calendars")
	}
}

func TestExamClock(t *testing.T) {
	cases := []struct {
		in         string
		start, end time.Duration
		ok         bool
	}{
		{"07:00", 7 * time.Hour, 0, true},
		{"07:30-09:00", 7*time.Hour + 30*time.Minute, 9 * time.Hour, true},
		{"10-12", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		start, end, ok := examClock(tc.in)
		if ok != tc.ok || start != tc.start || end != tc.end {
			t.Errorf("examClock(%q) = %v, %v, %v", tc.in, start, end, ok)
		}
	}
}

func TestRecurringMatchesPerWeekAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	// Monday 2025-10-13 00:00 Berlin; the window spans the 26 October switch.
	s := schedule.Series{
		CourseTitle:   "Go",
		CourseCode:    "CSE101",
		DayOfWeek:     3,
		FromWeek:      1,
		ToWeek:        4,
		SemesterStart: time.Date(2025, 10, 13, 0, 0, 0, 0, berlin).UnixMilli(),
	}
	s.Slot = model.HourSlot{ID: 5, StartString: "09:00", Hour: 9}
	series := []schedule.Series{s}

	_, weekly := export(t, series, nil, ExportOptions{Location: berlin, Stamp: stamp})
	_, recurring := export(t, series, nil, ExportOptions{Location: berlin, Recurring: true, Stamp: stamp})

	ev := recurring.Events()[0]
	start, err := ev.GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt: %v", err)
	}
	p := ev.GetProperty(ical.ComponentPropertyRrule)
	if p == nil {
		t.Fatalf("recurring event has no RRULE")
	}
	opt, err := rrule.StrToROption(p.Value)
	if err != nil {
		t.Fatalf("StrToROption(%q): %v", p.Value, err)
	}
	opt.Dtstart = start
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		t.Fatalf("NewRRule: %v", err)
	}
	occurrences := rule.All()

	events := weekly.Events()
	if len(occurrences) != len(events) || len(events) != 4 {
		t.Fatalf("rule yields %d, per-week feed has %d", len(occurrences), len(events))
	}
	for i, e := range events {
		at, err := e.GetStartAt()
		if err != nil {
			t.Fatalf("GetStartAt: %v", err)
		}
		if !at.Equal(occurrences[i]) {
			t.Errorf("week %d: per-week %v, recurring %v", i+1, at.UTC(), occurrences[i].UTC())
		}
		if want := s.TriggerAt(i + 1); at.UnixMilli() != want {
			t.Errorf("week %d: event at %d, reminder at %d", i+1, at.UnixMilli(), want)
		}
	}
}
