package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	coursesDoc = `[{"id":1,"subjectName":"Lập trình Go","subjectCode":"CSE101","courseSubject":{"timetables":[
		{"weekIndex":2,"fromWeek":1,"toWeek":2,"startHour":{"id":5},"room":"A101"}
	]}}]`
	hoursDoc = `{"content":[{"id":5,"startString":"07:00","endString":"07:50"}]}`
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("tlucal %v: %v", args, err)
	}
	return out.String()
}

func TestCoursesCommand(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "courses", writeFile(t, dir, "c.json", coursesDoc))

	var res struct {
		Count int `json:"count"`
		Items []struct {
			CourseName string `json:"courseName"`
			Room       string `json:"room"`
		} `json:"items"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Count != 1 || res.Items[0].CourseName != "Lập trình Go" || res.Items[0].Room != "A101" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestNormalizeFailureIsEnvelope(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "exams", writeFile(t, dir, "e.json", `{"not":"array"}`))
	if !strings.Contains(out, `"error": "root is not an array"`) || !strings.Contains(out, `"count": 0`) {
		t.Errorf("expected error envelope, got %s", out)
	}
}

func TestRemindersCommand(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "reminders",
		"--courses", writeFile(t, dir, "c.json", coursesDoc),
		"--hours", writeFile(t, dir, "h.json", hoursDoc),
		"--semester-start", "1700000000000",
	)
	if !strings.Contains(out, `"count": 2`) || !strings.Contains(out, `"triggerAt": 1700025200000`) {
		t.Errorf("unexpected reminders output: %s", out)
	}
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "courses.json", coursesDoc)
	writeFile(t, dir, "hours.json", hoursDoc)
	cfgPath := writeFile(t, dir, "tlucal.yaml", `timezone: Asia/Ho_Chi_Minh
semester_start: "1700000000000"
alarm_minutes: 10
inputs:
  courses: courses.json
  hours: hours.json
output:
  dir: out
`)

	run(t, "--config", cfgPath, "build")

	raw, err := os.ReadFile(filepath.Join(dir, "out", "calendar.json"))
	if err != nil {
		t.Fatalf("json output missing: %v", err)
	}
	var bundle map[string]json.RawMessage
	if err := json.Unmarshal(raw, &bundle); err != nil {
		t.Fatalf("bundle is not JSON: %v", err)
	}
	for _, k := range []string{"courses", "hourSlots", "reminders"} {
		if _, ok := bundle[k]; !ok {
			t.Errorf("bundle missing %q", k)
		}
	}
	if _, ok := bundle["examRooms"]; ok {
		t.Errorf("unconfigured section present")
	}

	feed, err := os.ReadFile(filepath.Join(dir, "out", "calendar.ics"))
	if err != nil {
		t.Fatalf("ics output missing: %v", err)
	}
	s := string(feed)
	if strings.Count(s, "BEGIN:VEVENT") != 2 || !strings.Contains(s, "TRIGGER:-PT10M") {
		t.Errorf("unexpected feed:\n%s", s)
	}
}

func TestBuildRequiresSemesterStart(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "courses.json", coursesDoc)
	writeFile(t, dir, "hours.json", hoursDoc)
	cfgPath := writeFile(t, dir, "tlucal.yaml", "inputs:\n  courses: courses.json\n  hours: hours.json\n")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "build"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "semester_start") {
		t.Errorf("expected semester_start error, got %v", err)
	}
}

func TestRemindersFlagStartHasNoCap(t *testing.T) {
	dir := t.TempDir()
	long := `[{"subjectName":"Đồ án","courseSubject":{"timetables":[
		{"weekIndex":4,"fromWeek":1,"toWeek":60,"startHour":{"id":5}}
	]}}]`
	out := run(t, "--config", filepath.Join(dir, "absent.yaml"), "reminders",
		"--courses", writeFile(t, dir, "c.json", long),
		"--hours", writeFile(t, dir, "h.json", hoursDoc),
		"--semester-start", "1700000000000",
	)
	if !strings.Contains(out, `"count": 60`) {
		t.Errorf("60-week window must yield 60 reminders, got %s", out[:min(len(out), 200)])
	}

	capped := run(t, "--config", filepath.Join(dir, "absent.yaml"), "reminders",
		"--courses", filepath.Join(dir, "c.json"),
		"--hours", filepath.Join(dir, "h.json"),
		"--semester-start", "1700000000000",
		"--max-weeks", "10",
	)
	if !strings.Contains(capped, `"count": 10`) {
		t.Errorf("explicit --max-weeks should cap, got %s", capped[:min(len(capped), 200)])
	}
}

func TestRemindersDoesNotWriteConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tlucal.yaml")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "reminders",
		"--courses", writeFile(t, dir, "c.json", coursesDoc),
		"--hours", writeFile(t, dir, "h.json", hoursDoc),
	})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "--semester-start") {
		t.Errorf("expected missing semester start error, got %v", err)
	}
	if _, err := os.Stat(cfgPath); !os.IsNotExist(err) {
		t.Errorf("reminders must not create %s (stat err %v)", cfgPath, err)
	}
}

func TestRemindersUsesConfigCap(t *testing.T) {
	dir := t.TempDir()
	long := `[{"subjectName":"Đồ án","courseSubject":{"timetables":[
		{"weekIndex":4,"fromWeek":1,"toWeek":60,"startHour":{"id":5}}
	]}}]`
	cfgPath := writeFile(t, dir, "tlucal.yaml", "semester_start: \"1700000000000\"\nmax_weeks_per_entry: 20\n")
	out := run(t, "--config", cfgPath, "reminders",
		"--courses", writeFile(t, dir, "c.json", long),
		"--hours", writeFile(t, dir, "h.json", hoursDoc),
	)
	if !strings.Contains(out, `"count": 20`) {
		t.Errorf("config cap should apply, got %s", out[:min(len(out), 200)])
	}
}
