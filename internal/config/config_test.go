package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tlucal.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timezone != "Asia/Ho_Chi_Minh" || cfg.AlarmMinutes != 15 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Errorf("perm = %v, want 0600", st.Mode().Perm())
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.CalendarName != cfg.CalendarName || again.Output != cfg.Output {
		t.Errorf("reload mismatch: %+v vs %+v", again, cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yml")
	body := `timezone: Asia/Bangkok
semester_start: "2025-09-08"
recurring_events: true
inputs:
  courses: courses.json
  hours: hours.json
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.RecurringEvents || cfg.Inputs.Courses != "courses.json" || cfg.Inputs.Hours != "hours.json" {
		t.Errorf("fields not decoded: %+v", cfg)
	}
	if cfg.Output.ICS != "calendar.ics" || cfg.RefreshCron == "" {
		t.Errorf("missing values not normalized: %+v", cfg)
	}
}

func TestLoadTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	cfg := DefaultConfig()
	cfg.SemesterStart = "1700000000000"
	cfg.Inputs.ExamRooms = "exams.json"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.SemesterStart != "1700000000000" || got.Inputs.ExamRooms != "exams.json" {
		t.Errorf("toml round trip lost fields: %+v", got)
	}
}

func TestSemesterStartMillis(t *testing.T) {
	cfg := DefaultConfig()

	cfg.SemesterStart = "1700000000000"
	if ms, err := cfg.SemesterStartMillis(); err != nil || ms != 1700000000000 {
		t.Errorf("epoch millis: %d, %v", ms, err)
	}

	cfg.SemesterStart = "2025-09-08"
	ms, err := cfg.SemesterStartMillis()
	if err != nil {
		t.Fatalf("date: %v", err)
	}
	// Midnight in UTC+7 is 17:00 UTC the previous day.
	want := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC).UnixMilli()
	if ms != want {
		t.Errorf("date millis = %d, want %d", ms, want)
	}

	for _, bad := range []string{"", "next monday"} {
		cfg.SemesterStart = bad
		if _, err := cfg.SemesterStartMillis(); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("/etc/tlucal", "in/c.json"); got != filepath.Join("/etc/tlucal", "in/c.json") {
		t.Errorf("relative: %q", got)
	}
	if got := Resolve("/etc/tlucal", "/data/c.json"); got != "/data/c.json" {
		t.Errorf("absolute: %q", got)
	}
	if got := Resolve("/etc/tlucal", ""); got != "" {
		t.Errorf("empty: %q", got)
	}
}

func TestReadDoesNotCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tlucal.yaml")
	if _, err := Read(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read of missing file: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Read must not create the file (stat err %v)", err)
	}
}
