package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone     = "Asia/Ho_Chi_Minh"
	defaultRefresh      = "0 */6 * * *"
	defaultCalendarName = "TLU Calendar"
	defaultAlarmMinutes = 15
	defaultMaxWeeks     = 52
	defaultOutputDir    = "out"
	defaultICSName      = "calendar.ics"
	defaultJSONName     = "calendar.json"
)

// Inputs names the JSON documents fetched from the student portal. An
// empty path means the section is not configured.
type Inputs struct {
	Courses       string `yaml:"courses" toml:"courses" json:"courses"`
	Hours         string `yaml:"hours" toml:"hours" json:"hours"`
	ExamRooms     string `yaml:"exam_rooms" toml:"exam_rooms" json:"exam_rooms"`
	ExamSchedules string `yaml:"exam_schedules" toml:"exam_schedules" json:"exam_schedules"`
	Registration  string `yaml:"registration" toml:"registration" json:"registration"`
}

// Output controls where build results are written.
type Output struct {
	Dir  string `yaml:"dir" toml:"dir" json:"dir"`
	ICS  string `yaml:"ics" toml:"ics" json:"ics"`
	JSON string `yaml:"json" toml:"json" json:"json"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone used to interpret date-only values.
	Timezone string `yaml:"timezone" toml:"timezone" json:"timezone"`

	// SemesterStart is day 0 of week 1, either epoch millis or YYYY-MM-DD.
	SemesterStart string `yaml:"semester_start" toml:"semester_start" json:"semester_start"`

	// RefreshCron is the cron schedule used by `watch`.
	RefreshCron string `yaml:"refresh" toml:"refresh" json:"refresh"`

	CalendarName string `yaml:"calendar_name" toml:"calendar_name" json:"calendar_name"`

	// AlarmMinutes adds a VALARM this many minutes before each class.
	// Zero disables alarms.
	AlarmMinutes int `yaml:"alarm_minutes" toml:"alarm_minutes" json:"alarm_minutes"`

	// RecurringEvents emits one RRULE event per timetable entry instead of
	// one event per week.
	RecurringEvents bool `yaml:"recurring_events" toml:"recurring_events" json:"recurring_events"`

	MaxWeeksPerEntry int `yaml:"max_weeks_per_entry" toml:"max_weeks_per_entry" json:"max_weeks_per_entry"`

	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level"`

	Inputs Inputs `yaml:"inputs" toml:"inputs" json:"inputs"`
	Output Output `yaml:"output" toml:"output" json:"output"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:         defaultTimezone,
		RefreshCron:      defaultRefresh,
		CalendarName:     defaultCalendarName,
		AlarmMinutes:     defaultAlarmMinutes,
		MaxWeeksPerEntry: defaultMaxWeeks,
		LogLevel:         "INFO",
		Output: Output{
			Dir:  defaultOutputDir,
			ICS:  defaultICSName,
			JSON: defaultJSONName,
		},
	}
}

// Normalize fills in missing values so partially-filled configs still
// behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.CalendarName == "" {
		c.CalendarName = defaultCalendarName
	}
	if c.AlarmMinutes < 0 {
		c.AlarmMinutes = 0
	}
	if c.MaxWeeksPerEntry < 0 {
		c.MaxWeeksPerEntry = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir
	}
	if c.Output.ICS == "" {
		c.Output.ICS = defaultICSName
	}
	if c.Output.JSON == "" {
		c.Output.JSON = defaultJSONName
	}
}

// Location resolves Timezone, falling back to UTC for unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SemesterStartMillis parses SemesterStart. A bare integer is taken as
// epoch millis; a date is midnight of that day in Timezone.
func (c *Config) SemesterStartMillis() (int64, error) {
	v := strings.TrimSpace(c.SemesterStart)
	if v == "" {
		return 0, errors.New("semester_start is not set")
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, c.Location())
	if err != nil {
		return 0, fmt.Errorf("semester_start %q: want epoch millis or YYYY-MM-DD", v)
	}
	return t.UnixMilli(), nil
}

// AlarmLead is the VALARM offset, zero when alarms are disabled.
func (c *Config) AlarmLead() time.Duration {
	return time.Duration(c.AlarmMinutes) * time.Minute
}

// Resolve joins a relative input or output path onto base, the directory
// holding the config file.
func Resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load loads configuration from path, as TOML when the extension is
// .toml and as YAML otherwise.
//
// If the file does not exist a default config is written with 0600
// permissions and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg, err := Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Read is Load without the first-run write: a missing file is an error
// matching fs.ErrNotExist and nothing is created.
func Read(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.Normalize()

	return &cfg, nil
}

func marshal(path string, cfg *Config) ([]byte, error) {
	if !isTOML(path) {
		return yaml.Marshal(cfg)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := marshal(path, cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tlucal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
