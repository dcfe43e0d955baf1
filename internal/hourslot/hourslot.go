// Package hourslot parses the teaching-period catalog and resolves period
// identifiers to clock times.
package hourslot

import (
	"strconv"
	"strings"

	"tlucal/internal/field"
	appLog "tlucal/internal/log"
	"tlucal/internal/model"
)

// Parse reads a catalog that is either a bare array or {"content": [...]}.
// Slots with malformed clock strings are kept with zero hour/minute.
func Parse(data []byte) ([]model.HourSlot, error) {
	arr, err := field.ParseList(data, "content")
	if err != nil {
		return nil, err
	}

	items := arr.Array()
	slots := make([]model.HourSlot, 0, len(items))
	for _, item := range items {
		s := model.HourSlot{
			ID:          field.Int(item, "id"),
			Name:        field.String(item, "name"),
			StartString: field.String(item, "startString"),
			EndString:   field.String(item, "endString"),
			IndexNumber: field.Int(item, "indexNumber"),
		}
		s.Hour, s.Minute = ParseClock(s.StartString)
		s.EndHour, s.EndMinute = ParseClock(s.EndString)
		slots = append(slots, s)
	}

	appLog.Debug("hour slots parsed", "count", len(slots))
	return slots, nil
}

// ParseClock reads a leading "H:M" the way "%d:%d" scanning does: the
// hour is the leading integer, the minute the integer right after a ':'.
// Trailing text (":SS", "abc") is ignored. A missing hour yields 0, 0; a
// missing minute yields hour, 0.
func ParseClock(s string) (hour, minute int) {
	h, rest, ok := leadingInt(s)
	if !ok {
		return 0, 0
	}
	rest, found := strings.CutPrefix(rest, ":")
	if !found {
		return h, 0
	}
	m, _, ok := leadingInt(rest)
	if !ok {
		return h, 0
	}
	return h, m
}

// leadingInt parses an optionally signed base-10 integer after leading
// whitespace and returns the unparsed remainder.
func leadingInt(s string) (int, string, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, s, false
	}
	return n, s[end:], true
}

// Index resolves slot identifiers. Catalogs hold a few dozen entries, so
// lookups scan linearly.
type Index struct {
	slots []model.HourSlot
}

func NewIndex(slots []model.HourSlot) *Index {
	return &Index{slots: slots}
}

// Lookup returns the first slot whose ID equals id.
func (ix *Index) Lookup(id int) (model.HourSlot, bool) {
	if ix == nil {
		return model.HourSlot{}, false
	}
	for _, s := range ix.slots {
		if s.ID == id {
			return s, true
		}
	}
	return model.HourSlot{}, false
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.slots)
}
