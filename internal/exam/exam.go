// Package exam flattens exam-room assignments and exam schedules.
package exam

import (
	"strings"

	"github.com/tidwall/gjson"

	"tlucal/internal/field"
	appLog "tlucal/internal/log"
	"tlucal/internal/model"
)

// NormalizeRooms maps each exam-room assignment to one record.
func NormalizeRooms(data []byte) ([]model.ExamRoomRecord, error) {
	root, err := field.ParseArray(data)
	if err != nil {
		return nil, err
	}

	items := root.Array()
	out := make([]model.ExamRoomRecord, 0, len(items))
	fromCode := 0
	for _, item := range items {
		rec, derived := normalizeRoom(item)
		if derived {
			fromCode++
		}
		out = append(out, rec)
	}

	appLog.Debug("exam rooms normalized", "count", len(out), "time_from_room_code", fromCode)
	return out, nil
}

// normalizeRoom also reports whether the time came from the room code.
func normalizeRoom(item gjson.Result) (model.ExamRoomRecord, bool) {
	rec := model.ExamRoomRecord{
		ID:             field.Int(item, "id"),
		SubjectName:    field.String(item, "subjectName"),
		ExamPeriodCode: field.String(item, "examPeriodCode"),
		ExamCode:       field.String(item, "examCode"),
		StudentCode:    field.String(item, "studentCode"),
	}

	er := item.Get("examRoom")
	if !er.IsObject() {
		return rec, false
	}

	rec.ExamDate = field.Int64(er, "examDate")
	rec.RoomCode = field.String(er, "roomCode")
	rec.RoomName = field.String(er, "room.name")
	rec.RoomBuilding = field.String(er, "room.building.name")
	rec.ExamMethod = field.String(er, "examMethod.name")
	rec.Notes = field.String(er, "notes")
	rec.NumberExpectedStudent = field.Int(er, "numberExpectedStudent")

	if s, ok := field.Str(er, "startHour.startString"); ok {
		rec.ExamTime = s
		return rec, false
	}
	if t, ok := ExtractTimeRange(rec.RoomCode); ok {
		rec.ExamTime = t
		return rec, true
	}
	return rec, false
}

// ExtractTimeRange recovers a time range embedded in a composite room
// code, e.g. "CSE406_08-11-2025_10-12_325-A2" -> "10-12". It returns the
// first '_'-separated token that is at least three characters long,
// starts with a digit and holds exactly one '-'. Two dashes mark a date.
func ExtractTimeRange(roomCode string) (string, bool) {
	if roomCode == "" {
		return "", false
	}
	for _, tok := range strings.Split(roomCode, "_") {
		if len(tok) < 3 {
			continue
		}
		if tok[0] < '0' || tok[0] > '9' {
			continue
		}
		if strings.Count(tok, "-") != 1 {
			continue
		}
		return tok, true
	}
	return "", false
}

// ParseSchedules reads exam schedules with their nested exam periods.
func ParseSchedules(data []byte) ([]model.ExamSchedule, error) {
	root, err := field.ParseArray(data)
	if err != nil {
		return nil, err
	}

	items := root.Array()
	out := make([]model.ExamSchedule, 0, len(items))
	for _, item := range items {
		s := model.ExamSchedule{
			ID:           field.Int(item, "id"),
			Name:         field.String(item, "name"),
			DisplayOrder: field.Int(item, "displayOrder"),
			Voided:       field.Bool(item, "voided"),
			ExamPeriods:  []model.ExamPeriod{},
		}
		if periods := item.Get("examPeriods"); periods.IsArray() {
			for _, p := range periods.Array() {
				s.ExamPeriods = append(s.ExamPeriods, parsePeriod(p))
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func parsePeriod(p gjson.Result) model.ExamPeriod {
	return model.ExamPeriod{
		ID:               field.Int(p, "id"),
		ExamPeriodCode:   field.String(p, "examPeriodCode"),
		Name:             field.String(p, "name"),
		StartDate:        field.Int64(p, "startDate"),
		EndDate:          field.Int64(p, "endDate"),
		NumberOfExamDays: field.Int(p, "numberOfExamDays"),
		BookingStatus: model.BookingStatus{
			ID:   field.Int(p, "bookingStatus.id"),
			Name: field.String(p, "bookingStatus.name"),
		},
	}
}
