// Package course expands enrolled course-subject entries into flat,
// display-ready records, one per weekly timetable entry.
package course

import (
	"github.com/tidwall/gjson"

	"tlucal/internal/field"
	appLog "tlucal/internal/log"
	"tlucal/internal/model"
)

// Normalize parses a course list document and expands it.
//
// Output order follows the input entries and, within an entry, its
// timetable array; display code groups consecutive records by subject.
func Normalize(data []byte) ([]model.CourseRecord, error) {
	root, err := field.ParseArray(data)
	if err != nil {
		return nil, err
	}

	entries := root.Array()
	out := make([]model.CourseRecord, 0, len(entries))
	for _, item := range entries {
		out = expandEntry(out, item)
	}

	appLog.Debug("courses normalized", "entries", len(entries), "records", len(out))
	return out, nil
}

// expandEntry appends max(1, len(timetables)) records for one entry.
func expandEntry(out []model.CourseRecord, item gjson.Result) []model.CourseRecord {
	shared := sharedFields(item)

	cs, ok := field.CourseSubject.Node(item)
	if !ok {
		return append(out, shared)
	}

	withSubject := shared
	applySubject(&withSubject, cs)

	timetables := cs.Get("timetables")
	if !timetables.IsArray() || len(timetables.Array()) == 0 {
		rec := withSubject
		applySubjectFallback(&rec, cs)
		return append(out, rec)
	}

	for _, tt := range timetables.Array() {
		rec := withSubject
		if rec.Grade != nil {
			// Records must not share the grade pointer.
			g := *rec.Grade
			rec.Grade = &g
		}
		applyTimetable(&rec, tt)
		out = append(out, rec)
	}
	return out
}

func sharedFields(item gjson.Result) model.CourseRecord {
	rec := model.CourseRecord{
		ID:         field.Int(item, "id"),
		CourseName: field.CourseName.String(item),
		CourseCode: field.CourseCode.String(item),
		Credits:    field.Credits.Int(item),
		Status:     field.String(item, "status"),
	}
	if g, ok := field.OptFloat(item, "grade"); ok {
		rec.Grade = &g
	}
	return rec
}

func applySubject(rec *model.CourseRecord, cs gjson.Result) {
	rec.ClassCode = field.String(cs, "classCode")
	rec.ClassName = field.String(cs, "className")

	if lecturer := cs.Get("lecturer"); lecturer.IsObject() {
		rec.LecturerName = field.String(lecturer, "name")
		rec.LecturerEmail = field.String(lecturer, "email")
	}
}

func applyTimetable(rec *model.CourseRecord, tt gjson.Result) {
	rec.DayOfWeek = field.Int(tt, "weekIndex")
	rec.FromWeek = field.Int(tt, "fromWeek")
	rec.ToWeek = field.Int(tt, "toWeek")
	rec.StartDate = field.Int64(tt, "startDate")
	rec.EndDate = field.Int64(tt, "endDate")
	rec.StartCourseHour = field.StartHour.Int(tt)
	rec.EndCourseHour = field.EndHour.Int(tt)
	rec.Room = field.Room.String(tt)
	rec.Building = field.Building.String(tt)
	rec.Campus = field.String(tt, "campus")
}

// applySubjectFallback reads schedule fields straight from the subject
// object when it has no timetable list.
func applySubjectFallback(rec *model.CourseRecord, cs gjson.Result) {
	rec.DayOfWeek = field.Int(cs, "dayOfWeek")
	rec.StartCourseHour = field.SubjectStartHour.Int(cs)
	rec.EndCourseHour = field.SubjectEndHour.Int(cs)
	rec.Room = field.SubjectRoom.String(cs)
}
