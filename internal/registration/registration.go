// Package registration reads the course-registration view of a period:
// subjects on offer, their classes and each class' timetable.
package registration

import (
	"github.com/tidwall/gjson"

	"tlucal/internal/field"
	appLog "tlucal/internal/log"
	"tlucal/internal/model"
)

// Parse reads one registration period document. A period without a view
// object yields no subjects.
func Parse(data []byte) (model.RegistrationPeriod, error) {
	root, err := field.ParseObject(data)
	if err != nil {
		return model.RegistrationPeriod{}, err
	}

	period := model.RegistrationPeriod{
		ID:       field.RegistrationID.Int(root),
		Subjects: []model.RegistrationSubject{},
	}

	view, ok := field.RegisterView.Node(root)
	if !ok {
		return period, nil
	}
	list, ok := field.RegisterSubjects.Node(view)
	if !ok {
		return period, nil
	}

	classes := 0
	for _, s := range list.Array() {
		sub := parseSubject(s)
		classes += len(sub.Classes)
		period.Subjects = append(period.Subjects, sub)
	}

	appLog.Debug("registration parsed",
		"period_id", period.ID,
		"subjects", len(period.Subjects),
		"classes", classes,
	)
	return period, nil
}

func parseSubject(s gjson.Result) model.RegistrationSubject {
	sub := model.RegistrationSubject{
		SubjectName:    field.String(s, "SubjectName"),
		NumberOfCredit: field.Int(s, "NumberOfCredit"),
		Classes:        []model.RegistrationClass{},
	}
	if cs := s.Get("CourseSubjectDtos"); cs.IsArray() {
		for _, c := range cs.Array() {
			sub.Classes = append(sub.Classes, parseClass(c))
		}
	}
	return sub
}

func parseClass(c gjson.Result) model.RegistrationClass {
	cls := model.RegistrationClass{
		ID:            field.Int(c, "Id"),
		Code:          field.String(c, "Code"),
		DisplayCode:   field.String(c, "DisplayCode"),
		MaxStudent:    field.Int(c, "MaxStudent"),
		NumberStudent: field.Int(c, "NumberStudent"),
		IsSelected:    field.Bool(c, "IsSelected"),
		IsFull:        field.Bool(c, "IsFullClass"),
		Credits:       field.Int(c, "NumberOfCredit"),
		Status:        field.String(c, "Status"),
		Timetables:    []model.RegistrationTimetable{},
	}
	if ts := c.Get("Timetables"); ts.IsArray() {
		for _, t := range ts.Array() {
			cls.Timetables = append(cls.Timetables, model.RegistrationTimetable{
				ID:          field.Int(t, "id"),
				StartDate:   field.Int64(t, "startDate"),
				EndDate:     field.Int64(t, "endDate"),
				FromWeek:    field.Int(t, "fromWeek"),
				ToWeek:      field.Int(t, "toWeek"),
				DayOfWeek:   field.Int(t, "weekIndex"),
				StartHour:   periodIndex(t.Get("startHour")),
				EndHour:     periodIndex(t.Get("endHour")),
				RoomName:    field.String(t, "roomName"),
				TeacherName: field.String(t, "teacherName"),
			})
		}
	}
	return cls
}

// periodIndex reads indexNumber from an hour object; other shapes give 0.
func periodIndex(h gjson.Result) int {
	if !h.IsObject() {
		return 0
	}
	return field.Int(h, "indexNumber")
}
