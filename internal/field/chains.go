package field

import (
	"github.com/tidwall/gjson"
)

// Kind restricts which JSON values count as present for a chain.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber // numbers or numeric-looking strings
	KindObject
	KindArray
)

// Chain is an ordered list of candidate paths for one logical field. The
// first candidate that is present (exists, non-null, matching Kind) wins;
// a field is never assembled from two candidates.
type Chain struct {
	Field string
	Kind  Kind
	Paths []string

	// ZeroFallback also moves on when a numeric candidate resolves to 0.
	ZeroFallback bool
}

// Course entry level.
var (
	CourseName = Chain{Field: "courseName", Kind: KindString, Paths: []string{"subjectName", "courseName"}}
	CourseCode = Chain{Field: "courseCode", Kind: KindString, Paths: []string{"subjectCode", "courseCode"}}
	Credits    = Chain{Field: "credits", Kind: KindNumber, Paths: []string{"numberOfCredit", "credits"}, ZeroFallback: true}

	// CourseSubject also accepts the un-lifted shape some backends return.
	CourseSubject = Chain{Field: "courseSubject", Kind: KindObject, Paths: []string{"courseSubject", "studentCourseSubject.courseSubject"}}
)

// Timetable entry level.
var (
	Room      = Chain{Field: "room", Kind: KindString, Paths: []string{"room.name", "room"}}
	Building  = Chain{Field: "building", Kind: KindString, Paths: []string{"room.building.name", "room.building", "building"}}
	StartHour = Chain{Field: "startHour", Kind: KindNumber, Paths: []string{"startHour.id", "startTime"}}
	EndHour   = Chain{Field: "endHour", Kind: KindNumber, Paths: []string{"endHour.id", "endTime"}}
)

// Course-subject level, used when a subject carries no timetables.
var (
	SubjectStartHour = Chain{Field: "startCourseHour", Kind: KindNumber, Paths: []string{"startCourseHour.id", "startCourseHour"}}
	SubjectEndHour   = Chain{Field: "endCourseHour", Kind: KindNumber, Paths: []string{"endCourseHour.id", "endCourseHour"}}
	SubjectRoom      = Chain{Field: "room", Kind: KindString, Paths: []string{"room"}}
)

// Registration payloads mix PascalCase and camelCase between versions.
var (
	RegistrationID   = Chain{Field: "id", Kind: KindNumber, Paths: []string{"Id", "id"}, ZeroFallback: true}
	RegisterView     = Chain{Field: "courseRegisterViewObject", Kind: KindObject, Paths: []string{"CourseRegisterViewObject", "courseRegisterViewObject"}}
	RegisterSubjects = Chain{Field: "listSubjectRegistrationDtos", Kind: KindArray, Paths: []string{"ListSubjectRegistrationDtos", "listSubjectRegistrationDtos"}}
)

// Node returns the winning candidate's value.
func (c Chain) Node(n gjson.Result) (gjson.Result, bool) {
	for _, p := range c.Paths {
		v := n.Get(p)
		if !c.accepts(v) {
			continue
		}
		if c.ZeroFallback && ToInt64(v) == 0 {
			continue
		}
		return v, true
	}
	return gjson.Result{}, false
}

func (c Chain) String(n gjson.Result) string {
	v, ok := c.Node(n)
	if !ok || v.Type != gjson.String {
		return ""
	}
	return v.Str
}

func (c Chain) Int(n gjson.Result) int {
	return int(c.Int64(n))
}

func (c Chain) Int64(n gjson.Result) int64 {
	v, ok := c.Node(n)
	if !ok {
		return 0
	}
	return ToInt64(v)
}

func (c Chain) accepts(v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null {
		return false
	}
	switch c.Kind {
	case KindString:
		return v.Type == gjson.String
	case KindNumber:
		return v.Type == gjson.Number || v.Type == gjson.String
	case KindObject:
		return v.IsObject()
	case KindArray:
		return v.IsArray()
	default:
		return true
	}
}
