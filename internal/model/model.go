package model

// CourseRecord is one display-ready row: a course-subject entry flattened
// together with a single weekly timetable entry. A subject with no
// timetables still yields one record built from subject-level fields.
type CourseRecord struct {
	ID         int    `json:"id"`
	CourseCode string `json:"courseCode"`
	CourseName string `json:"courseName"`
	Credits    int    `json:"credits"`
	Status     string `json:"status"`

	// Grade is nil when the backend sent no grade (or JSON null).
	Grade *float64 `json:"grade"`

	ClassCode     string `json:"classCode"`
	ClassName     string `json:"className"`
	LecturerName  string `json:"lecturerName"`
	LecturerEmail string `json:"lecturerEmail"`

	DayOfWeek       int    `json:"dayOfWeek"`
	StartCourseHour int    `json:"startCourseHour"`
	EndCourseHour   int    `json:"endCourseHour"`
	FromWeek        int    `json:"fromWeek"`
	ToWeek          int    `json:"toWeek"`
	StartDate       int64  `json:"startDate"` // epoch millis
	EndDate         int64  `json:"endDate"`   // epoch millis
	Room            string `json:"room"`
	Building        string `json:"building"`
	Campus          string `json:"campus"`
}

// HourSlot is a numbered teaching period ("tiết") and its clock times.
type HourSlot struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	StartString string `json:"startString"`
	EndString   string `json:"endString"`
	IndexNumber int    `json:"indexNumber"`

	// Parsed from StartString / EndString; zero when malformed.
	Hour      int `json:"hour"`
	Minute    int `json:"minute"`
	EndHour   int `json:"endHour"`
	EndMinute int `json:"endMinute"`
}

// Reminder is one concrete notification for a class meeting.
type Reminder struct {
	ID        int32  `json:"id"`
	TriggerAt int64  `json:"triggerAt"` // epoch millis
	Title     string `json:"title"`
	Body      string `json:"body"`

	CourseCode string `json:"courseCode"`
	Week       int    `json:"week"`
	Room       string `json:"room"`
	Time       string `json:"time"`
}

// ExamRoomRecord is a flattened exam-room assignment for one student.
type ExamRoomRecord struct {
	ID                    int    `json:"id"`
	SubjectName           string `json:"subjectName"`
	ExamPeriodCode        string `json:"examPeriodCode"`
	ExamCode              string `json:"examCode"`
	StudentCode           string `json:"studentCode"`
	ExamDate              int64  `json:"examDate"` // epoch millis
	ExamTime              string `json:"examTime"`
	RoomCode              string `json:"roomCode"`
	RoomName              string `json:"roomName"`
	RoomBuilding          string `json:"roomBuilding"`
	ExamMethod            string `json:"examMethod"`
	Notes                 string `json:"notes"`
	NumberExpectedStudent int    `json:"numberExpectedStudent"`
}

type BookingStatus struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ExamPeriod struct {
	ID               int           `json:"id"`
	ExamPeriodCode   string        `json:"examPeriodCode"`
	Name             string        `json:"name"`
	StartDate        int64         `json:"startDate"`
	EndDate          int64         `json:"endDate"`
	NumberOfExamDays int           `json:"numberOfExamDays"`
	BookingStatus    BookingStatus `json:"bookingStatus"`
}

// ExamSchedule groups the exam periods of one semester.
type ExamSchedule struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	DisplayOrder int          `json:"displayOrder"`
	Voided       bool         `json:"voided"`
	ExamPeriods  []ExamPeriod `json:"examPeriods"`
}

type RegistrationTimetable struct {
	ID          int    `json:"id"`
	StartDate   int64  `json:"startDate"`
	EndDate     int64  `json:"endDate"`
	FromWeek    int    `json:"fromWeek"`
	ToWeek      int    `json:"toWeek"`
	DayOfWeek   int    `json:"dayOfWeek"`
	StartHour   int    `json:"startHour"` // period index number
	EndHour     int    `json:"endHour"`
	RoomName    string `json:"roomName"`
	TeacherName string `json:"teacherName"`
}

type RegistrationClass struct {
	ID            int                     `json:"id"`
	Code          string                  `json:"code"`
	DisplayCode   string                  `json:"displayCode"`
	NumberStudent int                     `json:"numberStudent"`
	MaxStudent    int                     `json:"maxStudent"`
	IsSelected    bool                    `json:"isSelected"`
	IsFull        bool                    `json:"isFull"`
	Credits       int                     `json:"credits"`
	Status        string                  `json:"status"`
	Timetables    []RegistrationTimetable `json:"timetables"`
}

type RegistrationSubject struct {
	SubjectName    string              `json:"subjectName"`
	NumberOfCredit int                 `json:"numberOfCredit"`
	Classes        []RegistrationClass `json:"classes"`
}

// RegistrationPeriod is the course-registration view for one period.
type RegistrationPeriod struct {
	ID       int                   `json:"id"`
	Subjects []RegistrationSubject `json:"subjects"`
}
