package soc

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"course-api/lib/telemetry"
	"course-api/lib/textutil"
)

// ErrUnknownRowKind is returned when the builder is handed a row kind it has no
// transition for, which means the classifier and builder disagree.
var ErrUnknownRowKind = errors.New("unknown row kind")

type targetKind int

const (
	targetNone targetKind = iota
	targetLecture
	targetSection
)

// target points at the lecture or section that continuation rows add
// meetings to.
type target struct {
	kind    targetKind
	lecture int
	section int
}

// Builder attaches classified rows to the department tree in table order. All
// of its context is kept as indices into the tree it owns.
type Builder struct {
	tel         telemetry.API
	departments []Department

	department int
	course     int
	lecture    int
	target     target
	// letterLecture is decided by the first group of the current course and
	// holds until the next course.
	letterLecture bool
}

func NewBuilder(tel telemetry.API) *Builder {
	return &Builder{
		tel:        tel,
		department: -1,
		course:     -1,
		lecture:    -1,
	}
}

// IsLecture reports whether a group label names a lecture. On the first row of
// a course a bare number or a "W" (Qatar) label also counts as a lecture, later
// rows must contain "lec".
func IsLecture(label string, firstRow bool) bool {
	label = strings.ToLower(label)
	if strings.Contains(label, "lec") {
		return true
	}
	if firstRow {
		return label == "w" || textutil.IsDigits(label)
	}
	return false
}

func newLecture(g GroupRecord) Lecture {
	return Lecture{
		Label:       g.Label,
		Meetings:    []Meeting{g.Meeting},
		Instructors: g.Instructors,
	}
}

func newSection(g GroupRecord) Section {
	return Section{
		Label:       g.Label,
		Meetings:    []Meeting{g.Meeting},
		Instructors: g.Instructors,
	}
}

func (b *Builder) currentCourse() *Course {
	if b.department < 0 || b.course < 0 {
		return nil
	}
	return &b.departments[b.department].Courses[b.course]
}

// Add applies one classified row. Rows that arrive without the context they
// attach to are reported and dropped, only an unknown kind is an error.
func (b *Builder) Add(row Classified) error {
	switch row.Kind {
	case KindDepartment:
		b.departments = append(b.departments, Department{Name: row.Department})
		b.department = len(b.departments) - 1
		b.course = -1
		b.lecture = -1
		b.target = target{}
		b.letterLecture = false

	case KindCourse:
		if b.department < 0 {
			b.tel.ReportWarning(report_builder_context, "course before any department", row.Course.Number)
			b.course = -1
			b.target = target{}
			return nil
		}
		dept := &b.departments[b.department]
		dept.Courses = append(dept.Courses, Course{
			Number:        row.Course.Number,
			Title:         row.Course.Title,
			Department:    dept.Name,
			Units:         row.Course.Units,
			LetterLecture: !IsLecture(row.Course.First.Label, true),
			Lectures:      []Lecture{newLecture(row.Course.First)},
		})
		b.course = len(dept.Courses) - 1
		b.letterLecture = dept.Courses[b.course].LetterLecture
		b.lecture = -1
		if !b.letterLecture {
			b.lecture = 0
		}
		b.target = target{kind: targetLecture, lecture: 0}

	case KindLectureOrSection:
		course := b.currentCourse()
		if course == nil {
			b.tel.ReportWarning(report_builder_context, "lecture or section outside of a course", row.Group.Label)
			return nil
		}
		if b.letterLecture || IsLecture(row.Group.Label, false) {
			course.Lectures = append(course.Lectures, newLecture(row.Group))
			idx := len(course.Lectures) - 1
			if !b.letterLecture {
				b.lecture = idx
			}
			b.target = target{kind: targetLecture, lecture: idx}
			return nil
		}
		lecture := &course.Lectures[b.lecture]
		lecture.Sections = append(lecture.Sections, newSection(row.Group))
		b.target = target{
			kind:    targetSection,
			lecture: b.lecture,
			section: len(lecture.Sections) - 1,
		}

	case KindMeeting:
		course := b.currentCourse()
		if course == nil || b.target.kind == targetNone {
			b.tel.ReportWarning(report_builder_context, "meeting without a lecture or section", row.Meeting.Meeting.Days)
			return nil
		}
		lecture := &course.Lectures[b.target.lecture]
		if b.target.kind == targetSection {
			section := &lecture.Sections[b.target.section]
			section.Meetings = append(section.Meetings, row.Meeting.Meeting)
			section.Instructors = mergeInstructors(section.Instructors, row.Meeting.Instructors)
			return nil
		}
		lecture.Meetings = append(lecture.Meetings, row.Meeting.Meeting)
		lecture.Instructors = mergeInstructors(lecture.Instructors, row.Meeting.Instructors)

	case KindUnrecognized:
		// already reported by the classifier

	default:
		return fmt.Errorf("%w: %s", ErrUnknownRowKind, row.Kind)
	}
	return nil
}

func mergeInstructors(current, extra []string) []string {
	for _, name := range extra {
		if !slices.Contains(current, name) {
			current = append(current, name)
		}
	}
	return current
}

// Departments returns the tree built so far.
func (b *Builder) Departments() []Department {
	return b.departments
}

// Build classifies repaired rows and assembles them into departments.
func Build(rows []Row, tel telemetry.API) ([]Department, error) {
	builder := NewBuilder(tel)
	dropped := 0
	for i, row := range rows {
		classified := Classify(row, tel)
		if classified.Kind == KindUnrecognized {
			dropped++
		}
		err := builder.Add(classified)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	tel.ReportCount(report_count_rows_processed, int64(len(rows)))
	tel.ReportCount(report_count_rows_dropped, int64(dropped))
	return builder.Departments(), nil
}
