package soc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"course-api/lib/telemetry"
	"course-api/lib/textutil"
)

type Kind int

const (
	KindUnrecognized Kind = iota
	KindDepartment
	KindCourse
	KindLectureOrSection
	KindMeeting
)

func (k Kind) String() string {
	switch k {
	case KindUnrecognized:
		return "unrecognized"
	case KindDepartment:
		return "department"
	case KindCourse:
		return "course"
	case KindLectureOrSection:
		return "lecture-or-section"
	case KindMeeting:
		return "meeting"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// GroupRecord is a lecture or section as it appears on a single row.
type GroupRecord struct {
	Label       string
	Meeting     Meeting
	Instructors []string
}

// CourseRecord is a course row, which always carries its first group.
type CourseRecord struct {
	Number string
	Title  string
	Units  *float64
	First  GroupRecord
}

// MeetingRecord is a continuation row that adds a meeting to the previous group.
type MeetingRecord struct {
	Meeting     Meeting
	Instructors []string
}

// Classified is a row tagged with its kind. Only the record matching Kind is set.
type Classified struct {
	Kind       Kind
	Department string
	Course     CourseRecord
	Group      GroupRecord
	Meeting    MeetingRecord
}

const instructorTBA = "Instructor TBA"

var dayNumbers = map[rune]int{
	'U': 0,
	'M': 1,
	'T': 2,
	'W': 3,
	'R': 4,
	'F': 5,
	'S': 6,
}

var (
	errMissingDays  = errors.New("missing days")
	errMissingLabel = errors.New("missing lecture/section label")
	errShortRow     = errors.New("row is narrower than the table")
)

// Classify tags a repaired row with its kind and extracts the record for that
// kind. Rows whose record cannot be extracted are reported to tel and come back
// as KindUnrecognized, Classify never fails.
func Classify(row Row, tel telemetry.API) Classified {
	classified, err := classify(row)
	if err != nil {
		tel.ReportWarning(report_classify_row, fmt.Errorf("%s: %w", row.String(), err))
		return Classified{Kind: KindUnrecognized}
	}
	return classified
}

func classify(row Row) (Classified, error) {
	if len(row) < Width {
		return Classified{}, errShortRow
	}

	switch {
	case row.Present(colNumber) && !isNumeric(row.Field(colNumber)):
		return Classified{Kind: KindDepartment, Department: row.Field(colNumber)}, nil
	case row.Present(colNumber):
		first, err := parseGroup(row)
		if err != nil {
			return Classified{}, err
		}
		return Classified{
			Kind: KindCourse,
			Course: CourseRecord{
				Number: row.Field(colNumber),
				Title:  row.Field(colTitle),
				Units:  parseUnits(row.Field(colUnits)),
				First:  first,
			},
		}, nil
	case row.Present(colLabel):
		group, err := parseGroup(row)
		if err != nil {
			return Classified{}, err
		}
		return Classified{Kind: KindLectureOrSection, Group: group}, nil
	default:
		meeting, err := parseMeeting(row)
		if err != nil {
			return Classified{}, err
		}
		return Classified{
			Kind: KindMeeting,
			Meeting: MeetingRecord{
				Meeting:     meeting,
				Instructors: ParseInstructors(row.Field(colInstructor)),
			},
		}, nil
	}
}

func isNumeric(s string) bool {
	return textutil.IsDigits(s)
}

func parseUnits(s string) *float64 {
	units, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &units
}

func parseGroup(row Row) (GroupRecord, error) {
	if !row.Present(colLabel) {
		return GroupRecord{}, errMissingLabel
	}
	meeting, err := parseMeeting(row)
	if err != nil {
		return GroupRecord{}, err
	}
	return GroupRecord{
		Label:       row.Field(colLabel),
		Meeting:     meeting,
		Instructors: ParseInstructors(row.Field(colInstructor)),
	}, nil
}

func parseMeeting(row Row) (Meeting, error) {
	if !row.Present(colDays) {
		return Meeting{}, errMissingDays
	}
	days := row.Field(colDays)
	numbers, err := ParseDays(days)
	if err != nil {
		return Meeting{}, err
	}

	room := row.Field(colRoom)
	building := ""
	if room != "TBA" {
		building, _, _ = strings.Cut(room, " ")
	}

	return Meeting{
		Days:       days,
		DayNumbers: numbers,
		Begin:      row.Field(colBegin),
		End:        row.Field(colEnd),
		Room:       room,
		Building:   building,
		Location:   row.Field(colLocation),
	}, nil
}

// ParseDays maps a day code like "MWF" to day numbers (0 is Sunday), "TBA"
// maps to nil.
func ParseDays(days string) ([]int, error) {
	if days == "TBA" {
		return nil, nil
	}
	out := make([]int, 0, len(days))
	for _, c := range days {
		n, ok := dayNumbers[c]
		if !ok {
			return nil, fmt.Errorf("unknown day %q in %q", c, days)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseInstructors splits an instructor column on ", ". "Instructor TBA" is
// kept as a single name and an empty column is nil.
func ParseInstructors(field string) []string {
	if field == "" {
		return nil
	}
	if field == instructorTBA {
		return []string{instructorTBA}
	}
	return strings.Split(field, ", ")
}
