package soc

import (
	"testing"

	"course-api/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func padded(fields ...string) Row {
	return NewRow(fields...).Pad(Width)
}

func ptr[T any](v T) *T {
	return &v
}

func TestClassifyDepartment(t *testing.T) {
	tel := telemetry.NewRecorder()
	for _, name := range []string{"Computer Science", "Lec", "15-122", "W"} {
		res := Classify(padded(name), tel)
		require.Equal(t, KindDepartment, res.Kind)
		require.Equal(t, name, res.Department)
	}
	require.Empty(t, tel.Reports())
}

func TestClassifyCourse(t *testing.T) {
	tel := telemetry.NewRecorder()
	row := padded("15122", "Principles of Imperative Computation", "10.0", "Lec 1", "MWF", "09:00AM", "09:50AM", "DH 2210", "Pittsburgh, Pennsylvania", "Simmons")

	res := Classify(row, tel)
	diff := cmp.Diff(Classified{
		Kind: KindCourse,
		Course: CourseRecord{
			Number: "15122",
			Title:  "Principles of Imperative Computation",
			Units:  ptr(10.0),
			First: GroupRecord{
				Label: "Lec 1",
				Meeting: Meeting{
					Days:       "MWF",
					DayNumbers: []int{1, 3, 5},
					Begin:      "09:00AM",
					End:        "09:50AM",
					Room:       "DH 2210",
					Building:   "DH",
					Location:   "Pittsburgh, Pennsylvania",
				},
				Instructors: []string{"Simmons"},
			},
		},
	}, res)
	if diff != "" {
		t.Fatal(diff)
	}

	// classification is a pure function of the row
	require.Equal(t, res, Classify(row, tel))
}

func TestClassifyUnits(t *testing.T) {
	tel := telemetry.NewRecorder()
	cases := []struct {
		units  string
		expect *float64
	}{
		{units: "12.0", expect: ptr(12.0)},
		{units: "3", expect: ptr(3.0)},
		{units: "VAR", expect: nil},
		{units: "", expect: nil},
	}
	for _, test := range cases {
		res := Classify(padded("15122", "Title", test.units, "A", "M"), tel)
		require.Equal(t, KindCourse, res.Kind)
		require.Equal(t, test.expect, res.Course.Units, "units %q", test.units)
	}
}

func TestClassifyLectureOrSection(t *testing.T) {
	res := Classify(
		padded("", "", "", "A", "R", "10:00AM", "10:50AM", "WEH 5403", "Pittsburgh, Pennsylvania", "Wright"),
		telemetry.NewRecorder(),
	)
	require.Equal(t, KindLectureOrSection, res.Kind)
	require.Equal(t, "A", res.Group.Label)
	require.Equal(t, []int{4}, res.Group.Meeting.DayNumbers)
	require.Equal(t, "WEH", res.Group.Meeting.Building)
	require.Equal(t, []string{"Wright"}, res.Group.Instructors)
}

func TestClassifyMeeting(t *testing.T) {
	res := Classify(
		padded("", "", "", "", "TBA", "", "", "TBA", "Doha, Qatar", ""),
		telemetry.NewRecorder(),
	)
	diff := cmp.Diff(Classified{
		Kind: KindMeeting,
		Meeting: MeetingRecord{
			Meeting: Meeting{
				Days:     "TBA",
				Room:     "TBA",
				Location: "Doha, Qatar",
			},
		},
	}, res)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestClassifyUnrecognized(t *testing.T) {
	cases := []Row{
		// no days
		padded("", "", "", "", "", "", "", "", "", ""),
		// unknown day letter
		padded("", "", "", "A", "MQ", "10:00AM", "10:50AM", "", "", ""),
		// course without a lecture label
		padded("15122", "Principles", "10.0", "", "MWF"),
		// narrower than the table
		NewRow("", "", "", "A", "R"),
	}

	for _, row := range cases {
		tel := telemetry.NewRecorder()
		res := Classify(row, tel)
		require.Equal(t, Classified{Kind: KindUnrecognized}, res, "row %s", row)

		reports := tel.Reports(report_classify_row)
		require.Len(t, reports, 1)
		require.Equal(t, "warning", reports[0].Level)
	}
}

func TestParseInstructors(t *testing.T) {
	require.Nil(t, ParseInstructors(""))
	require.Equal(t, []string{"Instructor TBA"}, ParseInstructors("Instructor TBA"))
	require.Equal(t, []string{"Simmons"}, ParseInstructors("Simmons"))
	require.Equal(t, []string{"Simmons", "Wright"}, ParseInstructors("Simmons, Wright"))
	require.Equal(t, []string{"Loh,Bohman"}, ParseInstructors("Loh,Bohman"))
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("UMTWRFS")
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, days)

	days, err = ParseDays("TBA")
	require.NoError(t, err)
	require.Nil(t, days)

	_, err = ParseDays("MX")
	require.Error(t, err)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "lecture-or-section", KindLectureOrSection.String())
	require.Equal(t, "kind(42)", Kind(42).String())
}
