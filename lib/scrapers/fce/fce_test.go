package fce

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"course-api/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tel := telemetry.NewRecorder()
	records, err := ParseFile(context.Background(), filepath.Join("testdata", "fces.csv"), tel)
	require.NoError(t, err)

	expected := []Record{
		{
			"Semester":                        "Spring",
			"Year":                            "2015",
			"Instructor":                      "IANNUCCI, FRANCESCO",
			"Dept":                            "CS",
			"Course ID":                       "15122",
			"Course Name":                     "PRINCIPLES OF IMPERATIVE COMPUTATION",
			"Section":                         "A",
			"Resp. Rate %":                    "67",
			"Hrs Per Week":                    "10.5",
			"1: Interest in student learning": "4.31",
			"9: Overall course rate":          "4.12",
		},
		{
			"Semester":                        "Spring",
			"Year":                            "2015",
			"Instructor":                      "PLATZER, ANDRE",
			"Dept":                            "CS",
			"Course ID":                       "15122",
			"Course Name":                     "PRINCIPLES OF IMPERATIVE COMPUTATION",
			"Section":                         "B",
			"Resp. Rate %":                    "58",
			"Hrs Per Week":                    "11.2",
			"1: Interest in student learning": "4.50",
			"9: Overall course rate":          "4.01",
		},
		{
			"Semester":   "Fall",
			"Year":       "2014",
			"Instructor": "HARPER, ROBERT",
			"Course ID":  "15150",
		},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Fatal("unexpected records (-want +got)\n", diff)
	}
	require.Empty(t, tel.Reports())
}

func TestParseCSVRowBeforeHeader(t *testing.T) {
	tel := telemetry.NewRecorder()
	records, err := ParseCSV(context.Background(), strings.NewReader(
		"cut off,row\nSemester,Year\nFall,2014\n",
	), tel)
	require.NoError(t, err)
	require.Equal(t, []Record{{"Semester": "Fall", "Year": "2014"}}, records)
	require.Len(t, tel.Reports(report_parse_row), 1)
}

func TestParseMSXML(t *testing.T) {
	tel := telemetry.NewRecorder()
	records, err := ParseFile(context.Background(), filepath.Join("testdata", "fces.xml"), tel)
	require.NoError(t, err)

	expected := []Record{
		{
			"Semester":                        "Spring",
			"Year":                            2015,
			"Instructor":                      "IANNUCCI, FRANCESCO",
			"Course ID":                       15122,
			"Section":                         "A",
			"Num Respondents":                 112,
			"1: Interest in student learning": 4.31,
			"9: Overall course rate":          4.0,
		},
		{
			"Semester":        "Spring",
			"Year":            2015,
			"Course ID":       15150,
			"Section":         "B",
			"Num Respondents": "n/a",
		},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Fatal("unexpected records (-want +got)\n", diff)
	}

	// the title row comes before any header
	require.Len(t, tel.Reports(report_parse_row), 1)
	require.Len(t, tel.Reports(report_parse_number), 1)
	require.Equal(t, "15150", records[1].Column("Course ID"))
	require.Equal(t, "", records[1].Column("Instructor"))
}

func TestParseFileUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fces.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))

	_, err := ParseFile(context.Background(), path, telemetry.NewRecorder())
	require.ErrorContains(t, err, "unknown export format")
}
