package soc

import "fmt"

// Schedule is every department listed on one Schedule Of Classes page.
type Schedule struct {
	Semester    string       `json:"semester"`
	Departments []Department `json:"departments"`
}

type Department struct {
	Name    string   `json:"department"`
	Courses []Course `json:"courses"`
}

type Course struct {
	Number     string `json:"num"`
	Title      string `json:"title"`
	Department string `json:"department"`
	// Units is nil when the units column is missing or not a number.
	Units *float64 `json:"units"`
	// LetterLecture is set for courses whose top-level groups are lettered
	// (no separate lecture + lettered-section structure).
	LetterLecture bool      `json:"letter_lecture"`
	Lectures      []Lecture `json:"lectures"`
}

// Key renders the course number the way it is written in the catalog, "15122" -> "15-122".
func (c Course) Key() string {
	return FormatNumber(c.Number)
}

// FormatNumber renders a 5-digit course number as NN-NNN, other values are returned as is.
func FormatNumber(number string) string {
	if len(number) != 5 {
		return number
	}
	return fmt.Sprintf("%s-%s", number[:2], number[2:])
}

type Lecture struct {
	Label    string    `json:"name"`
	Meetings []Meeting `json:"times"`
	// Instructors is nil when the instructor column was empty.
	Instructors []string  `json:"instructors"`
	Sections    []Section `json:"sections"`
}

type Section struct {
	Label       string    `json:"name"`
	Meetings    []Meeting `json:"times"`
	Instructors []string  `json:"instructors"`
}

type Meeting struct {
	// Days is the raw day code, ex. "TR" or "TBA".
	Days string `json:"days"`
	// DayNumbers maps Days to 0 (Sunday) .. 6 (Saturday), nil when Days is "TBA".
	DayNumbers []int  `json:"day_numbers"`
	Begin      string `json:"begin"`
	End        string `json:"end"`
	Room       string `json:"room"`
	Building   string `json:"building"`
	Location   string `json:"location"`
}
