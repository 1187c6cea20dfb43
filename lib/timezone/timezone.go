package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
}

// Now returns the current time in Pittsburgh, run dates are stamped with the
// campus calendar day regardless of where the scraper runs.
func Now() time.Time {
	return time.Now().In(Location)
}

// RunDate formats t as the calendar date in Pittsburgh (YYYY-MM-DD).
func RunDate(t time.Time) string {
	return t.In(Location).Format(time.DateOnly)
}
