package courseapi

import (
	"context"
	"regexp"
	"sync"
	"time"

	"course-api/lib/scrapers/catalog"
	"course-api/lib/scrapers/fce"
	"course-api/lib/scrapers/soc"
	"course-api/lib/telemetry"
	"course-api/lib/textutil"
	"course-api/lib/timezone"

	"github.com/antzucaro/matchr"
	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel/attribute"
)

const (
	report_aggregate_title     = "aggregate.title-mismatch"
	report_aggregate_duplicate = "aggregate.duplicate-course"
	report_count_courses       = "aggregate.courses"
	report_count_undescribed   = "aggregate.undescribed-courses"
)

// catalog names below this similarity to the schedule title are reported
const titleSimilarityThreshold = 0.8

const fceCourseColumn = "Course ID"

// Record is everything known about a single course.
type Record struct {
	Name          string        `json:"name"`
	Department    string        `json:"department"`
	Units         *float64      `json:"units"`
	Desc          string        `json:"desc"`
	Prereqs       string        `json:"prereqs"`
	Coreqs        string        `json:"coreqs"`
	Semesters     []string      `json:"semester"`
	LetterLecture bool          `json:"letter_lecture"`
	Lectures      []soc.Lecture `json:"lectures"`
	FCEs          []fce.Record  `json:"fces,omitempty"`
}

// Result is the output of one aggregation run, courses are keyed by NN-NNN.
type Result struct {
	Courses  map[string]Record `json:"courses"`
	FCEs     []fce.Record      `json:"fces"`
	RunDate  string            `json:"rundate"`
	Semester string            `json:"semester"`
}

type AggregateOptions struct {
	// Workers defaults to the number of logical cpus.
	Workers int
	// Now defaults to timezone.Now.
	Now time.Time
}

func defaultWorkers() int {
	count, err := cpu.Counts(true)
	if err != nil || count <= 0 {
		return 4
	}
	return count
}

var nonDigits = regexp.MustCompile(`\D`)

func fceIndex(fces []fce.Record) map[string][]fce.Record {
	index := map[string][]fce.Record{}
	for _, record := range fces {
		number := nonDigits.ReplaceAllString(record.Column(fceCourseColumn), "")
		if number == "" {
			continue
		}
		key := soc.FormatNumber(number)
		index[key] = append(index[key], record)
	}
	return index
}

// Aggregate merges a schedule with catalog descriptions and evaluations.
// Every scheduled course produces a record, described or not. A course that
// is listed more than once keeps its first listing.
func Aggregate(
	ctx context.Context,
	schedule soc.Schedule,
	descs []catalog.Description,
	fces []fce.Record,
	opts AggregateOptions,
	tel telemetry.API,
) Result {
	_, span := tracer.Start(ctx, "Aggregate")
	defer span.End()

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	now := opts.Now
	if now.IsZero() {
		now = timezone.Now()
	}

	descIndex := make(map[string]catalog.Description, len(descs))
	for _, d := range descs {
		if _, ok := descIndex[d.Key()]; !ok {
			descIndex[d.Key()] = d
		}
	}
	evaluations := fceIndex(fces)

	var courses []soc.Course
	for _, dept := range schedule.Departments {
		courses = append(courses, dept.Courses...)
	}
	span.SetAttributes(
		attribute.Int("courses", len(courses)),
		attribute.Int("workers", workers),
	)

	records := make([]Record, len(courses))
	undescribed := 0
	processed := 0
	lock := sync.Mutex{}
	wg := sync.WaitGroup{}
	queue := make(chan int)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range queue {
				course := courses[idx]
				desc, described := descIndex[course.Key()]
				records[idx] = merge(course, desc, evaluations[course.Key()], tel)

				lock.Lock()
				processed++
				if !described {
					undescribed++
				}
				done := processed
				lock.Unlock()

				tel.ReportDebug("aggregated course", "course", course.Key(), "done", done, "total", len(courses))
			}
		}()
	}
	for i := range courses {
		queue <- i
	}
	close(queue)
	wg.Wait()

	result := Result{
		Courses:  make(map[string]Record, len(records)),
		FCEs:     fces,
		RunDate:  timezone.RunDate(now),
		Semester: schedule.Semester,
	}
	for i, record := range records {
		key := courses[i].Key()
		if _, ok := result.Courses[key]; ok {
			tel.ReportWarning(report_aggregate_duplicate, key, record.Department)
			continue
		}
		result.Courses[key] = record
	}

	tel.ReportCount(report_count_courses, int64(len(result.Courses)))
	tel.ReportCount(report_count_undescribed, int64(undescribed))
	return result
}

func merge(course soc.Course, desc catalog.Description, evaluations []fce.Record, tel telemetry.API) Record {
	record := Record{
		Name:          course.Title,
		Department:    course.Department,
		Units:         course.Units,
		Desc:          desc.Desc,
		Prereqs:       desc.Prereqs,
		Coreqs:        desc.Coreqs,
		Semesters:     desc.Semesters,
		LetterLecture: course.LetterLecture,
		Lectures:      course.Lectures,
		FCEs:          evaluations,
	}

	if desc.Name != "" {
		similarity := matchr.JaroWinkler(
			textutil.NormalizeName(desc.Name),
			textutil.NormalizeName(course.Title),
			false,
		)
		if similarity < titleSimilarityThreshold {
			tel.ReportWarning(report_aggregate_title, course.Key(), course.Title, desc.Name, similarity)
		}
	}
	return record
}
