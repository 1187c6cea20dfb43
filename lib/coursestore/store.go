package coursestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"course-api/lib/coursestore/db"
	"course-api/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("courseapi.lib.coursestore")

const report_pull_decode = "store.pull-decode"

var ErrNotFound = errors.New("no run stored for semester")

// Store keeps the results of aggregation runs, one per semester and run date.
type Store struct {
	db  *sql.DB
	qry *db.Queries
	tel telemetry.API
}

func NewStore(database *sql.DB, tel telemetry.API) Store {
	return Store{
		db:  database,
		qry: db.New(database),
		tel: tel,
	}
}

type Course struct {
	Number string
	Record json.RawMessage
}

type Snapshot struct {
	Semester string
	RunDate  string
	Time     time.Time
	Courses  []Course
	FCEs     []json.RawMessage
}

// Push stores a run, replacing any run of the same semester and run date.
func (s Store) Push(ctx context.Context, snapshot Snapshot) error {
	ctx, span := tracer.Start(ctx, "Push")
	defer span.End()
	span.SetAttributes(
		attribute.String("semester", snapshot.Semester),
		attribute.String("rundate", snapshot.RunDate),
		attribute.Int("courses", len(snapshot.Courses)),
	)

	err := s.push(ctx, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s Store) push(ctx context.Context, snapshot Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteRunCourses(ctx, db.DeleteRunCoursesParams{
		Semester: snapshot.Semester,
		Rundate:  snapshot.RunDate,
	})
	if err != nil {
		return err
	}
	err = txqry.DeleteRunFces(ctx, db.DeleteRunFcesParams{
		Semester: snapshot.Semester,
		Rundate:  snapshot.RunDate,
	})
	if err != nil {
		return err
	}
	err = txqry.DeleteRun(ctx, db.DeleteRunParams{
		Semester: snapshot.Semester,
		Rundate:  snapshot.RunDate,
	})
	if err != nil {
		return err
	}

	runId, err := txqry.CreateRun(ctx, db.CreateRunParams{
		Semester:  snapshot.Semester,
		Rundate:   snapshot.RunDate,
		CreatedAt: snapshot.Time.Unix(),
	})
	if err != nil {
		return err
	}

	for _, course := range snapshot.Courses {
		err := txqry.CreateCourse(ctx, db.CreateCourseParams{
			RunID:  runId,
			Number: course.Number,
			Data:   string(course.Record),
		})
		if err != nil {
			return fmt.Errorf("course %s: %w", course.Number, err)
		}
	}
	for _, fce := range snapshot.FCEs {
		err := txqry.CreateFce(ctx, db.CreateFceParams{
			RunID: runId,
			Data:  string(fce),
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Pull returns the most recent run of a semester.
func (s Store) Pull(ctx context.Context, semester string) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Pull")
	defer span.End()
	span.SetAttributes(attribute.String("semester", semester))

	run, err := s.qry.GetLatestRun(ctx, semester)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, semester)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}

	courses, err := s.qry.GetCourses(ctx, run.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}
	fces, err := s.qry.GetFces(ctx, run.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Semester: run.Semester,
		RunDate:  run.Rundate,
		Time:     time.Unix(run.CreatedAt, 0),
	}
	for _, c := range courses {
		if !json.Valid([]byte(c.Data)) {
			s.tel.ReportWarning(report_pull_decode, c.Number)
			continue
		}
		snapshot.Courses = append(snapshot.Courses, Course{
			Number: c.Number,
			Record: json.RawMessage(c.Data),
		})
	}
	for _, f := range fces {
		if !json.Valid([]byte(f)) {
			s.tel.ReportWarning(report_pull_decode, "fce")
			continue
		}
		snapshot.FCEs = append(snapshot.FCEs, json.RawMessage(f))
	}
	return snapshot, nil
}

type RunInfo struct {
	Semester string
	RunDate  string
	Courses  int
}

// Runs lists every stored run, most recent first.
func (s Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.qry.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	runs := make([]RunInfo, len(rows))
	for i, r := range rows {
		runs[i] = RunInfo{
			Semester: r.Semester,
			RunDate:  r.Rundate,
			Courses:  int(r.Courses),
		}
	}
	return runs, nil
}
