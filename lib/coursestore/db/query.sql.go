package db

import (
	"context"
)

const createCourse = `-- name: CreateCourse :exec
insert into course(run_id, number, data) values (?, ?, ?)
`

type CreateCourseParams struct {
	RunID  int64
	Number string
	Data   string
}

func (q *Queries) CreateCourse(ctx context.Context, arg CreateCourseParams) error {
	_, err := q.db.ExecContext(ctx, createCourse, arg.RunID, arg.Number, arg.Data)
	return err
}

const createFce = `-- name: CreateFce :exec
insert into fce(run_id, data) values (?, ?)
`

type CreateFceParams struct {
	RunID int64
	Data  string
}

func (q *Queries) CreateFce(ctx context.Context, arg CreateFceParams) error {
	_, err := q.db.ExecContext(ctx, createFce, arg.RunID, arg.Data)
	return err
}

const createRun = `-- name: CreateRun :one
insert into run(semester, rundate, created_at) values (?, ?, ?)
returning id
`

type CreateRunParams struct {
	Semester  string
	Rundate   string
	CreatedAt int64
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createRun, arg.Semester, arg.Rundate, arg.CreatedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const deleteRun = `-- name: DeleteRun :exec
delete from run where semester = ? and rundate = ?
`

type DeleteRunParams struct {
	Semester string
	Rundate  string
}

func (q *Queries) DeleteRun(ctx context.Context, arg DeleteRunParams) error {
	_, err := q.db.ExecContext(ctx, deleteRun, arg.Semester, arg.Rundate)
	return err
}

const deleteRunCourses = `-- name: DeleteRunCourses :exec
delete from course where run_id in (
    select id from run where semester = ?1 and rundate = ?2
)
`

type DeleteRunCoursesParams struct {
	Semester string
	Rundate  string
}

func (q *Queries) DeleteRunCourses(ctx context.Context, arg DeleteRunCoursesParams) error {
	_, err := q.db.ExecContext(ctx, deleteRunCourses, arg.Semester, arg.Rundate)
	return err
}

const deleteRunFces = `-- name: DeleteRunFces :exec
delete from fce where run_id in (
    select id from run where semester = ?1 and rundate = ?2
)
`

type DeleteRunFcesParams struct {
	Semester string
	Rundate  string
}

func (q *Queries) DeleteRunFces(ctx context.Context, arg DeleteRunFcesParams) error {
	_, err := q.db.ExecContext(ctx, deleteRunFces, arg.Semester, arg.Rundate)
	return err
}

const getCourses = `-- name: GetCourses :many
select number, data from course where run_id = ?
order by number
`

type GetCoursesRow struct {
	Number string
	Data   string
}

func (q *Queries) GetCourses(ctx context.Context, runID int64) ([]GetCoursesRow, error) {
	rows, err := q.db.QueryContext(ctx, getCourses, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCoursesRow
	for rows.Next() {
		var i GetCoursesRow
		if err := rows.Scan(&i.Number, &i.Data); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getFces = `-- name: GetFces :many
select data from fce where run_id = ?
order by id
`

func (q *Queries) GetFces(ctx context.Context, runID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getFces, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		items = append(items, data)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getLatestRun = `-- name: GetLatestRun :one
select id, semester, rundate, created_at from run where semester = ?
order by rundate desc, created_at desc
limit 1
`

func (q *Queries) GetLatestRun(ctx context.Context, semester string) (Run, error) {
	row := q.db.QueryRowContext(ctx, getLatestRun, semester)
	var i Run
	err := row.Scan(
		&i.ID,
		&i.Semester,
		&i.Rundate,
		&i.CreatedAt,
	)
	return i, err
}

const listRuns = `-- name: ListRuns :many
select run.semester, run.rundate, count(course.number) as courses
from run
left join course on course.run_id = run.id
group by run.id
order by run.rundate desc, run.semester
`

type ListRunsRow struct {
	Semester string
	Rundate  string
	Courses  int64
}

func (q *Queries) ListRuns(ctx context.Context) ([]ListRunsRow, error) {
	rows, err := q.db.QueryContext(ctx, listRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListRunsRow
	for rows.Next() {
		var i ListRunsRow
		if err := rows.Scan(&i.Semester, &i.Rundate, &i.Courses); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
