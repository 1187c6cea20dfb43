package coursestore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"course-api/lib/coursestore/db"
	"course-api/lib/telemetry"
	"course-api/lib/testutil"
	"course-api/lib/timezone"

	"github.com/stretchr/testify/require"
)

func course(t *testing.T, number, title string) Course {
	t.Helper()
	record, err := json.Marshal(map[string]any{"name": title})
	require.NoError(t, err)
	return Course{Number: number, Record: record}
}

func TestStore(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "coursestore",
		DbSchema: db.Schema,
	})
	defer cleanup()

	tel := telemetry.NewRecorder()
	store := NewStore(res.DB, tel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		_, err := store.Pull(ctx, "Fall 2015")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = store.Pull(ctx, testutil.RandomName(t, 12))
		require.ErrorIs(t, err, ErrNotFound)

		runs, err := store.Runs(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 0)
	}
	{
		now := timezone.Now()
		err := store.Push(ctx, Snapshot{
			Semester: "Fall 2015",
			RunDate:  "2015-08-01",
			Time:     now,
			Courses: []Course{
				course(t, "15-122", "Principles of Imperative Computation"),
				course(t, "15-150", "Principles of Functional Programming"),
			},
			FCEs: []json.RawMessage{json.RawMessage(`{"Course ID":"15122"}`)},
		})
		require.NoError(t, err)

		// a second push on the same day replaces the first
		err = store.Push(ctx, Snapshot{
			Semester: "Fall 2015",
			RunDate:  "2015-08-01",
			Time:     now,
			Courses: []Course{
				course(t, "15-150", "Principles of Functional Programming"),
			},
		})
		require.NoError(t, err)

		err = store.Push(ctx, Snapshot{
			Semester: "Fall 2015",
			RunDate:  "2015-07-01",
			Time:     now.Add(-time.Hour * 24 * 31),
			Courses: []Course{
				course(t, "21-127", "Concepts of Mathematics"),
			},
		})
		require.NoError(t, err)

		err = store.Push(ctx, Snapshot{
			Semester: "Spring 2016",
			RunDate:  "2015-12-01",
			Time:     now,
			Courses: []Course{
				course(t, "15-213", "Introduction to Computer Systems"),
				course(t, "15-122", "Principles of Imperative Computation"),
			},
			FCEs: []json.RawMessage{
				json.RawMessage(`{"Course ID":"15213"}`),
				json.RawMessage(`{"Course ID":"15122"}`),
			},
		})
		require.NoError(t, err)
	}
	{
		snapshot, err := store.Pull(ctx, "Fall 2015")
		require.NoError(t, err)
		require.Equal(t, "2015-08-01", snapshot.RunDate)
		require.Len(t, snapshot.Courses, 1)
		require.Equal(t, "15-150", snapshot.Courses[0].Number)
		require.JSONEq(t, `{"name":"Principles of Functional Programming"}`, string(snapshot.Courses[0].Record))
		require.Len(t, snapshot.FCEs, 0)

		snapshot, err = store.Pull(ctx, "Spring 2016")
		require.NoError(t, err)
		require.Equal(t, "15-122", snapshot.Courses[0].Number)
		require.Equal(t, "15-213", snapshot.Courses[1].Number)
		require.Len(t, snapshot.FCEs, 2)
		require.JSONEq(t, `{"Course ID":"15213"}`, string(snapshot.FCEs[0]))
	}
	{
		runs, err := store.Runs(ctx)
		require.NoError(t, err)
		require.Equal(t, []RunInfo{
			{Semester: "Spring 2016", RunDate: "2015-12-01", Courses: 2},
			{Semester: "Fall 2015", RunDate: "2015-08-01", Courses: 1},
			{Semester: "Fall 2015", RunDate: "2015-07-01", Courses: 1},
		}, runs)
	}

	require.Empty(t, tel.Reports())
}
