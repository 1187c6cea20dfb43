package courseapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"course-api/lib/coursestore"
	coursestoredb "course-api/lib/coursestore/db"
	"course-api/lib/pagecache"
	"course-api/lib/scrapers/soc"
	"course-api/lib/telemetry"
	"course-api/lib/testutil"
	"course-api/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	schedulePage = filepath.Join("..", "..", "lib", "scrapers", "soc", "testdata", "sched_layout_fall.htm")
	catalogPage  = filepath.Join("..", "..", "lib", "scrapers", "catalog", "testdata", "computer_science.html")
	fceExport    = filepath.Join("..", "..", "lib", "scrapers", "fce", "testdata", "fces.csv")
)

type testEnv struct {
	service Service
	tel     *telemetry.Recorder
	hits    *atomic.Int32
	url     string
}

func setupService(t *testing.T, withStore bool) testEnv {
	t.Helper()

	schedule, err := os.ReadFile(schedulePage)
	require.NoError(t, err)
	descriptions, err := os.ReadFile(catalogPage)
	require.NoError(t, err)

	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/SOC/sched_layout_fall.htm":
			w.Write(schedule)
		case "/catalog/computerscience/":
			w.Write(descriptions)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	cache, cleanupCache := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "courseapi",
		DbSchema: pagecache.Schema,
	})
	t.Cleanup(cleanupCache)

	opts := ServiceOptions{
		Config: Config{
			Schedule: ScheduleConfig{
				BaseUrl:        server.URL + "/SOC",
				TimeoutSeconds: 5,
			},
			Catalog: CatalogConfig{
				Sources: []string{
					server.URL + "/catalog/computerscience/",
					server.URL + "/catalog/missing/",
				},
				Workers: 2,
			},
			Workers: 2,
		},
		CacheDB: cache.DB,
		Now: func() time.Time {
			return time.Date(2015, time.August, 1, 12, 0, 0, 0, timezone.Location)
		},
	}
	if withStore {
		store, cleanupStore := testutil.SetupService(t, testutil.ServiceParams{
			Name:     "courseapi",
			DbSchema: coursestoredb.Schema,
		})
		t.Cleanup(cleanupStore)
		opts.StoreDB = store.DB
	}

	tel := telemetry.NewRecorder()
	return testEnv{
		service: NewService(opts, tel),
		tel:     tel,
		hits:    hits,
		url:     server.URL,
	}
}

func TestServiceRun(t *testing.T) {
	env := setupService(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := env.service.Run(ctx, RunRequest{
		Quarter: soc.Fall,
		FCEFile: fceExport,
	})
	require.NoError(t, err)

	require.Equal(t, "Fall 2015", result.Semester)
	require.Equal(t, "2015-08-01", result.RunDate)
	require.Len(t, result.Courses, 3)
	require.Len(t, result.FCEs, 3)

	imperative := result.Courses["15-122"]
	require.Equal(t, "Principles of Imperative Computation", imperative.Name)
	require.Equal(t, "15-112", imperative.Prereqs)
	require.Equal(t, []string{"F", "S"}, imperative.Semesters)
	require.Len(t, imperative.FCEs, 2)
	require.Equal(t, "Lec 1", imperative.Lectures[0].Label)

	functional := result.Courses["15-150"]
	require.Equal(t, "15-122", functional.Prereqs)
	require.Len(t, functional.FCEs, 1)

	putnam := result.Courses["21-295"]
	require.True(t, putnam.LetterLecture)
	require.Empty(t, putnam.Desc)

	// the missing catalog page does not fail the run
	require.Len(t, env.tel.Reports(report_service_descriptions), 1)
	require.Empty(t, env.tel.Reports(report_aggregate_title))

	shown, err := env.service.Show(ctx, "Fall 2015")
	require.NoError(t, err)
	if diff := cmp.Diff(result, shown); diff != "" {
		t.Fatal("stored result differs (-run +stored)\n", diff)
	}

	runs, err := env.service.Runs(ctx)
	require.NoError(t, err)
	require.Equal(t, []coursestore.RunInfo{
		{Semester: "Fall 2015", RunDate: "2015-08-01", Courses: 3},
	}, runs)

	// pages that were found come from the cache on the second run
	before := env.hits.Load()
	_, err = env.service.Run(ctx, RunRequest{Quarter: soc.Fall})
	require.NoError(t, err)
	require.Equal(t, before+1, env.hits.Load())

	purged, err := env.service.PurgeCache(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), purged)
}

func TestServiceWithoutStore(t *testing.T) {
	env := setupService(t, false)
	ctx := context.Background()

	_, err := env.service.Show(ctx, "Fall 2015")
	require.ErrorIs(t, err, ErrNoStore)
	_, err = env.service.Runs(ctx)
	require.ErrorIs(t, err, ErrNoStore)

	result, err := env.service.Run(ctx, RunRequest{ScheduleFile: schedulePage})
	require.NoError(t, err)
	require.Len(t, result.Courses, 3)
	// only the catalog pages were fetched
	require.Equal(t, int32(2), env.hits.Load())
}

func TestServiceShowUnknownSemester(t *testing.T) {
	env := setupService(t, true)
	_, err := env.service.Show(context.Background(), "Spring 1999")
	require.ErrorIs(t, err, coursestore.ErrNotFound)
}

func TestServiceRunInvalidQuarter(t *testing.T) {
	env := setupService(t, false)
	_, err := env.service.Run(context.Background(), RunRequest{Quarter: soc.Quarter("X")})
	require.ErrorIs(t, err, soc.ErrInvalidQuarter)
}

func TestServiceSourcesFile(t *testing.T) {
	env := setupService(t, false)
	path := filepath.Join(t.TempDir(), "sources.txt")
	require.NoError(t, os.WriteFile(path, []byte(env.url+"/catalog/other/\n"), 0600))

	sources, err := env.service.Sources(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{
		env.url + "/catalog/computerscience/",
		env.url + "/catalog/missing/",
		env.url + "/catalog/other/",
	}, sources)
}
