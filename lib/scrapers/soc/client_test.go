package soc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"course-api/lib/pagecache"
	"course-api/lib/telemetry"
	"course-api/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestParseQuarter(t *testing.T) {
	for _, q := range Quarters() {
		parsed, err := ParseQuarter(string(q))
		require.NoError(t, err)
		require.Equal(t, q, parsed)
	}

	q, err := ParseQuarter(" m1 ")
	require.NoError(t, err)
	require.Equal(t, Summer1, q)

	_, err = ParseQuarter("W")
	require.ErrorIs(t, err, ErrInvalidQuarter)

	_, err = Quarter("X").PageName()
	require.ErrorIs(t, err, ErrInvalidQuarter)
}

func TestPageUrl(t *testing.T) {
	client := NewClient(ClientOptions{}, telemetry.NewRecorder())
	link, err := client.PageUrl(Summer2)
	require.NoError(t, err)
	require.Equal(t, "https://enr-apps.as.cmu.edu/assets/SOC/sched_layout_summer_2.htm", link)
}

func TestFetchSchedule(t *testing.T) {
	page := readTestPage(t)

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/SOC/sched_layout_fall.htm" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.Write(page)
	}))
	defer server.Close()

	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "soc",
		DbSchema: pagecache.Schema,
	})
	defer cleanup()
	cache := pagecache.New(res.DB, time.Hour)

	tel := telemetry.NewRecorder()
	client := NewClient(ClientOptions{
		BaseUrl: server.URL + "/SOC/",
		Timeout: 5 * time.Second,
		Cache:   &cache,
	}, tel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schedule, err := client.FetchSchedule(ctx, Fall)
	require.NoError(t, err)
	require.Equal(t, "Fall 2015", schedule.Semester)
	require.Len(t, schedule.Departments, 2)

	// served from the cache the second time
	_, err = client.FetchSchedule(ctx, Fall)
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())

	_, err = client.FetchSchedule(ctx, Spring)
	require.Error(t, err)
	require.Len(t, tel.Reports(report_client_fetch), 1)
}
