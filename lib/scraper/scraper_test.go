package scraper

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

func TestFetcherGet(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pages/a.htm":
			hits.Add(1)
			w.Write([]byte("page a"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "scraper",
		DbSchema: pagecache.Schema,
	})
	defer cleanup()
	cache := pagecache.New(res.DB, time.Hour)

	tel := telemetry.NewRecorder()
	fetcher := NewFetcher(Options{
		BaseUrl: server.URL + "/pages/",
		Timeout: 5 * time.Second,
		Cache:   &cache,
	}, tel)
	require.Equal(t, server.URL+"/pages", fetcher.BaseUrl())

	ctx := context.Background()

	page, err := fetcher.Get(ctx, "a.htm")
	require.NoError(t, err)
	require.Equal(t, "page a", string(page))

	page, err = fetcher.Get(ctx, server.URL+"/pages/a.htm")
	require.NoError(t, err)
	require.Equal(t, "page a", string(page))
	require.Equal(t, int32(1), hits.Load())

	_, err = fetcher.Get(ctx, "missing.htm")
	require.Error(t, err)
	require.Len(t, tel.Reports(report_fetcher_get), 1)
}

func TestFetcherWithoutCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	fetcher := NewFetcher(Options{}, telemetry.NewRecorder())
	for range 2 {
		_, err := fetcher.Get(context.Background(), server.URL)
		require.NoError(t, err)
	}
	require.Equal(t, int32(2), hits.Load())
}
