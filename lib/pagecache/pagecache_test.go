package pagecache

import (
	"context"
	"testing"
	"time"

	"course-api/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "pagecache",
		DbSchema: Schema,
	})
	defer cleanup()

	now := time.Date(2024, time.August, 26, 9, 0, 0, 0, time.UTC)
	cache := New(res.DB, time.Hour).WithClock(func() time.Time { return now })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	link := "https://enr-apps.as.cmu.edu/assets/SOC/sched_layout_fall.htm"

	_, err := cache.Get(ctx, link)
	require.ErrorIs(t, err, ErrNotFound)

	err = cache.Set(ctx, link, []byte("<table>one</table>"))
	require.NoError(t, err)

	contents, err := cache.Get(ctx, "HTTPS://ENR-APPS.as.cmu.edu/assets/SOC/sched_layout_fall.htm#top")
	require.NoError(t, err)
	require.Equal(t, "<table>one</table>", string(contents))

	err = cache.Set(ctx, link, []byte("<table>two</table>"))
	require.NoError(t, err)
	contents, err = cache.Get(ctx, link)
	require.NoError(t, err)
	require.Equal(t, "<table>two</table>", string(contents))

	now = now.Add(2 * time.Hour)
	_, err = cache.Get(ctx, link)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPurge(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "pagecache",
		DbSchema: Schema,
	})
	defer cleanup()

	now := time.Date(2024, time.August, 26, 9, 0, 0, 0, time.UTC)
	cache := New(res.DB, time.Hour).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "https://example.edu/a", []byte("a")))
	now = now.Add(30 * time.Minute)
	require.NoError(t, cache.Set(ctx, "https://example.edu/b", []byte("b")))
	now = now.Add(45 * time.Minute)

	removed, err := cache.Purge(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, err = cache.Get(ctx, "https://example.edu/b")
	require.NoError(t, err)
}

func TestKey(t *testing.T) {
	a, err := Key("https://Example.edu/x?b=2&a=1#frag")
	require.NoError(t, err)
	b, err := Key("https://example.edu/x?a=1&b=2")
	require.NoError(t, err)
	require.Equal(t, a, b)
}
