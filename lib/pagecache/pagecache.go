package pagecache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"net/url"
	"strings"
	"time"

	"course-api/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.sql
var Schema string

var tracer = otel.Tracer("courseapi.lib.pagecache")

// ErrNotFound is returned when a page was never cached or has expired.
var ErrNotFound = errors.New("page not cached")

// Cache keeps fetched pages in a sqlite table until they expire.
type Cache struct {
	db       *sql.DB
	lifetime time.Duration
	now      func() time.Time
}

func New(db *sql.DB, lifetime time.Duration) Cache {
	return Cache{db: db, lifetime: lifetime, now: timezone.Now}
}

// WithClock returns a copy of the cache that reads the time from now.
func (c Cache) WithClock(now func() time.Time) Cache {
	c.now = now
	return c
}

// Key normalizes a url so that trivially different spellings share an entry.
func Key(link string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", err
	}
	parsed.Fragment = ""
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.RawQuery = parsed.Query().Encode()
	return parsed.String(), nil
}

func (c Cache) Get(ctx context.Context, link string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	key, err := Key(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return nil, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	var (
		contents  []byte
		expiresAt int64
	)
	err = c.db.QueryRowContext(
		ctx,
		"select contents, expires_at from page where url = ?",
		key,
	).Scan(&contents, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cached page")
		return nil, err
	}

	if c.now().Unix() >= expiresAt {
		span.AddEvent("delete expired cache key", trace.WithAttributes(
			attribute.String("key", key),
		))
		_, err = c.db.ExecContext(ctx, "delete from page where url = ?", key)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired page")
		}
		return nil, ErrNotFound
	}

	span.AddEvent("cache hit", trace.WithAttributes(
		attribute.Int("contentlength", len(contents)),
	))
	return contents, nil
}

func (c Cache) Set(ctx context.Context, link string, contents []byte) error {
	ctx, span := tracer.Start(ctx, "Set")
	defer span.End()

	key, err := Key(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	_, err = c.db.ExecContext(
		ctx,
		`insert into page (url, contents, expires_at) values (?, ?, ?)
		on conflict (url) do update set contents = excluded.contents, expires_at = excluded.expires_at`,
		key, contents, c.now().Add(c.lifetime).Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write cached page")
		return err
	}
	return nil
}

// Purge removes every expired page and returns how many were removed.
func (c Cache) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "delete from page where expires_at <= ?", c.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
