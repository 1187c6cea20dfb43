// Package scraper holds the plumbing shared by the read-only scrapers.
//
// Each scraping method generally has this structure:
//  1. make assertions on input validity.
//  2. turn the input into a url.
//  3. fetch it (from the page cache when a fresh copy exists).
//  4. make assertions on response validity (status, body).
//  5. transform the body into the output structure, usually with goquery.
//
// Steps 3 and 4 are the same for every source, so they live here.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"course-api/lib/pagecache"
	"course-api/lib/restyutil"
	"course-api/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("courseapi.lib.scraper")

const (
	report_fetcher_get   = "fetcher.get"
	report_fetcher_cache = "fetcher.page-cache"
)

type Options struct {
	BaseUrl          string
	Timeout          time.Duration
	CloudflareBypass bool
	// Cache is optional, pages are always fetched when it is nil.
	Cache *pagecache.Cache
	// Output is optional, see restyutil.InstrumentClient.
	Output restyutil.InstrumentOutput
	// Tracer names the spans of requests, it defaults to this package's tracer.
	Tracer trace.Tracer
}

// Fetcher gets pages over http, going through the page cache when it has one.
type Fetcher struct {
	http  *resty.Client
	cache *pagecache.Cache
	tel   telemetry.API
}

func NewFetcher(opts Options, tel telemetry.API) Fetcher {
	client := resty.New()
	if opts.BaseUrl != "" {
		client.SetBaseURL(strings.TrimSuffix(opts.BaseUrl, "/"))
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	t := opts.Tracer
	if t == nil {
		t = tracer
	}
	restyutil.InstrumentClient(client, t, opts.Output)

	return Fetcher{
		http:  client,
		cache: opts.Cache,
		tel:   tel,
	}
}

// BaseUrl returns the base url without a trailing slash.
func (f Fetcher) BaseUrl() string {
	return f.http.BaseURL
}

// Get returns the body of link, relative links are resolved against the base url.
func (f Fetcher) Get(ctx context.Context, link string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	cacheKey := link
	if !strings.Contains(link, "://") {
		cacheKey = f.http.BaseURL + "/" + strings.TrimPrefix(link, "/")
	}

	if f.cache != nil {
		page, err := f.cache.Get(ctx, cacheKey)
		if err == nil {
			span.AddEvent("cache hit")
			return page, nil
		}
		if !errors.Is(err, pagecache.ErrNotFound) {
			f.tel.ReportBroken(report_fetcher_cache, err, cacheKey)
		}
	}

	res, err := f.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_get, err, link)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("get %s: %w", link, err)
	}
	if res.StatusCode() != http.StatusOK {
		err := fmt.Errorf("get %s: unexpected status %d", link, res.StatusCode())
		f.tel.ReportBroken(report_fetcher_get, err)
		span.SetStatus(codes.Error, "unexpected status code")
		return nil, err
	}

	page := res.Body()
	if f.cache != nil {
		err = f.cache.Set(ctx, cacheKey, page)
		if err != nil {
			f.tel.ReportBroken(report_fetcher_cache, err, cacheKey)
		}
	}
	return page, nil
}
