package catalog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"course-api/lib/htmlutil"
	"course-api/lib/pagecache"
	"course-api/lib/restyutil"
	"course-api/lib/scraper"
	"course-api/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultIndexUrl = "http://coursecatalog.web.cmu.edu/coursedescriptions/"

// DefaultSourceSelector matches the department links of the catalog index.
const DefaultSourceSelector = `a[href*="/coursedescriptions/"]`

const DefaultWorkers = 4

type ClientOptions struct {
	Timeout time.Duration
	// Cache is optional.
	Cache *pagecache.Cache
	// Output is optional.
	Output restyutil.InstrumentOutput
}

// Client fetches and parses course catalog pages.
type Client struct {
	fetcher scraper.Fetcher
	tel     telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) Client {
	fetcher := scraper.NewFetcher(scraper.Options{
		Timeout: opts.Timeout,
		Cache:   opts.Cache,
		Output:  opts.Output,
		Tracer:  tracer,
	}, telemetry.NewScopedAPI("catalog", tel))
	return Client{
		fetcher: fetcher,
		tel:     tel,
	}
}

// Fetch gets a single catalog page and parses it.
func (c Client) Fetch(ctx context.Context, link string) ([]Description, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	page, err := c.fetcher.Get(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog page")
		return nil, err
	}
	return ParseCatalog(ctx, bytes.NewReader(page), c.tel)
}

// FetchAll fetches every link with at most `workers` requests in flight.
// Descriptions of the pages that succeeded are returned sorted by course
// number along with the joined errors of those that failed.
func (c Client) FetchAll(ctx context.Context, links []string, workers int) ([]Description, error) {
	ctx, span := tracer.Start(ctx, "FetchAll")
	defer span.End()
	span.SetAttributes(attribute.Int("sources", len(links)))

	if workers <= 0 {
		workers = DefaultWorkers
	}

	queue := make(chan string)

	var result []Description
	var errList []error
	resultLock := sync.Mutex{}
	wg := sync.WaitGroup{}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for link := range queue {
				descs, err := c.Fetch(ctx, link)

				resultLock.Lock()
				if err != nil {
					c.tel.ReportBroken(report_client_fetch, err, link)
					errList = append(errList, fmt.Errorf("%s: %w", link, err))
				} else {
					result = append(result, descs...)
				}
				resultLock.Unlock()
			}
		}()
	}

	for _, link := range links {
		select {
		case queue <- link:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(queue)
	wg.Wait()

	slices.SortStableFunc(result, func(a, b Description) int {
		return strings.Compare(a.Number, b.Number)
	})

	if ctx.Err() != nil {
		errList = append(errList, ctx.Err())
	}
	err := errors.Join(errList...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "some catalog pages failed")
	}
	return result, err
}

// DiscoverSources lists the department pages linked from a catalog index.
func (c Client) DiscoverSources(ctx context.Context, indexUrl, selector string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "DiscoverSources")
	defer span.End()

	if selector == "" {
		selector = DefaultSourceSelector
	}
	base, err := url.Parse(indexUrl)
	if err != nil {
		return nil, err
	}

	page, err := c.fetcher.Get(ctx, indexUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog index")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	var sources []string
	for _, a := range htmlutil.GetAnchors(ctx, doc.Find(selector), base) {
		link, err := url.Parse(a.Href)
		if err != nil {
			continue
		}
		link.Fragment = ""
		// the index links to itself
		if link.Path == base.Path {
			continue
		}
		if !slices.Contains(sources, link.String()) {
			sources = append(sources, link.String())
		}
	}
	span.SetAttributes(attribute.Int("sources", len(sources)))
	return sources, nil
}

// ReadSources reads a list of catalog urls, one per line. Blank lines and
// lines starting with # are skipped.
func ReadSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sources []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sources = append(sources, line)
	}
	return sources, scanner.Err()
}
