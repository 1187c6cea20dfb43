package soc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"course-api/lib/pagecache"
	"course-api/lib/restyutil"
	"course-api/lib/scraper"
	"course-api/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultBaseUrl is where the registrar publishes the Schedule Of Classes.
const DefaultBaseUrl = "https://enr-apps.as.cmu.edu/assets/SOC"

// ErrInvalidQuarter is returned for a quarter other than S, M1, M2 or F.
var ErrInvalidQuarter = errors.New("invalid quarter")

type Quarter string

const (
	Spring  Quarter = "S"
	Summer1 Quarter = "M1"
	Summer2 Quarter = "M2"
	Fall    Quarter = "F"
)

var quarterPages = map[Quarter]string{
	Spring:  "spring",
	Summer1: "summer_1",
	Summer2: "summer_2",
	Fall:    "fall",
}

// Quarters lists every valid quarter in calendar order.
func Quarters() []Quarter {
	return []Quarter{Spring, Summer1, Summer2, Fall}
}

// ParseQuarter accepts a quarter code case-insensitively.
func ParseQuarter(s string) (Quarter, error) {
	q := Quarter(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := quarterPages[q]; !ok {
		return "", fmt.Errorf("%w: %q must be one of S, M1, M2, F", ErrInvalidQuarter, s)
	}
	return q, nil
}

// PageName is the name the quarter's page is published under, ex. "summer_1".
func (q Quarter) PageName() (string, error) {
	name, ok := quarterPages[q]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidQuarter, string(q))
	}
	return name, nil
}

type ClientOptions struct {
	BaseUrl          string
	Timeout          time.Duration
	HeaderRows       int
	CloudflareBypass bool
	// Cache is optional, pages are always fetched when it is nil.
	Cache *pagecache.Cache
	// Output is optional, see restyutil.InstrumentClient.
	Output restyutil.InstrumentOutput
}

type Client struct {
	fetcher    scraper.Fetcher
	headerRows int
	tel        telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return Client{
		fetcher: scraper.NewFetcher(scraper.Options{
			BaseUrl:          baseUrl,
			Timeout:          opts.Timeout,
			CloudflareBypass: opts.CloudflareBypass,
			Cache:            opts.Cache,
			Output:           opts.Output,
			Tracer:           tracer,
		}, telemetry.NewScopedAPI("soc", tel)),
		headerRows: opts.HeaderRows,
		tel:        tel,
	}
}

// PageUrl returns the absolute url of the quarter's schedule page.
func (c Client) PageUrl(q Quarter) (string, error) {
	name, err := q.PageName()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/sched_layout_%s.htm", c.fetcher.BaseUrl(), name), nil
}

// FetchPage returns the raw schedule page of a quarter.
func (c Client) FetchPage(ctx context.Context, q Quarter) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()

	link, err := c.PageUrl(q)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("url", link))

	page, err := c.fetcher.Get(ctx, link)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err, string(q))
		return nil, err
	}
	return page, nil
}

// FetchSchedule fetches and parses the schedule of a quarter.
func (c Client) FetchSchedule(ctx context.Context, q Quarter) (Schedule, error) {
	page, err := c.FetchPage(ctx, q)
	if err != nil {
		return Schedule{}, err
	}
	return Parse(ctx, page, ParseOptions{HeaderRows: c.headerRows}, c.tel)
}
