package courseapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"course-api/lib/coursestore"
	coursestoredb "course-api/lib/coursestore/db"
	"course-api/lib/pagecache"
	"course-api/lib/restyutil"
	"course-api/lib/scrapers/catalog"
	"course-api/lib/scrapers/fce"
	"course-api/lib/scrapers/soc"
	"course-api/lib/telemetry"
	"course-api/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("courseapi.services.courseapi")

const (
	report_service_descriptions = "service.descriptions"
	report_service_store        = "service.store"
)

// ErrNoStore is returned by operations that need the course store when the
// service was set up without one.
var ErrNoStore = errors.New("course store is not configured")

type ServiceOptions struct {
	Config Config
	// CacheDB is optional, pages are always fetched when it is nil.
	CacheDB *sql.DB
	// StoreDB is optional, runs are not persisted when it is nil.
	StoreDB *sql.DB
	// Output is optional, see restyutil.InstrumentClient.
	Output restyutil.InstrumentOutput
	// Now defaults to timezone.Now.
	Now func() time.Time
}

type Service struct {
	cfg     Config
	soc     soc.Client
	catalog catalog.Client
	cache   *pagecache.Cache
	store   *coursestore.Store
	now     func() time.Time
	tel     telemetry.API
}

func NewService(opts ServiceOptions, tel telemetry.API) Service {
	now := opts.Now
	if now == nil {
		now = timezone.Now
	}

	var cache *pagecache.Cache
	if opts.CacheDB != nil {
		c := pagecache.New(opts.CacheDB, opts.Config.Cache.lifetime()).WithClock(now)
		cache = &c
	}
	var store *coursestore.Store
	if opts.StoreDB != nil {
		s := coursestore.NewStore(opts.StoreDB, telemetry.NewScopedAPI("coursestore", tel))
		store = &s
	}

	cfg := opts.Config
	return Service{
		cfg: cfg,
		soc: soc.NewClient(soc.ClientOptions{
			BaseUrl:          cfg.Schedule.BaseUrl,
			Timeout:          cfg.timeout(),
			HeaderRows:       cfg.Schedule.HeaderRows,
			CloudflareBypass: cfg.Schedule.CloudflareBypass,
			Cache:            cache,
			Output:           opts.Output,
		}, tel),
		catalog: catalog.NewClient(catalog.ClientOptions{
			Timeout: cfg.timeout(),
			Cache:   cache,
			Output:  opts.Output,
		}, tel),
		cache: cache,
		store: store,
		now:   now,
		tel:   tel,
	}
}

// OpenService opens the databases named in cfg and creates a service over
// them, the returned function closes them.
func OpenService(cfg Config, output restyutil.InstrumentOutput, tel telemetry.API) (Service, func(), error) {
	opts := ServiceOptions{
		Config: cfg,
		Output: output,
	}
	var opened []*sql.DB
	cleanup := func() {
		for _, db := range opened {
			db.Close()
		}
	}

	if databaseEnabled(cfg.Cache.Database) {
		db, err := cfg.Cache.Database.OpenDB(pagecache.Schema)
		if err != nil {
			return Service{}, nil, fmt.Errorf("open page cache: %w", err)
		}
		opened = append(opened, db)
		opts.CacheDB = db
	}
	if databaseEnabled(cfg.Store.Database) {
		db, err := cfg.Store.Database.OpenDB(coursestoredb.Schema)
		if err != nil {
			cleanup()
			return Service{}, nil, fmt.Errorf("open course store: %w", err)
		}
		opened = append(opened, db)
		opts.StoreDB = db
	}

	return NewService(opts, tel), cleanup, nil
}

// Schedule fetches and parses the schedule of a quarter.
func (s Service) Schedule(ctx context.Context, quarter soc.Quarter) (soc.Schedule, error) {
	return s.soc.FetchSchedule(ctx, quarter)
}

// ScheduleFromFile parses a schedule page saved to disk.
func (s Service) ScheduleFromFile(ctx context.Context, path string) (soc.Schedule, error) {
	page, err := os.ReadFile(path)
	if err != nil {
		return soc.Schedule{}, err
	}
	return soc.Parse(ctx, page, soc.ParseOptions{HeaderRows: s.cfg.Schedule.HeaderRows}, s.tel)
}

// Sources returns the catalog pages to read, in order of preference the
// configured urls, the sources file and the pages linked from the index.
func (s Service) Sources(ctx context.Context, sourcesFile string) ([]string, error) {
	sources := append([]string{}, s.cfg.Catalog.Sources...)

	if sourcesFile == "" {
		sourcesFile = s.cfg.Catalog.SourcesFile
	}
	if sourcesFile != "" {
		fromFile, err := catalog.ReadSources(sourcesFile)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fromFile...)
	}
	if len(sources) > 0 {
		return sources, nil
	}

	index := s.cfg.Catalog.IndexUrl
	if index == "" {
		index = catalog.DefaultIndexUrl
	}
	return s.catalog.DiscoverSources(ctx, index, "")
}

// Descriptions fetches every catalog page. Pages that fail are reported and
// the descriptions of the rest are still returned with the error.
func (s Service) Descriptions(ctx context.Context, sourcesFile string) ([]catalog.Description, error) {
	sources, err := s.Sources(ctx, sourcesFile)
	if err != nil {
		return nil, err
	}
	return s.catalog.FetchAll(ctx, sources, s.cfg.Catalog.Workers)
}

type RunRequest struct {
	Quarter soc.Quarter
	// ScheduleFile replaces fetching the schedule when set.
	ScheduleFile string
	// SourcesFile lists catalog pages, see Sources.
	SourcesFile string
	// FCEFile is an evaluation export, evaluations are skipped when empty.
	FCEFile string
}

// Run gathers every source, aggregates them and stores the result when the
// service has a course store.
func (s Service) Run(ctx context.Context, req RunRequest) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.String("quarter", string(req.Quarter)))

	var (
		schedule soc.Schedule
		err      error
	)
	if req.ScheduleFile != "" {
		schedule, err = s.ScheduleFromFile(ctx, req.ScheduleFile)
	} else {
		schedule, err = s.Schedule(ctx, req.Quarter)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get schedule")
		return Result{}, err
	}

	descs, err := s.Descriptions(ctx, req.SourcesFile)
	if err != nil {
		if len(descs) == 0 {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to get descriptions")
			return Result{}, err
		}
		s.tel.ReportBroken(report_service_descriptions, err)
	}

	var fces []fce.Record
	if req.FCEFile != "" {
		fces, err = fce.ParseFile(ctx, req.FCEFile, s.tel)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse evaluations")
			return Result{}, err
		}
	}

	result := Aggregate(ctx, schedule, descs, fces, AggregateOptions{
		Workers: s.cfg.Workers,
		Now:     s.now(),
	}, s.tel)

	if s.store != nil {
		err = s.push(ctx, result)
		if err != nil {
			s.tel.ReportBroken(report_service_store, err)
			return result, err
		}
	}
	return result, nil
}

func (s Service) push(ctx context.Context, result Result) error {
	snapshot := coursestore.Snapshot{
		Semester: result.Semester,
		RunDate:  result.RunDate,
		Time:     s.now(),
	}

	keys := make([]string, 0, len(result.Courses))
	for key := range result.Courses {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		record, err := json.Marshal(result.Courses[key])
		if err != nil {
			return err
		}
		snapshot.Courses = append(snapshot.Courses, coursestore.Course{
			Number: key,
			Record: record,
		})
	}
	for _, f := range result.FCEs {
		record, err := json.Marshal(f)
		if err != nil {
			return err
		}
		snapshot.FCEs = append(snapshot.FCEs, record)
	}

	return s.store.Push(ctx, snapshot)
}

// Show returns the latest stored run of a semester.
func (s Service) Show(ctx context.Context, semester string) (Result, error) {
	if s.store == nil {
		return Result{}, ErrNoStore
	}
	snapshot, err := s.store.Pull(ctx, semester)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Courses:  make(map[string]Record, len(snapshot.Courses)),
		RunDate:  snapshot.RunDate,
		Semester: snapshot.Semester,
	}
	for _, c := range snapshot.Courses {
		var record Record
		err := json.Unmarshal(c.Record, &record)
		if err != nil {
			return Result{}, fmt.Errorf("course %s: %w", c.Number, err)
		}
		result.Courses[c.Number] = record
	}
	for _, f := range snapshot.FCEs {
		var record fce.Record
		err := json.Unmarshal(f, &record)
		if err != nil {
			return Result{}, err
		}
		result.FCEs = append(result.FCEs, record)
	}
	return result, nil
}

// Runs lists the stored runs.
func (s Service) Runs(ctx context.Context) ([]coursestore.RunInfo, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.Runs(ctx)
}

// PurgeCache removes expired pages from the page cache.
func (s Service) PurgeCache(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Purge(ctx)
}
