package courseapi

import (
	"time"

	configlibsql "course-api/lib/configutil/libsql"
	"course-api/lib/scrapers/soc"
)

type ScheduleConfig struct {
	BaseUrl          string `json:"base_url"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	HeaderRows       int    `json:"header_rows"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
}

type CatalogConfig struct {
	// Sources are catalog page urls, when neither Sources nor SourcesFile is
	// set the sources are discovered from IndexUrl.
	Sources     []string `json:"sources"`
	SourcesFile string   `json:"sources_file"`
	IndexUrl    string   `json:"index_url"`
	Workers     int      `json:"workers"`
}

type CacheConfig struct {
	Database      configlibsql.Struct `json:"database"`
	LifetimeHours int                 `json:"lifetime_hours"`
}

type StoreConfig struct {
	Database configlibsql.Struct `json:"database"`
}

type Config struct {
	Schedule ScheduleConfig `json:"schedule"`
	Catalog  CatalogConfig  `json:"catalog"`
	Cache    CacheConfig    `json:"cache"`
	Store    StoreConfig    `json:"store"`
	// Workers bounds the aggregation worker pool.
	Workers int `json:"workers"`
}

// DefaultConfig is the configuration written into a fresh dev environment.
func DefaultConfig() Config {
	return Config{
		Schedule: ScheduleConfig{
			BaseUrl:        soc.DefaultBaseUrl,
			TimeoutSeconds: 30,
			HeaderRows:     soc.DefaultHeaderRows,
		},
		Catalog: CatalogConfig{
			Workers: 4,
		},
		Cache: CacheConfig{
			Database:      configlibsql.Struct{File: "<dev_state>/cache.db"},
			LifetimeHours: 12,
		},
		Store: StoreConfig{
			Database: configlibsql.Struct{File: "<dev_state>/courses.db"},
		},
	}
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.Schedule.TimeoutSeconds) * time.Second
}

func (c CacheConfig) lifetime() time.Duration {
	if c.LifetimeHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.LifetimeHours) * time.Hour
}

func databaseEnabled(c configlibsql.Struct) bool {
	return c.File != "" || c.Url != ""
}
