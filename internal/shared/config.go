package shared

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string   `env:"APP_ENV"      envDefault:"prod"`
	LogLevel    string   `env:"LOG_LEVEL"    envDefault:"info"`
	HTTPAddr    string   `env:"HTTP_ADDR"    envDefault:":8080"`
	MetricsAddr string   `env:"METRICS_ADDR" envDefault:":9100"`
	ReviewsFile string   `env:"REVIEWS_FILE" envDefault:"public/azerbaijan_airlines_app_store_reviews.xlsx"`
	StrictRows  bool     `env:"STRICT_ROWS"  envDefault:"false"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// empty REDIS_ADDR disables the filter cache
	RedisAddr   string        `env:"REDIS_ADDR"`
	RedisPass   string        `env:"REDIS_PASSWORD"`
	RedisDB     int           `env:"REDIS_DB"          envDefault:"0"`
	CacheTTLSec int           `env:"CACHE_TTL_SECONDS" envDefault:"900"`
	CacheTTL    time.Duration

	// empty MYSQL_DSN disables the ingest archive
	MySQLDSN string `env:"MYSQL_DSN"`

	AppStoreBase  string   `env:"APPSTORE_BASE_URL" envDefault:"https://itunes.apple.com"`
	AppStoreAppID string   `env:"APPSTORE_APP_ID"   envDefault:"1451475994"`
	AppStoreRPS   int      `env:"APPSTORE_RPS"      envDefault:"5"`
	Workers       int      `env:"INGEST_WORKERS"    envDefault:"8"`
	Pages         int      `env:"INGEST_PAGES"      envDefault:"10"`
	Countries     []string `env:"INGEST_COUNTRIES"  envSeparator:","`
	IngestOutput  string   `env:"INGEST_OUTPUT"     envDefault:"public/azerbaijan_airlines_app_store_reviews.xlsx"`
}

func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	c.CacheTTL = time.Duration(c.CacheTTLSec) * time.Second
	if len(c.Countries) == 0 {
		c.Countries = append([]string(nil), Storefronts...)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Pages < 1 {
		log.Warn().Int("pages", c.Pages).Msg("INGEST_PAGES below 1, using 1")
		c.Pages = 1
	}
	return c, nil
}
