package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port         string  `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string  `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	TopicsDir    string  `long:"topics-dir" env:"TOPICS_DIR" default:"./topics" description:"Directory containing topic configuration files"`
	DefaultTopic string  `long:"default-topic" env:"DEFAULT_TOPIC" default:"technology" description:"Topic used when an unknown category is requested"`
	DBPath       string  `long:"db-path" env:"DB_PATH" default:"./data/news-comb.db" description:"Path to the sqlite database file"`
	MinScore     float64 `long:"min-score" env:"MIN_SCORE" default:"0.5" description:"Minimum quality score for aggregated items"`

	// Provider configuration
	NewsAPIKey  string `long:"newsapi-key" env:"NEWSAPI_KEY" description:"API key for newsapi.org (adapter disabled when empty)"`
	GNewsAPIKey string `long:"gnews-key" env:"GNEWS_API_KEY" description:"API key for gnews.io (adapter disabled when empty)"`
	HTTPTimeout int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"15" description:"Outbound HTTP timeout in seconds"`

	// Background extraction
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for content extraction"`
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		TopicsDir:         raw.TopicsDir,
		DefaultTopic:      raw.DefaultTopic,
		DBPath:            raw.DBPath,
		MinScore:          raw.MinScore,
		NewsAPIKey:        raw.NewsAPIKey,
		GNewsAPIKey:       raw.GNewsAPIKey,
		HTTPTimeout:       raw.HTTPTimeout,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
