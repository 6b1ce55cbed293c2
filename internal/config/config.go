// Package config loads feedcards settings from a TOML file. Every key is
// optional; missing keys keep their defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/qepting91/feedcards/internal/collector"
	"github.com/qepting91/feedcards/internal/domain"
	"github.com/qepting91/feedcards/internal/ingest"
	"github.com/qepting91/feedcards/internal/render"
)

const (
	DefaultFeedURL   = "https://www.techielass.com/tag/terraform/feed/"
	DefaultAddr      = ":8080"
	DefaultUserAgent = "feedcards/1.0"
	DefaultTitle     = "Terraform articles"
)

var DefaultKeywords = []string{
	"terraform",
	"tf",
	"infrastructure as code",
	"iac",
	"terraform cloud",
	"terraform enterprise",
	"terragrunt",
	"hcl",
}

type Config struct {
	Feed      FeedConfig      `toml:"feed"`
	Keywords  KeywordsConfig  `toml:"keywords"`
	Collector CollectorConfig `toml:"collector"`
	Render    RenderConfig    `toml:"render"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

type FeedConfig struct {
	URL       string                       `toml:"url"`
	Endpoints []collector.EndpointTemplate `toml:"endpoints"`
	// EndpointsFile replaces Endpoints with a name,template CSV.
	EndpointsFile string `toml:"endpoints_file"`
}

type KeywordsConfig struct {
	Words []string `toml:"words"`
	// File replaces Words with the first column of a CSV.
	File string `toml:"file"`
}

type CollectorConfig struct {
	Mode          string  `toml:"mode"`
	TimeoutMS     int     `toml:"timeout_ms"`
	UserAgent     string  `toml:"user_agent"`
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
}

type RenderConfig struct {
	MaxDescription int    `toml:"max_description"`
	DateLayout     string `toml:"date_layout"`
	Location       string `toml:"location"`
}

type ServerConfig struct {
	Addr  string `toml:"addr"`
	Title string `toml:"title"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:       DefaultFeedURL,
			Endpoints: append([]collector.EndpointTemplate(nil), collector.DefaultTemplates...),
		},
		Keywords: KeywordsConfig{
			Words: append([]string(nil), DefaultKeywords...),
		},
		Collector: CollectorConfig{
			Mode:      collector.ModeRace,
			TimeoutMS: int(collector.DefaultTimeout / time.Millisecond),
			UserAgent: DefaultUserAgent,
			Burst:     1,
		},
		Render: RenderConfig{
			MaxDescription: render.DefaultMaxDescription,
			DateLayout:     render.DefaultDateLayout,
			Location:       "UTC",
		},
		Server: ServerConfig{
			Addr:  DefaultAddr,
			Title: DefaultTitle,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// CSV files named in the config are resolved relative to the config file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	// Decoding into the default slice would leave stale fields behind.
	defaultEndpoints := cfg.Feed.Endpoints
	cfg.Feed.Endpoints = nil

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if !md.IsDefined("feed", "endpoints") {
		cfg.Feed.Endpoints = defaultEndpoints
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	base := filepath.Dir(path)
	if cfg.Feed.EndpointsFile != "" {
		templates, err := ingest.LoadEndpoints(resolve(base, cfg.Feed.EndpointsFile))
		if err != nil {
			return nil, fmt.Errorf("error loading endpoints file: %w", err)
		}
		cfg.Feed.Endpoints = templates
	}
	if cfg.Keywords.File != "" {
		words, err := ingest.LoadKeywords(resolve(base, cfg.Keywords.File))
		if err != nil {
			return nil, fmt.Errorf("error loading keywords file: %w", err)
		}
		cfg.Keywords.Words = words
	}

	return cfg, cfg.Validate()
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Source(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Feed.Endpoints) == 0 {
		errs = append(errs, errors.New("feed: at least one endpoint is required"))
	}
	if c.KeywordSet().Len() == 0 {
		errs = append(errs, errors.New("keywords: at least one keyword is required"))
	}
	switch c.Collector.Mode {
	case collector.ModeRace, collector.ModeMock:
	default:
		errs = append(errs, fmt.Errorf("collector: unknown mode %q", c.Collector.Mode))
	}
	if c.Collector.TimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("collector: timeout_ms must be positive, got %d", c.Collector.TimeoutMS))
	}
	if c.Collector.RatePerSecond < 0 {
		errs = append(errs, errors.New("collector: rate_per_second must not be negative"))
	}
	if _, err := c.RenderOptions(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Collector.TimeoutMS) * time.Millisecond
}

func (c *Config) KeywordSet() domain.KeywordSet {
	return domain.NewKeywordSet(c.Keywords.Words...)
}

func (c *Config) Source() (domain.FeedSource, error) {
	return collector.BuildSource(c.Feed.URL, c.Feed.Endpoints)
}

func (c *Config) CollectorOptions(logger *slog.Logger) collector.Options {
	return collector.Options{
		Mode:          c.Collector.Mode,
		UserAgent:     c.Collector.UserAgent,
		Timeout:       c.Timeout(),
		RatePerSecond: c.Collector.RatePerSecond,
		Burst:         c.Collector.Burst,
		Logger:        logger,
	}
}

func (c *Config) RenderOptions() (render.Options, error) {
	loc, err := time.LoadLocation(c.Render.Location)
	if err != nil {
		return render.Options{}, fmt.Errorf("render: invalid location %q: %w", c.Render.Location, err)
	}
	return render.Options{
		MaxDescription: c.Render.MaxDescription,
		DateLayout:     c.Render.DateLayout,
		Location:       loc,
	}, nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log: %w", err)
	}
	return level, nil
}
