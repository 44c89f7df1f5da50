// Package config loads upscprep settings from defaults, an optional YAML
// file and UPSCPREP_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/abhisek/upscprep/internal/analytics"
	"github.com/abhisek/upscprep/internal/logging"
	"github.com/abhisek/upscprep/internal/recommend"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "UPSCPREP_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// Config is the full application configuration.
type Config struct {
	DBPath      string          `koanf:"db_path"`
	CatalogPath string          `koanf:"catalog_path"`
	Timezone    string          `koanf:"timezone" validate:"required"`
	Log         LogConfig       `koanf:"log"`
	Recommend   RecommendConfig `koanf:"recommend"`
	Analytics   AnalyticsConfig `koanf:"analytics"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// RecommendConfig tunes the recommendation rules.
type RecommendConfig struct {
	Cap               int     `koanf:"cap" validate:"min=1,max=50"`
	LowScoreThreshold float64 `koanf:"low_score_threshold" validate:"gte=0,lte=100"`
	StaleAfterDays    int     `koanf:"stale_after_days" validate:"min=1,max=365"`
}

// AnalyticsConfig sets the rollup windows.
type AnalyticsConfig struct {
	ShortWindowDays   int `koanf:"short_window_days" validate:"min=1,max=366"`
	LongWindowDays    int `koanf:"long_window_days" validate:"min=1,max=366,gtefield=ShortWindowDays"`
	WeeklyGoalMinutes int `koanf:"weekly_goal_minutes" validate:"min=1,max=10080"`
}

func defaultConfig() *Config {
	lc := logging.DefaultConfig()
	rc := recommend.DefaultConfig()
	return &Config{
		Timezone: "Local",
		Log: LogConfig{
			Level:  lc.Level,
			Format: lc.Format,
		},
		Recommend: RecommendConfig{
			Cap:               rc.Cap,
			LowScoreThreshold: *rc.LowScoreThreshold,
			StaleAfterDays:    rc.StaleAfterDays,
		},
		Analytics: AnalyticsConfig{
			ShortWindowDays:   analytics.DefaultShortWindowDays,
			LongWindowDays:    analytics.DefaultLongWindowDays,
			WeeklyGoalMinutes: analytics.DefaultWeeklyGoalMinutes,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load builds the configuration. path names a YAML file; when empty, the
// UPSCPREP_CONFIG variable and then the default location are tried, and a
// missing default file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if p := findConfigFile(path); p != "" {
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", p, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the explicit path, then $UPSCPREP_CONFIG, then the
// default file if it exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	p, err := DefaultPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// DefaultPath returns $XDG_CONFIG_HOME/upscprep/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "upscprep", "config.yaml"), nil
}

// envKeys maps environment names (prefix stripped, lower-cased) to config
// paths. Underscores inside key names make a generic split ambiguous.
var envKeys = map[string]string{
	"db":                            "db_path",
	"db_path":                       "db_path",
	"catalog":                       "catalog_path",
	"catalog_path":                  "catalog_path",
	"timezone":                      "timezone",
	"log_level":                     "log.level",
	"log_format":                    "log.format",
	"recommend_cap":                 "recommend.cap",
	"recommend_low_score_threshold": "recommend.low_score_threshold",
	"recommend_stale_after_days":    "recommend.stale_after_days",
	"analytics_short_window_days":   "analytics.short_window_days",
	"analytics_long_window_days":    "analytics.long_window_days",
	"analytics_weekly_goal_minutes": "analytics.weekly_goal_minutes",
}

// envTransformFunc maps UPSCPREP_LOG_LEVEL to log.level. Unknown variables
// map to "" and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envKeys[key]
}

var validate = validator.New()

// Validate checks field ranges and that the timezone resolves.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RecommendOptions converts to the engine's form.
func (c *Config) RecommendOptions() recommend.Config {
	return recommend.Config{
		Cap:               c.Recommend.Cap,
		LowScoreThreshold: recommend.Threshold(c.Recommend.LowScoreThreshold),
		StaleAfterDays:    c.Recommend.StaleAfterDays,
	}
}

// AnalyticsOptions converts to the aggregator's form. The timezone must
// already have passed Validate.
func (c *Config) AnalyticsOptions() analytics.Options {
	loc, err := c.Location()
	if err != nil {
		loc = time.UTC
	}
	return analytics.Options{
		ShortWindowDays:   c.Analytics.ShortWindowDays,
		LongWindowDays:    c.Analytics.LongWindowDays,
		WeeklyGoalMinutes: c.Analytics.WeeklyGoalMinutes,
		Location:          loc,
	}
}

// LoggingConfig converts to the logger's form.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
	}
}
