package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points the default config location at an empty temp dir and
// clears every UPSCPREP_ variable for the duration of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Recommend.Cap != 5 {
		t.Errorf("Recommend.Cap = %d, want 5", cfg.Recommend.Cap)
	}
	if cfg.Recommend.LowScoreThreshold != 70 {
		t.Errorf("Recommend.LowScoreThreshold = %v, want 70", cfg.Recommend.LowScoreThreshold)
	}
	if cfg.Recommend.StaleAfterDays != 7 {
		t.Errorf("Recommend.StaleAfterDays = %d, want 7", cfg.Recommend.StaleAfterDays)
	}
	if cfg.Analytics.ShortWindowDays != 7 || cfg.Analytics.LongWindowDays != 30 {
		t.Errorf("windows = %d/%d, want 7/30", cfg.Analytics.ShortWindowDays, cfg.Analytics.LongWindowDays)
	}
	if cfg.Analytics.WeeklyGoalMinutes != 600 {
		t.Errorf("WeeklyGoalMinutes = %d, want 600", cfg.Analytics.WeeklyGoalMinutes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
timezone: UTC
catalog_path: /tmp/catalog.yaml
recommend:
  cap: 3
  low_score_threshold: 65
analytics:
  weekly_goal_minutes: 420
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Recommend.Cap != 3 {
		t.Errorf("Recommend.Cap = %d, want 3", cfg.Recommend.Cap)
	}
	if cfg.Recommend.LowScoreThreshold != 65 {
		t.Errorf("LowScoreThreshold = %v, want 65", cfg.Recommend.LowScoreThreshold)
	}
	if cfg.Recommend.StaleAfterDays != 7 {
		t.Errorf("StaleAfterDays = %d, want default 7", cfg.Recommend.StaleAfterDays)
	}
	if cfg.Analytics.WeeklyGoalMinutes != 420 {
		t.Errorf("WeeklyGoalMinutes = %d, want 420", cfg.Analytics.WeeklyGoalMinutes)
	}
	if cfg.CatalogPath != "/tmp/catalog.yaml" {
		t.Errorf("CatalogPath = %q", cfg.CatalogPath)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "recommend:\n  cap: 3\n")
	t.Setenv("UPSCPREP_RECOMMEND_CAP", "8")
	t.Setenv("UPSCPREP_LOG_LEVEL", "debug")
	t.Setenv("UPSCPREP_DB", "/tmp/x.db")
	t.Setenv("UPSCPREP_UNKNOWN_THING", "ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Recommend.Cap != 8 {
		t.Errorf("Recommend.Cap = %d, want 8", cfg.Recommend.Cap)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("DBPath = %q, want /tmp/x.db", cfg.DBPath)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "recommend:\n  stale_after_days: 3\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Recommend.StaleAfterDays != 3 {
		t.Errorf("StaleAfterDays = %d, want 3", cfg.Recommend.StaleAfterDays)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero cap", func(c *Config) { c.Recommend.Cap = 0 }, "Cap"},
		{"threshold over 100", func(c *Config) { c.Recommend.LowScoreThreshold = 120 }, "LowScoreThreshold"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "Format"},
		{"long window shorter", func(c *Config) { c.Analytics.LongWindowDays = 3 }, "LongWindowDays"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"empty timezone", func(c *Config) { c.Timezone = "" }, "Timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Timezone = "UTC"

	ro := cfg.RecommendOptions()
	if ro.Cap != cfg.Recommend.Cap || ro.StaleAfterDays != cfg.Recommend.StaleAfterDays {
		t.Errorf("RecommendOptions = %+v", ro)
	}
	if ro.LowScoreThreshold == nil || *ro.LowScoreThreshold != 70 {
		t.Errorf("LowScoreThreshold = %v, want 70", ro.LowScoreThreshold)
	}

	cfg.Recommend.LowScoreThreshold = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero threshold should be valid: %v", err)
	}
	if got := cfg.RecommendOptions().LowScoreThreshold; got == nil || *got != 0 {
		t.Errorf("zero threshold converted to %v", got)
	}

	ao := cfg.AnalyticsOptions()
	if ao.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", ao.Location)
	}
	if ao.WeeklyGoalMinutes != 600 {
		t.Errorf("WeeklyGoalMinutes = %d", ao.WeeklyGoalMinutes)
	}
	lc := cfg.LoggingConfig()
	if lc.Level != "warn" || lc.Format != "console" {
		t.Errorf("LoggingConfig = %+v", lc)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"UPSCPREP_LOG_LEVEL":                  "log.level",
		"UPSCPREP_ANALYTICS_LONG_WINDOW_DAYS": "analytics.long_window_days",
		"UPSCPREP_RECOMMEND_STALE_AFTER_DAYS": "recommend.stale_after_days",
		"UPSCPREP_CONFIG":                     "",
		"UPSCPREP_SOMETHING_ELSE":             "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
