package cmd

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/config"
	"github.com/abhisek/upscprep/internal/engine"
	"github.com/abhisek/upscprep/internal/logging"
	"github.com/abhisek/upscprep/internal/notify"
	"github.com/abhisek/upscprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "upscprep",
	Short: "Track UPSC study progress and get recommendations",
	Long: "upscprep tracks study sessions against a catalog of UPSC learning items,\n" +
		"keeps per-item progress, and recommends what to study next.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides UPSCPREP_DB env var)")
	rootCmd.PersistentFlags().String("catalog", "", "Path to a catalog YAML file (default: built-in UPSC catalog)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/upscprep/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(accessCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file / UPSCPREP_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// resolveCatalog loads --catalog, then the configured catalog path, then
// the built-in catalog.
func resolveCatalog(cmd *cobra.Command, cfg *config.Config) (*catalog.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" && cfg != nil {
		path = cfg.CatalogPath
	}
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// app holds everything a command needs once the store is open.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   *store.Store
	catalog *catalog.Catalog
	engine  *engine.Engine
	loc     *time.Location
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LoggingConfig())

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cat, err := resolveCatalog(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug().Str("db", dbPath).Int("items", cat.Len()).Msg("opened store")

	eng, err := engine.New(cmd.Context(), engine.Options{
		Catalog:      cat,
		ProgressRepo: st.ProgressRepo(),
		SessionRepo:  st.SessionRepo(),
		Logger:       &logger,
		Notifier:     notify.NewLogNotifier(logger.Level(zerolog.InfoLevel)),
		Recommend:    cfg.RecommendOptions(),
		Analytics:    cfg.AnalyticsOptions(),
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		catalog: cat,
		engine:  eng,
		loc:     loc,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
