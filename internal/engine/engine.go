// Package engine is the single entry point for progress tracking, study
// sessions, analytics and recommendations.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/upscprep/internal/analytics"
	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/clock"
	"github.com/abhisek/upscprep/internal/notify"
	"github.com/abhisek/upscprep/internal/progress"
	"github.com/abhisek/upscprep/internal/recommend"
	"github.com/abhisek/upscprep/internal/session"
	"github.com/abhisek/upscprep/internal/store"
)

// Options configures an Engine. Catalog, ProgressRepo and SessionRepo are
// required.
type Options struct {
	Catalog      *catalog.Catalog
	ProgressRepo store.ProgressRepo
	SessionRepo  store.SessionRepo
	Clock        clock.Clock
	Logger       *zerolog.Logger
	Notifier     notify.Notifier
	Recommend    recommend.Config
	Analytics    analytics.Options
}

// Engine wires the catalog, progress store, session tracker, analytics and
// recommendations together. Reads see only committed state.
type Engine struct {
	catalog   *catalog.Catalog
	sessions  store.SessionRepo
	progress  *progress.Service
	tracker   *session.Tracker
	recommend *recommend.Engine
	analytics analytics.Options
	notifier  notify.Notifier
	clock     clock.Clock
	logger    zerolog.Logger
}

// New builds an Engine, resuming any session left open in the store.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}
	if opts.ProgressRepo == nil || opts.SessionRepo == nil {
		return nil, fmt.Errorf("engine: progress and session repos are required")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}

	ps := progress.NewService(opts.ProgressRepo, clk, logger)
	tracker, err := session.NewTracker(ctx, opts.SessionRepo, ps, clk, logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		catalog:   opts.Catalog,
		sessions:  opts.SessionRepo,
		progress:  ps,
		tracker:   tracker,
		recommend: recommend.New(opts.Recommend),
		analytics: opts.Analytics,
		notifier:  notifier,
		clock:     clk,
		logger:    logger,
	}, nil
}

// Catalog returns all items in catalog order.
func (e *Engine) Catalog() []catalog.Item {
	return e.catalog.Items()
}

// Item returns one catalog item.
func (e *Engine) Item(id string) (catalog.Item, error) {
	return e.catalog.Get(id)
}

// ProgressOf returns the record for id, creating it if needed.
func (e *Engine) ProgressOf(ctx context.Context, id string) (progress.Record, error) {
	return e.progress.Get(ctx, id)
}

// ProgressAll returns every catalog item's record in catalog order. Items
// never touched get an unsaved zero record.
func (e *Engine) ProgressAll(ctx context.Context) ([]progress.Record, error) {
	records, err := e.progress.List(ctx)
	if err != nil {
		return nil, err
	}
	index := progress.Index(records)
	items := e.catalog.Items()
	out := make([]progress.Record, len(items))
	for i, it := range items {
		if r, ok := index[it.ID]; ok {
			out[i] = r
		} else {
			out[i] = progress.NewRecord(it.ID)
		}
	}
	return out, nil
}

// RecordAccess counts a view of item id.
func (e *Engine) RecordAccess(ctx context.Context, id string) (progress.Record, error) {
	return e.progress.RecordAccess(ctx, id)
}

// StartSession opens a study session on id.
func (e *Engine) StartSession(ctx context.Context, id string) (session.Record, error) {
	if !e.catalog.Has(id) {
		e.logger.Warn().Str("item_id", id).Msg("starting session on item outside the catalog")
	}
	return e.tracker.Start(ctx, id)
}

// EndSession closes the active session and returns it.
func (e *Engine) EndSession(ctx context.Context, progressPercent float64, score *float64, notes string) (session.Record, error) {
	return e.tracker.End(ctx, progressPercent, score, notes)
}

// ActiveSession returns the open session, or nil.
func (e *Engine) ActiveSession() *session.Record {
	return e.tracker.Active()
}

// Elapsed returns how long the open session has run.
func (e *Engine) Elapsed() time.Duration {
	return e.tracker.Elapsed(e.clock.Now())
}

// Sessions returns the session log in start order.
func (e *Engine) Sessions(ctx context.Context, opts store.QueryOpts) ([]session.Record, error) {
	rows, err := e.sessions.ListSessions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return session.FromDataList(rows), nil
}

// AnalyticsSnapshot computes statistics from committed state.
func (e *Engine) AnalyticsSnapshot(ctx context.Context) (analytics.Snapshot, error) {
	in, err := e.analyticsInput(ctx)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	return analytics.Compute(in, e.analytics), nil
}

// Recommendations returns the ranked next actions.
func (e *Engine) Recommendations(ctx context.Context) ([]recommend.Entry, error) {
	records, err := e.progress.List(ctx)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	velocity := analytics.Velocity(records, now, analytics.DefaultShortWindowDays, e.analytics.Location)

	return e.recommend.Recommend(recommend.Input{
		Catalog:  e.catalog,
		Records:  records,
		Now:      now,
		Velocity: velocity,
	}), nil
}

// DeliverRecommendations computes recommendations and hands them to the
// notifier.
func (e *Engine) DeliverRecommendations(ctx context.Context) ([]recommend.Entry, error) {
	entries, err := e.Recommendations(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.notifier.Notify(ctx, entries); err != nil {
		return entries, fmt.Errorf("deliver recommendations: %w", err)
	}
	return entries, nil
}

func (e *Engine) analyticsInput(ctx context.Context) (analytics.Input, error) {
	records, err := e.progress.List(ctx)
	if err != nil {
		return analytics.Input{}, err
	}
	sessions, err := e.Sessions(ctx, store.QueryOpts{})
	if err != nil {
		return analytics.Input{}, fmt.Errorf("list sessions: %w", err)
	}
	return analytics.Input{
		Catalog:  e.catalog,
		Records:  records,
		Sessions: sessions,
		Now:      e.clock.Now(),
	}, nil
}
