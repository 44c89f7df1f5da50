package session

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/upscprep/internal/clock"
	"github.com/abhisek/upscprep/internal/store"
)

// fakeUpdater records the progress side effects of the tracker.
type fakeUpdater struct {
	touched []string
	applied []Record
	err     error
}

func (f *fakeUpdater) Touch(_ context.Context, itemID string, _ time.Time) error {
	f.touched = append(f.touched, itemID)
	return f.err
}

func (f *fakeUpdater) ApplySessionResult(_ context.Context, rec Record) error {
	f.applied = append(f.applied, rec)
	return f.err
}

var t0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func openStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, path
}

func newTestTracker(t *testing.T) (*Tracker, *fakeUpdater, *clock.Fake) {
	t.Helper()
	st, _ := openStore(t)
	upd := &fakeUpdater{}
	clk := clock.NewFake(t0)
	tr, err := NewTracker(context.Background(), st.SessionRepo(), upd, clk, zerolog.Nop())
	require.NoError(t, err)
	return tr, upd, clk
}

func TestStartEnd(t *testing.T) {
	tr, upd, clk := newTestTracker(t)
	ctx := context.Background()

	assert.Equal(t, StateIdle, tr.State())

	rec, err := tr.Start(ctx, "n1")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.StartTime.Equal(t0))
	assert.True(t, rec.Open())
	assert.Equal(t, StateActive, tr.State())
	assert.Equal(t, []string{"n1"}, upd.touched)

	clk.Advance(25*time.Minute + 40*time.Second)
	assert.Equal(t, 25*time.Minute+40*time.Second, tr.Elapsed(clk.Now()))

	s := 90.0
	closed, err := tr.End(ctx, 100, &s, "done")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, tr.State())
	assert.Nil(t, tr.Active())
	assert.Equal(t, 26, closed.DurationMinutes)
	assert.Equal(t, 100.0, closed.ProgressAtEnd)
	require.NotNil(t, closed.EndTime)
	assert.Equal(t, "done", closed.Notes)

	require.Len(t, upd.applied, 1)
	assert.Equal(t, rec.ID, upd.applied[0].ID)
}

func TestStart_WhileActive(t *testing.T) {
	tr, upd, _ := newTestTracker(t)
	ctx := context.Background()

	first, err := tr.Start(ctx, "n1")
	require.NoError(t, err)

	_, err = tr.Start(ctx, "n2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))

	var ise *InvalidStateError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "start", ise.Op)
	assert.Equal(t, StateActive, ise.State)

	// No state change.
	assert.Equal(t, first.ID, tr.Active().ID)
	assert.Equal(t, []string{"n1"}, upd.touched)
}

func TestEnd_WhileIdle(t *testing.T) {
	tr, upd, _ := newTestTracker(t)

	_, err := tr.End(context.Background(), 50, nil, "")
	require.ErrorIs(t, err, ErrInvalidState)

	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, StateIdle, ise.State)
	assert.Empty(t, upd.applied)
}

func TestStart_EmptyItemID(t *testing.T) {
	tr, upd, _ := newTestTracker(t)

	_, err := tr.Start(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, StateIdle, tr.State())
	assert.Empty(t, upd.touched)
}

func TestEnd_ClampsValues(t *testing.T) {
	tests := []struct {
		name      string
		pct       float64
		score     *float64
		wantPct   float64
		wantScore *float64
	}{
		{"in range", 40, ptr(75), 40, ptr(75)},
		{"over", 140, ptr(120), 100, ptr(100)},
		{"under", -5, ptr(-1), 0, ptr(0)},
		{"nan", math.NaN(), nil, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, clk := newTestTracker(t)
			ctx := context.Background()
			_, err := tr.Start(ctx, "q1")
			require.NoError(t, err)
			clk.Advance(10 * time.Minute)

			rec, err := tr.End(ctx, tt.pct, tt.score, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPct, rec.ProgressAtEnd)
			if tt.wantScore == nil {
				assert.Nil(t, rec.Score)
			} else {
				require.NotNil(t, rec.Score)
				assert.Equal(t, *tt.wantScore, *rec.Score)
			}
		})
	}
}

func TestTrackerSurvivesReopen(t *testing.T) {
	st, path := openStore(t)
	ctx := context.Background()
	clk := clock.NewFake(t0)

	tr, err := NewTracker(ctx, st.SessionRepo(), nil, clk, zerolog.Nop())
	require.NoError(t, err)
	started, err := tr.Start(ctx, "n1")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st2, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st2.Close() })

	tr2, err := NewTracker(ctx, st2.SessionRepo(), nil, clk, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, StateActive, tr2.State())
	assert.Equal(t, started.ID, tr2.Active().ID)

	clk.Advance(30 * time.Minute)
	rec, err := tr2.End(ctx, 60, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 30, rec.DurationMinutes)

	sessions, err := st2.SessionRepo().ListSessions(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotNil(t, sessions[0].EndTime)
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		span time.Duration
		want int
	}{
		{0, 0},
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{90 * time.Minute, 90},
		{-5 * time.Minute, 0},
	}
	for _, tt := range tests {
		if got := durationMinutes(t0, t0.Add(tt.span)); got != tt.want {
			t.Errorf("durationMinutes(%v) = %d, want %d", tt.span, got, tt.want)
		}
	}
}

func TestRecordDataRoundTrip(t *testing.T) {
	end := t0.Add(time.Hour)
	rec := Record{ID: "id", ItemID: "n1", StartTime: t0, EndTime: &end, DurationMinutes: 60, ProgressAtEnd: 80, Score: ptr(70)}
	got := FromData(rec.ToData())
	assert.Equal(t, rec, got)

	open := Record{ID: "id2", ItemID: "n2", StartTime: t0}
	assert.Nil(t, open.ToData().DurationMinutes)
}

func ptr(v float64) *float64 { return &v }
