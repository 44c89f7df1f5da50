// Package notify delivers recommendation lists to an outside sink.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/abhisek/upscprep/internal/recommend"
)

// Notifier receives recommendation lists.
type Notifier interface {
	Notify(ctx context.Context, entries []recommend.Entry) error
}

// LogNotifier writes one structured log event per entry.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that logs at info level to logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) Notify(_ context.Context, entries []recommend.Entry) error {
	for i, e := range entries {
		n.logger.Info().
			Int("rank", i+1).
			Str("type", string(e.Type)).
			Str("item_id", e.ItemID).
			Str("priority", string(e.Priority)).
			Str("reason", e.Reason).
			Msg("recommendation")
	}
	return nil
}

// Nop discards every list.
type Nop struct{}

func (Nop) Notify(context.Context, []recommend.Entry) error {
	return nil
}
