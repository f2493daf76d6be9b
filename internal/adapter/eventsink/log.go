package eventsink

import (
	"context"
	"log/slog"

	"github.com/Strob0t/lightlogger/internal/domain/event"
)

// LogSink writes a summary of every accepted submission to the logger.
// It is used when no message broker is configured.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Store(ctx context.Context, projectID string, events []event.LogEvent) error {
	counts := make(map[event.Level]int, len(event.Levels))
	for i := range events {
		counts[events[i].Level]++
	}
	attrs := []any{"project_id", projectID, "events", len(events)}
	for _, l := range event.Levels {
		if n := counts[l]; n > 0 {
			attrs = append(attrs, string(l), n)
		}
	}
	s.log.InfoContext(ctx, "log events accepted", attrs...)
	return nil
}
