// Package event validates ingested log events against a project's schema.
package event

import (
	"strings"
	"time"

	"github.com/Strob0t/lightlogger/internal/domain/value"
)

// Level is the severity of a log event.
type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Levels lists the accepted levels from least to most severe.
var Levels = []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}

// ParseLevel reports whether s names a known level.
func ParseLevel(s string) (Level, bool) {
	for _, l := range Levels {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

func levelList() string {
	names := make([]string, len(Levels))
	for i, l := range Levels {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// LogEvent is an accepted event, ready to be handed to a sink.
type LogEvent struct {
	ProjectID  string      `json:"project_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Level      Level       `json:"level"`
	Title      string      `json:"title"`
	Data       value.Value `json:"data,omitzero"`
	ReceivedAt time.Time   `json:"received_at"`
}

// FromPayload converts a payload that passed Validate into a LogEvent.
func FromPayload(projectID string, payload value.Value, receivedAt time.Time) LogEvent {
	ts, _ := payload.Field("timestamp").AsString()
	parsed, _ := ParseTimestamp(ts)
	lvl, _ := payload.Field("level").AsString()
	title, _ := payload.Field("title").AsString()

	ev := LogEvent{
		ProjectID:  projectID,
		Timestamp:  parsed,
		Level:      Level(lvl),
		Title:      title,
		ReceivedAt: receivedAt,
	}
	if data := payload.Field("data"); data.Kind() == value.Map {
		ev.Data = data
	}
	return ev
}

// ParseTimestamp accepts RFC 3339 timestamps, with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
