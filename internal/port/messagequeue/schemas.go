package messagequeue

import (
	"time"

	"github.com/Strob0t/lightlogger/internal/domain/event"
)

// LogsIngestedPayload is the schema for <prefix>.<project_id> messages.
type LogsIngestedPayload struct {
	ProjectID  string           `json:"project_id"`
	RequestID  string           `json:"request_id,omitempty"`
	ReceivedAt time.Time        `json:"received_at"`
	Events     []event.LogEvent `json:"events"`
}
