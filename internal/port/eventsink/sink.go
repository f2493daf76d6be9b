// Package eventsink defines the port accepted log events are handed to.
// Storing or indexing the events is the sink's business, not the gateway's.
package eventsink

import (
	"context"

	"github.com/Strob0t/lightlogger/internal/domain/event"
)

// Sink receives the accepted events of one submission.
type Sink interface {
	Store(ctx context.Context, projectID string, events []event.LogEvent) error
}
