// Package eventsink provides the event sinks accepted log events are handed to.
package eventsink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Strob0t/lightlogger/internal/domain/event"
	"github.com/Strob0t/lightlogger/internal/logger"
	"github.com/Strob0t/lightlogger/internal/port/messagequeue"
	"github.com/Strob0t/lightlogger/internal/resilience"
)

// QueueSink publishes each submission as one LogsIngestedPayload on
// <prefix>.<project_id>. Publishing goes through a circuit breaker so a
// broker outage fails submissions fast instead of stalling workers.
type QueueSink struct {
	queue   messagequeue.Queue
	prefix  string
	breaker *resilience.Breaker
	now     func() time.Time
}

// NewQueueSink creates a sink publishing through q. breaker may be nil.
func NewQueueSink(q messagequeue.Queue, prefix string, breaker *resilience.Breaker) *QueueSink {
	return &QueueSink{queue: q, prefix: prefix, breaker: breaker, now: time.Now}
}

func (s *QueueSink) Store(ctx context.Context, projectID string, events []event.LogEvent) error {
	if len(events) == 0 {
		return nil
	}

	data, err := json.Marshal(messagequeue.LogsIngestedPayload{
		ProjectID:  projectID,
		RequestID:  logger.RequestID(ctx),
		ReceivedAt: s.now().UTC(),
		Events:     events,
	})
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	subject := messagequeue.SubjectForProject(s.prefix, projectID)
	publish := func(ctx context.Context) error {
		return s.queue.Publish(ctx, subject, data)
	}
	if s.breaker == nil {
		return publish(ctx)
	}
	return s.breaker.Execute(ctx, publish)
}
