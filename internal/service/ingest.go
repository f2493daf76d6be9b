package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/codes"

	cfotel "github.com/Strob0t/lightlogger/internal/adapter/otel"
	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/event"
	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/value"
	"github.com/Strob0t/lightlogger/internal/port/eventsink"
)

// Log query bounds.
const (
	DefaultLogLimit = 100
	MaxLogLimit     = 1000
)

// IngestResult summarizes one submission.
type IngestResult struct {
	Accepted int
	Rejected []event.ItemError
}

// IngestService validates submitted events against the project's schema and
// forwards the accepted ones to the sink.
type IngestService struct {
	sink    eventsink.Sink
	metrics *cfotel.Metrics
	now     func() time.Time
}

// NewIngestService creates an IngestService.
func NewIngestService(sink eventsink.Sink) *IngestService {
	return &IngestService{sink: sink, now: time.Now}
}

// SetMetrics attaches metric instruments. nil disables recording.
func (s *IngestService) SetMetrics(m *cfotel.Metrics) { s.metrics = m }

// SubmissionItems unpacks a request body: a non-null "logs" member carries
// a batch, anything else is a single event.
func SubmissionItems(body value.Value) ([]value.Value, error) {
	logs := body.Field("logs")
	if logs.IsAbsent() {
		return []value.Value{body}, nil
	}
	if logs.Kind() != value.List {
		return nil, domain.NewValidationError("Logs must be an array")
	}
	return logs.Items(), nil
}

// Ingest validates items for p. Valid items are forwarded even when others
// fail. A sink failure is returned as an error; validation failures are not.
func (s *IngestService) Ingest(ctx context.Context, p *project.Project, items []value.Value) (IngestResult, error) {
	vctx, span := cfotel.StartValidateSpan(ctx, p.ID, len(items))
	batch := event.ValidateBatch(items, p.Schema)
	span.End()

	res := IngestResult{Accepted: len(batch.Accepted), Rejected: batch.Rejected}
	s.metrics.RecordIngest(vctx, p.ID, res.Accepted, len(res.Rejected))

	if len(batch.Accepted) == 0 {
		return res, nil
	}

	receivedAt := s.now().UTC()
	events := make([]event.LogEvent, 0, len(batch.Accepted))
	for _, i := range batch.Accepted {
		events = append(events, event.FromPayload(p.ID, items[i], receivedAt))
	}

	sctx, sinkSpan := cfotel.StartSinkSpan(ctx, p.ID, len(events))
	defer sinkSpan.End()
	if err := s.sink.Store(sctx, p.ID, events); err != nil {
		sinkSpan.RecordError(err)
		sinkSpan.SetStatus(codes.Error, err.Error())
		s.metrics.RecordSinkFailure(sctx, p.ID)
		slog.ErrorContext(sctx, "event sink failed", "events", len(events), "error", err)
		return res, fmt.Errorf("store events: %w", err)
	}
	return res, nil
}

// LogQuery is the validated query contract of the log listing endpoint.
type LogQuery struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Level  string `json:"level,omitempty"`
}

// ParseLogQuery reads limit, offset and level. Limit defaults to
// DefaultLogLimit and is capped at MaxLogLimit.
func ParseLogQuery(limit, offset, level string) (LogQuery, error) {
	q := LogQuery{Limit: DefaultLogLimit}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return q, domain.NewValidationError("limit must be a positive integer")
		}
		q.Limit = min(n, MaxLogLimit)
	}
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			return q, domain.NewValidationError("offset must be a non-negative integer")
		}
		q.Offset = n
	}
	if level != "" {
		if _, ok := event.ParseLevel(level); !ok {
			return q, domain.NewValidationError("Invalid level filter")
		}
		q.Level = level
	}
	return q, nil
}
