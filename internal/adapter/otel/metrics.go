package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "lightlogger"

// Metrics holds the gateway's metric instruments.
type Metrics struct {
	EventsAccepted  metric.Int64Counter
	EventsRejected  metric.Int64Counter
	BatchSize       metric.Int64Histogram
	SessionsCreated metric.Int64Counter
	AuthRejected    metric.Int64Counter
	SchemaUpdates   metric.Int64Counter
	SinkFailures    metric.Int64Counter
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(meterName))
}

// NewMetricsWithMeter creates all metric instruments on meter.
func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.EventsAccepted, err = meter.Int64Counter("lightlogger.events.accepted",
		metric.WithDescription("Number of log events accepted"))
	if err != nil {
		return nil, err
	}

	m.EventsRejected, err = meter.Int64Counter("lightlogger.events.rejected",
		metric.WithDescription("Number of log events rejected by validation"))
	if err != nil {
		return nil, err
	}

	m.BatchSize, err = meter.Int64Histogram("lightlogger.batch.size",
		metric.WithDescription("Events per submission"))
	if err != nil {
		return nil, err
	}

	m.SessionsCreated, err = meter.Int64Counter("lightlogger.sessions.created",
		metric.WithDescription("Number of sessions created by login"))
	if err != nil {
		return nil, err
	}

	m.AuthRejected, err = meter.Int64Counter("lightlogger.auth.rejected",
		metric.WithDescription("Number of rejected authentication attempts"))
	if err != nil {
		return nil, err
	}

	m.SchemaUpdates, err = meter.Int64Counter("lightlogger.schema.updates",
		metric.WithDescription("Number of project schema replacements"))
	if err != nil {
		return nil, err
	}

	m.SinkFailures, err = meter.Int64Counter("lightlogger.sink.failures",
		metric.WithDescription("Number of failed event sink deliveries"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordIngest records one submission's outcome for a project.
// A nil receiver records nothing.
func (m *Metrics) RecordIngest(ctx context.Context, projectID string, accepted, rejected int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("project.id", projectID))
	m.EventsAccepted.Add(ctx, int64(accepted), attrs)
	m.EventsRejected.Add(ctx, int64(rejected), attrs)
	m.BatchSize.Record(ctx, int64(accepted+rejected), attrs)
}

// RecordAuthRejected counts a rejected credential. kind is "session" or "project".
func (m *Metrics) RecordAuthRejected(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.AuthRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("auth.kind", kind)))
}

func (m *Metrics) RecordSessionCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.SessionsCreated.Add(ctx, 1)
}

func (m *Metrics) RecordSchemaUpdate(ctx context.Context, projectID string) {
	if m == nil {
		return
	}
	m.SchemaUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("project.id", projectID)))
}

func (m *Metrics) RecordSinkFailure(ctx context.Context, projectID string) {
	if m == nil {
		return
	}
	m.SinkFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("project.id", projectID)))
}
