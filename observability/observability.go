// Package observability exports job lifecycle telemetry through OpenTelemetry.
//
// A Listener is registered on jobs like any other JobListener. It counts
// transitions, progress steps and raised failures, records how long each job
// took to reach a final state and wraps every run in one span that carries
// an event per transition.
//
// Without a configured MeterProvider or TracerProvider the global noop
// implementations are used and the listener costs next to nothing.
package observability

import (
	"context"
	"github.com/osmike/jobrun/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"sync"
)

// scopeName is the instrumentation scope name for jobrun telemetry.
const scopeName = "github.com/osmike/jobrun"

const spanName = "jobrun.job.run"

// Listener is a JobListener recording OpenTelemetry metrics and spans.
type Listener struct {
	tracer trace.Tracer

	transitions metric.Int64Counter
	progress    metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram

	// spans holds the open span of every job that started and has not ended, keyed by job ID.
	spans sync.Map
}

var _ domain.JobListener = (*Listener)(nil)

// New returns a listener using the global MeterProvider and TracerProvider.
func New() *Listener {
	return NewWith(otel.Meter(scopeName), otel.Tracer(scopeName))
}

// NewWith returns a listener using the given meter and tracer.
//
// Instruments:
//   - jobrun.job.transitions (Int64Counter): with attributes job_name, from, to, command
//   - jobrun.job.progress (Int64Counter): completed steps, with attributes job_name, state
//   - jobrun.job.failures (Int64Counter): recoverable failures raised, with attributes job_name, state
//   - jobrun.job.duration (Float64Histogram): seconds from START to the first
//     final state, with attributes job_name, state
func NewWith(meter metric.Meter, tracer trace.Tracer) *Listener {
	// instrument constructors return noop instruments alongside any error
	transitions, _ := meter.Int64Counter(
		"jobrun.job.transitions",
		metric.WithDescription("Number of applied job state transitions"),
		metric.WithUnit("{transition}"),
	)
	progress, _ := meter.Int64Counter(
		"jobrun.job.progress",
		metric.WithDescription("Number of executed job steps"),
		metric.WithUnit("{step}"),
	)
	failures, _ := meter.Int64Counter(
		"jobrun.job.failures",
		metric.WithDescription("Number of recoverable failures raised by jobs"),
		metric.WithUnit("{failure}"),
	)
	duration, _ := meter.Float64Histogram(
		"jobrun.job.duration",
		metric.WithDescription("Time from job start to its final state in seconds"),
		metric.WithUnit("s"),
	)

	return &Listener{
		tracer:      tracer,
		transitions: transitions,
		progress:    progress,
		failures:    failures,
		duration:    duration,
	}
}

func (l *Listener) StateChanged(job domain.Job, from, to domain.State, cmd domain.Command) {
	ctx := context.Background()

	l.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job_name", job.Name()),
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
		attribute.String("command", string(cmd)),
	))

	if cmd == domain.Start {
		_, span := l.tracer.Start(ctx, spanName,
			trace.WithAttributes(
				attribute.String("jobrun.job.id", job.ID()),
				attribute.String("jobrun.job.name", job.Name()),
				attribute.Bool("jobrun.job.supports_rollback", job.SupportsRollback()),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithTimestamp(job.StartedAt()),
		)
		l.spans.Store(job.ID(), span)
	}

	v, ok := l.spans.Load(job.ID())
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.AddEvent("transition", trace.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
		attribute.String("command", string(cmd)),
	))

	if !to.Final() {
		return
	}
	if _, ok := l.spans.LoadAndDelete(job.ID()); !ok {
		return
	}

	l.duration.Record(ctx, job.EndedAt().Sub(job.StartedAt()).Seconds(), metric.WithAttributes(
		attribute.String("job_name", job.Name()),
		attribute.String("state", string(to)),
	))

	span.SetAttributes(attribute.String("jobrun.job.state", string(to)))
	if to == domain.Aborted {
		span.SetStatus(codes.Error, job.Description())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(job.EndedAt()))
}

func (l *Listener) ProgressChanged(job domain.Job) {
	l.progress.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("job_name", job.Name()),
		attribute.String("state", string(job.State())),
	))
}

func (l *Listener) FailureEmerged(job domain.Job, desc *domain.FailureDescription) {
	st := job.State()
	l.failures.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("job_name", job.Name()),
		attribute.String("state", string(st)),
	))

	v, ok := l.spans.Load(job.ID())
	if !ok || desc == nil {
		return
	}
	span := v.(trace.Span)
	attrs := trace.WithAttributes(
		attribute.String("jobrun.failure.message", desc.Message()),
		attribute.String("jobrun.job.state", string(st)),
	)
	if desc.Cause() != nil {
		span.RecordError(desc.Cause(), attrs)
		return
	}
	span.AddEvent("failure", attrs)
}

func (l *Listener) DescriptionChanged(domain.Job) {}
