package utils

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lead-intake"

// Step is one traced unit of work inside a request
type Step struct {
	span  trace.Span
	start time.Time
}

// StartStep opens a span named name under ctx
func StartStep(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Step) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &Step{span: span, start: time.Now()}
}

// Set adds attributes to the step span
func (s *Step) Set(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// End records the elapsed time and closes the span. A non-nil err marks the
// span as failed.
func (s *Step) End(err error) {
	elapsed := time.Since(s.start)
	s.span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))
	if err != nil {
		RecordError(s.span, err)
	}
	s.span.End()
}

// TraceDatabaseOperation starts a step for one MongoDB command
func TraceDatabaseOperation(ctx context.Context, operation, collection string) (context.Context, *Step) {
	return StartStep(ctx, "db."+operation,
		attribute.String("db.system", "mongodb"),
		attribute.String("db.operation", operation),
		attribute.String("db.collection", collection),
	)
}

// TraceInputParsing starts a step for request decoding
func TraceInputParsing(ctx context.Context, inputType string) (context.Context, *Step) {
	return StartStep(ctx, "step.parse_input", attribute.String("input.type", inputType))
}

// TraceBusinessLogic starts a step for service logic
func TraceBusinessLogic(ctx context.Context, logicType string) (context.Context, *Step) {
	return StartStep(ctx, "step.business_logic", attribute.String("logic.type", logicType))
}

// TraceExternalService starts a step for a call to a dependency
func TraceExternalService(ctx context.Context, serviceName, operation string) (context.Context, *Step) {
	return StartStep(ctx, "step.external_service",
		attribute.String("service.name", serviceName),
		attribute.String("service.operation", operation),
	)
}

// RecordError marks span as failed with err
func RecordError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}
