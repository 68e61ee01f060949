package handlers

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
)

var tracer = otel.Tracer("github.com/pranavrajput12/PRSNL-sub011/application/queries")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "query."+name, trace.WithAttributes(attrs...))
}

// finishSpan records err and the truncation flag on span and ends it.
func finishSpan(span trace.Span, err error, truncated bool) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Bool("truncated", truncated))
	span.End()
}

func recordTruncation(metrics ports.MetricsRecorder, operation string, truncated bool) {
	if truncated && metrics != nil {
		metrics.RecordTruncation(operation)
	}
}
