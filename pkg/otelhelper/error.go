package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordError marks the span as failed with the given error.
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	RecordError(span, err)
	span.AddEvent("error_occurred", trace.WithAttributes(
		attrs...,
	))
}
