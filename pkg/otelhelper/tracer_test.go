package otelhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracerRegistersGlobalProvider(t *testing.T) {
	provider, err := InitTracer(context.Background(), "ouvra-test")
	require.NoError(t, err)

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	assert.Same(t, provider, otel.GetTracerProvider())

	_, span := Tracer().Start(context.Background(), "sample")
	defer span.End()

	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().IsValid())
}

func TestStartSpanCarriesAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := StartSpan(context.Background(), provider.Tracer("test"), "actions.dispatch",
		attribute.String(ActionTypeKey, "webhook"),
		attribute.String(InterventionIDKey, "i-1"),
	)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "actions.dispatch", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String(ActionTypeKey, "webhook"))
	assert.Contains(t, ended[0].Attributes(), attribute.String(InterventionIDKey, "i-1"))
}

func TestSetErrorMarksSpanFailed(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := StartSpan(context.Background(), provider.Tracer("test"), "actions.dispatch")
	SetError(span, errors.New("delivery failed"), attribute.String(ActionTypeKey, "webhook"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "delivery failed", ended[0].Status().Description)

	names := make([]string, 0, len(ended[0].Events()))
	for _, event := range ended[0].Events() {
		names = append(names, event.Name)
	}

	assert.Contains(t, names, "exception")
	assert.Contains(t, names, "error_occurred")
}
