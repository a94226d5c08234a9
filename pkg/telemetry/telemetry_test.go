package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInitDisabled(t *testing.T) {
	cfg := Config{Enabled: false, ServiceName: "flowsched-test"}

	provider, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.tracer)
}

func TestGetUninitialized(t *testing.T) {
	globalProvider = nil

	provider := Get()
	require.NotNil(t, provider)
	assert.NotNil(t, provider.tracer)
}

func TestStartSpan(t *testing.T) {
	globalProvider = nil

	ctx, span := StartSpan(context.Background(), "batch-run")
	require.NotNil(t, span)
	_ = ctx
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	span := SpanFromContext(context.Background())
	assert.NotNil(t, span)
}

func TestAddEventSetErrorSetAttributes(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "batch-run")
	defer span.End()

	AddEvent(ctx, "flow-admitted", attribute.String("flow.src", "h1"), attribute.Int("retries", 2))
	SetAttributes(ctx, attribute.String("algorithm", "dr"))
	SetError(ctx, context.DeadlineExceeded)
	RecordError(ctx, context.Canceled)
}

func TestWithAttributes(t *testing.T) {
	opt := WithAttributes(attribute.String("key", "value"))
	assert.NotNil(t, opt)
}

func TestProviderTracer(t *testing.T) {
	provider := &Provider{tracer: noop.NewTracerProvider().Tracer("test")}
	assert.NotNil(t, provider.Tracer())
}

func TestProviderShutdownNoopWhenNotRecording(t *testing.T) {
	provider := &Provider{tracer: noop.NewTracerProvider().Tracer("test")}
	assert.NoError(t, provider.Shutdown(context.Background()))
}
