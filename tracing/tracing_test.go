package tracing

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

	"github.com/wyfcoding/simplex/config"
	"github.com/wyfcoding/simplex/xerrors"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(config.TracingConfig{Enabled: false}, "dev")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSolve(t *testing.T) {
	recorder := useRecorder(t)

	assert.Empty(t, GetTraceID(context.Background()))

	ctx, span := StartSolve(context.Background(), "S42")
	assert.Len(t, GetTraceID(ctx), 32)
	AddTag(ctx, "lp.rows", 3)
	AddTag(ctx, "solve.cached", false)
	AddTag(ctx, "solve.objective", 36.0)
	AddTag(ctx, "solve.status", codes.Ok)
	SetError(ctx, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "simplex.Solve", ended[0].Name())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)

	attrs := ended[0].Attributes()
	assert.Contains(t, attrs, attribute.String("solve.id", "S42"))
	assert.Contains(t, attrs, attribute.Int("lp.rows", 3))
	assert.Contains(t, attrs, attribute.Bool("solve.cached", false))
	assert.Contains(t, attrs, attribute.Float64("solve.objective", 36))
	assert.Contains(t, attrs, attribute.String("solve.status", "Ok"))
}

func TestSetError(t *testing.T) {
	recorder := useRecorder(t)

	ctx, span := StartSpan(context.Background(), "plain")
	SetError(ctx, errors.New("boom"))
	span.End()

	ctx, span = StartSpan(context.Background(), "typed")
	SetError(ctx, xerrors.ErrRaggedRow.Detailf("row 1"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	assert.Empty(t, ended[0].Attributes())

	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Contains(t, ended[1].Attributes(), attribute.Int("error.code", 400103))
	assert.Contains(t, ended[1].Attributes(), attribute.String("error.type", "InvalidArg"))
	require.Len(t, ended[1].Events(), 1)
	assert.Equal(t, "exception", ended[1].Events()[0].Name)
}

func TestAddTagWithoutSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		AddTag(context.Background(), "k", "v")
		SetError(context.Background(), errors.New("x"))
	})
}
