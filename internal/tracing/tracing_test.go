package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestSpans records a parent and a failing child span in memory.
func TestSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := InitWithExporter("oddeven-test", "dev", exporter, nil)
	require.NoError(t, err)

	ctx, parent := StartSpan(context.Background(), "sort")
	parent.SetInt("array.size", 4).SetString("policy", "greedy")

	_, child := StartSpan(ctx, "round")
	EndSpan(child, errors.New("link down"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "round", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())

	assert.Equal(t, "sort", spans[1].Name)
	assert.Contains(t, spans[1].Attributes, attribute.Int("array.size", 4))
	assert.Contains(t, spans[1].Attributes, attribute.String("policy", "greedy"))

	require.NoError(t, shutdown(context.Background()))
}

// TestNilSpan tolerates a nil span.
func TestNilSpan(t *testing.T) {
	var s *Span
	assert.Nil(t, s.SetInt("k", 1))
	EndSpan(s, nil)
}
