package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/entregas-api/pkg/config"
)

func TestSetupTracing_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), config.OTelConfig{}, "entregas-api", "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestSetupTracing_ConEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), config.OTelConfig{Endpoint: "localhost:4318", Insecure: true}, "entregas-api", "test")
	require.NoError(t, err)
	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	// El collector no existe: solo se verifica que el cierre no bloquee.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
