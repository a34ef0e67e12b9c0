package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), "  ", "dev")
	require.NoError(t, err)
	assert.Equal(t, before, otel.GetTracerProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	// Non-routable address so nothing is exported.
	shutdown, err := Setup(context.Background(), "http://192.0.2.1:4318", "1.2.3")
	require.NoError(t, err)
	assert.NotEqual(t, before, otel.GetTracerProvider())

	assert.NoError(t, shutdown(context.Background()))
}
