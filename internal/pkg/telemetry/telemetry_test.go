package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func TestNewResource(t *testing.T) {
	t.Run("carries the service name attribute", func(t *testing.T) {
		res, err := newResource("pegvault")

		require.NoError(t, err)
		require.NotNil(t, res)

		found := false
		for _, attr := range res.Attributes() {
			if attr.Key == semconv.ServiceNameKey {
				assert.Equal(t, "pegvault", attr.Value.AsString())
				found = true
				break
			}
		}
		assert.True(t, found, "service name attribute not found in resource")
	})
}

func TestInit(t *testing.T) {
	t.Run("creates all providers and a shutdown function", func(t *testing.T) {
		shutdown, err := Init(t.Context(), "pegvault-test")

		require.NoError(t, err)
		require.NotNil(t, shutdown)
		assert.NotNil(t, LoggerProvider())

		// Flushing may fail without a collector listening; the shutdown call
		// itself must still return.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	})
}
