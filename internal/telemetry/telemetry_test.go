package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fabriq/internal/config"
)

func TestInit_NoEndpointInstallsNoopProvider(t *testing.T) {
	shutdown, err := Init(context.Background(), config.Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(context.Background()))
}
