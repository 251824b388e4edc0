package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONOutputWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	WithComponent("reconciler").Info().Str("operation_id", "op-1").Msg("processed event")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "reconciler", line["component"])
	assert.Equal(t, "op-1", line["operation_id"])
	assert.Equal(t, "processed event", line["message"])
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: Level("bogus"), JSONOutput: true, Output: &buf})

	WithComponent("rpcapi").Debug().Msg("should be suppressed")
	assert.Empty(t, buf.String())

	WithComponent("rpcapi").Info().Msg("should be emitted")
	assert.NotEmpty(t, buf.String())
}

func TestWithOperationAndWithConsumer_TagFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	WithOperation("op-1").Info().Msg("a")
	var first map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &first))
	assert.Equal(t, "op-1", first["operation_id"])

	buf.Reset()
	WithConsumer("reconciler").Info().Msg("b")
	var second map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &second))
	assert.Equal(t, "reconciler", second["consumer_id"])
}
