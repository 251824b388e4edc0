package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsWhenEnvironmentIsUnset(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "postgres", cfg.StorageBackend)
	assert.Equal(t, "static", cfg.ACLOracle)
	assert.Equal(t, 1.0, cfg.ReconcilerPollIntervalSeconds)
	assert.Equal(t, []string{"reconciler", "gitops"}, cfg.Subscribers)
}

func TestLoad_ReadsOverridesFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("SUBSCRIBERS", " reconciler , gitops , audit,")
	t.Setenv("RECONCILER_POLL_INTERVAL_SECONDS", "0.25")

	cfg := Load()

	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, []string{"reconciler", "gitops", "audit"}, cfg.Subscribers)
	assert.Equal(t, 0.25, cfg.ReconcilerPollIntervalSeconds)
}

func TestLoad_InvalidFloatFallsBackToDefault(t *testing.T) {
	t.Setenv("RECONCILER_POLL_INTERVAL_SECONDS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 1.0, cfg.ReconcilerPollIntervalSeconds)
}
