// Package config loads fabriq's process configuration from environment
// variables, read once at startup into a typed Config.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds fabriqd's environment-driven settings.
type Config struct {
	// StorageBackend selects the storage and event stream adapters:
	// "postgres" or "memory". memory is for local/offline runs; it does
	// not survive a restart.
	StorageBackend string
	DatabaseURL    string

	Endpoint             string
	HTTPAddr             string
	Subscribers          []string
	ReconcilerConsumerID string
	OTELEndpoint         string
	ServiceName          string
	ServiceVersion       string

	// ACLOracle selects the team-membership oracle: "github" or
	// "static". static grants nothing by default; it exists for
	// local/offline runs and tests.
	ACLOracle      string
	GitHubBaseURL  string

	// GitOps collaborator settings.
	GitOpsConsumerID string
	GitURL           string
	GitRef           string
	GitSSHKeyPath    string
	GitOpsWorkDir    string

	// ReconcilerPollIntervalSeconds bounds the empty-queue sleep, in a
	// 250ms-5s band. Stored as a float so sub-second values remain
	// expressible from the environment.
	ReconcilerPollIntervalSeconds float64
}

// Load reads configuration from the environment, applying defaults
// where a variable is unset.
func Load() Config {
	cfg := Config{
		StorageBackend:                getenv("STORAGE_BACKEND", "postgres"),
		DatabaseURL:                   getenv("DATABASE_URL", "postgres://localhost:5432/fabriq"),
		Endpoint:                      getenv("ENDPOINT", "0.0.0.0:50051"),
		HTTPAddr:                      getenv("HTTP_ADDR", "0.0.0.0:8080"),
		Subscribers:                   splitCSV(getenv("SUBSCRIBERS", "reconciler,gitops")),
		ReconcilerConsumerID:          getenv("RECONCILER_CONSUMER_ID", "reconciler"),
		OTELEndpoint:                  getenv("OTEL_ENDPOINT", ""),
		ServiceName:                   getenv("SERVICE_NAME", "fabriq"),
		ServiceVersion:                getenv("SERVICE_VERSION", "dev"),
		ACLOracle:                     getenv("ACL_ORACLE", "static"),
		GitHubBaseURL:                 getenv("ACL_GITHUB_BASE_URL", ""),
		GitOpsConsumerID:              getenv("GITOPS_CONSUMER_ID", "gitops"),
		GitURL:                        getenv("GITOPS_GIT_URL", ""),
		GitRef:                        getenv("GITOPS_GIT_REF", "main"),
		GitSSHKeyPath:                 getenv("GITOPS_SSH_KEY_PATH", ""),
		GitOpsWorkDir:                 getenv("GITOPS_WORK_DIR", "/var/lib/fabriq/gitops"),
		ReconcilerPollIntervalSeconds: getenvFloat("RECONCILER_POLL_INTERVAL_SECONDS", 1.0),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
