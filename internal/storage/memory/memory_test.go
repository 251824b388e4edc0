package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fabriq/internal/model"
)

func TestTemplateRepository_UpsertReportsAffectedCount(t *testing.T) {
	ctx := context.Background()
	store := New()

	affected, err := store.Templates.Upsert(ctx, model.Template{ID: "t1", Repository: "repo", GitRef: "main", Path: "manifests"})
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	affected, err = store.Templates.Upsert(ctx, model.Template{ID: "t1", Repository: "repo", GitRef: "main", Path: "manifests"})
	require.NoError(t, err)
	assert.Equal(t, 0, affected, "identical upsert is a no-op")

	affected, err = store.Templates.Upsert(ctx, model.Template{ID: "t1", Repository: "repo", GitRef: "main", Path: "other"})
	require.NoError(t, err)
	assert.Equal(t, 1, affected, "changed field reports an affected row")
}

func TestTemplateRepository_DeleteReportsAffectedCount(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, err := store.Templates.Upsert(ctx, model.Template{ID: "t1", Repository: "repo", GitRef: "main", Path: "manifests"})
	require.NoError(t, err)

	affected, err := store.Templates.Delete(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	affected, err = store.Templates.Delete(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
}

func TestHostRepository_GetMatchingTarget(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.Hosts.Upsert(ctx, model.Host{ID: "h1", Labels: []string{"zone=east", "tier=edge"}})
	require.NoError(t, err)
	_, err = store.Hosts.Upsert(ctx, model.Host{ID: "h2", Labels: []string{"zone=west"}})
	require.NoError(t, err)

	matches, err := store.Hosts.GetMatchingTarget(ctx, model.Target{ID: "tgt", Labels: []string{"zone=east"}})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "h1", matches[0].ID)
}

func TestWorkloadRepository_GetByTemplateID(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team", TemplateID: "tmpl-1"})
	require.NoError(t, err)
	_, err = store.Workloads.Upsert(ctx, model.Workload{ID: "org:team:worker", Name: "worker", TeamID: "org:team", TemplateID: "tmpl-2"})
	require.NoError(t, err)

	matches, err := store.Workloads.GetByTemplateID(ctx, "tmpl-1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "org:team:api", matches[0].ID)
}

func TestConfigRepository_GetByDeploymentID(t *testing.T) {
	ctx := context.Background()
	store := New()

	owningModel, err := model.MakeOwningModel(model.OwnerDeployment, "dep-1")
	require.NoError(t, err)
	cfg := model.Config{
		ID:          model.MakeConfigID(owningModel, "replicas"),
		OwningModel: owningModel,
		Key:         "replicas",
		Value:       "3",
		ValueType:   model.ConfigValueString,
	}
	_, err = store.Configs.Upsert(ctx, cfg)
	require.NoError(t, err)

	matches, err := store.Configs.GetByDeploymentID(ctx, "dep-1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "replicas", matches[0].Key)

	none, err := store.Configs.GetByWorkloadID(ctx, "dep-1")
	require.NoError(t, err)
	assert.Empty(t, none)
}
