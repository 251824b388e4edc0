package gitops

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fabriq/internal/model"
	storagememory "github.com/cuemby/fabriq/internal/storage/memory"
)

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestProcess_TargetAndConfigEventsAreNoops(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	repo := NewMemoryRepo()
	p := New(repo, store, t.TempDir(), "")

	require.NoError(t, p.Process(ctx, model.Event{ModelType: model.ModelTypeTarget, EventType: model.EventTypeCreated}))
	require.NoError(t, p.Process(ctx, model.Event{ModelType: model.ModelTypeConfig, EventType: model.EventTypeCreated}))

	assert.Equal(t, 0, repo.Commits)
	assert.Equal(t, 0, repo.Pushes)
}

func TestProcess_UnsupportedModelTypeIsFatal(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	repo := NewMemoryRepo()
	p := New(repo, store, t.TempDir(), "")

	err := p.Process(ctx, model.Event{ModelType: "bogus", EventType: model.EventTypeCreated})
	require.Error(t, err)
}

func TestProcess_AssignmentCreatedWritesManifestAndCommits(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	repo := NewMemoryRepo()
	p := New(repo, store, t.TempDir(), "")

	_, err := store.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"})
	require.NoError(t, err)
	_, err = store.Deployments.Upsert(ctx, model.Deployment{ID: "org:team:api:web", Name: "web", WorkloadID: "org:team:api", TargetID: "tgt"})
	require.NoError(t, err)

	assignment := model.Assignment{ID: "org:team:api:web-h1", DeploymentID: "org:team:api:web", HostID: "h1"}
	ev := model.Event{
		ModelType:    model.ModelTypeAssignment,
		EventType:    model.EventTypeCreated,
		CurrentModel: mustMarshal(t, assignment),
	}

	require.NoError(t, p.Process(ctx, ev))
	assert.Equal(t, 1, repo.Commits)
	assert.Equal(t, 1, repo.Pushes)

	relPath := assignmentPath("h1", "org:team", "org:team:api", "org:team:api:web")
	_, err = repo.ReadFile(relPath)
	assert.NoError(t, err, "the assignment's kustomization manifest should have been written")
}

func TestProcess_AssignmentDeletedRemovesManifestDir(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	repo := NewMemoryRepo()
	p := New(repo, store, t.TempDir(), "")

	_, err := store.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"})
	require.NoError(t, err)
	_, err = store.Deployments.Upsert(ctx, model.Deployment{ID: "org:team:api:web", Name: "web", WorkloadID: "org:team:api", TargetID: "tgt"})
	require.NoError(t, err)

	assignment := model.Assignment{ID: "org:team:api:web-h1", DeploymentID: "org:team:api:web", HostID: "h1"}
	createEv := model.Event{
		ModelType:    model.ModelTypeAssignment,
		EventType:    model.EventTypeCreated,
		CurrentModel: mustMarshal(t, assignment),
	}
	require.NoError(t, p.Process(ctx, createEv))

	relPath := assignmentPath("h1", "org:team", "org:team:api", "org:team:api:web")
	_, err = repo.ReadFile(relPath)
	require.NoError(t, err)

	deleteEv := model.Event{
		ModelType:     model.ModelTypeAssignment,
		EventType:     model.EventTypeDeleted,
		PreviousModel: mustMarshal(t, assignment),
	}
	require.NoError(t, p.Process(ctx, deleteEv))

	_, err = repo.ReadFile(relPath)
	assert.Error(t, err, "deletion should have removed the manifest")
}

func TestProcess_DeploymentDeletedClearsDirectoryWithoutRenderAttempt(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	repo := NewMemoryRepo()
	p := New(repo, store, t.TempDir(), "")

	_, err := store.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"})
	require.NoError(t, err)

	deployment := model.Deployment{ID: "org:team:api:web", Name: "web", WorkloadID: "org:team:api", TargetID: "tgt"}
	ev := model.Event{
		ModelType:     model.ModelTypeDeployment,
		EventType:     model.EventTypeDeleted,
		PreviousModel: mustMarshal(t, deployment),
	}

	require.NoError(t, p.Process(ctx, ev))
	assert.Equal(t, 1, repo.Commits)
}
