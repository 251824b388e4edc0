package reconciler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventstreammemory "github.com/cuemby/fabriq/internal/eventstream/memory"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/service"
	"github.com/cuemby/fabriq/internal/storage"
	storagememory "github.com/cuemby/fabriq/internal/storage/memory"
)

func newTestReconciler() (*Reconciler, *service.Services, *storage.Store) {
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	return New(store, services), services, store
}

func TestReconciler_DeploymentCreatedAssignsMatchingHosts(t *testing.T) {
	ctx := context.Background()
	recon, services, store := newTestReconciler()

	_, err := services.Targets.Upsert(ctx, model.Target{ID: "tgt", Labels: []string{"zone=east"}}, "")
	require.NoError(t, err)
	_, err = services.Hosts.Upsert(ctx, model.Host{ID: "h1", Labels: []string{"zone=east"}}, "")
	require.NoError(t, err)
	_, err = services.Hosts.Upsert(ctx, model.Host{ID: "h2", Labels: []string{"zone=east"}}, "")
	require.NoError(t, err)
	_, err = services.Hosts.Upsert(ctx, model.Host{ID: "h3", Labels: []string{"zone=west"}}, "")
	require.NoError(t, err)
	_, err = services.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"}, "")
	require.NoError(t, err)
	_, err = services.Deployments.Upsert(ctx, model.Deployment{Name: "web", WorkloadID: "org:team:api", TargetID: "tgt", HostCount: 2}, "")
	require.NoError(t, err)

	deploymentID := model.MakeDeploymentID("org:team:api", "web")
	deployment, err := store.Deployments.GetByID(ctx, deploymentID)
	require.NoError(t, err)
	require.NotNil(t, deployment)

	ev := model.Event{
		OperationID:  "11111111-1111-1111-1111-111111111111",
		ModelType:    model.ModelTypeDeployment,
		EventType:    model.EventTypeCreated,
		CurrentModel: mustMarshalDeployment(t, *deployment),
	}
	require.NoError(t, recon.Process(ctx, ev))

	assignments, err := store.Assignments.GetByDeploymentID(ctx, deploymentID)
	require.NoError(t, err)
	assert.Len(t, assignments, 2, "only the two east hosts should be assigned")
}

func TestReconciler_AssignmentWritesCarryTriggeringOperationID(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, []string{"watcher"})
	recon := New(store, services)

	_, err := services.Targets.Upsert(ctx, model.Target{ID: "tgt"}, "")
	require.NoError(t, err)
	_, err = services.Hosts.Upsert(ctx, model.Host{ID: "h1"}, "")
	require.NoError(t, err)
	_, err = services.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"}, "")
	require.NoError(t, err)
	_, err = services.Deployments.Upsert(ctx, model.Deployment{Name: "web", WorkloadID: "org:team:api", TargetID: "tgt", HostCount: 1}, "")
	require.NoError(t, err)

	deploymentID := model.MakeDeploymentID("org:team:api", "web")
	deployment, err := store.Deployments.GetByID(ctx, deploymentID)
	require.NoError(t, err)

	events, err := stream.Receive(ctx, "watcher", 0)
	require.NoError(t, err)
	for _, e := range events {
		require.NoError(t, stream.Delete(ctx, "watcher", e.ID))
	}

	opID := "22222222-2222-2222-2222-222222222222"
	require.NoError(t, recon.Process(ctx, model.Event{
		OperationID:  opID,
		ModelType:    model.ModelTypeDeployment,
		EventType:    model.EventTypeCreated,
		CurrentModel: mustMarshalDeployment(t, *deployment),
	}))

	events, err = stream.Receive(ctx, "watcher", 0)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	for _, e := range events {
		assert.Equal(t, opID, e.OperationID, "assignment events emitted by the reconciler should carry the triggering event's operation id")
	}
}

func TestReconciler_DeploymentDeletedRemovesAllAssignments(t *testing.T) {
	ctx := context.Background()
	recon, services, store := newTestReconciler()

	_, err := services.Targets.Upsert(ctx, model.Target{ID: "tgt"}, "")
	require.NoError(t, err)
	_, err = services.Hosts.Upsert(ctx, model.Host{ID: "h1"}, "")
	require.NoError(t, err)
	_, err = services.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"}, "")
	require.NoError(t, err)
	_, err = services.Deployments.Upsert(ctx, model.Deployment{Name: "web", WorkloadID: "org:team:api", TargetID: "tgt", HostCount: 1}, "")
	require.NoError(t, err)

	deploymentID := model.MakeDeploymentID("org:team:api", "web")
	deployment, err := store.Deployments.GetByID(ctx, deploymentID)
	require.NoError(t, err)

	require.NoError(t, recon.Process(ctx, model.Event{
		ModelType:    model.ModelTypeDeployment,
		EventType:    model.EventTypeCreated,
		CurrentModel: mustMarshalDeployment(t, *deployment),
	}))
	assignments, err := store.Assignments.GetByDeploymentID(ctx, deploymentID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)

	require.NoError(t, recon.Process(ctx, model.Event{
		ModelType:     model.ModelTypeDeployment,
		EventType:     model.EventTypeDeleted,
		PreviousModel: mustMarshalDeployment(t, *deployment),
	}))
	assignments, err = store.Assignments.GetByDeploymentID(ctx, deploymentID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestReconciler_DeploymentEventForMissingTargetIsNotFound(t *testing.T) {
	ctx := context.Background()
	recon, _, _ := newTestReconciler()

	deployment := model.Deployment{ID: "dep-1", Name: "web", WorkloadID: "wl-1", TargetID: "missing-target", HostCount: 1}
	err := recon.Process(ctx, model.Event{
		ModelType:    model.ModelTypeDeployment,
		EventType:    model.EventTypeCreated,
		CurrentModel: mustMarshalDeployment(t, deployment),
	})
	require.Error(t, err)
}

func TestReconciler_HostEventReconcilesDeploymentsOnAffectedTargets(t *testing.T) {
	ctx := context.Background()
	recon, services, store := newTestReconciler()

	_, err := services.Targets.Upsert(ctx, model.Target{ID: "tgt", Labels: []string{"zone=east"}}, "")
	require.NoError(t, err)
	_, err = services.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"}, "")
	require.NoError(t, err)
	_, err = services.Deployments.Upsert(ctx, model.Deployment{Name: "web", WorkloadID: "org:team:api", TargetID: "tgt", HostCount: 1}, "")
	require.NoError(t, err)

	host := model.Host{ID: "h1", Labels: []string{"zone=east"}}
	_, err = services.Hosts.Upsert(ctx, host, "")
	require.NoError(t, err)

	err = recon.Process(ctx, model.Event{
		ModelType:    model.ModelTypeHost,
		EventType:    model.EventTypeCreated,
		CurrentModel: mustMarshalHost(t, host),
	})
	require.NoError(t, err)

	deploymentID := model.MakeDeploymentID("org:team:api", "web")
	assignments, err := store.Assignments.GetByDeploymentID(ctx, deploymentID)
	require.NoError(t, err)
	assert.Len(t, assignments, 1, "the new matching host should have been assigned")
}

func TestReconciler_ConfigTemplateWorkloadAssignmentEventsAreNoops(t *testing.T) {
	ctx := context.Background()
	recon, _, _ := newTestReconciler()

	for _, modelType := range []model.ModelType{model.ModelTypeConfig, model.ModelTypeTemplate, model.ModelTypeWorkload, model.ModelTypeAssignment} {
		err := recon.Process(ctx, model.Event{ModelType: modelType, EventType: model.EventTypeCreated})
		assert.NoError(t, err)
	}
}

func TestReconciler_UnsupportedModelTypeIsFatal(t *testing.T) {
	ctx := context.Background()
	recon, _, _ := newTestReconciler()

	err := recon.Process(ctx, model.Event{ModelType: "bogus", EventType: model.EventTypeCreated})
	require.Error(t, err)
}

func mustMarshalDeployment(t *testing.T, d model.Deployment) []byte {
	t.Helper()
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	return raw
}

func mustMarshalHost(t *testing.T, h model.Host) []byte {
	t.Helper()
	raw, err := json.Marshal(h)
	require.NoError(t, err)
	return raw
}
