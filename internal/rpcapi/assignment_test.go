package rpcapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fabriq/internal/errs"
	eventstreammemory "github.com/cuemby/fabriq/internal/eventstream/memory"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/service"
	storagememory "github.com/cuemby/fabriq/internal/storage/memory"
)

func TestAssignmentServer_RejectsUpsertAndDelete(t *testing.T) {
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	server := NewAssignmentServer(services.Assignments)

	_, err := server.Upsert(context.Background(), model.Assignment{ID: "a1"}, "")
	require.Error(t, err)
	var fe *errs.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, errs.KindPermissionDenied, fe.Kind)

	_, err = server.Delete(context.Background(), "a1", "")
	require.Error(t, err)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, errs.KindPermissionDenied, fe.Kind)
}

func TestAssignmentServer_GetAndListPassThrough(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	server := NewAssignmentServer(services.Assignments)

	_, err := store.Assignments.Upsert(ctx, model.Assignment{ID: "a1", DeploymentID: "dep-1", HostID: "h1"})
	require.NoError(t, err)

	got, err := server.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dep-1", got.DeploymentID)

	all, err := server.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
