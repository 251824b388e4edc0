package rpcapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/acl"
	eventstreammemory "github.com/cuemby/fabriq/internal/eventstream/memory"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/service"
	storagememory "github.com/cuemby/fabriq/internal/storage/memory"
)

func ctxWithToken(token string) context.Context {
	md := metadata.Pairs("authorization", token)
	ctx := metadata.NewIncomingContext(context.Background(), md)
	ctx, _ = AuthInterceptor(ctx, nil, nil, func(ctx context.Context, req any) (any, error) {
		return ctx, nil
	})
	return ctx
}

func TestConfigServer_TemplateOwnedWriteNeedsNoMembership(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	oracle := acl.NewStaticOracle()
	server := NewConfigServer(store, services, oracle)

	_, err := services.Templates.Upsert(ctx, model.Template{ID: "tmpl-1", Repository: "r", GitRef: "main", Path: "p"}, "")
	require.NoError(t, err)

	cfg, _, err := server.Upsert(ctx, fabriqpb.UpsertConfigRequest{OwnerKind: model.OwnerTemplate, OwnerID: "tmpl-1", Key: "flag", Value: "on"})
	require.NoError(t, err)
	assert.Equal(t, "on", cfg.Value)
}

func TestConfigServer_WorkloadOwnedWriteRequiresAuthorizationHeader(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	oracle := acl.NewStaticOracle()
	server := NewConfigServer(store, services, oracle)

	_, err := services.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"}, "")
	require.NoError(t, err)

	_, _, err = server.Upsert(ctx, fabriqpb.UpsertConfigRequest{OwnerKind: model.OwnerWorkload, OwnerID: "org:team:api", Key: "flag", Value: "on"})
	require.Error(t, err)
}

func TestConfigServer_WorkloadOwnedWriteRequiresTeamMembership(t *testing.T) {
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	oracle := acl.NewStaticOracle()
	server := NewConfigServer(store, services, oracle)

	_, err := services.Workloads.Upsert(context.Background(), model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"}, "")
	require.NoError(t, err)

	unauthorizedCtx := ctxWithToken("random-token")
	_, _, err = server.Upsert(unauthorizedCtx, fabriqpb.UpsertConfigRequest{OwnerKind: model.OwnerWorkload, OwnerID: "org:team:api", Key: "flag", Value: "on"})
	require.Error(t, err)

	oracle.Grant("org:team", "member-token")
	authorizedCtx := ctxWithToken("member-token")
	cfg, _, err := server.Upsert(authorizedCtx, fabriqpb.UpsertConfigRequest{OwnerKind: model.OwnerWorkload, OwnerID: "org:team:api", Key: "flag", Value: "on"})
	require.NoError(t, err)
	assert.Equal(t, "on", cfg.Value)
}

func TestConfigServer_UpsertReturnsOperationID(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	oracle := acl.NewStaticOracle()
	server := NewConfigServer(store, services, oracle)

	_, err := services.Templates.Upsert(ctx, model.Template{ID: "tmpl-1", Repository: "r", GitRef: "main", Path: "p"}, "")
	require.NoError(t, err)

	opID := "33333333-3333-3333-3333-333333333333"
	_, gotOpID, err := server.Upsert(ctx, fabriqpb.UpsertConfigRequest{OwnerKind: model.OwnerTemplate, OwnerID: "tmpl-1", Key: "flag", Value: "on", OperationID: opID})
	require.NoError(t, err)
	assert.Equal(t, opID, gotOpID)
}

func TestConfigServer_DeleteResolvesOwnerFromStoredConfig(t *testing.T) {
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	oracle := acl.NewStaticOracle()
	server := NewConfigServer(store, services, oracle)

	ctx := context.Background()
	_, err := services.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team"}, "")
	require.NoError(t, err)
	oracle.Grant("org:team", "member-token")

	authorizedCtx := ctxWithToken("member-token")
	cfg, _, err := server.Upsert(authorizedCtx, fabriqpb.UpsertConfigRequest{OwnerKind: model.OwnerWorkload, OwnerID: "org:team:api", Key: "flag", Value: "on"})
	require.NoError(t, err)

	unauthorizedCtx := ctxWithToken("random-token")
	_, err = server.Delete(unauthorizedCtx, cfg.ID, "")
	require.Error(t, err)

	_, err = server.Delete(authorizedCtx, cfg.ID, "")
	require.NoError(t, err)
}

func TestConfigServer_QueryResolvesDeploymentScope(t *testing.T) {
	ctx := context.Background()
	store := storagememory.New()
	stream := eventstreammemory.New()
	services := service.New(store, stream, nil)
	oracle := acl.NewStaticOracle()
	server := NewConfigServer(store, services, oracle)

	_, err := services.Templates.Upsert(ctx, model.Template{ID: "tmpl-1", Repository: "r", GitRef: "main", Path: "p"}, "")
	require.NoError(t, err)
	_, err = services.Workloads.Upsert(ctx, model.Workload{ID: "org:team:api", Name: "api", TeamID: "org:team", TemplateID: "tmpl-1"}, "")
	require.NoError(t, err)
	_, err = services.Targets.Upsert(ctx, model.Target{ID: "tgt"}, "")
	require.NoError(t, err)
	_, err = services.Deployments.Upsert(ctx, model.Deployment{Name: "web", WorkloadID: "org:team:api", TargetID: "tgt"}, "")
	require.NoError(t, err)
	deploymentID := model.MakeDeploymentID("org:team:api", "web")

	_, _, err = server.Upsert(ctx, fabriqpb.UpsertConfigRequest{OwnerKind: model.OwnerTemplate, OwnerID: "tmpl-1", Key: "image", Value: "ghcr.io/x:v1"})
	require.NoError(t, err)

	oracle.Grant("org:team", "member-token")
	authorizedCtx := ctxWithToken("member-token")
	_, _, err = server.Upsert(authorizedCtx, fabriqpb.UpsertConfigRequest{OwnerKind: model.OwnerDeployment, OwnerID: deploymentID, Key: "replicas", Value: "5"})
	require.NoError(t, err)

	resp, err := server.Query(authorizedCtx, fabriqpb.ConfigQueryRequest{ModelName: model.OwnerDeployment, ModelID: deploymentID})
	require.NoError(t, err)
	assert.Equal(t, "ghcr.io/x:v1", resp.Values["image"])
	assert.Equal(t, "5", resp.Values["replicas"])
}
