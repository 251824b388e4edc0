package rpcapi

import (
	"context"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/acl"
	"github.com/cuemby/fabriq/internal/configresolver"
	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/service"
	"github.com/cuemby/fabriq/internal/storage"
)

// ConfigServer implements fabriqpb.ConfigServer, adding the
// team-membership check that runs before every Config write: a
// deployment- or workload-owned Config authorizes against the owning
// workload's team, a template-owned Config is currently unchecked.
type ConfigServer struct {
	store    *storage.Store
	services *service.Services
	oracle   acl.Oracle
	resolver *configresolver.Resolver
}

// NewConfigServer wires a ConfigServer over store/services/oracle.
func NewConfigServer(store *storage.Store, services *service.Services, oracle acl.Oracle) *ConfigServer {
	return &ConfigServer{store: store, services: services, oracle: oracle, resolver: configresolver.New(store)}
}

func (s *ConfigServer) resolveOwningTeam(ctx context.Context, ownerKind, ownerID string) (string, error) {
	switch ownerKind {
	case model.OwnerDeployment:
		deployment, err := s.store.Deployments.GetByID(ctx, ownerID)
		if err != nil {
			return "", err
		}
		if deployment == nil {
			return "", errs.NotFound("deployment %s not found", ownerID)
		}
		workload, err := s.store.Workloads.GetByID(ctx, deployment.WorkloadID)
		if err != nil {
			return "", err
		}
		if workload == nil {
			return "", errs.NotFound("workload %s not found", deployment.WorkloadID)
		}
		return workload.TeamID, nil
	case model.OwnerWorkload:
		workload, err := s.store.Workloads.GetByID(ctx, ownerID)
		if err != nil {
			return "", err
		}
		if workload == nil {
			return "", errs.NotFound("workload %s not found", ownerID)
		}
		return workload.TeamID, nil
	case model.OwnerTemplate:
		return "", nil
	default:
		return "", errs.Validation("unknown config owner kind %q", ownerKind)
	}
}

func (s *ConfigServer) checkAuth(ctx context.Context, ownerKind, ownerID string) error {
	teamID, err := s.resolveOwningTeam(ctx, ownerKind, ownerID)
	if err != nil {
		return err
	}
	if teamID == "" {
		return nil
	}
	token, ok := TokenFromContext(ctx)
	if !ok {
		return errs.Unauthenticated("missing authorization header")
	}
	member, err := s.oracle.IsTeamMember(ctx, teamID, token)
	if err != nil {
		return err
	}
	if !member {
		return errs.PermissionDenied("caller is not a member of team %s", teamID)
	}
	return nil
}

func (s *ConfigServer) Upsert(ctx context.Context, req fabriqpb.UpsertConfigRequest) (*model.Config, string, error) {
	if err := s.checkAuth(ctx, req.OwnerKind, req.OwnerID); err != nil {
		return nil, "", err
	}
	opID, err := s.services.Configs.Upsert(ctx, s.store, req.OwnerKind, req.OwnerID, req.Key, req.Value, req.ValueType, req.OperationID)
	if err != nil {
		return nil, "", err
	}
	owningModel, err := model.MakeOwningModel(req.OwnerKind, req.OwnerID)
	if err != nil {
		return nil, "", err
	}
	cfg, err := s.services.Configs.GetByID(ctx, model.MakeConfigID(owningModel, req.Key))
	if err != nil {
		return nil, "", err
	}
	return cfg, opID, nil
}

func (s *ConfigServer) Delete(ctx context.Context, id string, operationID string) (string, error) {
	cfg, err := s.services.Configs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		return "", errs.NotFound("config %s not found", id)
	}
	ownerKind, ownerID, err := model.SplitOwningModel(cfg.OwningModel)
	if err != nil {
		return "", errs.Validation("%v", err)
	}
	if err := s.checkAuth(ctx, ownerKind, ownerID); err != nil {
		return "", err
	}
	return s.services.Configs.Delete(ctx, id, operationID)
}

func (s *ConfigServer) GetByID(ctx context.Context, id string) (*model.Config, error) {
	return s.services.Configs.GetByID(ctx, id)
}

func (s *ConfigServer) List(ctx context.Context) ([]model.Config, error) {
	return s.services.Configs.List(ctx)
}

// Query resolves the effective key/value set for req's scope, checking
// the same team-membership rule Upsert/Delete enforce before exposing
// what can include deployment- or workload-scoped values.
func (s *ConfigServer) Query(ctx context.Context, req fabriqpb.ConfigQueryRequest) (fabriqpb.ConfigQueryResponse, error) {
	if err := s.checkAuth(ctx, req.ModelName, req.ModelID); err != nil {
		return fabriqpb.ConfigQueryResponse{}, err
	}
	resolved, err := s.resolver.Query(ctx, req.ModelName, req.ModelID)
	if err != nil {
		return fabriqpb.ConfigQueryResponse{}, err
	}
	values := make(map[string]string, len(resolved))
	for k, v := range resolved {
		values[k] = v.Value
	}
	return fabriqpb.ConfigQueryResponse{Values: values}, nil
}
