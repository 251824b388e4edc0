package service

import (
	"context"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// ConfigService is the write path for Config records, the key/value
// overlay attachable to a Template, Workload, or Deployment.
type ConfigService struct {
	base
	repo storage.ConfigRepository
}

// Upsert validates ownerKind/ownerID against store before writing,
// deriving the Config's id from the owning model and key the way
// model.MakeConfigID documents.
func (s *ConfigService) Upsert(ctx context.Context, store *storage.Store, ownerKind, ownerID, key, value string, valueType model.ConfigValueType, operationID string) (string, error) {
	if key == "" {
		return "", errs.Validation("config key is required")
	}
	if err := ownerExists(ctx, store, ownerKind, ownerID); err != nil {
		return "", err
	}
	owningModel, err := model.MakeOwningModel(ownerKind, ownerID)
	if err != nil {
		return "", errs.Validation("%v", err)
	}
	m := model.Config{
		ID:          model.MakeConfigID(owningModel, key),
		OwningModel: owningModel,
		Key:         key,
		Value:       value,
		ValueType:   valueType,
	}
	return upsert(ctx, s.base, s.repo, model.ModelTypeConfig, m.ID, m, operationID)
}

func ownerExists(ctx context.Context, store *storage.Store, ownerKind, ownerID string) error {
	var exists bool
	var err error
	switch ownerKind {
	case model.OwnerTemplate:
		var t *model.Template
		t, err = store.Templates.GetByID(ctx, ownerID)
		exists = t != nil
	case model.OwnerWorkload:
		var w *model.Workload
		w, err = store.Workloads.GetByID(ctx, ownerID)
		exists = w != nil
	case model.OwnerDeployment:
		var d *model.Deployment
		d, err = store.Deployments.GetByID(ctx, ownerID)
		exists = d != nil
	default:
		return errs.Validation("unknown config owner kind %q", ownerKind)
	}
	if err != nil {
		return err
	}
	if !exists {
		return errs.Validation("config owner %s %s does not exist", ownerKind, ownerID)
	}
	return nil
}

func (s *ConfigService) Delete(ctx context.Context, id string, operationID string) (string, error) {
	return remove(ctx, s.base, s.repo, model.ModelTypeConfig, id, operationID)
}

func (s *ConfigService) GetByID(ctx context.Context, id string) (*model.Config, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ConfigService) List(ctx context.Context) ([]model.Config, error) {
	return s.repo.List(ctx)
}

func (s *ConfigService) GetByDeploymentID(ctx context.Context, deploymentID string) ([]model.Config, error) {
	return s.repo.GetByDeploymentID(ctx, deploymentID)
}

func (s *ConfigService) GetByWorkloadID(ctx context.Context, workloadID string) ([]model.Config, error) {
	return s.repo.GetByWorkloadID(ctx, workloadID)
}

func (s *ConfigService) GetByTemplateID(ctx context.Context, templateID string) ([]model.Config, error) {
	return s.repo.GetByTemplateID(ctx, templateID)
}
