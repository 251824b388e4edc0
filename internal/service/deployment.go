package service

import (
	"context"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// DeploymentService is the write path for Deployment records.
type DeploymentService struct {
	base
	repo      storage.DeploymentRepository
	workloads storage.WorkloadRepository
	targets   storage.TargetRepository
}

func (s *DeploymentService) Upsert(ctx context.Context, m model.Deployment, operationID string) (string, error) {
	if m.Name == "" {
		return "", errs.Validation("deployment name is required")
	}
	if m.HostCount < 0 || m.HostCount > model.MaxHostCount {
		return "", errs.Validation("deployment %s: host_count out of range", m.Name)
	}
	workload, err := s.workloads.GetByID(ctx, m.WorkloadID)
	if err != nil {
		return "", err
	}
	if workload == nil {
		return "", errs.Validation("deployment %s: workload %s does not exist", m.Name, m.WorkloadID)
	}
	target, err := s.targets.GetByID(ctx, m.TargetID)
	if err != nil {
		return "", err
	}
	if target == nil {
		return "", errs.Validation("deployment %s: target %s does not exist", m.Name, m.TargetID)
	}
	m.ID = model.MakeDeploymentID(m.WorkloadID, m.Name)
	return upsert(ctx, s.base, s.repo, model.ModelTypeDeployment, m.ID, m, operationID)
}

func (s *DeploymentService) Delete(ctx context.Context, id string, operationID string) (string, error) {
	return remove(ctx, s.base, s.repo, model.ModelTypeDeployment, id, operationID)
}

func (s *DeploymentService) GetByID(ctx context.Context, id string) (*model.Deployment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DeploymentService) List(ctx context.Context) ([]model.Deployment, error) {
	return s.repo.List(ctx)
}

func (s *DeploymentService) GetByTargetID(ctx context.Context, targetID string) ([]model.Deployment, error) {
	return s.repo.GetByTargetID(ctx, targetID)
}

func (s *DeploymentService) GetByTemplateID(ctx context.Context, templateID string) ([]model.Deployment, error) {
	return s.repo.GetByTemplateID(ctx, templateID)
}

func (s *DeploymentService) GetByWorkloadID(ctx context.Context, workloadID string) ([]model.Deployment, error) {
	return s.repo.GetByWorkloadID(ctx, workloadID)
}
