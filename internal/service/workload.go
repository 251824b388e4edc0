package service

import (
	"context"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// WorkloadService is the write path for Workload records.
type WorkloadService struct {
	base
	repo      storage.WorkloadRepository
	templates storage.TemplateRepository
}

func (s *WorkloadService) Upsert(ctx context.Context, m model.Workload, operationID string) (string, error) {
	if m.Name == "" {
		return "", errs.Validation("workload name is required")
	}
	if err := model.ValidateTeamID(m.TeamID); err != nil {
		return "", errs.Validation("workload %s: %v", m.Name, err)
	}
	if m.TemplateID != "" {
		tmpl, err := s.templates.GetByID(ctx, m.TemplateID)
		if err != nil {
			return "", err
		}
		if tmpl == nil {
			return "", errs.Validation("workload %s: template %s does not exist", m.Name, m.TemplateID)
		}
	}
	m.ID = model.MakeWorkloadID(m.TeamID, m.Name)
	return upsert(ctx, s.base, s.repo, model.ModelTypeWorkload, m.ID, m, operationID)
}

func (s *WorkloadService) Delete(ctx context.Context, id string, operationID string) (string, error) {
	return remove(ctx, s.base, s.repo, model.ModelTypeWorkload, id, operationID)
}

func (s *WorkloadService) GetByID(ctx context.Context, id string) (*model.Workload, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *WorkloadService) List(ctx context.Context) ([]model.Workload, error) {
	return s.repo.List(ctx)
}

func (s *WorkloadService) GetByTemplateID(ctx context.Context, templateID string) ([]model.Workload, error) {
	return s.repo.GetByTemplateID(ctx, templateID)
}
