package service

import (
	"context"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// TemplateService is the write path for Template records.
type TemplateService struct {
	base
	repo storage.TemplateRepository
}

func (s *TemplateService) Upsert(ctx context.Context, m model.Template, operationID string) (string, error) {
	if m.ID == "" {
		return "", errs.Validation("template id is required")
	}
	if m.Repository == "" || m.GitRef == "" || m.Path == "" {
		return "", errs.Validation("template %s: repository, git_ref and path are required", m.ID)
	}
	return upsert(ctx, s.base, s.repo, model.ModelTypeTemplate, m.ID, m, operationID)
}

func (s *TemplateService) Delete(ctx context.Context, id string, operationID string) (string, error) {
	return remove(ctx, s.base, s.repo, model.ModelTypeTemplate, id, operationID)
}

func (s *TemplateService) GetByID(ctx context.Context, id string) (*model.Template, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TemplateService) List(ctx context.Context) ([]model.Template, error) {
	return s.repo.List(ctx)
}
