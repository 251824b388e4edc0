package service

import (
	"context"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// TargetService is the write path for Target records.
type TargetService struct {
	base
	repo storage.TargetRepository
}

func (s *TargetService) Upsert(ctx context.Context, m model.Target, operationID string) (string, error) {
	if m.ID == "" {
		return "", errs.Validation("target id is required")
	}
	return upsert(ctx, s.base, s.repo, model.ModelTypeTarget, m.ID, m, operationID)
}

func (s *TargetService) Delete(ctx context.Context, id string, operationID string) (string, error) {
	return remove(ctx, s.base, s.repo, model.ModelTypeTarget, id, operationID)
}

func (s *TargetService) GetByID(ctx context.Context, id string) (*model.Target, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TargetService) List(ctx context.Context) ([]model.Target, error) {
	return s.repo.List(ctx)
}
