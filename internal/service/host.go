package service

import (
	"context"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// HostService is the write path for Host records.
type HostService struct {
	base
	repo storage.HostRepository
}

func (s *HostService) Upsert(ctx context.Context, m model.Host, operationID string) (string, error) {
	if m.ID == "" {
		return "", errs.Validation("host id is required")
	}
	return upsert(ctx, s.base, s.repo, model.ModelTypeHost, m.ID, m, operationID)
}

func (s *HostService) Delete(ctx context.Context, id string, operationID string) (string, error) {
	return remove(ctx, s.base, s.repo, model.ModelTypeHost, id, operationID)
}

func (s *HostService) GetByID(ctx context.Context, id string) (*model.Host, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *HostService) List(ctx context.Context) ([]model.Host, error) {
	return s.repo.List(ctx)
}
