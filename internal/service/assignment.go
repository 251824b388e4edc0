package service

import (
	"context"

	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// AssignmentService is the write path for Assignment records. Unlike the
// other services, its callers are almost always the reconciler writing a
// whole diff at once, so UpsertMany/DeleteMany are first-class.
type AssignmentService struct {
	base
	repo storage.AssignmentRepository
}

func (s *AssignmentService) Upsert(ctx context.Context, m model.Assignment, operationID string) (string, error) {
	return upsert(ctx, s.base, s.repo, model.ModelTypeAssignment, m.ID, m, operationID)
}

func (s *AssignmentService) Delete(ctx context.Context, id string, operationID string) (string, error) {
	return remove(ctx, s.base, s.repo, model.ModelTypeAssignment, id, operationID)
}

// UpsertMany writes each assignment in order under operationID, stopping
// at the first error. The reconciler calls this with its diff and the
// triggering event's operation id, so every
// assignment event it produces carries that id for tracing, and partial
// application on error still leaves a consistent prefix.
func (s *AssignmentService) UpsertMany(ctx context.Context, assignments []model.Assignment, operationID string) error {
	for _, a := range assignments {
		if _, err := s.Upsert(ctx, a, operationID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMany removes each assignment id in order under operationID.
func (s *AssignmentService) DeleteMany(ctx context.Context, ids []string, operationID string) error {
	for _, id := range ids {
		if _, err := s.Delete(ctx, id, operationID); err != nil {
			return err
		}
	}
	return nil
}

func (s *AssignmentService) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AssignmentService) List(ctx context.Context) ([]model.Assignment, error) {
	return s.repo.List(ctx)
}

func (s *AssignmentService) GetByDeploymentID(ctx context.Context, deploymentID string) ([]model.Assignment, error) {
	return s.repo.GetByDeploymentID(ctx, deploymentID)
}
