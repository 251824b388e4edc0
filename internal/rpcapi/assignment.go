package rpcapi

import (
	"context"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/service"
)

// AssignmentServer wraps service.AssignmentService to satisfy
// fabriqpb.EntityServer[model.Assignment], rejecting the two mutating
// methods: the reconciler is the only writer of assignments, RPC
// clients only ever Get or List them.
type AssignmentServer struct {
	assignments *service.AssignmentService
}

// NewAssignmentServer wraps assignments.
func NewAssignmentServer(assignments *service.AssignmentService) *AssignmentServer {
	return &AssignmentServer{assignments: assignments}
}

func (s *AssignmentServer) Upsert(ctx context.Context, m model.Assignment, operationID string) (string, error) {
	return "", errs.PermissionDenied("assignments are reconciler-managed and cannot be written over RPC")
}

func (s *AssignmentServer) Delete(ctx context.Context, id string, operationID string) (string, error) {
	return "", errs.PermissionDenied("assignments are reconciler-managed and cannot be deleted over RPC")
}

func (s *AssignmentServer) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	return s.assignments.GetByID(ctx, id)
}

func (s *AssignmentServer) List(ctx context.Context) ([]model.Assignment, error) {
	return s.assignments.List(ctx)
}
