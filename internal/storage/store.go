// Package storage defines fabriq's persistence port: a uniform
// upsert/delete/list/get surface per entity kind plus the relation
// queries the reconciler and config resolver need, with deterministic
// id semantics. Two adapters implement it: storage/memory for tests and
// embedded use, storage/postgres for production.
package storage

import (
	"context"

	"github.com/cuemby/fabriq/internal/model"
)

// Repository is the uniform CRUD surface every entity kind exposes.
// Upsert returns the number of affected rows: 1 if the record was newly
// inserted or its content changed, 0 if a byte-identical record already
// existed — the gate services use to decide whether to emit an event.
type Repository[M any] interface {
	Upsert(ctx context.Context, m M) (affected int, err error)
	Delete(ctx context.Context, id string) (affected int, err error)
	List(ctx context.Context) ([]M, error)
	GetByID(ctx context.Context, id string) (*M, error)
}

// TemplateRepository is the Template persistence surface.
type TemplateRepository interface {
	Repository[model.Template]
}

// WorkloadRepository is the Workload persistence surface.
type WorkloadRepository interface {
	Repository[model.Workload]
	GetByTemplateID(ctx context.Context, templateID string) ([]model.Workload, error)
}

// TargetRepository is the Target persistence surface.
type TargetRepository interface {
	Repository[model.Target]
	// GetMatchingHost returns every target whose label selector is a
	// subset of host's labels.
	GetMatchingHost(ctx context.Context, host model.Host) ([]model.Target, error)
}

// HostRepository is the Host persistence surface.
type HostRepository interface {
	Repository[model.Host]
	// GetMatchingTarget returns every host whose labels are a superset
	// of target's label selector.
	GetMatchingTarget(ctx context.Context, target model.Target) ([]model.Host, error)
}

// DeploymentRepository is the Deployment persistence surface.
type DeploymentRepository interface {
	Repository[model.Deployment]
	GetByTargetID(ctx context.Context, targetID string) ([]model.Deployment, error)
	GetByTemplateID(ctx context.Context, templateID string) ([]model.Deployment, error)
	GetByWorkloadID(ctx context.Context, workloadID string) ([]model.Deployment, error)
}

// AssignmentRepository is the Assignment persistence surface.
type AssignmentRepository interface {
	Repository[model.Assignment]
	GetByDeploymentID(ctx context.Context, deploymentID string) ([]model.Assignment, error)
}

// ConfigRepository is the Config persistence surface.
type ConfigRepository interface {
	Repository[model.Config]
	GetByDeploymentID(ctx context.Context, deploymentID string) ([]model.Config, error)
	GetByWorkloadID(ctx context.Context, workloadID string) ([]model.Config, error)
	GetByTemplateID(ctx context.Context, templateID string) ([]model.Config, error)
}

// Store aggregates one repository per entity kind. Both the memory and
// postgres adapters construct a Store with identical semantics.
type Store struct {
	Templates   TemplateRepository
	Workloads   WorkloadRepository
	Targets     TargetRepository
	Hosts       HostRepository
	Deployments DeploymentRepository
	Assignments AssignmentRepository
	Configs     ConfigRepository
}
