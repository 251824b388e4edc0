// Package configresolver computes effective configuration by layering
// Config records from a template, a workload, and (for the deployment
// scope) the deployment itself, each overlay overwriting keys the
// previous layer set.
package configresolver

import (
	"context"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// Resolver resolves effective configuration against one of three scope
// kinds: a bare template, a workload overlaid on its template, or a
// deployment overlaid on its workload and effective template.
type Resolver struct {
	store *storage.Store
}

// New constructs a Resolver over store.
func New(store *storage.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolved is one effective key, carrying the id of the Config record
// that ultimately won the merge so callers can explain precedence.
type Resolved struct {
	Value     string
	ValueType model.ConfigValueType
	SourceID  string
}

// Query resolves the effective configuration for (scopeKind, scopeID),
// the three modes named by the wire Config.query endpoint: "template"
// returns a template's direct configs, "workload" overlays a workload's
// configs on its template's, and "deployment" overlays a deployment's
// configs on its workload's and effective template's.
func (r *Resolver) Query(ctx context.Context, scopeKind, scopeID string) (map[string]Resolved, error) {
	switch scopeKind {
	case model.OwnerTemplate:
		return r.ResolveTemplate(ctx, scopeID)
	case model.OwnerWorkload:
		return r.ResolveWorkload(ctx, scopeID)
	case model.OwnerDeployment:
		deployment, err := r.store.Deployments.GetByID(ctx, scopeID)
		if err != nil {
			return nil, err
		}
		if deployment == nil {
			return nil, errs.NotFound("deployment %s not found", scopeID)
		}
		return r.Resolve(ctx, *deployment)
	default:
		return nil, errs.Validation("unknown config scope kind %q", scopeKind)
	}
}

// ResolveTemplate returns templateID's direct configs, unlayered.
func (r *Resolver) ResolveTemplate(ctx context.Context, templateID string) (map[string]Resolved, error) {
	template, err := r.store.Templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, errs.NotFound("template %s not found", templateID)
	}
	effective := map[string]Resolved{}
	configs, err := r.store.Configs.GetByTemplateID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	applyLayer(effective, configs)
	return effective, nil
}

// ResolveWorkload returns workloadID's template configs overlaid with
// its own workload configs.
func (r *Resolver) ResolveWorkload(ctx context.Context, workloadID string) (map[string]Resolved, error) {
	workload, err := r.store.Workloads.GetByID(ctx, workloadID)
	if err != nil {
		return nil, err
	}
	if workload == nil {
		return nil, errs.NotFound("workload %s not found", workloadID)
	}
	effective := map[string]Resolved{}
	if err := r.applyTemplateLayer(ctx, effective, workload.TemplateID); err != nil {
		return nil, err
	}
	workloadConfigs, err := r.store.Configs.GetByWorkloadID(ctx, workload.ID)
	if err != nil {
		return nil, err
	}
	applyLayer(effective, workloadConfigs)
	return effective, nil
}

// Resolve returns deployment's effective configuration: template layer,
// then workload layer, then deployment layer, each later layer
// overwriting keys the earlier layers set.
func (r *Resolver) Resolve(ctx context.Context, deployment model.Deployment) (map[string]Resolved, error) {
	effective := map[string]Resolved{}

	workload, err := r.store.Workloads.GetByID(ctx, deployment.WorkloadID)
	if err != nil {
		return nil, err
	}
	workloadTemplateID := ""
	if workload != nil {
		workloadTemplateID = workload.TemplateID
	}
	templateID := deployment.EffectiveTemplateID(workloadTemplateID)

	if err := r.applyTemplateLayer(ctx, effective, templateID); err != nil {
		return nil, err
	}

	if workload != nil {
		workloadConfigs, err := r.store.Configs.GetByWorkloadID(ctx, workload.ID)
		if err != nil {
			return nil, err
		}
		applyLayer(effective, workloadConfigs)
	}

	deploymentConfigs, err := r.store.Configs.GetByDeploymentID(ctx, deployment.ID)
	if err != nil {
		return nil, err
	}
	applyLayer(effective, deploymentConfigs)

	return effective, nil
}

func (r *Resolver) applyTemplateLayer(ctx context.Context, effective map[string]Resolved, templateID string) error {
	if templateID == "" {
		return nil
	}
	templateConfigs, err := r.store.Configs.GetByTemplateID(ctx, templateID)
	if err != nil {
		return err
	}
	applyLayer(effective, templateConfigs)
	return nil
}

func applyLayer(effective map[string]Resolved, layer []model.Config) {
	for _, c := range layer {
		effective[c.Key] = Resolved{Value: c.Value, ValueType: c.ValueType, SourceID: c.ID}
	}
}
