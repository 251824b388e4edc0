// Package reconciler recomputes the Assignment relation whenever a
// Deployment, Host, or Target changes, turning each change into the
// minimal set of Assignment creates and deletes that bring reality back
// in line with desired state.
package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/log"
	"github.com/cuemby/fabriq/internal/metrics"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/service"
	"github.com/cuemby/fabriq/internal/storage"
	"github.com/rs/zerolog"
)

// Reconciler holds the storage and service handles it needs to read
// current state and write assignment changes.
type Reconciler struct {
	store    *storage.Store
	services *service.Services
	logger   zerolog.Logger
}

// New constructs a Reconciler over store and services.
func New(store *storage.Store, services *service.Services) *Reconciler {
	return &Reconciler{store: store, services: services, logger: log.WithComponent("reconciler")}
}

// Process dispatches ev by its model type. Assignment, Config, Template,
// and Workload events are acknowledged without side effects: none of
// them changes which hosts a deployment's target matches or how many
// hosts the deployment asks for.
func (r *Reconciler) Process(ctx context.Context, ev model.Event) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReconciliationDuration)

	err := r.dispatch(ctx, ev)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ReconciliationEventsTotal.WithLabelValues(string(ev.ModelType), outcome).Inc()
	return err
}

func (r *Reconciler) dispatch(ctx context.Context, ev model.Event) error {
	switch ev.ModelType {
	case model.ModelTypeAssignment, model.ModelTypeConfig, model.ModelTypeTemplate, model.ModelTypeWorkload:
		return nil
	case model.ModelTypeDeployment:
		return r.processDeploymentEvent(ctx, ev)
	case model.ModelTypeHost:
		return r.processHostEvent(ctx, ev)
	case model.ModelTypeTarget:
		return r.processTargetEvent(ctx, ev)
	default:
		return errs.FatalEvent("unsupported model type: %s", ev.ModelType)
	}
}

func decode[M any](raw []byte) (*M, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m M
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	return &m, nil
}

func (r *Reconciler) processDeploymentEvent(ctx context.Context, ev model.Event) error {
	deployment, err := decode[model.Deployment](ev.CurrentModel)
	if err != nil {
		return err
	}
	if deployment == nil {
		deployment, err = decode[model.Deployment](ev.PreviousModel)
		if err != nil {
			return err
		}
	}
	if deployment == nil {
		return errs.FatalEvent("deployment event carries neither current nor previous model")
	}

	target, err := r.store.Targets.GetByID(ctx, deployment.TargetID)
	if err != nil {
		return err
	}
	if target == nil {
		return errs.NotFound("target %s not found for deployment %s", deployment.TargetID, deployment.ID)
	}

	desiredHostCount := int(deployment.HostCount)
	if ev.EventType == model.EventTypeDeleted {
		desiredHostCount = 0
	}

	return r.reconcileDeployment(ctx, *deployment, *target, desiredHostCount, ev.OperationID)
}

func (r *Reconciler) reconcileDeployment(ctx context.Context, deployment model.Deployment, target model.Target, desiredHostCount int, operationID string) error {
	hosts, err := r.store.Hosts.GetMatchingTarget(ctx, target)
	if err != nil {
		return err
	}
	existing, err := r.store.Assignments.GetByDeploymentID(ctx, deployment.ID)
	if err != nil {
		return err
	}

	toCreate, toDelete := diffAssignments(deployment, existing, hosts, desiredHostCount)

	r.logger.Debug().
		Str("deployment_id", deployment.ID).
		Int("to_create", len(toCreate)).
		Int("to_delete", len(toDelete)).
		Msg("reconciled deployment")

	if err := r.services.Assignments.UpsertMany(ctx, toCreate, operationID); err != nil {
		return err
	}
	metrics.AssignmentsCreatedTotal.Add(float64(len(toCreate)))

	ids := make([]string, len(toDelete))
	for i, a := range toDelete {
		ids[i] = a.ID
	}
	if err := r.services.Assignments.DeleteMany(ctx, ids, operationID); err != nil {
		return err
	}
	metrics.AssignmentsDeletedTotal.Add(float64(len(toDelete)))

	return nil
}

func (r *Reconciler) processHostEvent(ctx context.Context, ev model.Event) error {
	spanning := map[string]model.Target{}

	if previous, err := decode[model.Host](ev.PreviousModel); err != nil {
		return err
	} else if previous != nil {
		targets, err := r.store.Targets.GetMatchingHost(ctx, *previous)
		if err != nil {
			return err
		}
		for _, t := range targets {
			spanning[t.ID] = t
		}
	}

	if current, err := decode[model.Host](ev.CurrentModel); err != nil {
		return err
	} else if current != nil {
		targets, err := r.store.Targets.GetMatchingHost(ctx, *current)
		if err != nil {
			return err
		}
		for _, t := range targets {
			spanning[t.ID] = t
		}
	}

	targets := make([]model.Target, 0, len(spanning))
	for _, t := range spanning {
		targets = append(targets, t)
	}
	return r.updateDeploymentsForTargets(ctx, targets, ev.OperationID)
}

func (r *Reconciler) processTargetEvent(ctx context.Context, ev model.Event) error {
	var targets []model.Target

	if previous, err := decode[model.Target](ev.PreviousModel); err != nil {
		return err
	} else if previous != nil {
		targets = append(targets, *previous)
	}
	if current, err := decode[model.Target](ev.CurrentModel); err != nil {
		return err
	} else if current != nil {
		targets = append(targets, *current)
	}

	return r.updateDeploymentsForTargets(ctx, targets, ev.OperationID)
}

func (r *Reconciler) updateDeploymentsForTargets(ctx context.Context, targets []model.Target, operationID string) error {
	for _, target := range targets {
		deployments, err := r.store.Deployments.GetByTargetID(ctx, target.ID)
		if err != nil {
			return err
		}
		for _, deployment := range deployments {
			if err := r.reconcileDeployment(ctx, deployment, target, int(deployment.HostCount), operationID); err != nil {
				return err
			}
		}
	}
	return nil
}
