// Package service implements the write path for every entity: validate,
// upsert or delete against storage, and emit a fanout event to every
// configured subscriber whenever the write actually changed persisted
// state.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/eventstream"
	"github.com/cuemby/fabriq/internal/metrics"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// Services aggregates one service per entity kind, sharing a store,
// event stream, and subscriber list.
type Services struct {
	Templates   *TemplateService
	Workloads   *WorkloadService
	Targets     *TargetService
	Hosts       *HostService
	Deployments *DeploymentService
	Assignments *AssignmentService
	Configs     *ConfigService
}

// New wires one service per entity against store and stream, fanning
// every emitted event out to subscribers.
func New(store *storage.Store, stream eventstream.Stream, subscribers []string) *Services {
	base := base{stream: stream, subscribers: subscribers}
	return &Services{
		Templates:   &TemplateService{base: base, repo: store.Templates},
		Workloads:   &WorkloadService{base: base, repo: store.Workloads, templates: store.Templates},
		Targets:     &TargetService{base: base, repo: store.Targets},
		Hosts:       &HostService{base: base, repo: store.Hosts},
		Deployments: &DeploymentService{base: base, repo: store.Deployments, workloads: store.Workloads, targets: store.Targets},
		Assignments: &AssignmentService{base: base, repo: store.Assignments},
		Configs:     &ConfigService{base: base, repo: store.Configs},
	}
}

// base carries the event-emission plumbing shared by every service.
type base struct {
	stream      eventstream.Stream
	subscribers []string
}

// emit sends the event under operationID, which the caller has already
// resolved to either the caller-supplied id or a freshly minted one, so
// every event an operation produces — including the reconciler's
// downstream assignment writes — carries the same id for tracing.
func (b base) emit(ctx context.Context, operationID string, modelType model.ModelType, eventType model.EventType, previous, current []byte) error {
	ev := model.Event{
		OperationID:   operationID,
		Timestamp:     time.Now().UTC(),
		ModelType:     modelType,
		EventType:     eventType,
		PreviousModel: previous,
		CurrentModel:  current,
	}
	if err := b.stream.Send(ctx, ev, b.subscribers); err != nil {
		return err
	}
	metrics.EventsSentTotal.WithLabelValues(string(modelType), string(eventType)).
		Add(float64(len(b.subscribers)))
	return nil
}

// resolveOperationID returns operationID unchanged if the caller supplied
// one, else mints a fresh UUIDv4.
func resolveOperationID(operationID string) string {
	if operationID != "" {
		return operationID
	}
	return uuid.NewString()
}

// upsert runs repo.Upsert and emits a Created or Updated event exactly
// when the write affected a row, matching the affected-count gate
// storage's Repository.Upsert documents. It always returns the
// operation id used, so the caller can report it even on a no-op write.
func upsert[M any](ctx context.Context, b base, repo storage.Repository[M], modelType model.ModelType, id string, m M, operationID string) (string, error) {
	operationID = resolveOperationID(operationID)
	prev, err := repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	affected, err := repo.Upsert(ctx, m)
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return operationID, nil
	}
	eventType := model.EventTypeUpdated
	var prevBytes []byte
	if prev == nil {
		eventType = model.EventTypeCreated
	} else if prevBytes, err = json.Marshal(prev); err != nil {
		return "", err
	}
	curBytes, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	if err := b.emit(ctx, operationID, modelType, eventType, prevBytes, curBytes); err != nil {
		return "", err
	}
	return operationID, nil
}

// remove runs repo.Delete and emits a Deleted event exactly when the
// record existed and was removed.
func remove[M any](ctx context.Context, b base, repo storage.Repository[M], modelType model.ModelType, id string, operationID string) (string, error) {
	operationID = resolveOperationID(operationID)
	prev, err := repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if prev == nil {
		return "", errs.NotFound("%s not found: %s", modelType, id)
	}
	affected, err := repo.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return operationID, nil
	}
	prevBytes, err := json.Marshal(prev)
	if err != nil {
		return "", err
	}
	if err := b.emit(ctx, operationID, modelType, model.EventTypeDeleted, prevBytes, nil); err != nil {
		return "", err
	}
	return operationID, nil
}
