// Package memory implements storage.Store over in-memory maps, for tests
// and embedded use: a mutex-guarded map per entity, with
// reflect.DeepEqual standing in for the byte-identity check a
// disk-backed store would do via its encoded form.
package memory

import (
	"context"
	"reflect"
	"sync"

	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// table is the generic core every per-entity repository wraps.
type table[M any] struct {
	mu   sync.Mutex
	rows map[string]M
}

func newTable[M any]() *table[M] {
	return &table[M]{rows: make(map[string]M)}
}

func (t *table[M]) upsert(id string, m M) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.rows[id]
	if ok && reflect.DeepEqual(existing, m) {
		return 0
	}
	t.rows[id] = m
	return 1
}

func (t *table[M]) delete(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return 0
	}
	delete(t.rows, id)
	return 1
}

func (t *table[M]) list() []M {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]M, 0, len(t.rows))
	for _, m := range t.rows {
		out = append(out, m)
	}
	return out
}

func (t *table[M]) getByID(id string) (*M, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	cp := m
	return &cp, true
}

// New constructs a fully in-memory storage.Store.
func New() *storage.Store {
	return &storage.Store{
		Templates:   &templateRepo{t: newTable[model.Template]()},
		Workloads:   &workloadRepo{t: newTable[model.Workload]()},
		Targets:     &targetRepo{t: newTable[model.Target]()},
		Hosts:       &hostRepo{t: newTable[model.Host]()},
		Deployments: &deploymentRepo{t: newTable[model.Deployment]()},
		Assignments: &assignmentRepo{t: newTable[model.Assignment]()},
		Configs:     &configRepo{t: newTable[model.Config]()},
	}
}

type templateRepo struct{ t *table[model.Template] }

func (r *templateRepo) Upsert(_ context.Context, m model.Template) (int, error) {
	return r.t.upsert(m.ID, m), nil
}
func (r *templateRepo) Delete(_ context.Context, id string) (int, error) {
	return r.t.delete(id), nil
}
func (r *templateRepo) List(_ context.Context) ([]model.Template, error) {
	return r.t.list(), nil
}
func (r *templateRepo) GetByID(_ context.Context, id string) (*model.Template, error) {
	m, _ := r.t.getByID(id)
	return m, nil
}

type workloadRepo struct{ t *table[model.Workload] }

func (r *workloadRepo) Upsert(_ context.Context, m model.Workload) (int, error) {
	return r.t.upsert(m.ID, m), nil
}
func (r *workloadRepo) Delete(_ context.Context, id string) (int, error) {
	return r.t.delete(id), nil
}
func (r *workloadRepo) List(_ context.Context) ([]model.Workload, error) {
	return r.t.list(), nil
}
func (r *workloadRepo) GetByID(_ context.Context, id string) (*model.Workload, error) {
	m, _ := r.t.getByID(id)
	return m, nil
}
func (r *workloadRepo) GetByTemplateID(_ context.Context, templateID string) ([]model.Workload, error) {
	var out []model.Workload
	for _, w := range r.t.list() {
		if w.TemplateID == templateID {
			out = append(out, w)
		}
	}
	return out, nil
}

type targetRepo struct{ t *table[model.Target] }

func (r *targetRepo) Upsert(_ context.Context, m model.Target) (int, error) {
	return r.t.upsert(m.ID, m), nil
}
func (r *targetRepo) Delete(_ context.Context, id string) (int, error) {
	return r.t.delete(id), nil
}
func (r *targetRepo) List(_ context.Context) ([]model.Target, error) {
	return r.t.list(), nil
}
func (r *targetRepo) GetByID(_ context.Context, id string) (*model.Target, error) {
	m, _ := r.t.getByID(id)
	return m, nil
}
func (r *targetRepo) GetMatchingHost(_ context.Context, host model.Host) ([]model.Target, error) {
	var out []model.Target
	for _, t := range r.t.list() {
		if model.LabelsContain(t.Labels, host.Labels) {
			out = append(out, t)
		}
	}
	return out, nil
}

type hostRepo struct{ t *table[model.Host] }

func (r *hostRepo) Upsert(_ context.Context, m model.Host) (int, error) {
	return r.t.upsert(m.ID, m), nil
}
func (r *hostRepo) Delete(_ context.Context, id string) (int, error) {
	return r.t.delete(id), nil
}
func (r *hostRepo) List(_ context.Context) ([]model.Host, error) {
	return r.t.list(), nil
}
func (r *hostRepo) GetByID(_ context.Context, id string) (*model.Host, error) {
	m, _ := r.t.getByID(id)
	return m, nil
}
func (r *hostRepo) GetMatchingTarget(_ context.Context, target model.Target) ([]model.Host, error) {
	var out []model.Host
	for _, h := range r.t.list() {
		if model.LabelsContain(target.Labels, h.Labels) {
			out = append(out, h)
		}
	}
	return out, nil
}

type deploymentRepo struct{ t *table[model.Deployment] }

func (r *deploymentRepo) Upsert(_ context.Context, m model.Deployment) (int, error) {
	return r.t.upsert(m.ID, m), nil
}
func (r *deploymentRepo) Delete(_ context.Context, id string) (int, error) {
	return r.t.delete(id), nil
}
func (r *deploymentRepo) List(_ context.Context) ([]model.Deployment, error) {
	return r.t.list(), nil
}
func (r *deploymentRepo) GetByID(_ context.Context, id string) (*model.Deployment, error) {
	m, _ := r.t.getByID(id)
	return m, nil
}
func (r *deploymentRepo) GetByTargetID(_ context.Context, targetID string) ([]model.Deployment, error) {
	var out []model.Deployment
	for _, d := range r.t.list() {
		if d.TargetID == targetID {
			out = append(out, d)
		}
	}
	return out, nil
}
func (r *deploymentRepo) GetByTemplateID(_ context.Context, templateID string) ([]model.Deployment, error) {
	var out []model.Deployment
	for _, d := range r.t.list() {
		if d.TemplateID != nil && *d.TemplateID == templateID {
			out = append(out, d)
		}
	}
	return out, nil
}
func (r *deploymentRepo) GetByWorkloadID(_ context.Context, workloadID string) ([]model.Deployment, error) {
	var out []model.Deployment
	for _, d := range r.t.list() {
		if d.WorkloadID == workloadID {
			out = append(out, d)
		}
	}
	return out, nil
}

type assignmentRepo struct{ t *table[model.Assignment] }

func (r *assignmentRepo) Upsert(_ context.Context, m model.Assignment) (int, error) {
	return r.t.upsert(m.ID, m), nil
}
func (r *assignmentRepo) Delete(_ context.Context, id string) (int, error) {
	return r.t.delete(id), nil
}
func (r *assignmentRepo) List(_ context.Context) ([]model.Assignment, error) {
	return r.t.list(), nil
}
func (r *assignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	m, _ := r.t.getByID(id)
	return m, nil
}
func (r *assignmentRepo) GetByDeploymentID(_ context.Context, deploymentID string) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range r.t.list() {
		if a.DeploymentID == deploymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type configRepo struct{ t *table[model.Config] }

func (r *configRepo) Upsert(_ context.Context, m model.Config) (int, error) {
	return r.t.upsert(m.ID, m), nil
}
func (r *configRepo) Delete(_ context.Context, id string) (int, error) {
	return r.t.delete(id), nil
}
func (r *configRepo) List(_ context.Context) ([]model.Config, error) {
	return r.t.list(), nil
}
func (r *configRepo) GetByID(_ context.Context, id string) (*model.Config, error) {
	m, _ := r.t.getByID(id)
	return m, nil
}
func (r *configRepo) byOwner(kind, id string) []model.Config {
	owner, err := model.MakeOwningModel(kind, id)
	if err != nil {
		return nil
	}
	var out []model.Config
	for _, c := range r.t.list() {
		if c.OwningModel == owner {
			out = append(out, c)
		}
	}
	return out
}
func (r *configRepo) GetByDeploymentID(_ context.Context, deploymentID string) ([]model.Config, error) {
	return r.byOwner(model.OwnerDeployment, deploymentID), nil
}
func (r *configRepo) GetByWorkloadID(_ context.Context, workloadID string) ([]model.Config, error) {
	return r.byOwner(model.OwnerWorkload, workloadID), nil
}
func (r *configRepo) GetByTemplateID(_ context.Context, templateID string) ([]model.Config, error) {
	return r.byOwner(model.OwnerTemplate, templateID), nil
}
