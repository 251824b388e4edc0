package gitops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/cuemby/fabriq/internal/configresolver"
	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/log"
	"github.com/cuemby/fabriq/internal/metrics"
	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

// Author identifies the committer fabriqd's GitOps processor writes
// commits as.
const (
	authorName  = "fabriq-gitops"
	authorEmail = "fabriq-gitops@cuemby.dev"
)

// Processor renders the manifest tree for every affected deployment as
// Deployment and Assignment events arrive, then commits and pushes the
// result. Host, Template, Workload and Config events are acknowledged
// without rendering anything. Target events are a no-op too: the
// reconciler already turns target changes into Assignment churn, which
// this processor reacts to instead.
type Processor struct {
	repo      Repo
	store     *storage.Store
	resolver  *configresolver.Resolver
	templates string // local directory template repos are cloned into
	sshKey    string
	logger    zerolog.Logger
}

// New wires a Processor over repo (the already-cloned GitOps working
// tree) and store.
func New(repo Repo, store *storage.Store, templatesDir, sshKeyPath string) *Processor {
	return &Processor{
		repo:      repo,
		store:     store,
		resolver:  configresolver.New(store),
		templates: templatesDir,
		sshKey:    sshKeyPath,
		logger:    log.WithComponent("gitops"),
	}
}

// Process dispatches a single event by model type.
func (p *Processor) Process(ctx context.Context, ev model.Event) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.GitOpsRenderDuration)

	switch ev.ModelType {
	case model.ModelTypeAssignment:
		return p.processAssignmentEvent(ctx, ev)
	case model.ModelTypeDeployment:
		return p.processDeploymentEvent(ctx, ev)
	case model.ModelTypeHost, model.ModelTypeTemplate, model.ModelTypeWorkload:
		p.logger.Debug().Str("model_type", string(ev.ModelType)).Msg("nop event")
		return nil
	case model.ModelTypeTarget:
		p.logger.Debug().Msg("target event => nop, reconciler materializes as assignment churn")
		return nil
	case model.ModelTypeConfig:
		return nil
	default:
		return errs.FatalEvent("gitops: unsupported model type %q", ev.ModelType)
	}
}

func decode[M any](raw []byte) (*M, error) {
	if len(raw) == 0 {
		return nil, errs.FatalEvent("gitops: event carries no model snapshot")
	}
	var m M
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errs.FatalEvent("gitops: decode %T: %v", m, err)
	}
	return &m, nil
}

func deploymentPath(teamID, workloadID, deploymentID string) string {
	return path.Join("deployments", teamID, workloadID, deploymentID)
}

func assignmentPath(hostID, teamID, workloadID, deploymentID string) string {
	return path.Join("hosts", hostID, teamID, workloadID, deploymentID, "kustomization.yaml")
}

func (p *Processor) deploymentContext(ctx context.Context, deploymentID string) (deployment model.Deployment, workload model.Workload, err error) {
	d, err := p.store.Deployments.GetByID(ctx, deploymentID)
	if err != nil {
		return deployment, workload, err
	}
	if d == nil {
		return deployment, workload, errs.FatalEvent("gitops: deployment %s not found", deploymentID)
	}
	w, err := p.store.Workloads.GetByID(ctx, d.WorkloadID)
	if err != nil {
		return deployment, workload, err
	}
	if w == nil {
		return deployment, workload, errs.FatalEvent("gitops: workload %s not found", d.WorkloadID)
	}
	return *d, *w, nil
}

func (p *Processor) processAssignmentEvent(ctx context.Context, ev model.Event) error {
	raw := ev.CurrentModel
	if len(raw) == 0 {
		raw = ev.PreviousModel
	}
	assignment, err := decode[model.Assignment](raw)
	if err != nil {
		return err
	}

	deployment, workload, err := p.deploymentContext(ctx, assignment.DeploymentID)
	if err != nil {
		return err
	}

	relPath := assignmentPath(assignment.HostID, workload.TeamID, workload.ID, deployment.ID)

	switch ev.EventType {
	case model.EventTypeCreated, model.EventTypeUpdated:
		depPath := deploymentPath(workload.TeamID, workload.ID, deployment.ID)
		relDeploymentPath, err := filepath.Rel(filepath.Dir(relPath), depPath)
		if err != nil {
			relDeploymentPath = depPath
		}
		manifest := fmt.Sprintf("# generated by fabriq gitops\nresources:\n  - %s\n", filepath.ToSlash(relDeploymentPath))
		if err := p.repo.WriteFile(relPath, []byte(manifest)); err != nil {
			return errs.Transient(err, "gitops: write assignment manifest")
		}
	case model.EventTypeDeleted:
		if err := p.repo.RemoveDir(filepath.Dir(relPath)); err != nil {
			return errs.Transient(err, "gitops: remove assignment manifest")
		}
	default:
		return errs.FatalEvent("gitops: unsupported event type %q", ev.EventType)
	}

	return p.commitAndPush(fmt.Sprintf("assignment %s: %s", assignment.ID, ev.EventType))
}

func (p *Processor) processDeploymentEvent(ctx context.Context, ev model.Event) error {
	raw := ev.CurrentModel
	if len(raw) == 0 {
		raw = ev.PreviousModel
	}
	deployment, err := decode[model.Deployment](raw)
	if err != nil {
		return err
	}

	workload, err := p.store.Workloads.GetByID(ctx, deployment.WorkloadID)
	if err != nil {
		return err
	}
	if workload == nil {
		return errs.FatalEvent("gitops: workload %s not found", deployment.WorkloadID)
	}

	depPath := deploymentPath(workload.TeamID, workload.ID, deployment.ID)

	if err := p.repo.RemoveDir(depPath); err != nil {
		return errs.Transient(err, "gitops: clear deployment path")
	}

	switch ev.EventType {
	case model.EventTypeCreated, model.EventTypeUpdated:
		if err := p.renderDeployment(ctx, *deployment, *workload, depPath); err != nil {
			return err
		}
	case model.EventTypeDeleted:
		// directory already cleared above.
	default:
		return errs.FatalEvent("gitops: unsupported event type %q", ev.EventType)
	}

	return p.commitAndPush(fmt.Sprintf("deployment %s: %s", deployment.ID, ev.EventType))
}

func (p *Processor) renderDeployment(ctx context.Context, deployment model.Deployment, workload model.Workload, depPath string) error {
	templateID := deployment.EffectiveTemplateID(workload.TemplateID)
	tmpl, err := p.store.Templates.GetByID(ctx, templateID)
	if err != nil {
		return err
	}
	if tmpl == nil {
		return errs.FatalEvent("gitops: template %s not found", templateID)
	}

	localDir, err := p.fetchTemplateRepo(*tmpl)
	if err != nil {
		return errs.Transient(err, "gitops: fetch template repo")
	}

	resolved, err := p.resolver.Resolve(ctx, deployment)
	if err != nil {
		return err
	}
	values := make(map[string]string, len(resolved))
	for k, v := range resolved {
		values[k] = v.Value
	}

	sourceDir := filepath.Join(localDir, tmpl.Path)
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return errs.FatalEvent("gitops: read template path %s: %v", tmpl.Path, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(sourceDir, entry.Name()))
		if err != nil {
			return err
		}
		t, err := template.New(entry.Name()).Parse(string(raw))
		if err != nil {
			return errs.FatalEvent("gitops: parse template %s: %v", entry.Name(), err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, values); err != nil {
			return errs.FatalEvent("gitops: render template %s: %v", entry.Name(), err)
		}
		if err := p.repo.WriteFile(path.Join(depPath, entry.Name()), buf.Bytes()); err != nil {
			return errs.Transient(err, "gitops: write rendered manifest")
		}
	}

	return nil
}

// fetchTemplateRepo clones tmpl's repository at its configured ref into a
// scratch directory under p.templates, keyed by template id so repeated
// renders of the same template reuse the clone.
func (p *Processor) fetchTemplateRepo(tmpl model.Template) (string, error) {
	dest := filepath.Join(p.templates, tmpl.ID)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(p.templates, 0o755); err != nil {
		return "", err
	}
	r, err := NewRemoteRepo(p.templates, tmpl.Repository, tmpl.GitRef, p.sshKey)
	if err != nil {
		return "", err
	}
	if err := os.Rename(r.dir, dest); err != nil {
		return dest, err
	}
	return dest, nil
}

func (p *Processor) commitAndPush(message string) error {
	if err := p.repo.Commit(authorName, authorEmail, message); err != nil {
		return errs.Transient(err, "gitops: commit")
	}
	if err := p.repo.Push(); err != nil {
		return errs.Transient(err, "gitops: push")
	}
	metrics.GitOpsCommitsTotal.Inc()
	return nil
}
