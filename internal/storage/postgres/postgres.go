// Package postgres implements storage.Store against PostgreSQL via pgx,
// using pgxpool for connection pooling under concurrent RPC handlers.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuemby/fabriq/internal/model"
	"github.com/cuemby/fabriq/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// DB is the minimal pgx surface the repositories need, satisfied by both
// *pgxpool.Pool and a pgxmock connection in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pgxpool and applies the schema idempotently.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}
	return pool, nil
}

// pool adapts *pgxpool.Pool to the DB interface above.
type pool struct{ p *pgxpool.Pool }

func (w pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := w.p.Exec(ctx, sql, args...)
	return tag, err
}
func (w pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return w.p.Query(ctx, sql, args...)
}
func (w pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return w.p.QueryRow(ctx, sql, args...)
}

// New constructs a storage.Store backed by an already-connected pool.
func New(p *pgxpool.Pool) *storage.Store {
	db := pool{p: p}
	return &storage.Store{
		Templates:   &templateRepo{db: db},
		Workloads:   &workloadRepo{db: db},
		Targets:     &targetRepo{db: db},
		Hosts:       &hostRepo{db: db},
		Deployments: &deploymentRepo{db: db},
		Assignments: &assignmentRepo{db: db},
		Configs:     &configRepo{db: db},
	}
}

type templateRepo struct{ db DB }

func (r *templateRepo) Upsert(ctx context.Context, m model.Template) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO templates (id, repository, git_ref, path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET repository = excluded.repository, git_ref = excluded.git_ref, path = excluded.path
		WHERE templates.repository IS DISTINCT FROM excluded.repository
		   OR templates.git_ref IS DISTINCT FROM excluded.git_ref
		   OR templates.path IS DISTINCT FROM excluded.path
	`, m.ID, m.Repository, m.GitRef, m.Path)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return 1, nil
	}
	return upsertNoopAffected(ctx, r.db, "templates", m.ID)
}
func (r *templateRepo) Delete(ctx context.Context, id string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
func (r *templateRepo) List(ctx context.Context) ([]model.Template, error) {
	rows, err := r.db.Query(ctx, `SELECT id, repository, git_ref, path FROM templates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Template
	for rows.Next() {
		var m model.Template
		if err := rows.Scan(&m.ID, &m.Repository, &m.GitRef, &m.Path); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.Template, error) {
	var m model.Template
	err := r.db.QueryRow(ctx, `SELECT id, repository, git_ref, path FROM templates WHERE id = $1`, id).
		Scan(&m.ID, &m.Repository, &m.GitRef, &m.Path)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// upsertNoopAffected distinguishes "row existed, content identical" (0)
// from "row newly inserted" when the ON CONFLICT ... WHERE guard above
// suppressed the update; a second existence probe tells them apart
// without a separate read-before-write on the hot path.
func upsertNoopAffected(ctx context.Context, db DB, table, id string) (int, error) {
	var exists bool
	err := db.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table), id).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}
	return 1, nil
}

type workloadRepo struct{ db DB }

func (r *workloadRepo) Upsert(ctx context.Context, m model.Workload) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO workloads (id, name, team_id, template_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, team_id = excluded.team_id, template_id = excluded.template_id
		WHERE workloads.name IS DISTINCT FROM excluded.name
		   OR workloads.team_id IS DISTINCT FROM excluded.team_id
		   OR workloads.template_id IS DISTINCT FROM excluded.template_id
	`, m.ID, m.Name, m.TeamID, m.TemplateID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return 1, nil
	}
	return upsertNoopAffected(ctx, r.db, "workloads", m.ID)
}
func (r *workloadRepo) Delete(ctx context.Context, id string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM workloads WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
func (r *workloadRepo) List(ctx context.Context) ([]model.Workload, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, team_id, template_id FROM workloads`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Workload
	for rows.Next() {
		var m model.Workload
		if err := rows.Scan(&m.ID, &m.Name, &m.TeamID, &m.TemplateID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
func (r *workloadRepo) GetByID(ctx context.Context, id string) (*model.Workload, error) {
	var m model.Workload
	err := r.db.QueryRow(ctx, `SELECT id, name, team_id, template_id FROM workloads WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.TeamID, &m.TemplateID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
func (r *workloadRepo) GetByTemplateID(ctx context.Context, templateID string) ([]model.Workload, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, team_id, template_id FROM workloads WHERE template_id = $1`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Workload
	for rows.Next() {
		var m model.Workload
		if err := rows.Scan(&m.ID, &m.Name, &m.TeamID, &m.TemplateID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type targetRepo struct{ db DB }

func (r *targetRepo) Upsert(ctx context.Context, m model.Target) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO targets (id, labels) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET labels = excluded.labels
		WHERE targets.labels IS DISTINCT FROM excluded.labels
	`, m.ID, m.Labels)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return 1, nil
	}
	return upsertNoopAffected(ctx, r.db, "targets", m.ID)
}
func (r *targetRepo) Delete(ctx context.Context, id string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM targets WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
func (r *targetRepo) List(ctx context.Context) ([]model.Target, error) {
	rows, err := r.db.Query(ctx, `SELECT id, labels FROM targets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Target
	for rows.Next() {
		var m model.Target
		if err := rows.Scan(&m.ID, &m.Labels); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
func (r *targetRepo) GetByID(ctx context.Context, id string) (*model.Target, error) {
	var m model.Target
	err := r.db.QueryRow(ctx, `SELECT id, labels FROM targets WHERE id = $1`, id).Scan(&m.ID, &m.Labels)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
func (r *targetRepo) GetMatchingHost(ctx context.Context, host model.Host) ([]model.Target, error) {
	// target.labels ⊆ host.labels: the selector array must be contained
	// in (<@) the host's label array.
	rows, err := r.db.Query(ctx, `SELECT id, labels FROM targets WHERE labels <@ $1`, host.Labels)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Target
	for rows.Next() {
		var m model.Target
		if err := rows.Scan(&m.ID, &m.Labels); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type hostRepo struct{ db DB }

func (r *hostRepo) Upsert(ctx context.Context, m model.Host) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO hosts (id, labels) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET labels = excluded.labels
		WHERE hosts.labels IS DISTINCT FROM excluded.labels
	`, m.ID, m.Labels)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return 1, nil
	}
	return upsertNoopAffected(ctx, r.db, "hosts", m.ID)
}
func (r *hostRepo) Delete(ctx context.Context, id string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM hosts WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
func (r *hostRepo) List(ctx context.Context) ([]model.Host, error) {
	rows, err := r.db.Query(ctx, `SELECT id, labels FROM hosts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Host
	for rows.Next() {
		var m model.Host
		if err := rows.Scan(&m.ID, &m.Labels); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
func (r *hostRepo) GetByID(ctx context.Context, id string) (*model.Host, error) {
	var m model.Host
	err := r.db.QueryRow(ctx, `SELECT id, labels FROM hosts WHERE id = $1`, id).Scan(&m.ID, &m.Labels)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
func (r *hostRepo) GetMatchingTarget(ctx context.Context, target model.Target) ([]model.Host, error) {
	// host.labels ⊇ target.labels: the host's array must contain (@>)
	// every element of the target's selector.
	rows, err := r.db.Query(ctx, `SELECT id, labels FROM hosts WHERE labels @> $1`, target.Labels)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Host
	for rows.Next() {
		var m model.Host
		if err := rows.Scan(&m.ID, &m.Labels); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type deploymentRepo struct{ db DB }

func (r *deploymentRepo) Upsert(ctx context.Context, m model.Deployment) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO deployments (id, name, workload_id, target_id, template_id, host_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, workload_id = excluded.workload_id,
			target_id = excluded.target_id, template_id = excluded.template_id, host_count = excluded.host_count
		WHERE deployments.name IS DISTINCT FROM excluded.name
		   OR deployments.workload_id IS DISTINCT FROM excluded.workload_id
		   OR deployments.target_id IS DISTINCT FROM excluded.target_id
		   OR deployments.template_id IS DISTINCT FROM excluded.template_id
		   OR deployments.host_count IS DISTINCT FROM excluded.host_count
	`, m.ID, m.Name, m.WorkloadID, m.TargetID, m.TemplateID, m.HostCount)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return 1, nil
	}
	return upsertNoopAffected(ctx, r.db, "deployments", m.ID)
}
func (r *deploymentRepo) Delete(ctx context.Context, id string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM deployments WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
func (r *deploymentRepo) scanAll(ctx context.Context, query string, args ...any) ([]model.Deployment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Deployment
	for rows.Next() {
		var m model.Deployment
		if err := rows.Scan(&m.ID, &m.Name, &m.WorkloadID, &m.TargetID, &m.TemplateID, &m.HostCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
func (r *deploymentRepo) List(ctx context.Context) ([]model.Deployment, error) {
	return r.scanAll(ctx, `SELECT id, name, workload_id, target_id, template_id, host_count FROM deployments`)
}
func (r *deploymentRepo) GetByID(ctx context.Context, id string) (*model.Deployment, error) {
	var m model.Deployment
	err := r.db.QueryRow(ctx, `SELECT id, name, workload_id, target_id, template_id, host_count FROM deployments WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.WorkloadID, &m.TargetID, &m.TemplateID, &m.HostCount)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
func (r *deploymentRepo) GetByTargetID(ctx context.Context, targetID string) ([]model.Deployment, error) {
	return r.scanAll(ctx, `SELECT id, name, workload_id, target_id, template_id, host_count FROM deployments WHERE target_id = $1`, targetID)
}
func (r *deploymentRepo) GetByTemplateID(ctx context.Context, templateID string) ([]model.Deployment, error) {
	return r.scanAll(ctx, `SELECT id, name, workload_id, target_id, template_id, host_count FROM deployments WHERE template_id = $1`, templateID)
}
func (r *deploymentRepo) GetByWorkloadID(ctx context.Context, workloadID string) ([]model.Deployment, error) {
	return r.scanAll(ctx, `SELECT id, name, workload_id, target_id, template_id, host_count FROM deployments WHERE workload_id = $1`, workloadID)
}

type assignmentRepo struct{ db DB }

func (r *assignmentRepo) Upsert(ctx context.Context, m model.Assignment) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO assignments (id, deployment_id, host_id) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET deployment_id = excluded.deployment_id, host_id = excluded.host_id
		WHERE assignments.deployment_id IS DISTINCT FROM excluded.deployment_id
		   OR assignments.host_id IS DISTINCT FROM excluded.host_id
	`, m.ID, m.DeploymentID, m.HostID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return 1, nil
	}
	return upsertNoopAffected(ctx, r.db, "assignments", m.ID)
}
func (r *assignmentRepo) Delete(ctx context.Context, id string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
func (r *assignmentRepo) List(ctx context.Context) ([]model.Assignment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, deployment_id, host_id FROM assignments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Assignment
	for rows.Next() {
		var m model.Assignment
		if err := rows.Scan(&m.ID, &m.DeploymentID, &m.HostID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var m model.Assignment
	err := r.db.QueryRow(ctx, `SELECT id, deployment_id, host_id FROM assignments WHERE id = $1`, id).
		Scan(&m.ID, &m.DeploymentID, &m.HostID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
func (r *assignmentRepo) GetByDeploymentID(ctx context.Context, deploymentID string) ([]model.Assignment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, deployment_id, host_id FROM assignments WHERE deployment_id = $1 ORDER BY id`, deploymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Assignment
	for rows.Next() {
		var m model.Assignment
		if err := rows.Scan(&m.ID, &m.DeploymentID, &m.HostID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type configRepo struct{ db DB }

func (r *configRepo) Upsert(ctx context.Context, m model.Config) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO configs (id, owning_model, key, value, value_type) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET owning_model = excluded.owning_model, key = excluded.key,
			value = excluded.value, value_type = excluded.value_type
		WHERE configs.owning_model IS DISTINCT FROM excluded.owning_model
		   OR configs.key IS DISTINCT FROM excluded.key
		   OR configs.value IS DISTINCT FROM excluded.value
		   OR configs.value_type IS DISTINCT FROM excluded.value_type
	`, m.ID, m.OwningModel, m.Key, m.Value, int(m.ValueType))
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return 1, nil
	}
	return upsertNoopAffected(ctx, r.db, "configs", m.ID)
}
func (r *configRepo) Delete(ctx context.Context, id string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM configs WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
func (r *configRepo) scanAll(ctx context.Context, query string, args ...any) ([]model.Config, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Config
	for rows.Next() {
		var m model.Config
		var vt int
		if err := rows.Scan(&m.ID, &m.OwningModel, &m.Key, &m.Value, &vt); err != nil {
			return nil, err
		}
		m.ValueType = model.ConfigValueType(vt)
		out = append(out, m)
	}
	return out, rows.Err()
}
func (r *configRepo) List(ctx context.Context) ([]model.Config, error) {
	return r.scanAll(ctx, `SELECT id, owning_model, key, value, value_type FROM configs`)
}
func (r *configRepo) GetByID(ctx context.Context, id string) (*model.Config, error) {
	var m model.Config
	var vt int
	err := r.db.QueryRow(ctx, `SELECT id, owning_model, key, value, value_type FROM configs WHERE id = $1`, id).
		Scan(&m.ID, &m.OwningModel, &m.Key, &m.Value, &vt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.ValueType = model.ConfigValueType(vt)
	return &m, nil
}
func (r *configRepo) byOwner(ctx context.Context, kind, id string) ([]model.Config, error) {
	owner, err := model.MakeOwningModel(kind, id)
	if err != nil {
		return nil, err
	}
	return r.scanAll(ctx, `SELECT id, owning_model, key, value, value_type FROM configs WHERE owning_model = $1`, owner)
}
func (r *configRepo) GetByDeploymentID(ctx context.Context, deploymentID string) ([]model.Config, error) {
	return r.byOwner(ctx, model.OwnerDeployment, deploymentID)
}
func (r *configRepo) GetByWorkloadID(ctx context.Context, workloadID string) ([]model.Config, error) {
	return r.byOwner(ctx, model.OwnerWorkload, workloadID)
}
func (r *configRepo) GetByTemplateID(ctx context.Context, templateID string) ([]model.Config, error) {
	return r.byOwner(ctx, model.OwnerTemplate, templateID)
}
