// Package model defines the fabriq data model: the desired-state entities
// operators submit, the assignments the reconciler derives from them, and
// the event envelope that carries state transitions between the two.
package model

import (
	"fmt"
	"math"
	"strings"
)

// MaxHostCount is the wire sentinel meaning "all matching hosts".
const MaxHostCount = math.MaxInt32

// Template is a stateless reference to an externally versioned manifest
// source: a git repository, ref, and path inside it.
type Template struct {
	ID         string
	Repository string
	GitRef     string
	Path       string
}

// Workload is a named, team-owned deployable. Its id is derived from its
// natural key so two upserts of the same team_id+name collide on the same
// row.
type Workload struct {
	ID         string
	Name       string
	TeamID     string
	TemplateID string
}

// MakeWorkloadID derives a workload id from its natural key.
func MakeWorkloadID(teamID, name string) string {
	return teamID + ":" + name
}

// Target is a label selector over hosts.
type Target struct {
	ID     string
	Labels []string
}

// Host is a label-bearing execution substrate node.
type Host struct {
	ID     string
	Labels []string
}

// Deployment is the sized, located instance of a workload at a target.
// TemplateID overrides the workload's default template when set.
type Deployment struct {
	ID         string
	Name       string
	WorkloadID string
	TargetID   string
	TemplateID *string
	HostCount  int32
}

// MakeDeploymentID derives a deployment id from its natural key.
func MakeDeploymentID(workloadID, name string) string {
	return workloadID + ":" + name
}

// EffectiveTemplateID returns the deployment's own template override if
// set, else the workload's default template.
func (d *Deployment) EffectiveTemplateID(workloadTemplateID string) string {
	if d.TemplateID != nil && *d.TemplateID != "" {
		return *d.TemplateID
	}
	return workloadTemplateID
}

// Assignment is a committed binding of a deployment to a host.
type Assignment struct {
	ID           string
	DeploymentID string
	HostID       string
}

// MakeAssignmentID derives an assignment id from the (deployment, host)
// pair it binds.
func MakeAssignmentID(deploymentID, hostID string) string {
	return deploymentID + "-" + hostID
}

// ConfigValueType distinguishes a plain string value from a semicolon
// separated key=value set.
type ConfigValueType int

const (
	ConfigValueString ConfigValueType = iota
	ConfigValueKeyValue
)

func (t ConfigValueType) String() string {
	switch t {
	case ConfigValueString:
		return "STRING"
	case ConfigValueKeyValue:
		return "KEY_VALUE"
	default:
		return "UNKNOWN"
	}
}

// Owning-model kinds for Config.OwningModel.
const (
	OwnerTemplate   = "template"
	OwnerWorkload   = "workload"
	OwnerDeployment = "deployment"
)

// Config is a single hierarchical key/value override, owned by exactly
// one template, workload, or deployment.
type Config struct {
	ID          string
	OwningModel string
	Key         string
	Value       string
	ValueType   ConfigValueType
}

// MakeOwningModel builds the "<kind>/<id>" owning-model string, rejecting
// any kind outside the fixed set.
func MakeOwningModel(kind, id string) (string, error) {
	switch kind {
	case OwnerTemplate, OwnerWorkload, OwnerDeployment:
		return kind + "/" + id, nil
	default:
		return "", fmt.Errorf("model: invalid owning-model kind %q", kind)
	}
}

// SplitOwningModel parses "<kind>/<id>" back into its parts, rejecting any
// kind outside the fixed set or a malformed separator count.
func SplitOwningModel(owningModel string) (kind, id string, err error) {
	parts := strings.SplitN(owningModel, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("model: owning model %q missing '/' separator", owningModel)
	}
	kind, id = parts[0], parts[1]
	switch kind {
	case OwnerTemplate, OwnerWorkload, OwnerDeployment:
		return kind, id, nil
	default:
		return "", "", fmt.Errorf("model: invalid owning-model kind %q", kind)
	}
}

// MakeConfigID derives a config id from its natural key.
func MakeConfigID(owningModel, key string) string {
	return owningModel + "|" + key
}

// FormatKeyValue renders a map as the wire "k1=v1;k2=v2" encoding. Key
// order is not significant to the invariant, but is made deterministic by
// the caller when it matters (e.g. tests).
func FormatKeyValue(pairs map[string]string, order []string) string {
	parts := make([]string, 0, len(order))
	for _, k := range order {
		parts = append(parts, k+"="+pairs[k])
	}
	return strings.Join(parts, ";")
}

// ParseKeyValue parses the wire "k1=v1;k2=v2" encoding into a map. Empty
// segments are ignored so a trailing ';' or an empty value is harmless.
func ParseKeyValue(raw string) map[string]string {
	out := map[string]string{}
	for _, seg := range strings.Split(raw, ";") {
		if seg == "" {
			continue
		}
		kv := strings.SplitN(seg, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}

// ValidateTeamID reports an error unless teamID, the team id component
// of a workload's natural key, has the form "org:team": exactly one
// separator with a non-empty org and team on either side.
func ValidateTeamID(teamID string) error {
	if strings.Count(teamID, ":") != 1 {
		return fmt.Errorf("model: team id %q must have exactly one ':' separator", teamID)
	}
	parts := strings.SplitN(teamID, ":", 2)
	if parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("model: team id %q has an empty org or team segment", teamID)
	}
	return nil
}

// LabelsContain reports whether every label in selector also appears in
// candidate: the target.labels ⊆ host.labels containment target/host
// matching requires.
func LabelsContain(selector, candidate []string) bool {
	set := make(map[string]struct{}, len(candidate))
	for _, l := range candidate {
		set[l] = struct{}{}
	}
	for _, l := range selector {
		if _, ok := set[l]; !ok {
			return false
		}
	}
	return true
}
