package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/fabriq/internal/model"
)

func TestDiffAssignments_ScaleUpFromZero(t *testing.T) {
	deployment := model.Deployment{ID: "dep-1"}
	hosts := []model.Host{{ID: "h1"}, {ID: "h2"}, {ID: "h3"}}

	toCreate, toDelete := diffAssignments(deployment, nil, hosts, 2)

	assert.Empty(t, toDelete)
	assert.Len(t, toCreate, 2)
	for _, a := range toCreate {
		assert.Equal(t, deployment.ID, a.DeploymentID)
		assert.Equal(t, model.MakeAssignmentID(deployment.ID, a.HostID), a.ID)
	}
}

func TestDiffAssignments_ScaleUpRespectsAvailableHosts(t *testing.T) {
	deployment := model.Deployment{ID: "dep-1"}
	hosts := []model.Host{{ID: "h1"}}

	toCreate, toDelete := diffAssignments(deployment, nil, hosts, 5)

	assert.Empty(t, toDelete)
	assert.Len(t, toCreate, 1)
	assert.Equal(t, "h1", toCreate[0].HostID)
}

func TestDiffAssignments_ScaleDownDropsExcessAssignments(t *testing.T) {
	deployment := model.Deployment{ID: "dep-1"}
	hosts := []model.Host{{ID: "h1"}, {ID: "h2"}, {ID: "h3"}}
	existing := []model.Assignment{
		{ID: "dep-1-h1", DeploymentID: "dep-1", HostID: "h1"},
		{ID: "dep-1-h2", DeploymentID: "dep-1", HostID: "h2"},
		{ID: "dep-1-h3", DeploymentID: "dep-1", HostID: "h3"},
	}

	toCreate, toDelete := diffAssignments(deployment, existing, hosts, 1)

	assert.Empty(t, toCreate)
	assert.Len(t, toDelete, 2)
}

func TestDiffAssignments_NoChangeWhenAlreadyAtDesiredCount(t *testing.T) {
	deployment := model.Deployment{ID: "dep-1"}
	hosts := []model.Host{{ID: "h1"}, {ID: "h2"}}
	existing := []model.Assignment{
		{ID: "dep-1-h1", DeploymentID: "dep-1", HostID: "h1"},
		{ID: "dep-1-h2", DeploymentID: "dep-1", HostID: "h2"},
	}

	toCreate, toDelete := diffAssignments(deployment, existing, hosts, 2)

	assert.Empty(t, toCreate)
	assert.Empty(t, toDelete)
}

func TestDiffAssignments_HostNoLongerMatchingTargetIsDeletedAndReplaced(t *testing.T) {
	deployment := model.Deployment{ID: "dep-1"}
	// h1 dropped out of the target's matching set; h3 is the only
	// other candidate available to replace it.
	hosts := []model.Host{{ID: "h2"}, {ID: "h3"}}
	existing := []model.Assignment{
		{ID: "dep-1-h1", DeploymentID: "dep-1", HostID: "h1"},
		{ID: "dep-1-h2", DeploymentID: "dep-1", HostID: "h2"},
	}

	toCreate, toDelete := diffAssignments(deployment, existing, hosts, 2)

	assert.Len(t, toDelete, 1)
	assert.Equal(t, "h1", toDelete[0].HostID)
	assert.Len(t, toCreate, 1)
	assert.Equal(t, "h3", toCreate[0].HostID)
}

func TestDiffAssignments_ScaleToZeroDeletesEverything(t *testing.T) {
	deployment := model.Deployment{ID: "dep-1"}
	hosts := []model.Host{{ID: "h1"}, {ID: "h2"}}
	existing := []model.Assignment{
		{ID: "dep-1-h1", DeploymentID: "dep-1", HostID: "h1"},
		{ID: "dep-1-h2", DeploymentID: "dep-1", HostID: "h2"},
	}

	toCreate, toDelete := diffAssignments(deployment, existing, hosts, 0)

	assert.Empty(t, toCreate)
	assert.Len(t, toDelete, 2)
}

func TestDiffAssignments_NoMatchingHostsLeavesDesiredCountUnfilled(t *testing.T) {
	deployment := model.Deployment{ID: "dep-1"}

	toCreate, toDelete := diffAssignments(deployment, nil, nil, 3)

	assert.Empty(t, toCreate)
	assert.Empty(t, toDelete)
}
