package reconciler

import "github.com/cuemby/fabriq/internal/model"

// diffAssignments computes which assignments to create and delete to
// bring a deployment from its existing assignment set to desiredHostCount
// hosts drawn from targetMatchingHosts. Hosts that no longer match the
// target are deleted first; only then does scale-up or scale-down against
// the remaining desired count happen.
func diffAssignments(
	deployment model.Deployment,
	existingAssignments []model.Assignment,
	targetMatchingHosts []model.Host,
	desiredHostCount int,
) (toCreate, toDelete []model.Assignment) {
	hostStillMatches := func(hostID string) bool {
		for _, h := range targetMatchingHosts {
			if h.ID == hostID {
				return true
			}
		}
		return false
	}

	var hostDeleted []model.Assignment
	for _, a := range existingAssignments {
		if !hostStillMatches(a.HostID) {
			hostDeleted = append(hostDeleted, a)
		}
	}

	isHostDeleted := func(id string) bool {
		for _, d := range hostDeleted {
			if d.ID == id {
				return true
			}
		}
		return false
	}

	var kept []model.Assignment
	for _, a := range existingAssignments {
		if !isHostDeleted(a.ID) {
			kept = append(kept, a)
		}
	}

	hostInUse := func(hostID string) bool {
		for _, a := range kept {
			if a.HostID == hostID {
				return true
			}
		}
		return false
	}

	var available []model.Host
	for _, h := range targetMatchingHosts {
		if !hostInUse(h.ID) {
			available = append(available, h)
		}
	}

	toDelete = append(toDelete, hostDeleted...)

	if len(kept) > desiredHostCount {
		deleteCount := len(kept) - desiredHostCount
		toDelete = append(toDelete, kept[:deleteCount]...)
	} else {
		createCount := desiredHostCount - len(kept)
		if createCount > len(available) {
			createCount = len(available)
		}
		for _, h := range available[:createCount] {
			toCreate = append(toCreate, model.Assignment{
				ID:           model.MakeAssignmentID(deployment.ID, h.ID),
				DeploymentID: deployment.ID,
				HostID:       h.ID,
			})
		}
	}

	return toCreate, toDelete
}
