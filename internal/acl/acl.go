// Package acl authorizes team-scoped writes by delegating membership
// checks to an external oracle: a Config write's owning team is
// resolved before checking it against the caller's identity. fabriq's
// production oracle asks GitHub team membership; tests use a static
// map.
package acl

import "context"

// Oracle answers whether the bearer identified by token belongs to
// teamID (the "org:team" pair model.ValidateTeamID enforces on write).
type Oracle interface {
	IsTeamMember(ctx context.Context, teamID, token string) (bool, error)
}
