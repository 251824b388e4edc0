package acl

import "context"

// StaticOracle answers membership checks from an in-memory map, for
// tests and offline/embedded deployments. Keys are "teamID|token".
type StaticOracle struct {
	Members map[string]bool
}

// NewStaticOracle constructs a StaticOracle with an empty membership map.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{Members: map[string]bool{}}
}

// Grant marks token as a member of teamID.
func (o *StaticOracle) Grant(teamID, token string) {
	o.Members[teamID+"|"+token] = true
}

func (o *StaticOracle) IsTeamMember(_ context.Context, teamID, token string) (bool, error) {
	return o.Members[teamID+"|"+token], nil
}
