package acl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v32/github"
	"golang.org/x/oauth2"

	"github.com/cuemby/fabriq/internal/errs"
)

// GitHubOracle resolves team membership against a GitHub (or GitHub
// Enterprise) organization: teamID's "org:team" pair names the org and
// team slug, and token authenticates as the caller whose membership is
// being checked.
type GitHubOracle struct {
	// BaseURL overrides the API base for GitHub Enterprise; empty uses
	// github.com.
	BaseURL string
}

func (o *GitHubOracle) clientFor(ctx context.Context, token string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)
	if o.BaseURL == "" {
		return github.NewClient(httpClient), nil
	}
	return github.NewEnterpriseClient(o.BaseURL, o.BaseURL, httpClient)
}

// IsTeamMember reports whether the user authenticated by token is an
// active member of org/team.
func (o *GitHubOracle) IsTeamMember(ctx context.Context, teamID, token string) (bool, error) {
	org, teamSlug, ok := strings.Cut(teamID, ":")
	if !ok {
		return false, errs.Validation("acl: team id %q must have an org:team shape", teamID)
	}

	client, err := o.clientFor(ctx, token)
	if err != nil {
		return false, fmt.Errorf("acl: build github client: %w", err)
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return false, errs.Unauthenticated("acl: resolve caller identity: %v", err)
	}

	membership, resp, err := client.Teams.GetTeamMembershipBySlug(ctx, org, teamSlug, user.GetLogin())
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("acl: check team membership: %w", err)
	}

	return membership.GetState() == "active", nil
}
