package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const perPage = 100

// Client implements the APIClient interface using the GitHub REST API.
type Client struct {
	client *github.Client
	ctx    context.Context
}

// NewClient creates a hosting platform client with the provided token.
func NewClient(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
		ctx:    ctx,
	}
}

// apiPermission maps our permission levels onto the REST API's values.
func apiPermission(p Permission) string {
	switch p {
	case PermissionRead:
		return "pull"
	case PermissionWrite:
		return "push"
	case PermissionAdmin:
		return "admin"
	}
	return string(p)
}

// ListRepositories lists every repository in the organization.
func (c *Client) ListRepositories(org string) ([]Repository, error) {
	repos, err := ListAll(func(page int) ([]*github.Repository, error) {
		var out []*github.Repository
		err := WithRetry(func() error {
			var err error
			out, _, err = c.client.Repositories.ListByOrg(c.ctx, org, &github.RepositoryListByOrgOptions{
				ListOptions: github.ListOptions{Page: page, PerPage: perPage},
			})
			if err != nil {
				return WrapAPIError(err, fmt.Sprintf("repositories for %s", org))
			}
			return nil
		}, DefaultRetryConfig())
		return out, err
	})
	if err != nil {
		return nil, err
	}

	all := make([]Repository, 0, len(repos))
	for _, repo := range repos {
		all = append(all, convertRepository(repo))
	}
	return all, nil
}

// CreateRepository creates a repository in the organization.
func (c *Client) CreateRepository(org string, config RepositoryConfig) (*Repository, error) {
	repo := &github.Repository{
		Name:        github.String(config.Name),
		Description: github.String(config.Description),
		Private:     github.Bool(config.Private),
		AutoInit:    github.Bool(config.AutoInit),
	}

	var created *github.Repository
	err := WithRetry(func() error {
		var err error
		created, _, err = c.client.Repositories.Create(c.ctx, org, repo)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("repository %s/%s", org, config.Name))
		}
		return nil
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	converted := convertRepository(created)
	return &converted, nil
}

// ArchiveRepository marks a repository as archived.
func (c *Client) ArchiveRepository(org, name string) error {
	return WithRetry(func() error {
		_, _, err := c.client.Repositories.Edit(c.ctx, org, name, &github.Repository{
			Archived: github.Bool(true),
		})
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("repository %s/%s", org, name))
		}
		return nil
	}, DefaultRetryConfig())
}

// ListTeams lists every team in the organization.
func (c *Client) ListTeams(org string) ([]Team, error) {
	teams, err := ListAll(func(page int) ([]*github.Team, error) {
		var out []*github.Team
		err := WithRetry(func() error {
			var err error
			out, _, err = c.client.Teams.ListTeams(c.ctx, org, &github.ListOptions{
				Page: page, PerPage: perPage,
			})
			if err != nil {
				return WrapAPIError(err, fmt.Sprintf("teams for %s", org))
			}
			return nil
		}, DefaultRetryConfig())
		return out, err
	})
	if err != nil {
		return nil, err
	}

	all := make([]Team, 0, len(teams))
	for _, team := range teams {
		all = append(all, convertTeam(team))
	}
	return all, nil
}

// FindTeamByName resolves a team by exact name match. Returns a not_found
// APIError when no team in the organization has that name.
func (c *Client) FindTeamByName(org, name string) (*Team, error) {
	teams, err := c.ListTeams(org)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		if teams[i].Name == name {
			return &teams[i], nil
		}
	}
	return nil, NewAPIError(ErrorTypeNotFound,
		fmt.Sprintf("team %q not found in %s", name, org), nil)
}

// CreateTeam creates an organization team with closed privacy.
func (c *Client) CreateTeam(org string, config TeamConfig) (*Team, error) {
	newTeam := github.NewTeam{
		Name:        config.Name,
		Description: github.String(config.Description),
		Privacy:     github.String("closed"),
		Permission:  github.String(apiPermission(config.Permission)),
	}

	var created *github.Team
	err := WithRetry(func() error {
		var err error
		created, _, err = c.client.Teams.CreateTeam(c.ctx, org, newTeam)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("team %s in %s", config.Name, org))
		}
		return nil
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	converted := convertTeam(created)
	return &converted, nil
}

// ListTeamMembers lists the usernames of every member of a team.
func (c *Client) ListTeamMembers(org, slug string) ([]string, error) {
	users, err := ListAll(func(page int) ([]*github.User, error) {
		var out []*github.User
		err := WithRetry(func() error {
			var err error
			out, _, err = c.client.Teams.ListTeamMembersBySlug(c.ctx, org, slug, &github.TeamListTeamMembersOptions{
				ListOptions: github.ListOptions{Page: page, PerPage: perPage},
			})
			if err != nil {
				return WrapAPIError(err, fmt.Sprintf("members of team %s in %s", slug, org))
			}
			return nil
		}, DefaultRetryConfig())
		return out, err
	})
	if err != nil {
		return nil, err
	}

	members := make([]string, 0, len(users))
	for _, user := range users {
		members = append(members, user.GetLogin())
	}
	return members, nil
}

// AddTeamMember adds a user to a team. Adding an existing member is a no-op
// on the platform side, so the call is safely re-runnable.
func (c *Client) AddTeamMember(org, slug, username string) error {
	opts := &github.TeamAddTeamMembershipOptions{Role: "member"}

	return WithRetry(func() error {
		_, _, err := c.client.Teams.AddTeamMembershipBySlug(c.ctx, org, slug, username, opts)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("membership of %s in team %s", username, slug))
		}
		return nil
	}, DefaultRetryConfig())
}

// AddTeamRepository grants a team access to a repository.
func (c *Client) AddTeamRepository(org, slug, repo string, permission Permission) error {
	opts := &github.TeamAddTeamRepoOptions{Permission: apiPermission(permission)}

	return WithRetry(func() error {
		_, err := c.client.Teams.AddTeamRepoBySlug(c.ctx, org, slug, org, repo, opts)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("team %s for %s/%s", slug, org, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// ListCollaborators lists all collaborators of a repository.
func (c *Client) ListCollaborators(org, repo string) ([]Collaborator, error) {
	users, err := ListAll(func(page int) ([]*github.User, error) {
		var out []*github.User
		err := WithRetry(func() error {
			var err error
			out, _, err = c.client.Repositories.ListCollaborators(c.ctx, org, repo, &github.ListCollaboratorsOptions{
				ListOptions: github.ListOptions{Page: page, PerPage: perPage},
			})
			if err != nil {
				return WrapAPIError(err, fmt.Sprintf("collaborators for %s/%s", org, repo))
			}
			return nil
		}, DefaultRetryConfig())
		return out, err
	})
	if err != nil {
		return nil, err
	}

	all := make([]Collaborator, 0, len(users))
	for _, user := range users {
		all = append(all, Collaborator{
			Username:   user.GetLogin(),
			Permission: strings.ToLower(user.GetRoleName()),
		})
	}
	return all, nil
}

// AddCollaborator grants a user direct access to a repository.
func (c *Client) AddCollaborator(org, repo, username string, permission Permission) error {
	opts := &github.RepositoryAddCollaboratorOptions{
		Permission: apiPermission(permission),
	}

	return WithRetry(func() error {
		_, _, err := c.client.Repositories.AddCollaborator(c.ctx, org, repo, username, opts)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("collaborator %s for %s/%s", username, org, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// CreateBranchProtection installs a branch protection rule described by
// the policy. An existing rule on the branch is overwritten.
func (c *Client) CreateBranchProtection(org, repo string, policy ProtectionPolicy) error {
	req := buildProtectionRequest(policy)

	return WithRetry(func() error {
		_, _, err := c.client.Repositories.UpdateBranchProtection(c.ctx, org, repo, policy.Branch, req)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("branch protection %s/%s:%s", org, repo, policy.Branch))
		}
		return nil
	}, DefaultRetryConfig())
}

// DeleteBranchProtection removes the protection rule of a branch.
func (c *Client) DeleteBranchProtection(org, repo, branch string) error {
	return WithRetry(func() error {
		_, err := c.client.Repositories.RemoveBranchProtection(c.ctx, org, repo, branch)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("branch protection %s/%s:%s", org, repo, branch))
		}
		return nil
	}, DefaultRetryConfig())
}

// buildProtectionRequest builds an API protection request from a policy.
func buildProtectionRequest(policy ProtectionPolicy) *github.ProtectionRequest {
	req := &github.ProtectionRequest{
		RequiredPullRequestReviews: &github.PullRequestReviewsEnforcementRequest{
			RequiredApprovingReviewCount: policy.RequiredApprovals,
			DismissStaleReviews:          policy.DismissStaleReviews,
		},
	}

	if len(policy.StatusCheckContexts) > 0 {
		contexts := policy.StatusCheckContexts
		req.RequiredStatusChecks = &github.RequiredStatusChecks{
			Strict:   policy.RequireUpToDate,
			Contexts: &contexts,
		}
	}

	if len(policy.PushAllowlistTeams) > 0 {
		req.Restrictions = &github.BranchRestrictionsRequest{
			Users: []string{},
			Teams: policy.PushAllowlistTeams,
		}
	}

	return req
}

// ListCommits lists all commits of a repository's default branch. Empty
// repositories surface as a conflict APIError from the platform.
func (c *Client) ListCommits(org, repo string) ([]Commit, error) {
	commits, err := ListAll(func(page int) ([]*github.RepositoryCommit, error) {
		var out []*github.RepositoryCommit
		err := WithRetry(func() error {
			var err error
			out, _, err = c.client.Repositories.ListCommits(c.ctx, org, repo, &github.CommitsListOptions{
				ListOptions: github.ListOptions{Page: page, PerPage: perPage},
			})
			if err != nil {
				return WrapAPIError(err, fmt.Sprintf("commits for %s/%s", org, repo))
			}
			return nil
		}, DefaultRetryConfig())
		return out, err
	})
	if err != nil {
		return nil, err
	}

	all := make([]Commit, 0, len(commits))
	for _, commit := range commits {
		all = append(all, Commit{SHA: commit.GetSHA()})
	}
	return all, nil
}

// ListIssues lists issues and pull requests of a repository in the given
// state ("open", "closed", or "all").
func (c *Client) ListIssues(org, repo, state string) ([]Issue, error) {
	issues, err := ListAll(func(page int) ([]*github.Issue, error) {
		var out []*github.Issue
		err := WithRetry(func() error {
			var err error
			out, _, err = c.client.Issues.ListByRepo(c.ctx, org, repo, &github.IssueListByRepoOptions{
				State:       state,
				ListOptions: github.ListOptions{Page: page, PerPage: perPage},
			})
			if err != nil {
				return WrapAPIError(err, fmt.Sprintf("issues for %s/%s", org, repo))
			}
			return nil
		}, DefaultRetryConfig())
		return out, err
	})
	if err != nil {
		return nil, err
	}

	all := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		all = append(all, Issue{
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			State:  issue.GetState(),
		})
	}
	return all, nil
}

// CreateIssue opens an issue on a repository.
func (c *Client) CreateIssue(org, repo string, issue IssueRequest) error {
	req := &github.IssueRequest{
		Title: github.String(issue.Title),
		Body:  github.String(issue.Body),
	}
	if len(issue.Assignees) > 0 {
		req.Assignees = &issue.Assignees
	}

	return WithRetry(func() error {
		_, _, err := c.client.Issues.Create(c.ctx, org, repo, req)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("issue %q in %s/%s", issue.Title, org, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// CloseIssue transitions an issue or pull request to the closed state.
func (c *Client) CloseIssue(org, repo string, number int) error {
	return WithRetry(func() error {
		_, _, err := c.client.Issues.Edit(c.ctx, org, repo, number, &github.IssueRequest{
			State: github.String(IssueStateClosed),
		})
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("issue #%d in %s/%s", number, org, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// CreateMilestone creates a milestone with a due date on a repository.
func (c *Client) CreateMilestone(org, repo string, milestone MilestoneConfig) error {
	req := &github.Milestone{
		Title:       github.String(milestone.Title),
		Description: github.String(milestone.Description),
		DueOn:       &github.Timestamp{Time: milestone.DueOn},
	}

	return WithRetry(func() error {
		_, _, err := c.client.Issues.CreateMilestone(c.ctx, org, repo, req)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("milestone %q in %s/%s", milestone.Title, org, repo))
		}
		return nil
	}, DefaultRetryConfig())
}

// convertRepository converts an API repository to our internal type.
func convertRepository(repo *github.Repository) Repository {
	return Repository{
		ID:       repo.GetID(),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		Private:  repo.GetPrivate(),
		Archived: repo.GetArchived(),
	}
}

// convertTeam converts an API team to our internal type.
func convertTeam(team *github.Team) Team {
	return Team{
		ID:         team.GetID(),
		Name:       team.GetName(),
		Slug:       team.GetSlug(),
		Permission: fromAPIPermission(team.GetPermission()),
	}
}

// fromAPIPermission maps the REST API's permission values back onto ours.
func fromAPIPermission(p string) Permission {
	switch p {
	case "pull":
		return PermissionRead
	case "push":
		return PermissionWrite
	case "admin":
		return PermissionAdmin
	}
	return Permission(p)
}
