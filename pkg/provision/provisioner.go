// Package provision implements the roster reconciliation engine: it drives
// the hosting platform's organization (teams, repositories, memberships,
// collaborators, branch protection, issues) into a state matching the
// course roster. Every mutating call is idempotent at the entity level;
// failures are isolated per student or per group and collected in a Report.
package provision

import (
	"fmt"
	"log/slog"

	"courseops/pkg/forge"
	"courseops/pkg/roster"
)

// Options tunes organization-wide provisioning defaults.
type Options struct {
	// DefaultBranch is the branch that receives protection rules.
	DefaultBranch string

	// StatusCheckContexts are the CI contexts required by branch protection.
	StatusCheckContexts []string

	// OwnersTeam is the team allowed to push to protected branches.
	OwnersTeam string

	// Logger receives one entry per provisioning decision.
	Logger *slog.Logger
}

const (
	defaultBranch     = "master"
	defaultOwnersTeam = "owners"
)

var defaultStatusChecks = []string{"continuous-integration/drone/pr"}

// Provisioner reconciles roster state against one organization. Operations
// run sequentially in roster order; re-entrancy across concurrent runs
// against the same organization is not guaranteed safe.
type Provisioner struct {
	client       forge.APIClient
	org          string
	resolver     *roster.Resolver
	branch       string
	statusChecks []string
	ownersTeam   string
	log          *slog.Logger
}

// New creates a provisioner for the given organization.
func New(client forge.APIClient, org string, resolver *roster.Resolver, opts Options) *Provisioner {
	if resolver == nil {
		resolver = roster.NewResolver(nil)
	}
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = defaultBranch
	}
	if opts.StatusCheckContexts == nil {
		opts.StatusCheckContexts = defaultStatusChecks
	}
	if opts.OwnersTeam == "" {
		opts.OwnersTeam = defaultOwnersTeam
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Provisioner{
		client:       client,
		org:          org,
		resolver:     resolver,
		branch:       opts.DefaultBranch,
		statusChecks: opts.StatusCheckContexts,
		ownersTeam:   opts.OwnersTeam,
		log:          opts.Logger,
	}
}

// SyncTeamMembership reconciles a team's member set against the roster.
// Missing members are added; members already present are left alone and
// logged; remote members absent from the roster are reported as unexpected
// but never removed. The team must already exist.
func (p *Provisioner) SyncTeamMembership(teamName string, students []roster.Student) (*Report, error) {
	team, err := p.client.FindTeamByName(p.org, teamName)
	if err != nil {
		return nil, err
	}

	members, err := p.client.ListTeamMembers(p.org, team.Slug)
	if err != nil {
		return nil, err
	}
	current := make(map[string]bool, len(members))
	for _, member := range members {
		current[member] = true
	}

	report := NewReport()
	for _, student := range students {
		username, err := p.resolver.Resolve(student)
		if err != nil {
			p.log.Warn("cannot resolve student", "student", student.Name, "team", teamName, "error", err)
			report.RecordError(student.Name, err)
			continue
		}
		if err := forge.ValidateUsername(username); err != nil {
			p.log.Error("invalid username in roster", "student", student.Name, "error", err)
			report.RecordError(student.Name, err)
			continue
		}

		if current[username] {
			// Remove from the working set so the member is not flagged as
			// unexpected below.
			delete(current, username)
			p.log.Warn("already a team member", "student", student.Name, "team", teamName)
			report.Record(student.Name, OutcomeAlreadyMember)
			continue
		}

		if err := p.client.AddTeamMember(p.org, team.Slug, username); err != nil {
			p.log.Error("failed to add team member", "student", student.Name, "team", teamName, "error", err)
			report.RecordError(student.Name, err)
			continue
		}
		p.log.Info("added to team", "student", student.Name, "user", username, "team", teamName)
		report.Record(student.Name, OutcomeAdded)
	}

	for username := range current {
		p.log.Error("present in team but not in roster", "user", username, "team", teamName)
		report.Record(username, OutcomeUnexpected)
	}

	return report, nil
}

// EnsurePersonalRepos creates one private repository per student and adds
// the student as collaborator. A conflict on create means the repository
// already exists and is treated as success. Failures are isolated per
// student.
func (p *Provisioner) EnsurePersonalRepos(students []roster.Student, repoName RepoNameFunc) (*Report, error) {
	if repoName == nil {
		repoName = LoginRepoName
	}

	report := NewReport()
	for _, student := range students {
		name := repoName(student)
		if name == "" {
			report.Record(student.Name, OutcomeSkipped)
			continue
		}
		if err := forge.ValidateRepoName(name); err != nil {
			p.log.Error("invalid repository name", "student", student.Name, "error", err)
			report.RecordError(name, err)
			continue
		}

		created, err := p.ensureRepo(name)
		if err != nil {
			p.log.Error("failed to create personal repo", "repo", name, "student", student.Name, "error", err)
			report.RecordError(name, err)
			continue
		}
		if created {
			p.log.Info("personal repo created", "repo", fmt.Sprintf("%s/%s", p.org, name), "student", student.Name)
			report.Record(name, OutcomeCreated)
		} else {
			p.log.Warn("personal repo already exists", "repo", fmt.Sprintf("%s/%s", p.org, name), "student", student.Name)
			report.Record(name, OutcomeAlreadyExists)
		}

		username, err := p.resolver.Resolve(student)
		if err != nil {
			p.log.Warn("cannot resolve student", "student", student.Name, "error", err)
			report.RecordError(student.Name, err)
			continue
		}
		if err := p.client.AddCollaborator(p.org, name, username, forge.PermissionWrite); err != nil {
			p.log.Error("failed to add collaborator", "repo", name, "user", username, "error", err)
			report.RecordError(student.Name, err)
		}
	}

	return report, nil
}

// EnsureGroupRepos provisions one team and one repository per group: the
// team and repository are created if absent, the repository is linked to
// the team, every resolvable member becomes a team member and collaborator,
// and branch protection is applied with an approval count derived from the
// number of members granted access. Failures are isolated per group.
func (p *Provisioner) EnsureGroupRepos(groups []roster.Group, students []roster.Student, policy GroupPolicy) (*Report, error) {
	if policy.TeamName == nil {
		policy.TeamName = Identity
	}
	if policy.RepoName == nil {
		policy.RepoName = Identity
	}
	if policy.Permission == "" {
		policy.Permission = forge.PermissionWrite
	}

	// Remote state is fetched once; creations below extend the local view
	// so later groups see entities created earlier in the same run.
	teams, err := p.client.ListTeams(p.org)
	if err != nil {
		return nil, err
	}
	repos, err := p.client.ListRepositories(p.org)
	if err != nil {
		return nil, err
	}
	teamsByName := make(map[string]forge.Team, len(teams))
	for _, team := range teams {
		teamsByName[team.Name] = team
	}
	reposByName := make(map[string]bool, len(repos))
	for _, repo := range repos {
		reposByName[repo.Name] = true
	}

	index := roster.Index(students)
	report := NewReport()
	for _, group := range groups {
		teamName := policy.TeamName(group.Name)
		repoName := policy.RepoName(group.Name)
		if teamName == "" || repoName == "" {
			report.Record(group.Name, OutcomeSkipped)
			continue
		}

		created, err := p.ensureGroupRepo(group, teamName, repoName, policy.Permission, index, teamsByName, reposByName)
		if err != nil {
			p.log.Error("group provisioning failed", "group", group.Name, "error", err)
			report.RecordError(group.Name, err)
			continue
		}
		p.log.Info("group provisioned", "group", group.Name, "repo", fmt.Sprintf("%s/%s", p.org, repoName))
		if created {
			report.Record(repoName, OutcomeCreated)
		} else {
			report.Record(repoName, OutcomeAlreadyExists)
		}
	}

	return report, nil
}

// ensureGroupRepo performs the per-group provisioning steps. teamsByName
// and reposByName are the prefetched remote state and are updated in place.
// Returns whether the repository was newly created.
func (p *Provisioner) ensureGroupRepo(
	group roster.Group,
	teamName, repoName string,
	permission forge.Permission,
	students map[int64]roster.Student,
	teamsByName map[string]forge.Team,
	reposByName map[string]bool,
) (bool, error) {
	if err := forge.ValidateTeamName(teamName); err != nil {
		return false, err
	}
	if err := forge.ValidateRepoName(repoName); err != nil {
		return false, err
	}

	team, ok := teamsByName[teamName]
	if !ok {
		created, err := p.client.CreateTeam(p.org, forge.TeamConfig{
			Name:        teamName,
			Description: fmt.Sprintf("Group %s", group.Name),
			Permission:  permission,
		})
		if err != nil {
			return false, err
		}
		team = *created
		teamsByName[teamName] = team
		p.log.Info("team created", "team", fmt.Sprintf("%s/%s", p.org, teamName))
	}

	createdRepo := false
	if !reposByName[repoName] {
		created, err := p.ensureRepo(repoName)
		if err != nil {
			return false, err
		}
		reposByName[repoName] = true
		createdRepo = created
		if created {
			p.log.Info("group repo created", "repo", fmt.Sprintf("%s/%s", p.org, repoName))
		} else {
			p.log.Warn("group repo already exists", "repo", fmt.Sprintf("%s/%s", p.org, repoName))
		}
	}

	if err := p.client.AddTeamRepository(p.org, team.Slug, repoName, permission); err != nil {
		return createdRepo, err
	}

	resolved := 0
	for _, membership := range group.Members {
		student, ok := students[membership.StudentID]
		if !ok {
			p.log.Warn("group member not in roster", "group", group.Name, "student_id", membership.StudentID)
			continue
		}
		username, err := p.resolver.Resolve(student)
		if err != nil {
			p.log.Warn("cannot resolve group member", "group", group.Name, "student", student.Name, "error", err)
			continue
		}
		if err := p.client.AddTeamMember(p.org, team.Slug, username); err != nil {
			return createdRepo, err
		}
		if err := p.client.AddCollaborator(p.org, repoName, username, permission); err != nil {
			return createdRepo, err
		}
		resolved++
	}

	return createdRepo, p.ApplyProtection(repoName, p.branch, RequiredApprovals(resolved))
}

// ApplyProtection replaces the branch protection rule of a repository
// branch. The previous rule is deleted first (a missing rule is fine), so
// the policy on the branch always reflects exactly the current group size.
// The delete-then-create window is not atomic against the remote platform;
// concurrent runs must be serialized by the deployment.
func (p *Provisioner) ApplyProtection(repoName, branch string, requiredApprovals int) error {
	if requiredApprovals < 0 {
		requiredApprovals = 0
	}

	if err := p.client.DeleteBranchProtection(p.org, repoName, branch); err != nil {
		if !forge.IsNotFound(err) {
			return err
		}
	}

	policy := forge.ProtectionPolicy{
		Branch:              branch,
		RequiredApprovals:   requiredApprovals,
		DismissStaleReviews: true,
		RequireUpToDate:     true,
		StatusCheckContexts: p.statusChecks,
		PushAllowlistTeams:  []string{p.ownersTeam},
	}
	if err := p.client.CreateBranchProtection(p.org, repoName, policy); err != nil {
		return err
	}

	p.log.Info("branch protection applied", "repo", repoName, "branch", branch, "required_approvals", requiredApprovals)
	return nil
}

// ensureRepo creates a private repository, treating a conflict as "already
// exists". Returns whether the repository was newly created.
func (p *Provisioner) ensureRepo(name string) (bool, error) {
	_, err := p.client.CreateRepository(p.org, forge.RepositoryConfig{
		Name:     name,
		Private:  true,
		AutoInit: false,
	})
	if err != nil {
		if forge.IsConflict(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
