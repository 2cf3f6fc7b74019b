package provision

import (
	"sort"
	"strings"

	"courseops/pkg/forge"
)

// RepoStatuses collects a commit and issue count for every repository in
// the organization. A conflict from the commit listing means the repository
// is empty and counts as zero commits rather than an error.
func (p *Provisioner) RepoStatuses() (map[string]forge.RepoStatus, error) {
	repos, err := p.client.ListRepositories(p.org)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]forge.RepoStatus, len(repos))
	for _, repo := range repos {
		commits, err := p.client.ListCommits(p.org, repo.Name)
		if err != nil {
			if !forge.IsConflict(err) {
				return nil, err
			}
			commits = nil // empty repository
		}

		issues, err := p.client.ListIssues(p.org, repo.Name, "all")
		if err != nil {
			return nil, err
		}

		statuses[repo.Name] = forge.RepoStatus{
			Commits: len(commits),
			Issues:  len(issues),
		}
	}

	return statuses, nil
}

// FilterStatuses returns the names of repositories whose commit count and
// issue count both fall below the given thresholds, sorted by name.
func FilterStatuses(statuses map[string]forge.RepoStatus, commitLT, issueLT int) []string {
	var names []string
	for name, status := range statuses {
		if status.Commits < commitLT && status.Issues < issueLT {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// RepoNames lists the names of every repository in the organization.
func (p *Provisioner) RepoNames() ([]string, error) {
	repos, err := p.client.ListRepositories(p.org)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		names = append(names, repo.Name)
	}
	return names, nil
}

// NoCollaboratorRepos reports repositories that have no collaborators at
// all, usually a sign that provisioning never attached a student.
func (p *Provisioner) NoCollaboratorRepos() ([]string, error) {
	repos, err := p.client.ListRepositories(p.org)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, repo := range repos {
		collaborators, err := p.client.ListCollaborators(p.org, repo.Name)
		if err != nil {
			return nil, err
		}
		if len(collaborators) > 0 {
			continue
		}
		p.log.Info("repository has no collaborators", "repo", repo.Name)
		names = append(names, repo.Name)
	}
	return names, nil
}

// ArchiveAllRepos archives every repository in the organization.
func (p *Provisioner) ArchiveAllRepos() (*Report, error) {
	repos, err := p.client.ListRepositories(p.org)
	if err != nil {
		return nil, err
	}

	report := NewReport()
	for _, repo := range repos {
		if repo.Archived {
			report.Record(repo.Name, OutcomeSkipped)
			continue
		}
		if err := p.client.ArchiveRepository(p.org, repo.Name); err != nil {
			p.log.Error("failed to archive repository", "repo", repo.Name, "error", err)
			report.RecordError(repo.Name, err)
			continue
		}
		p.log.Info("repository archived", "repo", repo.Name)
		report.Record(repo.Name, OutcomeAdded)
	}
	return report, nil
}

// AllTeamMembers maps every team name to its member logins (lowercased),
// skipping the owners team. Teams whose member list cannot be fetched are
// logged and skipped.
func (p *Provisioner) AllTeamMembers() (map[string][]string, error) {
	teams, err := p.client.ListTeams(p.org)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(teams))
	for _, team := range teams {
		if strings.EqualFold(team.Name, p.ownersTeam) || strings.EqualFold(team.Slug, p.ownersTeam) {
			continue
		}
		members, err := p.client.ListTeamMembers(p.org, team.Slug)
		if err != nil {
			p.log.Warn("failed to list team members", "team", team.Name, "error", err)
			continue
		}
		lowered := make([]string, 0, len(members))
		for _, member := range members {
			lowered = append(lowered, strings.ToLower(member))
		}
		result[team.Name] = lowered
	}
	return result, nil
}
