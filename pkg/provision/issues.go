package provision

import (
	"time"

	"courseops/pkg/forge"
)

// CreateIssue opens an issue on a repository, optionally assigning every
// current collaborator.
func (p *Provisioner) CreateIssue(repoName, title, body string, assignAllCollaborators bool) error {
	var assignees []string
	if assignAllCollaborators {
		collaborators, err := p.client.ListCollaborators(p.org, repoName)
		if err != nil {
			return err
		}
		for _, collaborator := range collaborators {
			assignees = append(assignees, collaborator.Username)
		}
	}

	err := p.client.CreateIssue(p.org, repoName, forge.IssueRequest{
		Title:     title,
		Body:      body,
		Assignees: assignees,
	})
	if err != nil {
		return err
	}

	p.log.Info("issue created", "repo", repoName, "title", title, "assignees", len(assignees))
	return nil
}

// IssueExists reports whether an issue with an exact, case-sensitive title
// match exists among all issues of the repository, in any state.
func (p *Provisioner) IssueExists(repoName, title string) (bool, error) {
	issues, err := p.client.ListIssues(p.org, repoName, "all")
	if err != nil {
		return false, err
	}
	for _, issue := range issues {
		if issue.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// CloseAllIssues closes every open issue and pull request in every
// repository of the organization.
func (p *Provisioner) CloseAllIssues() (*Report, error) {
	names, err := p.RepoNames()
	if err != nil {
		return nil, err
	}

	report := NewReport()
	for _, repoName := range names {
		issues, err := p.client.ListIssues(p.org, repoName, "all")
		if err != nil {
			p.log.Error("failed to list issues", "repo", repoName, "error", err)
			report.RecordError(repoName, err)
			continue
		}
		for _, issue := range issues {
			if issue.State == forge.IssueStateClosed {
				continue
			}
			if err := p.client.CloseIssue(p.org, repoName, issue.Number); err != nil {
				p.log.Error("failed to close issue", "repo", repoName, "number", issue.Number, "error", err)
				report.RecordError(repoName, err)
				continue
			}
			p.log.Info("issue closed", "repo", repoName, "number", issue.Number)
		}
		report.Record(repoName, OutcomeAdded)
	}
	return report, nil
}

// CreateMilestone creates a milestone with a due date on a repository.
func (p *Provisioner) CreateMilestone(repoName, title, description string, dueOn time.Time) error {
	err := p.client.CreateMilestone(p.org, repoName, forge.MilestoneConfig{
		Title:       title,
		Description: description,
		DueOn:       dueOn,
	})
	if err != nil {
		return err
	}

	p.log.Info("milestone created", "repo", repoName, "title", title, "due_on", dueOn)
	return nil
}
