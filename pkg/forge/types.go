package forge

import "time"

// Permission is the access level granted to a team or collaborator.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAdmin Permission = "admin"
)

// Valid reports whether the permission is one of the supported levels.
func (p Permission) Valid() bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return true
	}
	return false
}

// Repository represents a repository in the course organization.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	Archived bool   `json:"archived"`
}

// RepositoryConfig describes a repository to be created.
type RepositoryConfig struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

// Team represents an organization team.
type Team struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Permission Permission `json:"permission"`
}

// TeamConfig describes a team to be created.
type TeamConfig struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Permission  Permission `json:"permission"`
}

// Collaborator represents a user granted direct access to a repository.
type Collaborator struct {
	Username   string `json:"username"`
	Permission string `json:"permission"`
}

// ProtectionPolicy describes a branch protection rule. It fully replaces
// any prior rule on the branch when applied.
type ProtectionPolicy struct {
	Branch              string   `json:"branch"`
	RequiredApprovals   int      `json:"required_approvals"`
	DismissStaleReviews bool     `json:"dismiss_stale_reviews"`
	RequireUpToDate     bool     `json:"require_up_to_date"`
	StatusCheckContexts []string `json:"status_check_contexts,omitempty"`
	PushAllowlistTeams  []string `json:"push_allowlist_teams,omitempty"`
}

// Commit is a single commit on a repository's default branch history.
type Commit struct {
	SHA string `json:"sha"`
}

// Issue represents an issue or pull request on a repository.
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
}

// IssueStateClosed is the terminal issue state.
const IssueStateClosed = "closed"

// IssueRequest describes an issue to be created.
type IssueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

// MilestoneConfig describes a milestone to be created.
type MilestoneConfig struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueOn       time.Time `json:"due_on"`
}

// RepoStatus is a read-only activity snapshot of a repository.
type RepoStatus struct {
	Commits int `json:"commits"`
	Issues  int `json:"issues"`
}
