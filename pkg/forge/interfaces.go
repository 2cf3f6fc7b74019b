package forge

// APIClient defines the hosting platform operations used by the
// provisioning engine. All list operations return the full concatenation
// of every page.
type APIClient interface {
	// Repository operations
	ListRepositories(org string) ([]Repository, error)
	CreateRepository(org string, config RepositoryConfig) (*Repository, error)
	ArchiveRepository(org, name string) error

	// Team operations
	ListTeams(org string) ([]Team, error)
	FindTeamByName(org, name string) (*Team, error)
	CreateTeam(org string, config TeamConfig) (*Team, error)
	ListTeamMembers(org, slug string) ([]string, error)
	AddTeamMember(org, slug, username string) error
	AddTeamRepository(org, slug, repo string, permission Permission) error

	// Collaborator operations
	ListCollaborators(org, repo string) ([]Collaborator, error)
	AddCollaborator(org, repo, username string, permission Permission) error

	// Branch protection operations
	CreateBranchProtection(org, repo string, policy ProtectionPolicy) error
	DeleteBranchProtection(org, repo, branch string) error

	// Commit operations
	ListCommits(org, repo string) ([]Commit, error)

	// Issue and milestone operations
	ListIssues(org, repo, state string) ([]Issue, error)
	CreateIssue(org, repo string, issue IssueRequest) error
	CloseIssue(org, repo string, number int) error
	CreateMilestone(org, repo string, milestone MilestoneConfig) error
}
