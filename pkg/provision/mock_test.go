package provision

import (
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"courseops/pkg/forge"
)

// MockAPIClient is a mock implementation of forge.APIClient for testing
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) ListRepositories(org string) ([]forge.Repository, error) {
	args := m.Called(org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forge.Repository), args.Error(1)
}

func (m *MockAPIClient) CreateRepository(org string, config forge.RepositoryConfig) (*forge.Repository, error) {
	args := m.Called(org, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forge.Repository), args.Error(1)
}

func (m *MockAPIClient) ArchiveRepository(org, name string) error {
	args := m.Called(org, name)
	return args.Error(0)
}

func (m *MockAPIClient) ListTeams(org string) ([]forge.Team, error) {
	args := m.Called(org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forge.Team), args.Error(1)
}

func (m *MockAPIClient) FindTeamByName(org, name string) (*forge.Team, error) {
	args := m.Called(org, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forge.Team), args.Error(1)
}

func (m *MockAPIClient) CreateTeam(org string, config forge.TeamConfig) (*forge.Team, error) {
	args := m.Called(org, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forge.Team), args.Error(1)
}

func (m *MockAPIClient) ListTeamMembers(org, slug string) ([]string, error) {
	args := m.Called(org, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAPIClient) AddTeamMember(org, slug, username string) error {
	args := m.Called(org, slug, username)
	return args.Error(0)
}

func (m *MockAPIClient) AddTeamRepository(org, slug, repo string, permission forge.Permission) error {
	args := m.Called(org, slug, repo, permission)
	return args.Error(0)
}

func (m *MockAPIClient) ListCollaborators(org, repo string) ([]forge.Collaborator, error) {
	args := m.Called(org, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forge.Collaborator), args.Error(1)
}

func (m *MockAPIClient) AddCollaborator(org, repo, username string, permission forge.Permission) error {
	args := m.Called(org, repo, username, permission)
	return args.Error(0)
}

func (m *MockAPIClient) CreateBranchProtection(org, repo string, policy forge.ProtectionPolicy) error {
	args := m.Called(org, repo, policy)
	return args.Error(0)
}

func (m *MockAPIClient) DeleteBranchProtection(org, repo, branch string) error {
	args := m.Called(org, repo, branch)
	return args.Error(0)
}

func (m *MockAPIClient) ListCommits(org, repo string) ([]forge.Commit, error) {
	args := m.Called(org, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forge.Commit), args.Error(1)
}

func (m *MockAPIClient) ListIssues(org, repo, state string) ([]forge.Issue, error) {
	args := m.Called(org, repo, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forge.Issue), args.Error(1)
}

func (m *MockAPIClient) CreateIssue(org, repo string, issue forge.IssueRequest) error {
	args := m.Called(org, repo, issue)
	return args.Error(0)
}

func (m *MockAPIClient) CloseIssue(org, repo string, number int) error {
	args := m.Called(org, repo, number)
	return args.Error(0)
}

func (m *MockAPIClient) CreateMilestone(org, repo string, milestone forge.MilestoneConfig) error {
	args := m.Called(org, repo, milestone)
	return args.Error(0)
}

// newTestProvisioner builds a provisioner with a quiet logger and default
// options for the test organization.
func newTestProvisioner(client forge.APIClient) *Provisioner {
	return New(client, "test-org", nil, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}
