package provision

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"courseops/pkg/forge"
	"courseops/pkg/roster"
)

func conflictErr() error {
	return forge.NewAPIError(forge.ErrorTypeConflict, "name already exists", nil)
}

func notFoundErr() error {
	return forge.NewAPIError(forge.ErrorTypeNotFound, "resource not found", nil)
}

func TestSyncTeamMembership(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{
		{ID: 1, Name: "Alice", Login: "alice"},
		{ID: 2, Name: "Bob", Login: "bob"},
		{ID: 3, Name: "Carol"}, // no account linked
	}

	client.On("FindTeamByName", "test-org", "students").Return(&forge.Team{ID: 10, Name: "students", Slug: "students"}, nil)
	// alice is already a member; stray-user does not appear in the roster.
	client.On("ListTeamMembers", "test-org", "students").Return([]string{"alice", "stray-user"}, nil)
	client.On("AddTeamMember", "test-org", "students", "bob").Return(nil)

	report, err := prov.SyncTeamMembership("students", students)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, report.Succeeded())
	assert.Equal(t, []string{"stray-user"}, report.Unexpected())
	assert.Len(t, report.Failed(), 1) // Carol could not be resolved
	assert.True(t, report.HasFailures())

	// A remote member absent from the roster is reported, never removed.
	client.AssertNotCalled(t, "AddTeamMember", "test-org", "students", "alice")
	client.AssertExpectations(t)
}

func TestSyncTeamMembership_TeamMissing(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	client.On("FindTeamByName", "test-org", "ghosts").Return(nil, notFoundErr())

	_, err := prov.SyncTeamMembership("ghosts", nil)

	assert.True(t, forge.IsNotFound(err))
	client.AssertExpectations(t)
}

func TestSyncTeamMembership_InvalidUsername(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{{ID: 1, Name: "Alice", Login: "-broken-"}}

	client.On("FindTeamByName", "test-org", "students").Return(&forge.Team{Slug: "students"}, nil)
	client.On("ListTeamMembers", "test-org", "students").Return([]string{}, nil)

	report, err := prov.SyncTeamMembership("students", students)

	require.NoError(t, err)
	assert.Contains(t, report.Failed(), "Alice")
	client.AssertNotCalled(t, "AddTeamMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncTeamMembership_AddFailureIsolated(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{
		{ID: 1, Name: "Alice", Login: "alice"},
		{ID: 2, Name: "Bob", Login: "bob"},
	}

	client.On("FindTeamByName", "test-org", "students").Return(&forge.Team{Slug: "students"}, nil)
	client.On("ListTeamMembers", "test-org", "students").Return([]string{}, nil)
	client.On("AddTeamMember", "test-org", "students", "alice").Return(errors.New("boom"))
	client.On("AddTeamMember", "test-org", "students", "bob").Return(nil)

	report, err := prov.SyncTeamMembership("students", students)

	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, report.Succeeded())
	assert.Contains(t, report.Failed(), "Alice")
	client.AssertExpectations(t)
}

func TestEnsurePersonalRepos(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{
		{ID: 1, Name: "Alice", Login: "alice"},
		{ID: 2, Name: "Bob", Login: "bob"},
		{ID: 3, Name: "Carol"}, // opted out: no login means no repo name
	}

	client.On("CreateRepository", "test-org", forge.RepositoryConfig{Name: "alice", Private: true}).
		Return(&forge.Repository{Name: "alice"}, nil)
	// bob's repo already exists; the collaborator grant still runs.
	client.On("CreateRepository", "test-org", forge.RepositoryConfig{Name: "bob", Private: true}).
		Return(nil, conflictErr())
	client.On("AddCollaborator", "test-org", "alice", "alice", forge.PermissionWrite).Return(nil)
	client.On("AddCollaborator", "test-org", "bob", "bob", forge.PermissionWrite).Return(nil)

	report, err := prov.EnsurePersonalRepos(students, nil)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, report.Succeeded())
	assert.False(t, report.HasFailures())

	skipped := 0
	for _, entry := range report.Entries {
		if entry.Outcome == OutcomeSkipped {
			skipped++
			assert.Equal(t, "Carol", entry.Entity)
		}
	}
	assert.Equal(t, 1, skipped)
	client.AssertExpectations(t)
}

func TestEnsurePersonalRepos_InvalidName(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{{ID: 1, Name: "Alice", Login: "alice"}}

	report, err := prov.EnsurePersonalRepos(students, func(s roster.Student) string {
		return s.Login + "/evil"
	})

	require.NoError(t, err)
	assert.True(t, report.HasFailures())
	client.AssertNotCalled(t, "CreateRepository", mock.Anything, mock.Anything)
}

func TestEnsurePersonalRepos_CreateFailureIsolated(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{
		{ID: 1, Name: "Alice", Login: "alice"},
		{ID: 2, Name: "Bob", Login: "bob"},
	}

	client.On("CreateRepository", "test-org", forge.RepositoryConfig{Name: "alice", Private: true}).
		Return(nil, errors.New("boom"))
	client.On("CreateRepository", "test-org", forge.RepositoryConfig{Name: "bob", Private: true}).
		Return(&forge.Repository{Name: "bob"}, nil)
	client.On("AddCollaborator", "test-org", "bob", "bob", forge.PermissionWrite).Return(nil)

	report, err := prov.EnsurePersonalRepos(students, nil)

	require.NoError(t, err)
	assert.Contains(t, report.Failed(), "alice")
	assert.Equal(t, []string{"bob"}, report.Succeeded())
	client.AssertExpectations(t)
}

func TestEnsureGroupRepos(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{
		{ID: 1, Name: "Alice", Login: "alice"},
		{ID: 2, Name: "Bob", Login: "bob"},
		{ID: 3, Name: "Carol", Login: "carol"},
		{ID: 4, Name: "Dan", Login: "dan"},
		{ID: 5, Name: "Eve"}, // never linked an account
	}
	groups := []roster.Group{
		{Name: "teapot", Members: []roster.Membership{
			{StudentID: 1}, {StudentID: 2}, {StudentID: 3}, {StudentID: 4}, {StudentID: 5},
		}},
	}

	client.On("ListTeams", "test-org").Return([]forge.Team{}, nil)
	client.On("ListRepositories", "test-org").Return([]forge.Repository{}, nil)
	client.On("CreateTeam", "test-org", forge.TeamConfig{
		Name:        "teapot",
		Description: "Group teapot",
		Permission:  forge.PermissionWrite,
	}).Return(&forge.Team{ID: 20, Name: "teapot", Slug: "teapot"}, nil)
	client.On("CreateRepository", "test-org", forge.RepositoryConfig{Name: "teapot", Private: true}).
		Return(&forge.Repository{Name: "teapot"}, nil)
	client.On("AddTeamRepository", "test-org", "teapot", "teapot", forge.PermissionWrite).Return(nil)
	for _, login := range []string{"alice", "bob", "carol", "dan"} {
		client.On("AddTeamMember", "test-org", "teapot", login).Return(nil)
		client.On("AddCollaborator", "test-org", "teapot", login, forge.PermissionWrite).Return(nil)
	}
	client.On("DeleteBranchProtection", "test-org", "teapot", "master").Return(notFoundErr())
	// Four of five members resolved, so three approvals are required.
	client.On("CreateBranchProtection", "test-org", "teapot", forge.ProtectionPolicy{
		Branch:              "master",
		RequiredApprovals:   3,
		DismissStaleReviews: true,
		RequireUpToDate:     true,
		StatusCheckContexts: []string{"continuous-integration/drone/pr"},
		PushAllowlistTeams:  []string{"owners"},
	}).Return(nil)

	report, err := prov.EnsureGroupRepos(groups, students, GroupPolicy{})

	require.NoError(t, err)
	assert.Equal(t, []string{"teapot"}, report.Succeeded())
	assert.False(t, report.HasFailures())
	client.AssertExpectations(t)
}

func TestEnsureGroupRepos_Idempotent(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{{ID: 1, Name: "Alice", Login: "alice"}}
	groups := []roster.Group{
		{Name: "teapot", Members: []roster.Membership{{StudentID: 1}}},
	}

	// Both the team and the repository already exist remotely.
	client.On("ListTeams", "test-org").Return([]forge.Team{{ID: 20, Name: "teapot", Slug: "teapot"}}, nil)
	client.On("ListRepositories", "test-org").Return([]forge.Repository{{Name: "teapot"}}, nil)
	client.On("AddTeamRepository", "test-org", "teapot", "teapot", forge.PermissionWrite).Return(nil)
	client.On("AddTeamMember", "test-org", "teapot", "alice").Return(nil)
	client.On("AddCollaborator", "test-org", "teapot", "alice", forge.PermissionWrite).Return(nil)
	client.On("DeleteBranchProtection", "test-org", "teapot", "master").Return(nil)
	client.On("CreateBranchProtection", "test-org", "teapot", mock.Anything).Return(nil)

	report, err := prov.EnsureGroupRepos(groups, students, GroupPolicy{})

	require.NoError(t, err)
	assert.Equal(t, []string{"teapot"}, report.Succeeded())
	client.AssertNotCalled(t, "CreateTeam", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "CreateRepository", mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}

func TestEnsureGroupRepos_PrefixPolicy(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{{ID: 1, Name: "Alice", Login: "alice"}}
	groups := []roster.Group{
		{Name: "p1-teapot", Members: []roster.Membership{{StudentID: 1}}},
		{Name: "other", Members: []roster.Membership{{StudentID: 1}}},
	}

	client.On("ListTeams", "test-org").Return([]forge.Team{{Name: "p1-teapot", Slug: "p1-teapot"}}, nil)
	client.On("ListRepositories", "test-org").Return([]forge.Repository{{Name: "p1-teapot"}}, nil)
	client.On("AddTeamRepository", "test-org", "p1-teapot", "p1-teapot", forge.PermissionRead).Return(nil)
	client.On("AddTeamMember", "test-org", "p1-teapot", "alice").Return(nil)
	client.On("AddCollaborator", "test-org", "p1-teapot", "alice", forge.PermissionRead).Return(nil)
	client.On("DeleteBranchProtection", "test-org", "p1-teapot", "master").Return(nil)
	client.On("CreateBranchProtection", "test-org", "p1-teapot", mock.Anything).Return(nil)

	report, err := prov.EnsureGroupRepos(groups, students, GroupPolicy{
		TeamName:   PrefixFilter("p1-"),
		RepoName:   PrefixFilter("p1-"),
		Permission: forge.PermissionRead,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"p1-teapot"}, report.Succeeded())

	var skipped []string
	for _, entry := range report.Entries {
		if entry.Outcome == OutcomeSkipped {
			skipped = append(skipped, entry.Entity)
		}
	}
	assert.Equal(t, []string{"other"}, skipped)
	client.AssertExpectations(t)
}

func TestEnsureGroupRepos_GroupFailureIsolated(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	students := []roster.Student{
		{ID: 1, Name: "Alice", Login: "alice"},
		{ID: 2, Name: "Bob", Login: "bob"},
	}
	groups := []roster.Group{
		{Name: "broken", Members: []roster.Membership{{StudentID: 1}}},
		{Name: "fine", Members: []roster.Membership{{StudentID: 2}}},
	}

	client.On("ListTeams", "test-org").Return([]forge.Team{
		{Name: "broken", Slug: "broken"},
		{Name: "fine", Slug: "fine"},
	}, nil)
	client.On("ListRepositories", "test-org").Return([]forge.Repository{
		{Name: "broken"},
		{Name: "fine"},
	}, nil)
	client.On("AddTeamRepository", "test-org", "broken", "broken", forge.PermissionWrite).
		Return(errors.New("boom"))
	client.On("AddTeamRepository", "test-org", "fine", "fine", forge.PermissionWrite).Return(nil)
	client.On("AddTeamMember", "test-org", "fine", "bob").Return(nil)
	client.On("AddCollaborator", "test-org", "fine", "bob", forge.PermissionWrite).Return(nil)
	client.On("DeleteBranchProtection", "test-org", "fine", "master").Return(nil)
	client.On("CreateBranchProtection", "test-org", "fine", mock.Anything).Return(nil)

	report, err := prov.EnsureGroupRepos(groups, students, GroupPolicy{})

	require.NoError(t, err)
	assert.Contains(t, report.Failed(), "broken")
	assert.Equal(t, []string{"fine"}, report.Succeeded())
	client.AssertExpectations(t)
}

func TestApplyProtection(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	client.On("DeleteBranchProtection", "test-org", "teapot", "master").Return(nil)
	client.On("CreateBranchProtection", "test-org", "teapot", forge.ProtectionPolicy{
		Branch:              "master",
		RequiredApprovals:   2,
		DismissStaleReviews: true,
		RequireUpToDate:     true,
		StatusCheckContexts: []string{"continuous-integration/drone/pr"},
		PushAllowlistTeams:  []string{"owners"},
	}).Return(nil)

	err := prov.ApplyProtection("teapot", "master", 2)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestApplyProtection_MissingRuleTolerated(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	client.On("DeleteBranchProtection", "test-org", "teapot", "master").Return(notFoundErr())
	client.On("CreateBranchProtection", "test-org", "teapot", mock.Anything).Return(nil)

	err := prov.ApplyProtection("teapot", "master", 0)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestApplyProtection_DeleteFailureSurfaces(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	client.On("DeleteBranchProtection", "test-org", "teapot", "master").
		Return(forge.NewAPIError(forge.ErrorTypePermission, "insufficient permissions", nil))

	err := prov.ApplyProtection("teapot", "master", 1)

	assert.Error(t, err)
	client.AssertNotCalled(t, "CreateBranchProtection", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyProtection_ClampsNegativeApprovals(t *testing.T) {
	client := &MockAPIClient{}
	prov := newTestProvisioner(client)

	client.On("DeleteBranchProtection", "test-org", "teapot", "master").Return(nil)
	client.On("CreateBranchProtection", "test-org", "teapot", mock.MatchedBy(func(p forge.ProtectionPolicy) bool {
		return p.RequiredApprovals == 0
	})).Return(nil)

	err := prov.ApplyProtection("teapot", "master", -1)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestOptionsOverrides(t *testing.T) {
	client := &MockAPIClient{}
	prov := New(client, "test-org", nil, Options{
		DefaultBranch:       "main",
		StatusCheckContexts: []string{"ci/build"},
		OwnersTeam:          "staff",
	})

	client.On("DeleteBranchProtection", "test-org", "teapot", "main").Return(nil)
	client.On("CreateBranchProtection", "test-org", "teapot", forge.ProtectionPolicy{
		Branch:              "main",
		RequiredApprovals:   1,
		DismissStaleReviews: true,
		RequireUpToDate:     true,
		StatusCheckContexts: []string{"ci/build"},
		PushAllowlistTeams:  []string{"staff"},
	}).Return(nil)

	err := prov.ApplyProtection("teapot", prov.branch, 1)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}
