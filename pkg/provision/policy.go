package provision

import (
	"regexp"
	"strings"

	"courseops/pkg/forge"
	"courseops/pkg/roster"
)

// RepoNameFunc derives a personal repository name from a student. Returning
// an empty string opts the student out of provisioning.
type RepoNameFunc func(student roster.Student) string

// NameFunc derives a team or repository name from a group name. Returning
// an empty string opts the group out.
type NameFunc func(groupName string) string

// GroupPolicy controls group-based provisioning: how team and repository
// names derive from group names and which permission the team gets.
type GroupPolicy struct {
	TeamName   NameFunc
	RepoName   NameFunc
	Permission forge.Permission
}

// Identity is the NameFunc that keeps the group name unchanged.
func Identity(name string) string {
	return name
}

// PrefixFilter returns a NameFunc that passes through names carrying the
// prefix and opts out everything else. An empty prefix matches everything.
func PrefixFilter(prefix string) NameFunc {
	return func(name string) string {
		if strings.HasPrefix(name, prefix) {
			return name
		}
		return ""
	}
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Slugify turns a free-form group or student name into a repository-safe
// name: spaces collapse to single hyphens and disallowed characters are
// dropped.
func Slugify(name string) string {
	slug := strings.Join(strings.Fields(strings.TrimSpace(name)), "-")
	slug = invalidNameChars.ReplaceAllString(slug, "")
	return strings.Trim(slug, ".")
}

// LoginRepoName derives a personal repository name from the student's
// hosting platform login. Students without a login are opted out; their
// repositories cannot be attributed to an account anyway.
func LoginRepoName(student roster.Student) string {
	return student.Login
}

// RequiredApprovals derives the branch protection approval count from the
// number of group members with repository access: every member except the
// author must approve. Groups of size zero or one require no approvals.
func RequiredApprovals(memberCount int) int {
	if memberCount <= 1 {
		return 0
	}
	return memberCount - 1
}
