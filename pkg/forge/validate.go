package forge

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	validRepoName = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	validUsername = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	validTeamName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ._-]*$`)
)

// ValidateRepoName validates a repository name against the hosting
// platform's naming rules.
func ValidateRepoName(name string) error {
	if name == "" {
		return fmt.Errorf("repository name is required")
	}
	if len(name) > 100 {
		return fmt.Errorf("repository name must be 100 characters or less")
	}
	if !validRepoName.MatchString(name) {
		return fmt.Errorf("repository name %q may only contain alphanumeric characters, periods, hyphens, and underscores", name)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return fmt.Errorf("repository name %q cannot start or end with a period", name)
	}
	return nil
}

// ValidateUsername validates a hosting platform username.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) > 39 {
		return fmt.Errorf("username must be 39 characters or less")
	}
	if !validUsername.MatchString(username) || strings.Contains(username, "--") {
		return fmt.Errorf("username %q is invalid: only alphanumeric characters and single hyphens, cannot start or end with a hyphen", username)
	}
	return nil
}

// ValidateTeamName validates an organization team name.
func ValidateTeamName(name string) error {
	if name == "" {
		return fmt.Errorf("team name cannot be empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("team name must be 100 characters or less")
	}
	if !validTeamName.MatchString(name) {
		return fmt.Errorf("team name %q is invalid: must start with an alphanumeric character", name)
	}
	return nil
}
