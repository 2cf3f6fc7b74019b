package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"courseops/pkg/forge"
	"courseops/pkg/provision"
)

var (
	groupsRosterPath string
	groupsPrefix     string
	groupsPermission string
)

var provisionGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Create a team and repository per roster group",
	Long: `Create a team and a private repository for every group in the roster,
link the team to the repository, add each group member to both, and apply
branch protection sized to the group.

Branch protection requires one approval fewer than the number of members
whose accounts resolved, dismisses stale reviews, requires up-to-date
branches and the configured status checks, and restricts pushes to the
owners team.

Examples:
  courseops provision groups
  courseops provision groups --prefix p1- --permission write`,
	Args: cobra.NoArgs,
	RunE: runProvisionGroups,
}

func init() {
	provisionGroupsCmd.Flags().StringVar(&groupsRosterPath, "roster", "", "Path to roster file (overrides roster.path from config)")
	provisionGroupsCmd.Flags().StringVar(&groupsPrefix, "prefix", "", "Only provision groups whose name carries this prefix; team and repository names keep it")
	provisionGroupsCmd.Flags().StringVar(&groupsPermission, "permission", "", "Team permission on the group repository (read, write, admin)")
}

func runProvisionGroups(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	src, err := loadRoster(cfg, groupsRosterPath)
	if err != nil {
		return err
	}

	students, err := src.Students()
	if err != nil {
		return err
	}
	groups, err := src.Groups()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	policy := provision.GroupPolicy{}
	if groupsPrefix != "" {
		policy.TeamName = provision.PrefixFilter(groupsPrefix)
		policy.RepoName = provision.PrefixFilter(groupsPrefix)
	}

	permission := groupsPermission
	if permission == "" {
		permission = cfg.Provision.Permission
	}
	if permission != "" {
		p := forge.Permission(permission)
		if !p.Valid() {
			return fmt.Errorf("invalid permission %q: must be one of read, write, admin", permission)
		}
		policy.Permission = p
	}

	fmt.Printf("Provisioning %d groups (%d roster students)...\n", len(groups), len(students))

	report, err := prov.EnsureGroupRepos(groups, students, policy)
	if err != nil {
		return fmt.Errorf("failed to provision groups: %w", err)
	}

	printReport(report)
	return reportErr(report)
}
