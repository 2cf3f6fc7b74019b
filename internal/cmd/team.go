package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Inspect the organization's teams",
}

var teamMembersCmd = &cobra.Command{
	Use:   "members",
	Short: "List members of every team except the owners team",
	Args:  cobra.NoArgs,
	RunE:  runTeamMembers,
}

func init() {
	teamCmd.AddCommand(teamMembersCmd)
}

func runTeamMembers(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	members, err := prov.AllTeamMembers()
	if err != nil {
		return fmt.Errorf("failed to list team members: %w", err)
	}

	teams := make([]string, 0, len(members))
	for team := range members {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	for _, team := range teams {
		fmt.Printf("%s (%d members):\n", team, len(members[team]))
		for _, login := range members[team] {
			fmt.Printf("  • %s\n", login)
		}
	}
	return nil
}
