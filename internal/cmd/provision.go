package cmd

import (
	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision teams, repositories and memberships from the roster",
	Long: `Provision reconciles the hosting organization against the course roster.

Subcommands cover the three provisioning passes:
  teams     Sync team memberships against the roster
  personal  Create one private repository per student
  groups    Create a team and repository per roster group`,
}

func init() {
	provisionCmd.AddCommand(provisionTeamsCmd)
	provisionCmd.AddCommand(provisionPersonalCmd)
	provisionCmd.AddCommand(provisionGroupsCmd)
}
