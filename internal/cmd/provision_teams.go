package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var teamsRosterPath string

var provisionTeamsCmd = &cobra.Command{
	Use:   "teams <team-name>...",
	Short: "Sync team memberships against the roster",
	Long: `Sync the member set of one or more existing teams against the roster.

Students missing from a team are added. Students already present are left
alone. Remote members that do not appear in the roster are reported as
unexpected but never removed.

Examples:
  courseops provision teams students
  courseops provision teams students teaching-assistants --roster roster.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProvisionTeams,
}

func init() {
	provisionTeamsCmd.Flags().StringVar(&teamsRosterPath, "roster", "", "Path to roster file (overrides roster.path from config)")
}

func runProvisionTeams(_ *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	src, err := loadRoster(cfg, teamsRosterPath)
	if err != nil {
		return err
	}

	students, err := src.Students()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	var failed bool
	for _, teamName := range args {
		fmt.Printf("Syncing team %s (%d roster students)...\n", teamName, len(students))

		report, err := prov.SyncTeamMembership(teamName, students)
		if err != nil {
			return fmt.Errorf("failed to sync team %s: %w", teamName, err)
		}

		printReport(report)
		if report.HasFailures() {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("one or more teams had membership failures")
	}
	return nil
}
