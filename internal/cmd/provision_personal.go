package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"courseops/pkg/provision"
	"courseops/pkg/roster"
)

var (
	personalRosterPath string
	personalSuffix     string
)

var provisionPersonalCmd = &cobra.Command{
	Use:   "personal",
	Short: "Create one private repository per student",
	Long: `Create a private repository for every student in the roster and add
the student as a collaborator with write permission.

Repository names default to the student's username. Students whose account
cannot be resolved are skipped and reported. Repositories that already
exist are left alone; the collaborator grant still runs.

Examples:
  courseops provision personal
  courseops provision personal --suffix -hw --roster roster.yaml`,
	Args: cobra.NoArgs,
	RunE: runProvisionPersonal,
}

func init() {
	provisionPersonalCmd.Flags().StringVar(&personalRosterPath, "roster", "", "Path to roster file (overrides roster.path from config)")
	provisionPersonalCmd.Flags().StringVar(&personalSuffix, "suffix", "", "Suffix appended to each student's repository name")
}

func runProvisionPersonal(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	src, err := loadRoster(cfg, personalRosterPath)
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

	nameFn := provision.LoginRepoName
	if personalSuffix != "" {
		nameFn = func(s roster.Student) string {
			if s.Login == "" {
				return ""
			}
			return s.Login + personalSuffix
		}
	}

	fmt.Printf("Provisioning personal repositories for %d students...\n", len(students))

	report, err := prov.EnsurePersonalRepos(students, nameFn)
	if err != nil {
		return fmt.Errorf("failed to provision personal repositories: %w", err)
	}

	printReport(report)
	return reportErr(report)
}
