package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveYes bool

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Inspect and archive the organization's repositories",
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all repository names",
	Args:  cobra.NoArgs,
	RunE:  runRepoList,
}

var repoOrphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List repositories without outside collaborators",
	Long: `List repositories that have no collaborators beyond the organization's
own affiliation, typically repositories whose student was never resolved.`,
	Args: cobra.NoArgs,
	RunE: runRepoOrphans,
}

var repoArchiveAllCmd = &cobra.Command{
	Use:   "archive-all",
	Short: "Archive every repository in the organization",
	Long: `Archive every repository in the organization, typically at the end of
a course term. Already-archived repositories are skipped. Archiving makes
repositories read-only; it does not delete anything.`,
	Args: cobra.NoArgs,
	RunE: runRepoArchiveAll,
}

func init() {
	repoArchiveAllCmd.Flags().BoolVar(&archiveYes, "yes", false, "Skip the confirmation prompt")

	repoCmd.AddCommand(repoListCmd)
	repoCmd.AddCommand(repoOrphansCmd)
	repoCmd.AddCommand(repoArchiveAllCmd)
}

func runRepoList(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	names, err := prov.RepoNames()
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runRepoOrphans(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	names, err := prov.NoCollaboratorRepos()
	if err != nil {
		return fmt.Errorf("failed to inspect collaborators: %w", err)
	}

	if len(names) == 0 {
		fmt.Println("✅ Every repository has collaborators.")
		return nil
	}

	fmt.Printf("⚠️  %d repositories without collaborators:\n", len(names))
	for _, name := range names {
		fmt.Printf("  • %s\n", name)
	}
	return nil
}

func runRepoArchiveAll(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	if !archiveYes {
		fmt.Printf("⚠️  This archives every repository in %s, making them read-only.\n", cfg.GitHub.Organization)
		fmt.Print("Continue? (y/N): ")
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Archive cancelled.")
			return nil
		}
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	report, err := prov.ArchiveAllRepos()
	if err != nil {
		return fmt.Errorf("failed to archive repositories: %w", err)
	}

	printReport(report)
	return reportErr(report)
}
