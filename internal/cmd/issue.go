package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	issueRepo      string
	issueBody      string
	issueAssignAll bool
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage issues across the organization's repositories",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create an issue in a repository",
	Long: `Create an issue in a repository. With --assign-all, every repository
collaborator is assigned to the issue.

Examples:
  courseops issue create "Homework 1 released" --repo announcements --body "See the course page."
  courseops issue create "Grade posted" --repo student-login --assign-all`,
	Args: cobra.ExactArgs(1),
	RunE: runIssueCreate,
}

var issueCheckCmd = &cobra.Command{
	Use:   "check <title>",
	Short: "Check whether an issue with the exact title exists",
	Long: `Check whether a repository has an issue whose title matches exactly,
in any state. Exits zero when it exists, non-zero otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runIssueCheck,
}

var issueCloseAllCmd = &cobra.Command{
	Use:   "close-all",
	Short: "Close every open issue in every repository",
	Args:  cobra.NoArgs,
	RunE:  runIssueCloseAll,
}

func init() {
	issueCreateCmd.Flags().StringVar(&issueRepo, "repo", "", "Repository name (required)")
	issueCreateCmd.Flags().StringVar(&issueBody, "body", "", "Issue body")
	issueCreateCmd.Flags().BoolVar(&issueAssignAll, "assign-all", false, "Assign all repository collaborators to the issue")
	_ = issueCreateCmd.MarkFlagRequired("repo")

	issueCheckCmd.Flags().StringVar(&issueRepo, "repo", "", "Repository name (required)")
	_ = issueCheckCmd.MarkFlagRequired("repo")

	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueCheckCmd)
	issueCmd.AddCommand(issueCloseAllCmd)
}

func runIssueCreate(_ *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	title := args[0]
	if err := prov.CreateIssue(issueRepo, title, issueBody, issueAssignAll); err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	fmt.Printf("✅ Created issue %q in %s\n", title, issueRepo)
	return nil
}

func runIssueCheck(_ *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	title := args[0]
	exists, err := prov.IssueExists(issueRepo, title)
	if err != nil {
		return fmt.Errorf("failed to check issue: %w", err)
	}

	if !exists {
		return fmt.Errorf("no issue titled %q in %s", title, issueRepo)
	}

	fmt.Printf("✅ Issue %q exists in %s\n", title, issueRepo)
	return nil
}

func runIssueCloseAll(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	fmt.Println("Closing open issues across all repositories...")

	report, err := prov.CloseAllIssues()
	if err != nil {
		return fmt.Errorf("failed to close issues: %w", err)
	}

	printReport(report)
	return reportErr(report)
}
