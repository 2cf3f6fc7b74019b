package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	milestoneRepo        string
	milestoneDescription string
	milestoneDue         string
)

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage repository milestones",
}

var milestoneCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a milestone in a repository",
	Long: `Create a milestone with an optional description and due date.

Examples:
  courseops milestone create "Project 1" --repo announcements --due 2026-10-01
  courseops milestone create "Final" --repo announcements --description "Final submission deadline" --due 2026-12-15T23:59:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: runMilestoneCreate,
}

func init() {
	milestoneCreateCmd.Flags().StringVar(&milestoneRepo, "repo", "", "Repository name (required)")
	milestoneCreateCmd.Flags().StringVar(&milestoneDescription, "description", "", "Milestone description")
	milestoneCreateCmd.Flags().StringVar(&milestoneDue, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	_ = milestoneCreateCmd.MarkFlagRequired("repo")

	milestoneCmd.AddCommand(milestoneCreateCmd)
}

func runMilestoneCreate(_ *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	var dueOn time.Time
	if milestoneDue != "" {
		dueOn, err = parseDueDate(milestoneDue)
		if err != nil {
			return err
		}
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	title := args[0]
	if err := prov.CreateMilestone(milestoneRepo, title, milestoneDescription, dueOn); err != nil {
		return fmt.Errorf("failed to create milestone: %w", err)
	}

	fmt.Printf("✅ Created milestone %q in %s\n", title, milestoneRepo)
	return nil
}

func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
