package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"courseops/pkg/provision"
)

var (
	statusCommitLT int
	statusIssueLT  int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report commit and issue counts for every repository",
	Long: `Report per-repository activity: the number of commits on the default
branch and the number of issues. Repositories whose git data is still
empty count zero commits.

With --commit-lt and --issue-lt, only repositories below BOTH thresholds
are listed, flagging inactive repositories.

Examples:
  courseops status
  courseops status --commit-lt 3 --issue-lt 1`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusCommitLT, "commit-lt", 0, "Only list repositories with fewer commits than this")
	statusCmd.Flags().IntVar(&statusIssueLT, "issue-lt", 0, "Only list repositories with fewer issues than this")
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	prov, err := newProvisioner(cfg)
	if err != nil {
		return err
	}

	statuses, err := prov.RepoStatuses()
	if err != nil {
		return fmt.Errorf("failed to collect repository statuses: %w", err)
	}

	if statusCommitLT > 0 || statusIssueLT > 0 {
		inactive := provision.FilterStatuses(statuses, statusCommitLT, statusIssueLT)
		fmt.Printf("Repositories with fewer than %d commits and %d issues:\n", statusCommitLT, statusIssueLT)
		for _, name := range inactive {
			st := statuses[name]
			fmt.Printf("  • %s: %d commits, %d issues\n", name, st.Commits, st.Issues)
		}
		fmt.Printf("\n%d of %d repositories matched\n", len(inactive), len(statuses))
		return nil
	}

	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		st := statuses[name]
		fmt.Printf("  • %s: %d commits, %d issues\n", name, st.Commits, st.Issues)
	}
	fmt.Printf("\n%d repositories\n", len(statuses))

	return nil
}
