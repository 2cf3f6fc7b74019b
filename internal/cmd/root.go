package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courseops/pkg/logging"
)

var (
	rootConfigPath string
	rootLogLevel   string
	rootLogFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "courseops",
	Short: "A CLI tool for provisioning course infrastructure on a git hosting organization",
	Long: `Courseops reconciles a git hosting organization against a course roster.
It creates teams, personal and group repositories, syncs memberships and
collaborators, applies branch protection, and manages issues and milestones,
so the organization converges to the state the roster describes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logging.Configure(rootLogFormat, rootLogLevel)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to configuration file (default ~/.courseops/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", "console", "Log format (console, json)")

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(milestoneCmd)
	rootCmd.AddCommand(initCmd)
}
