package cmd

import (
	"fmt"

	"courseops/pkg/config"
	"courseops/pkg/forge"
	"courseops/pkg/logging"
	"courseops/pkg/provision"
	"courseops/pkg/roster"
)

// loadAppConfig loads the courseops configuration, honoring the --config
// flag, and validates it for provisioning use.
func loadAppConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if rootConfigPath != "" {
		cfg, err = config.LoadConfigFromPath(rootConfigPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load courseops config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// newProvisioner builds a provisioner from configuration: resolves the
// access token, constructs the API client, and applies provisioning
// defaults from the config file.
func newProvisioner(cfg *config.Config) (*provision.Provisioner, error) {
	token, err := cfg.Token()
	if err != nil {
		return nil, err
	}

	client := forge.NewClient(token)
	resolver := roster.NewResolver(nil)

	return provision.New(client, cfg.GitHub.Organization, resolver, provision.Options{
		DefaultBranch:       cfg.Provision.DefaultBranch,
		StatusCheckContexts: cfg.Provision.StatusCheckContexts,
		OwnersTeam:          cfg.Provision.OwnersTeam,
		Logger:              logging.Default(),
	}), nil
}

// loadRoster reads the roster file named by the --roster flag, falling back
// to the path from configuration.
func loadRoster(cfg *config.Config, flagPath string) (*roster.FileSource, error) {
	path := flagPath
	if path == "" {
		path = cfg.Roster.Path
	}
	if path == "" {
		return nil, fmt.Errorf("roster file not specified: use --roster flag or set roster.path in config")
	}

	src, err := roster.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	return src, nil
}

// printReport renders a provisioning report in the same shape for every
// command: succeeded entities, unexpected findings, then failures.
func printReport(report *provision.Report) {
	fmt.Printf("\n%s\n", report.Summary())

	if unexpected := report.Unexpected(); len(unexpected) > 0 {
		fmt.Printf("\n⚠️  Unexpected state:\n")
		for _, entity := range unexpected {
			fmt.Printf("  • %s\n", entity)
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Printf("\n❌ Failed:\n")
		for entity, err := range failed {
			fmt.Printf("  • %s: %v\n", entity, err)
		}
	}
}

// reportErr converts a report with failures into a command error so the
// process exits non-zero.
func reportErr(report *provision.Report) error {
	if report.HasFailures() {
		return fmt.Errorf("%d entities failed to provision", len(report.Failed()))
	}
	return nil
}
