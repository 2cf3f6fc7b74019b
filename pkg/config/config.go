// Package config loads the courseops configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the courseops configuration.
type Config struct {
	GitHub    GitHubConfig    `yaml:"github"`
	Roster    RosterConfig    `yaml:"roster"`
	Provision ProvisionConfig `yaml:"provision"`
}

// GitHubConfig holds hosting platform settings.
type GitHubConfig struct {
	Organization string `yaml:"organization"`
	Token        string `yaml:"token,omitempty"`
}

// RosterConfig points at the roster source.
type RosterConfig struct {
	Path string `yaml:"path"`
}

// ProvisionConfig holds provisioning policy defaults.
type ProvisionConfig struct {
	DefaultBranch       string   `yaml:"default_branch,omitempty"`
	StatusCheckContexts []string `yaml:"status_check_contexts,omitempty"`
	OwnersTeam          string   `yaml:"owners_team,omitempty"`
	Permission          string   `yaml:"permission,omitempty"`
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path. A missing
// file yields an empty configuration.
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".courseops", "config.yaml"), nil
}

// SaveConfig writes the configuration to the default location, creating
// the config directory if needed.
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Token resolves the hosting platform access token: the GITHUB_TOKEN
// environment variable wins, then the config file.
func (c *Config) Token() (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return strings.TrimSpace(token), nil
	}
	if c.GitHub.Token != "" {
		return strings.TrimSpace(c.GitHub.Token), nil
	}
	return "", fmt.Errorf("no access token found: set GITHUB_TOKEN or configure github.token in ~/.courseops/config.yaml")
}

// Validate checks that the configuration is usable for provisioning.
func (c *Config) Validate() error {
	if c.GitHub.Organization == "" {
		return fmt.Errorf("github.organization is required")
	}
	if c.Provision.Permission != "" {
		switch c.Provision.Permission {
		case "read", "write", "admin":
		default:
			return fmt.Errorf("provision.permission must be one of: read, write, admin")
		}
	}
	return nil
}
