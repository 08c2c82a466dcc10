package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for specwatch.
type Config struct {
	Upstream    UpstreamConfig    `yaml:"upstream"`
	Spec        SpecConfig        `yaml:"spec"`
	Download    DownloadConfig    `yaml:"download"`
	Generator   CommandConfig     `yaml:"generator"`
	Build       CommandConfig     `yaml:"build"`
	Package     PackageConfig     `yaml:"package"`
	Feed        FeedConfig        `yaml:"feed"`
	Changelog   ChangelogConfig   `yaml:"changelog"`
	PullRequest PullRequestConfig `yaml:"pullrequest"`
	Clean       []string          `yaml:"clean"` // Directories wiped before regeneration
}

// UpstreamConfig identifies the watched upstream tool repository.
type UpstreamConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	Token string `yaml:"token"` // Inline, ${ENV_VAR}, or file path
}

// SpecConfig locates the generated API specification artifact.
type SpecConfig struct {
	Path string `yaml:"path"`
}

// DownloadConfig controls how the upstream tool package is fetched.
type DownloadConfig struct {
	URL    string `yaml:"url"`    // Optional override; defaults to the release tarball
	Sha256 string `yaml:"sha256"` // Optional checksum of the tarball
	Dir    string `yaml:"dir"`    // Extraction directory
}

// CommandConfig describes one external tool invocation.
type CommandConfig struct {
	Command []string `yaml:"command"`
	Dir     string   `yaml:"dir"`
}

// PackageConfig describes the packaging step and its output artifact.
type PackageConfig struct {
	Command  []string `yaml:"command"`
	Dir      string   `yaml:"dir"`
	Artifact string   `yaml:"artifact"`
}

// FeedConfig describes the package feed the artifact is pushed to.
type FeedConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"` // Inline, ${ENV_VAR}, or file path
}

// ChangelogConfig locates the Keep-a-Changelog file to update.
type ChangelogConfig struct {
	Path string `yaml:"path"`
}

// PullRequestConfig holds pull request creation settings.
type PullRequestConfig struct {
	Repo          string `yaml:"repo"`           // "owner/name"; empty = detect from local git remote
	TargetBranch  string `yaml:"target_branch"`  // Defaults to the repository default branch
	TitleTemplate string `yaml:"title_template"` // Mustache template; empty = built-in default
	BodyTemplate  string `yaml:"body_template"`  // Mustache template; empty = built-in default
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment
// variables and resolving token file paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Upstream.Token = resolveSecret(cfg.Upstream.Token)
	cfg.Feed.APIKey = resolveSecret(cfg.Feed.APIKey)

	applyDefaults(&cfg)

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".specwatch.yaml",
		".specwatch.yml",
		"specwatch.yaml",
		"specwatch.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveSecret expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the secret from the file.
func resolveSecret(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read secret from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// applyDefaults fills in values that are optional in the config file.
func applyDefaults(cfg *Config) {
	if cfg.Download.Dir == "" {
		cfg.Download.Dir = filepath.Join(".specwatch", "downloads")
	}
	if cfg.Changelog.Path == "" {
		cfg.Changelog.Path = "CHANGELOG.md"
	}
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if cfg.Upstream.Owner == "" {
		return errors.New("upstream.owner is required")
	}
	if cfg.Upstream.Repo == "" {
		return errors.New("upstream.repo is required")
	}
	if cfg.Spec.Path == "" {
		return errors.New("spec.path is required")
	}
	if len(cfg.Generator.Command) == 0 {
		return errors.New("generator.command must have at least one element")
	}
	if cfg.Feed.URL != "" && cfg.Feed.APIKey == "" {
		return errors.New("feed.api_key is required when feed.url is set (set inline, via ${ENV_VAR}, or as file path)")
	}
	if cfg.PullRequest.Repo != "" && !strings.Contains(cfg.PullRequest.Repo, "/") {
		return fmt.Errorf("pullrequest.repo must be in owner/name form, got %q", cfg.PullRequest.Repo)
	}
	return nil
}
