// Package branding provides compile-time identity values for the CLI.
//
// Forks edit branding.yaml in this package; Go's //go:embed bakes it into
// the binary so that the bootstrap entry and the archive location are known
// before any manifest or config file exists.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName       string `yaml:"cli_name"`
	DisplayName   string `yaml:"display_name"`
	Description   string `yaml:"description"`
	HomeDir       string `yaml:"home_dir"`
	EnvPrefix     string `yaml:"env_prefix"`
	GitHubRepo    string `yaml:"github_repo"`
	ArchiveURL    string `yaml:"archive_url"`
	ManifestName  string `yaml:"manifest_name"`
	BootstrapPath string `yaml:"bootstrap_path"`
	InstallMode   string `yaml:"install_mode"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:       "cli-tools",
			DisplayName:   "cli-tools",
			Description:   "Self-installing dispatcher for a library of small command-line tools",
			HomeDir:       ".cli-tools",
			EnvPrefix:     "CLI_TOOLS",
			GitHubRepo:    "comame/cli-tools",
			ArchiveURL:    "https://github.com/comame/cli-tools/archive/refs/heads/main.zip",
			ManifestName:  "commands.json",
			BootstrapPath: "cli-tools/bin/cli-tools",
			InstallMode:   "system",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name, which is also the bootstrap
// command's registry name (e.g., "cli-tools").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".cli-tools").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CLI_TOOLS").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GitHubRepo returns the "owner/repo" string the archive is built from.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// ArchiveURL returns the default zip snapshot URL.
func ArchiveURL() string { load(); return defaults.ArchiveURL }

// ManifestName returns the manifest file name relative to the library root.
func ManifestName() string { load(); return defaults.ManifestName }

// BootstrapPath returns the library-relative path of the tool's own entry point.
func BootstrapPath() string { load(); return defaults.BootstrapPath }

// InstallMode returns the default install mode ("system" or "user").
func InstallMode() string { load(); return defaults.InstallMode }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("LIB_DIR") → "CLI_TOOLS_LIB_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
