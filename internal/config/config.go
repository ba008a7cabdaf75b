package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/comame/cli-tools/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Mode selects the directory layout and whether mutations need elevation.
type Mode string

const (
	ModeSystem Mode = "system"
	ModeUser   Mode = "user"
)

// Elevation policies for filesystem mutations.
const (
	ElevateAuto = "auto"
	ElevateSudo = "sudo"
	ElevateNone = "none"
)

// Config keys.
const (
	KeyMode           = "mode"
	KeyLibDir         = "lib_dir"
	KeyBinDir         = "bin_dir"
	KeyCompletionDir  = "completion_dir"
	KeyScratchDir     = "scratch_dir"
	KeyManifest       = "manifest"
	KeyArchiveURL     = "archive_url"
	KeyOwner          = "owner"
	KeyElevate        = "elevate"
	KeyElevateCommand = "elevate_command"
	KeyFetchTimeout   = "fetch_timeout"
	KeyLogLevel       = "log_level"
)

// DefaultFetchTimeout bounds a single archive download.
const DefaultFetchTimeout = 5 * time.Minute

// Config is the resolved set of install settings.
type Config struct {
	Mode           Mode
	LibDir         string
	BinDir         string
	CompletionDir  string
	ScratchDir     string
	Manifest       string
	ArchiveURL     string
	Owner          string
	Elevate        string
	ElevateCommand []string
	FetchTimeout   time.Duration
	LogLevel       string
}

// Dir returns the path to the config directory (~/.cli-tools/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the config file path. CLI_TOOLS_CONFIG overrides the
// default ~/.cli-tools/config.yaml.
func FilePath() string {
	if v := os.Getenv(branding.EnvVar("CONFIG")); v != "" {
		return v
	}
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Load reads the config file at path (FilePath when empty) and the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FilePath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetDefault(KeyMode, branding.InstallMode())
	mode := Mode(strings.ToLower(v.GetString(KeyMode)))
	if err := setModeDefaults(v, mode); err != nil {
		return nil, err
	}

	v.SetDefault(KeyScratchDir, filepath.Join(os.TempDir(), branding.CLIName()))
	v.SetDefault(KeyArchiveURL, branding.ArchiveURL())
	v.SetDefault(KeyElevate, ElevateAuto)
	v.SetDefault(KeyElevateCommand, "sudo")
	v.SetDefault(KeyFetchTimeout, DefaultFetchTimeout.String())
	v.SetDefault(KeyLogLevel, "warn")

	cfg := &Config{
		Mode:           mode,
		LibDir:         v.GetString(KeyLibDir),
		BinDir:         v.GetString(KeyBinDir),
		CompletionDir:  v.GetString(KeyCompletionDir),
		ScratchDir:     v.GetString(KeyScratchDir),
		Manifest:       v.GetString(KeyManifest),
		ArchiveURL:     v.GetString(KeyArchiveURL),
		Owner:          v.GetString(KeyOwner),
		Elevate:        strings.ToLower(v.GetString(KeyElevate)),
		ElevateCommand: strings.Fields(v.GetString(KeyElevateCommand)),
		FetchTimeout:   v.GetDuration(KeyFetchTimeout),
		LogLevel:       v.GetString(KeyLogLevel),
	}
	if cfg.Manifest == "" {
		cfg.Manifest = filepath.Join(cfg.LibDir, branding.ManifestName())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setModeDefaults(v *viper.Viper, mode Mode) error {
	name := branding.CLIName()
	switch mode {
	case ModeSystem:
		v.SetDefault(KeyLibDir, filepath.Join("/usr/local/lib", name))
		v.SetDefault(KeyBinDir, "/usr/local/bin")
		v.SetDefault(KeyCompletionDir, "/etc/bash_completion.d")
		v.SetDefault(KeyOwner, "root:root")
	case ModeUser:
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		local := filepath.Join(home, ".local")
		v.SetDefault(KeyLibDir, filepath.Join(local, "lib", name))
		v.SetDefault(KeyBinDir, filepath.Join(local, "bin"))
		v.SetDefault(KeyCompletionDir, filepath.Join(local, "share", "bash-completion", "completions"))
		v.SetDefault(KeyOwner, "")
	default:
		return fmt.Errorf("unknown install mode %q: expected %q or %q", mode, ModeSystem, ModeUser)
	}
	return nil
}

// Validate checks the resolved values for consistency.
func (c *Config) Validate() error {
	for key, dir := range map[string]string{
		KeyLibDir:        c.LibDir,
		KeyBinDir:        c.BinDir,
		KeyCompletionDir: c.CompletionDir,
		KeyScratchDir:    c.ScratchDir,
	} {
		if dir == "" {
			return fmt.Errorf("config %s must not be empty", key)
		}
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("config %s must be an absolute path, got %q", key, dir)
		}
	}

	// The library is removed recursively on every install; refuse obvious
	// catastrophes like "/" or the binary directory itself.
	lib := filepath.Clean(c.LibDir)
	if lib == string(filepath.Separator) || lib == filepath.Clean(c.BinDir) {
		return fmt.Errorf("config %s %q is not a safe library location", KeyLibDir, c.LibDir)
	}

	switch c.Elevate {
	case ElevateAuto, ElevateSudo, ElevateNone:
	default:
		return fmt.Errorf("config %s: unknown value %q (want auto, sudo or none)", KeyElevate, c.Elevate)
	}
	if c.Elevate == ElevateSudo && len(c.ElevateCommand) == 0 {
		return fmt.Errorf("config %s is empty but %s is %q", KeyElevateCommand, KeyElevate, ElevateSudo)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("config %s must not be negative", KeyFetchTimeout)
	}
	if c.ArchiveURL == "" {
		return fmt.Errorf("config %s must not be empty", KeyArchiveURL)
	}
	return nil
}

// NeedsElevation reports whether filesystem mutations should run through the
// elevation command. "auto" elevates only for system installs by a non-root user.
func (c *Config) NeedsElevation() bool {
	switch c.Elevate {
	case ElevateSudo:
		return true
	case ElevateNone:
		return false
	default:
		return c.Mode == ModeSystem && os.Geteuid() != 0 && len(c.ElevateCommand) > 0
	}
}
