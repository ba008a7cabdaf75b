// Package config resolves install settings from ~/.cli-tools/config.yaml and
// CLI_TOOLS_* environment variables. Defaults depend on the install mode:
// "system" installs under /usr/local with elevation, "user" installs under
// ~/.local without it.
package config
