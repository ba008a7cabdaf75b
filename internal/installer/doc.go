// Package installer replaces the library directory with a freshly extracted
// source tree and removes it again on uninstall.
package installer
