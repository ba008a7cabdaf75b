// Package registry loads the command manifest (commands.json at the library
// root) into an ordered, immutable name → relative-path mapping. Loading
// never fails: a missing or invalid manifest degrades to the single bootstrap
// entry so the tool can always reinstall itself.
package registry
