// Package linker manages the per-command symlinks in the binary directory.
// An alias <bin>/<name> points at the command's executable inside the
// library directory. Only names present in the registry can be aliased,
// and only symlinks are ever removed.
package linker
