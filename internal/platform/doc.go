// Package platform performs the filesystem mutations of install, alias and
// completion management. Ops has two implementations: Native mutates
// in-process, Privileged runs each mutation as a coreutils command behind an
// elevation prefix such as sudo. Callers elevate by choosing Privileged;
// nothing else in the tool knows how elevation works.
package platform
