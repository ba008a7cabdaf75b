// Package updater fetches the published source archive over HTTPS and
// unpacks it into scratch space. It never touches the installed library;
// the installer takes over once an extracted tree is ready.
package updater
