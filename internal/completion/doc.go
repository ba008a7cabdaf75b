// Package completion renders the bash completion script for the dispatcher
// and installs it into the system completion directory. The script offers
// every registered command followed by the built-in verbs.
package completion
