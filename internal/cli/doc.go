// Package cli is the entry point of the dispatcher. Run routes the command
// line first: registered commands are executed directly with their
// arguments untouched, and only built-in verbs go through the Cobra command
// tree. Each verb lives in its own file and delegates to the installer,
// linker and completion packages.
package cli
