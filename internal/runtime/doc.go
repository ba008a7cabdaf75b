// Package runtime runs child processes from structured argument lists.
// Attached mode hands the child the caller's standard streams and reports
// its exit code; silent mode discards output and reports only the exit code.
// No command line is ever interpreted by a shell.
package runtime
