package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/comame/cli-tools/internal/logging"
	"mvdan.cc/sh/v3/syntax"
)

// ExitNotFound is reported when the executable cannot be started at all,
// following the shell convention.
const ExitNotFound = 127

// Runner spawns child processes.
type Runner struct {
	// Stdin, Stdout and Stderr are handed to attached children; they default
	// to the process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger *log.Logger
}

// New returns a Runner bound to the process's standard streams.
func New(logger *log.Logger) *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Attached runs argv with the runner's streams connected and blocks until it
// exits. Interrupts are left to the child, which shares the terminal, so the
// returned code is the child's own. A child killed by a signal reports 128+n.
func (r *Runner) Attached(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("empty command")
	}
	logger := logging.OrDiscard(r.Logger)
	logger.Debug("exec", "cmd", FormatCommand(argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	return exitCode(cmd.Run())
}

// Silent runs argv in dir (the current directory when empty) with its output
// discarded and returns the exit code. Stderr is kept for debug logging only.
func (r *Runner) Silent(ctx context.Context, dir string, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("empty command")
	}
	logger := logging.OrDiscard(r.Logger)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	code, err := exitCode(cmd.Run())
	logger.Debug("exec", "cmd", FormatCommand(argv), "dir", dir, "exit", code)
	if code != 0 && stderr.Len() > 0 {
		logger.Debug("exec stderr", "output", strings.TrimSpace(stderr.String()))
	}
	return code, err
}

// exitCode maps the result of cmd.Run to an exit code. Only failures to
// start the process are returned as errors.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	return ExitNotFound, fmt.Errorf("starting process: %w", err)
}

// FormatCommand renders argv as a bash-quoted command line for logs.
func FormatCommand(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", arg)
		}
		parts[i] = q
	}
	return strings.Join(parts, " ")
}
