package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/comame/cli-tools/internal/branding"
	"github.com/comame/cli-tools/internal/completion"
	"github.com/comame/cli-tools/internal/config"
	"github.com/comame/cli-tools/internal/installer"
	"github.com/comame/cli-tools/internal/linker"
	"github.com/comame/cli-tools/internal/platform"
	"github.com/comame/cli-tools/internal/registry"
	"github.com/comame/cli-tools/internal/runtime"
	"github.com/comame/cli-tools/internal/updater"
	"github.com/mattn/go-isatty"
)

// BuildInfo is injected via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App wires the components for one invocation. The registry is loaded once
// in NewApp and shared by every component.
type App struct {
	Config     *config.Config
	Registry   *registry.Registry
	Runner     *runtime.Runner
	Ops        platform.Ops
	Fetcher    *updater.Fetcher
	Installer  *installer.Installer
	Linker     *linker.Linker
	Completion *completion.Generator
	Logger     *log.Logger
	Build      BuildInfo

	stdout io.Writer
	stderr io.Writer
}

// Streams are the standard streams of the invocation.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewApp loads the registry and builds every component from cfg.
func NewApp(cfg *config.Config, build BuildInfo, streams Streams, logger *log.Logger) *App {
	reg := registry.Load(cfg.Manifest, logger)

	runner := runtime.New(logger)
	runner.Stdin = streams.Stdin
	runner.Stdout = streams.Stdout
	runner.Stderr = streams.Stderr

	elevate := cfg.NeedsElevation()
	ops := platform.New(elevate, cfg.ElevateCommand, runner)
	logger.Debug("configured", "mode", cfg.Mode, "lib", cfg.LibDir, "bin", cfg.BinDir, "elevate", elevate, "commands", reg.Len())

	fetchOpts := []updater.Option{
		updater.WithHTTPClient(newHTTPClient(logger)),
		updater.WithTimeout(cfg.FetchTimeout),
		updater.WithUserAgent(branding.CLIName() + "/" + build.Version),
		updater.WithLogger(logger),
	}
	if isTerminal(streams.Stderr) {
		fetchOpts = append(fetchOpts, updater.WithProgress(streams.Stderr))
	}

	return &App{
		Config:   cfg,
		Registry: reg,
		Runner:   runner,
		Ops:      ops,
		Fetcher:  updater.New(fetchOpts...),
		Installer: &installer.Installer{
			LibDir:   cfg.LibDir,
			Owner:    cfg.Owner,
			Registry: reg,
			Ops:      ops,
			Logger:   logger,
		},
		Linker: &linker.Linker{
			LibDir:   cfg.LibDir,
			BinDir:   cfg.BinDir,
			Owner:    cfg.Owner,
			Registry: reg,
			Ops:      ops,
			Logger:   logger,
		},
		Completion: &completion.Generator{
			CLIName:       branding.CLIName(),
			Registry:      reg,
			ScratchDir:    cfg.ScratchDir,
			CompletionDir: cfg.CompletionDir,
			Owner:         cfg.Owner,
			Ops:           ops,
			Logger:        logger,
		},
		Logger: logger,
		Build:  build,
		stdout: streams.Stdout,
		stderr: streams.Stderr,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// newHTTPClient traces redirects, which archive hosts use to reach their
// download servers.
func newHTTPClient(logger *log.Logger) *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			logger.Debug("following redirect", "url", req.URL.String())
			return nil
		},
	}
}

const maxRedirects = 10
