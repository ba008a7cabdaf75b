//go:build integration

package integration_test

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/comame/cli-tools/internal/cli"
)

// testEnv holds the sandboxed directories of one user-mode install.
type testEnv struct {
	HomeDir       string
	LibDir        string
	BinDir        string
	CompletionDir string
	ScratchDir    string
}

// setupTestEnv points every configurable directory at a temp dir through
// CLI_TOOLS_* environment variables, the same way a user would.
func setupTestEnv(t *testing.T, archiveURL string) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		HomeDir:       filepath.Join(root, "home"),
		LibDir:        filepath.Join(root, "lib", "cli-tools"),
		BinDir:        filepath.Join(root, "bin"),
		CompletionDir: filepath.Join(root, "completions"),
		ScratchDir:    filepath.Join(root, "scratch"),
	}
	if err := os.MkdirAll(env.HomeDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("CLI_TOOLS_CONFIG", filepath.Join(env.HomeDir, ".cli-tools", "config.yaml"))
	t.Setenv("CLI_TOOLS_MODE", "user")
	t.Setenv("CLI_TOOLS_LIB_DIR", env.LibDir)
	t.Setenv("CLI_TOOLS_BIN_DIR", env.BinDir)
	t.Setenv("CLI_TOOLS_COMPLETION_DIR", env.CompletionDir)
	t.Setenv("CLI_TOOLS_SCRATCH_DIR", env.ScratchDir)
	t.Setenv("CLI_TOOLS_ARCHIVE_URL", archiveURL)
	t.Setenv("CLI_TOOLS_ELEVATE", "none")
	t.Setenv("CLI_TOOLS_LOG_LEVEL", "warn")
	return env
}

type result struct {
	Code   int
	Stdout string
	Stderr string
}

// runCLI runs one full invocation, config loading included.
func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli.Main(context.Background(), args, cli.BuildInfo{Version: "test"}, cli.Streams{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return result{Code: code, Stdout: stdout.String(), Stderr: stderr.String()}
}

// serveRepoArchive serves a zip shaped like a GitHub branch archive.
func serveRepoArchive(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		hdr := &zip.FileHeader{Name: "cli-tools-main/" + name, Method: zip.Deflate}
		hdr.SetMode(0644)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be absent", path)
	}
}

func assertLink(t *testing.T, link, want string) {
	t.Helper()
	got, err := os.Readlink(link)
	if err != nil {
		t.Errorf("expected %s to be a symlink: %v", link, err)
		return
	}
	if got != want {
		t.Errorf("%s -> %s, want %s", link, got, want)
	}
}
