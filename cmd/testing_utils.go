// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments,
// capturing output, and running the CLI against a fake hosting service.
package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/asap-static/asap/internal/client"
	"github.com/asap-static/asap/internal/configs"
)

// testEnv points every user-level path at a temporary directory.
type testEnv struct {
	RegistryPath string
	HistoryPath  string
	SiteDir      string
}

// setupTestEnvironment isolates the user settings and resets command state.
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()

	userDir := t.TempDir()
	originalUserSettings := configs.UserAsapSettings

	env := &testEnv{
		RegistryPath: filepath.Join(userDir, ".asap"),
		HistoryPath:  filepath.Join(userDir, "config", "history.jsonl"),
		SiteDir:      filepath.Join(t.TempDir(), "site"),
	}
	configs.UserAsapSettings = &configs.UserSettings{
		RegistryPath: env.RegistryPath,
		ConfigPath:   filepath.Join(userDir, "config", "config.toml"),
		HistoryPath:  env.HistoryPath,
	}

	t.Setenv("ASAP_REGISTRY", "")
	t.Setenv("ASAP_API_URL", "")
	t.Setenv("ASAP_HOSTING_DOMAIN", "asap-static.site")

	if err := os.MkdirAll(env.SiteDir, 0755); err != nil {
		t.Fatalf("Failed to create site dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(env.SiteDir, "index.html"), []byte("<h1>hello</h1>"), 0644); err != nil {
		t.Fatalf("Failed to write index.html: %v", err)
	}
	if err := os.WriteFile(filepath.Join(env.SiteDir, ".env"), []byte("TOKEN=1"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	ResetGlobalState()
	t.Cleanup(func() {
		configs.UserAsapSettings = originalUserSettings
		ResetGlobalState()
	})

	return env
}

// writeRegistry replaces the registry file with sites.
func (e *testEnv) writeRegistry(t *testing.T, sites map[string]string) {
	t.Helper()
	data, err := json.Marshal(sites)
	if err != nil {
		t.Fatalf("Failed to marshal registry: %v", err)
	}
	if err := os.WriteFile(e.RegistryPath, data, 0600); err != nil {
		t.Fatalf("Failed to write registry: %v", err)
	}
}

// readRegistry returns the registry file contents.
func (e *testEnv) readRegistry(t *testing.T) map[string]string {
	t.Helper()
	data, err := os.ReadFile(e.RegistryPath)
	if err != nil {
		t.Fatalf("Failed to read registry: %v", err)
	}
	sites := map[string]string{}
	if err := json.Unmarshal(data, &sites); err != nil {
		t.Fatalf("Registry is not valid JSON: %v", err)
	}
	return sites
}

// fakeHost is a hosting service stand-in that records request paths.
type fakeHost struct {
	mu    sync.Mutex
	paths []string
}

// startFakeHost serves status and body for every request and points the CLI at it.
func startFakeHost(t *testing.T, status int, body map[string]string) *fakeHost {
	t.Helper()
	host := &fakeHost{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host.mu.Lock()
		host.paths = append(host.paths, r.URL.Path)
		host.mu.Unlock()

		if r.URL.Path == client.UploadPath {
			_ = r.ParseMultipartForm(10 << 20)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("ASAP_API_URL", srv.URL)
	return host
}

func (h *fakeHost) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

// runCLI executes the root command with args and captures its output.
func runCLI(args ...string) (string, error) {
	return captureOutput(func() error {
		RootCmd.SetArgs(args)
		return RootCmd.Execute()
	})
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	// Channel to collect output
	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}
