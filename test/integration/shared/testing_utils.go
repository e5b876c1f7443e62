// Package shared contains testing utilities shared between integration tests.
// This file provides common functions for setting up test environments,
// capturing output, and standing in for the hosting service.
package shared

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

	"github.com/asap-static/asap/cmd"
	"github.com/asap-static/asap/internal/client"
	"github.com/asap-static/asap/internal/configs"
)

// SetupTestEnvironment points the user settings at tempUserDir and restores
// the originals when the test ends.
func SetupTestEnvironment(t *testing.T, tempUserDir string, originalUserSettings *configs.UserSettings) {
	t.Cleanup(func() {
		configs.UserAsapSettings = originalUserSettings
		cmd.ResetGlobalState()
	})

	configs.UserAsapSettings = &configs.UserSettings{
		RegistryPath: filepath.Join(tempUserDir, ".asap"),
		ConfigPath:   filepath.Join(tempUserDir, "config", "config.toml"),
		HistoryPath:  filepath.Join(tempUserDir, "config", "history.jsonl"),
	}

	t.Setenv("ASAP_REGISTRY", "")
	t.Setenv("ASAP_API_URL", "")
	t.Setenv("ASAP_HOSTING_DOMAIN", "")
	t.Setenv("TMPDIR", t.TempDir())

	cmd.ResetGlobalState()
}

// CreateSite writes files (relative path -> contents) under a new directory.
func CreateSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "site")
	for rel, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	return dir
}

// ReadRegistry returns the registry contents for the current test settings.
func ReadRegistry(t *testing.T) map[string]string {
	t.Helper()
	data, err := os.ReadFile(configs.RegistryPath())
	if err != nil {
		t.Fatalf("Failed to read registry: %v", err)
	}
	sites := map[string]string{}
	if err := json.Unmarshal(data, &sites); err != nil {
		t.Fatalf("Registry is not valid JSON: %v", err)
	}
	return sites
}

// Upload is a multipart upload received by the fake host.
type Upload struct {
	Tag   string
	Bytes []byte
}

// FakeHost mimics the hosting service: uploads issue a secret per tag and
// destroys require that secret.
type FakeHost struct {
	mu      sync.Mutex
	secrets map[string]string
	uploads []Upload
	destroy []string
}

// StartFakeHost starts the fake host and points the CLI at it.
func StartFakeHost(t *testing.T) *FakeHost {
	t.Helper()
	host := &FakeHost{secrets: map[string]string{}}
	srv := httptest.NewServer(host)
	t.Cleanup(srv.Close)
	t.Setenv("ASAP_API_URL", srv.URL)
	return host
}

func (h *FakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	reply := func(status int, body map[string]string) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	switch r.URL.Path {
	case client.UploadPath:
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			reply(http.StatusBadRequest, map[string]string{"error": "Invalid form"})
			return
		}
		tag := r.FormValue("tag")
		file, _, err := r.FormFile("zip")
		if err != nil {
			reply(http.StatusBadRequest, map[string]string{"error": "Missing zip"})
			return
		}
		data, _ := io.ReadAll(file)
		file.Close()
		h.uploads = append(h.uploads, Upload{Tag: tag, Bytes: data})

		if _, taken := h.secrets[tag]; taken {
			reply(http.StatusOK, map[string]string{"message": "Site updated!"})
			return
		}
		secret := "secret-for-" + tag
		h.secrets[tag] = secret
		reply(http.StatusOK, map[string]string{"message": "Site uploaded!", "site_secret": secret})

	case client.DestroyPath:
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		tag := body["tag"]
		h.destroy = append(h.destroy, tag)
		if secret, ok := h.secrets[tag]; !ok || secret != r.Header.Get("Authorization") {
			reply(http.StatusForbidden, map[string]string{"error": "Invalid site secret"})
			return
		}
		delete(h.secrets, tag)
		reply(http.StatusOK, map[string]string{"message": "Site destroyed!"})

	default:
		reply(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

// Uploads returns every upload received so far.
func (h *FakeHost) Uploads() []Upload {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Upload(nil), h.uploads...)
}

// Destroys returns the tags of every destroy request received so far.
func (h *FakeHost) Destroys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.destroy...)
}

// RunCLI executes the asap root command with args and captures its output.
func RunCLI(args ...string) (string, error) {
	return CaptureOutput(func() error {
		cmd.ResetGlobalState()
		cmd.RootCmd.SetArgs(args)
		return cmd.RootCmd.Execute()
	})
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

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
