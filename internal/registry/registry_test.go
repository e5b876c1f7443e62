package registry

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	kerrors "github.com/asap-static/asap/internal/errors"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".asap")
	return Open(path), path
}

func TestLoadCreatesEmptyRegistry(t *testing.T) {
	reg, path := newTestRegistry(t)

	sites, err := reg.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sites) != 0 {
		t.Errorf("Expected empty registry, got %v", sites)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Registry file was not created: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected file content {}, got %q", data)
	}
}

func TestSetThenLoadRoundTrip(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if err := reg.Set("my-app", "s3cr3t"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	sites, err := reg.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := map[string]string{"my-app": "s3cr3t"}
	if !reflect.DeepEqual(sites, want) {
		t.Errorf("Load() = %v, want %v", sites, want)
	}
}

func TestSetOverwritesPreviousSecret(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if err := reg.Set("my-app", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := reg.Set("my-app", "second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	secret, ok, err := reg.Get("my-app")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if secret != "second" {
		t.Errorf("Expected last write to win, got %q", secret)
	}
}

func TestUpdateNilRemovesKey(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := reg.Set("a", "s1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := reg.Set("b", "s2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := reg.Update("a", nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	sites, err := reg.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, exists := sites["a"]; exists {
		t.Errorf("Expected key a to be removed entirely, got %v", sites)
	}
	if sites["b"] != "s2" {
		t.Errorf("Expected b to be untouched, got %v", sites)
	}

	data, _ := os.ReadFile(path)
	if string(data) != `{"b":"s2"}` {
		t.Errorf("Unexpected file content %q", data)
	}
}

func TestDeleteMissingTag(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if err := reg.Delete("never-deployed"); err != nil {
		t.Errorf("Delete of a missing tag should succeed, got %v", err)
	}
}

func TestGetMissingTag(t *testing.T) {
	reg, _ := newTestRegistry(t)

	secret, ok, err := reg.Get("nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || secret != "" {
		t.Errorf("Expected no secret, got %q (ok=%v)", secret, ok)
	}
}

func TestTagsSorted(t *testing.T) {
	reg, _ := newTestRegistry(t)

	for _, tag := range []string{"zebra", "alpha", "mid"} {
		if err := reg.Set(tag, "x"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	tags, err := reg.Tags()
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	want := []string{"alpha", "mid", "zebra"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("Tags() = %v, want %v", tags, want)
	}
}

func TestLoadCorruptRegistry(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatalf("Failed to write registry: %v", err)
	}

	_, err := reg.Load()
	if !errors.Is(err, kerrors.ErrRegistryCorrupt) {
		t.Errorf("Expected ErrRegistryCorrupt, got %v", err)
	}

	if err := reg.Set("my-app", "s"); !errors.Is(err, kerrors.ErrRegistryCorrupt) {
		t.Errorf("Set on a corrupt registry should fail with ErrRegistryCorrupt, got %v", err)
	}
}

func TestLoadReadsExistingFile(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := os.WriteFile(path, []byte(`{"a": "s1", "b": "s2"}`), 0600); err != nil {
		t.Fatalf("Failed to write registry: %v", err)
	}

	sites, err := reg.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := map[string]string{"a": "s1", "b": "s2"}
	if !reflect.DeepEqual(sites, want) {
		t.Errorf("Load() = %v, want %v", sites, want)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := reg.Set("my-app", "s"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != ".asap" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only .asap in registry dir, got %v", names)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("Expected registry mode 0600, got %v", info.Mode().Perm())
		}
	}
}
