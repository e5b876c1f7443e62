package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/asap-static/asap/internal/configs"
)

func TestLog_CreatesFileAndDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "asap", "history.jsonl")

	Open(logPath).Log(Entry{Operation: OpDeploy, Tag: "my-app", OK: true})

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("History file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "history.jsonl")
	h := Open(logPath)

	h.Log(Entry{Operation: OpDeploy, Tag: "a"})
	h.Log(Entry{Operation: OpDeploy, Tag: "b"})
	h.Log(Entry{Operation: OpDestroy, Tag: "a"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}

func TestLog_FillsIDAndTimestamp(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "history.jsonl")
	h := Open(logPath)

	h.Log(Entry{Operation: OpDeploy, Tag: "my-app"})

	entries, err := h.ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	if _, err := uuid.Parse(entries[0].ID); err != nil {
		t.Errorf("Expected a UUID id, got %q", entries[0].ID)
	}
	if _, err := time.Parse(TimestampFormat, entries[0].Timestamp); err != nil {
		t.Errorf("Timestamp %q does not match format: %v", entries[0].Timestamp, err)
	}
}

func TestLog_KeepsProvidedFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "history.jsonl")
	h := Open(logPath)

	h.Log(Entry{ID: "fixed", Timestamp: "2024-01-15T10:30:00.000000Z", Operation: OpDestroy, Tag: "x"})

	entries, _ := h.ReadEntries()
	if len(entries) != 1 || entries[0].ID != "fixed" || entries[0].Timestamp != "2024-01-15T10:30:00.000000Z" {
		t.Errorf("Provided fields were overwritten: %+v", entries)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "history.jsonl")

	Open(logPath).Log(Entry{Operation: OpDestroy, Tag: "my-app", OK: true})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &raw); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	for _, key := range []string{"url", "error"} {
		if _, ok := raw[key]; ok {
			t.Errorf("Expected %q to be omitted", key)
		}
	}
	for _, key := range []string{"id", "ts", "op", "tag", "ok"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected %q to be present", key)
		}
	}
}

func TestLog_EmptyPathIsNoop(t *testing.T) {
	var h *History
	h.Log(Entry{Operation: OpDeploy})
	Open("").Log(Entry{Operation: OpDeploy})

	entries, err := Open("").ReadEntries()
	if err != nil || entries != nil {
		t.Errorf("Expected no entries and no error, got %v, %v", entries, err)
	}
}

func TestLog_ReturnsWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to write blocker file: %v", err)
	}

	err := Open(filepath.Join(blocker, "history.jsonl")).Log(Entry{Operation: OpDeploy, Tag: "my-app"})
	if err == nil {
		t.Fatal("Expected an error when the history directory is a file")
	}
}

func TestReadEntries_MissingFile(t *testing.T) {
	entries, err := Open(filepath.Join(t.TempDir(), "missing.jsonl")).ReadEntries()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries, got %v", entries)
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"id":"1","ts":"2024-01-15T10:30:00.000000Z","op":"deploy","tag":"a","ok":true}
{"id":"2","ts":"2024-01-15T10:31:00.000000Z","op":"destroy","tag":"a","ok":false,"error":"nope"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1].Operation != OpDestroy || entries[1].OK || entries[1].Error != "nope" {
		t.Errorf("Unexpected second entry: %+v", entries[1])
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"op":"deploy","tag":"a"}
not json
{"op":"destroy","tag":"a"}`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries(nil)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries, got %v", entries)
	}
}

func TestLogPath_UsesUserSettings(t *testing.T) {
	original := configs.UserAsapSettings
	defer func() { configs.UserAsapSettings = original }()

	want := filepath.Join(t.TempDir(), "history.jsonl")
	configs.UserAsapSettings = &configs.UserSettings{HistoryPath: want}

	if got := LogPath(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	Default().Log(Entry{Operation: OpDeploy, Tag: "my-app"})
	entries, err := Default().ReadEntries()
	if err != nil || len(entries) != 1 {
		t.Errorf("Expected 1 entry via default history, got %v, %v", entries, err)
	}
}

func TestEntryOutcome(t *testing.T) {
	ok := Entry{Tag: "a"}.Outcome(nil)
	if !ok.OK || ok.Error != "" {
		t.Errorf("Expected success entry, got %+v", ok)
	}

	failed := Entry{Tag: "a"}.Outcome(errors.New("boom"))
	if failed.OK || failed.Error != "boom" {
		t.Errorf("Expected failure entry, got %+v", failed)
	}
}
