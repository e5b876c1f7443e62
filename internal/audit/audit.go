package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/asap-static/asap/internal/configs"
)

// Operation names.
const (
	OpDeploy  = "deploy"
	OpDestroy = "destroy"
)

// TimestampFormat is the layout of Entry.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single history entry.
type Entry struct {
	ID        string `json:"id"`              // Random UUID.
	Timestamp string `json:"ts"`              // RFC3339 with microseconds.
	Operation string `json:"op"`              // Operation name.
	Tag       string `json:"tag"`             // Site tag.
	URL       string `json:"url,omitempty"`   // Live URL, when known.
	OK        bool   `json:"ok"`              // Whether the operation succeeded.
	Error     string `json:"error,omitempty"` // Failure message.
}

// History is an append-only JSON Lines file.
type History struct {
	path string
}

// Open returns a History backed by the file at path. An empty path gives a
// History that drops every entry.
func Open(path string) *History {
	return &History{path: path}
}

// Default returns the History at the user's configured path.
func Default() *History {
	return Open(LogPath())
}

// Path returns the backing file path.
func (h *History) Path() string {
	if h == nil {
		return ""
	}
	return h.path
}

// Log appends an entry to the history. Callers treat a returned error as
// non-fatal. A nil History records nothing.
func (h *History) Log(entry Entry) error {
	if h == nil || h.path == "" {
		return nil
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding history entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// ReadEntries reads all entries from the history.
// Returns an empty slice if the file doesn't exist.
func (h *History) ReadEntries() ([]Entry, error) {
	if h == nil || h.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// LogPath returns the path to the default history file.
func LogPath() string {
	if configs.UserAsapSettings == nil {
		return ""
	}
	return configs.UserAsapSettings.HistoryPath
}

// ParseEntries parses JSON Lines data into history entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Outcome fills the OK and Error fields from err.
func (e Entry) Outcome(err error) Entry {
	e.OK = err == nil
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
