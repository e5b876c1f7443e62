package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asap-static/asap/internal/audit"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// History is the history file to read. Nil reads the default history.
	History *audit.History

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Tag filters entries by site tag.
	Tag string

	// FailedOnly keeps only entries for failed operations.
	FailedOnly bool
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered history entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// Log reads and filters the deploy/destroy history.
// A missing history file yields an empty result.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	history := opts.History
	if history == nil {
		history = audit.Default()
	}

	entries, err := history.ReadEntries()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
	}

	if len(entries) == 0 {
		result.Entries = entries
		return result, nil
	}

	filtered := entries

	if opts.Tag != "" {
		filtered = filterByTag(filtered, opts.Tag)
	}

	if opts.Operations != "" {
		ops := strings.Split(opts.Operations, ",")
		for i := range ops {
			ops[i] = strings.TrimSpace(ops[i])
		}
		filtered = filterByOperations(filtered, ops)
	}

	if opts.FailedOnly {
		filtered = filterFailed(filtered)
	}

	// Apply ordering.
	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	// Apply limit.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			// When reversed, limit takes first N (most recent).
			filtered = filtered[:opts.Limit]
		} else {
			// When not reversed, limit takes last N (most recent).
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

func filterByTag(entries []audit.Entry, tag string) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if e.Tag == tag {
			result = append(result, e)
		}
	}
	return result
}

// filterByOperations filters entries by operation types.
func filterByOperations(entries []audit.Entry, ops []string) []audit.Entry {
	opSet := make(map[string]bool)
	for _, op := range ops {
		opSet[strings.ToLower(op)] = true
	}

	var result []audit.Entry
	for _, e := range entries {
		if opSet[strings.ToLower(e.Operation)] {
			result = append(result, e)
		}
	}
	return result
}

func filterFailed(entries []audit.Entry) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if !e.OK {
			result = append(result, e)
		}
	}
	return result
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, err := time.Parse(audit.TimestampFormat, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	if err != nil {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatOutcome returns "ok" or the entry's error message.
func FormatOutcome(e audit.Entry) string {
	if e.OK {
		return "ok"
	}
	if e.Error == "" {
		return "failed"
	}
	return "failed: " + e.Error
}
