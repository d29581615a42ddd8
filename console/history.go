package console

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultHistorySize is how many recent searches are kept.
const DefaultHistorySize = 10

// Entry is one recent search.
type Entry struct {
	Query string    `yaml:"query"`
	At    time.Time `yaml:"at"`
}

// History keeps the most recent searches, newest first. Repeated queries
// are recorded again.
type History struct {
	mu      sync.Mutex
	max     int
	entries []Entry
}

// NewHistory returns an empty history holding at most size entries.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{max: size}
}

// LoadHistory reads a history file. A missing file yields an empty history.
func LoadHistory(path string, size int) (*History, error) {
	h := NewHistory(size)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("history: %s: %w", path, err)
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Query) == "" {
			continue
		}
		h.entries = append(h.entries, e)
		if len(h.entries) == h.max {
			break
		}
	}
	return h, nil
}

// Add records query as the newest entry. Blank queries are ignored.
func (h *History) Add(query string, at time.Time) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	keep := min(len(h.entries), h.max-1)
	entries := make([]Entry, 0, keep+1)
	entries = append(entries, Entry{Query: query, At: at})
	h.entries = append(entries, h.entries[:keep]...)
}

// Entries returns a copy of the entries, newest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.entries...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Get returns the query of entry n, counting from 1.
func (h *History) Get(n int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n < 1 || n > len(h.entries) {
		return "", false
	}
	return h.entries[n-1].Query, true
}

// Lines formats the entries as numbered lines no wider than width.
func (h *History) Lines(width int) []string {
	entries := h.Entries()
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		prefix := strconv.Itoa(i+1) + ". "
		lines = append(lines, prefix+truncateWithEllipsis(e.Query, width-len(prefix)))
	}
	return lines
}

// Save writes the history to path, replacing the file atomically.
func (h *History) Save(path string) error {
	data, err := yaml.Marshal(h.Entries())
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}
