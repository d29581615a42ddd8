package console

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestHistoryKeepsNewestFirst(t *testing.T) {
	h := NewHistory(3)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		h.Add("query "+strconv.Itoa(i), base.Add(time.Duration(i)*time.Minute))
	}
	h.Add("   ", base)
	entries := h.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"query 5", "query 4", "query 3"} {
		if entries[i].Query != want {
			t.Fatalf("entry %d = %q, want %q", i, entries[i].Query, want)
		}
	}
	if q, ok := h.Get(1); !ok || q != "query 5" {
		t.Fatalf("Get(1) = %q, %v", q, ok)
	}
	if _, ok := h.Get(4); ok {
		t.Fatalf("Get(4) should fail")
	}
}

func TestHistoryRecordsRepeats(t *testing.T) {
	h := NewHistory(0)
	h.Add("same", time.Now())
	h.Add("same", time.Now())
	if h.Len() != 2 {
		t.Fatalf("expected repeated query to be recorded twice")
	}
}

func TestHistoryLines(t *testing.T) {
	h := NewHistory(10)
	h.Add("a fairly long research question", time.Now())
	lines := h.Lines(12)
	if len(lines) != 1 || lines[0] != "1. a fairly…" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestHistorySaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.yaml")
	h := NewHistory(10)
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	h.Add("first", at)
	h.Add("second", at.Add(time.Hour))
	if err := h.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadHistory(path, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	entries := loaded.Entries()
	if len(entries) != 1 || entries[0].Query != "second" || !entries[0].At.Equal(at.Add(time.Hour)) {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestLoadHistoryMissingAndInvalid(t *testing.T) {
	dir := t.TempDir()
	h, err := LoadHistory(filepath.Join(dir, "none.yaml"), 10)
	if err != nil || h.Len() != 0 {
		t.Fatalf("missing file: %v, %d entries", err, h.Len())
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("query: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHistory(bad, 10); err == nil {
		t.Fatalf("expected error for invalid history file")
	}
}
