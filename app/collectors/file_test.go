package collectors

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeDump(t *testing.T, content string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return &Config{
		Name:   "dump",
		Kind:   "file",
		Path:   path,
		Source: "Crunchbase",
		Type:   "funding",
	}
}

func TestFileCollectorArrayDump(t *testing.T) {
	config := writeDump(t, `[
		{"headline": "Round closed", "date": "2025-10-15"},
		{"headline": "Another one", "date": "2025-10-16", "source": "LinkedIn"}
	]`)

	collector := NewFileCollector(config)
	records, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	// Configured source stamped only where the record has none
	if records[0]["source"] != "Crunchbase" {
		t.Errorf("Expected stamped source 'Crunchbase', got %v", records[0]["source"])
	}
	if records[1]["source"] != "LinkedIn" {
		t.Errorf("Record source should not be overwritten, got %v", records[1]["source"])
	}
	if records[0]["signal_type"] != "funding" {
		t.Errorf("Expected stamped signal_type 'funding', got %v", records[0]["signal_type"])
	}
}

func TestFileCollectorWrappedDump(t *testing.T) {
	config := writeDump(t, `{"generated_at": "2025-10-20", "all_signals": [{"headline": "One"}]}`)

	collector := NewFileCollector(config)
	records, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0]["headline"] != "One" {
		t.Errorf("Unexpected record: %v", records[0])
	}
}

func TestFileCollectorSingleObjectDump(t *testing.T) {
	config := writeDump(t, `{"headline": "Solo record", "date": "2025-10-15"}`)

	collector := NewFileCollector(config)
	records, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0]["headline"] != "Solo record" {
		t.Errorf("Unexpected record: %v", records[0])
	}
}

func TestFileCollectorMissingFile(t *testing.T) {
	config := &Config{Name: "gone", Kind: "file", Path: filepath.Join(t.TempDir(), "missing.json")}

	if _, err := NewFileCollector(config).Collect(context.Background()); err == nil {
		t.Error("Expected an error for a missing dump file")
	}
}

func TestFileCollectorInvalidJSON(t *testing.T) {
	config := writeDump(t, `not json at all`)

	if _, err := NewFileCollector(config).Collect(context.Background()); err == nil {
		t.Error("Expected an error for invalid JSON")
	}
}
