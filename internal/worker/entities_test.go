package worker

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entities.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadLinesFromFile(t *testing.T) {
	path := writeTemp(t, "AAPL\n# big tech\nMSFT\n   \n  NVDA  \nAAPL\n")

	lines, err := ReadLinesFromFile(path)
	if err != nil {
		t.Fatalf("ReadLinesFromFile failed: %v", err)
	}

	expected := []string{"AAPL", "MSFT", "NVDA", "AAPL"}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d (%v)", len(expected), len(lines), lines)
	}
	for i, line := range lines {
		if line != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, line)
		}
	}
}

func TestReadLinesFromFile_Empty(t *testing.T) {
	lines, err := ReadLinesFromFile(writeTemp(t, ""))
	if err != nil {
		t.Fatalf("ReadLinesFromFile failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected 0 lines, got %d", len(lines))
	}
}

func TestReadLinesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadLinesFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
