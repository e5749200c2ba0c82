package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write dataset file: %v", err)
	}
	return path
}

func TestLoadJSONL(t *testing.T) {
	content := `{"image_path": "shelf1.jpg", "books": [{"title": "Dune", "author": "Frank Herbert"}, {"title": "Hyperion", "author": "Dan Simmons"}]}

{"image_path": "shelf2.jpg", "books": [{"title": "Neuromancer", "author": "William Gibson"}]}
`
	path := writeDataset(t, "shelves.jsonl", content)

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records (blank line skipped), got %d", len(records))
	}
	if records[0].ImagePath != "shelf1.jpg" || len(records[0].Books) != 2 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].Books[0].Title != "Neuromancer" {
		t.Errorf("Unexpected second record: %+v", records[1])
	}
}

func TestLoadJSONLMalformedLine(t *testing.T) {
	path := writeDataset(t, "bad.jsonl", `{"image_path": "shelf1.jpg", "books": []}
not json
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Fatal("Expected error for malformed line")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeDataset(t, "shelves.csv", "title,author\n")

	if _, err := NewLoader(path).Load(); err == nil {
		t.Fatal("Expected error for unsupported format")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := NewLoader("/nonexistent/shelves.jsonl").Load(); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadSample(t *testing.T) {
	content := `{"image_path": "a.jpg", "books": []}
{"image_path": "b.jpg", "books": []}
{"image_path": "c.jpg", "books": []}
`
	path := writeDataset(t, "shelves.jsonl", content)

	records, err := NewLoader(path).LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 sampled records, got %d", len(records))
	}

	all, err := NewLoader(path).LoadSample(0)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected all records with limit 0, got %d", len(all))
	}
}
