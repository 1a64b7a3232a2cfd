package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/firefox-exe/repolang/pkg/extract"
)

func strPtr(s string) *string {
	return &s
}

func TestWriteLanguageCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages_acme.csv")

	rows := []extract.LanguageRow{
		{RepositoryName: "a", Language: strPtr("Go")},
		{RepositoryName: "b", Language: nil},
		{RepositoryName: "c", Language: strPtr("Rust")},
	}

	if err := WriteLanguageCSV(path, rows); err != nil {
		t.Fatalf("WriteLanguageCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	expected := [][]string{
		{"repository_name", "language"},
		{"a", "Go"},
		{"b", ""}, // nil language becomes an empty field
		{"c", "Rust"},
	}

	if !reflect.DeepEqual(records, expected) {
		t.Errorf("records = %v, want %v", records, expected)
	}
}

func TestWriteLanguageCSV_EmptyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := WriteLanguageCSV(path, nil); err != nil {
		t.Fatalf("WriteLanguageCSV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "repository_name,language\n" {
		t.Errorf("content = %q, want header only", data)
	}
}

func TestWriteLanguageCSV_BadPath(t *testing.T) {
	err := WriteLanguageCSV(filepath.Join(t.TempDir(), "missing", "f.csv"), nil)
	if err == nil {
		t.Fatal("WriteLanguageCSV(bad path) error = nil, want error")
	}
}
