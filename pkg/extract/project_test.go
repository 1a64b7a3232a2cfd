package extract

import (
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestProjectRows(t *testing.T) {
	repos := []Repository{
		{Name: "a", Language: strPtr("Go")},
		{Name: "b", Language: nil},
		{Name: "", Language: strPtr("Rust")}, // no name: contributes no row
	}

	rows := ProjectRows(repos)

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	if rows[0].RepositoryName != "a" {
		t.Errorf("rows[0].RepositoryName = %q, want a", rows[0].RepositoryName)
	}
	if rows[0].Language == nil || *rows[0].Language != "Go" {
		t.Errorf("rows[0].Language = %v, want Go", rows[0].Language)
	}

	if rows[1].RepositoryName != "b" {
		t.Errorf("rows[1].RepositoryName = %q, want b", rows[1].RepositoryName)
	}
	if rows[1].Language != nil {
		t.Errorf("rows[1].Language = %v, want nil (preserved, not skipped)", *rows[1].Language)
	}
}

func TestProjectRows_Empty(t *testing.T) {
	if rows := ProjectRows(nil); len(rows) != 0 {
		t.Errorf("ProjectRows(nil) = %d rows, want 0", len(rows))
	}
	if rows := ProjectRows([]Repository{}); len(rows) != 0 {
		t.Errorf("ProjectRows(empty) = %d rows, want 0", len(rows))
	}
}

func TestProjectRows_AllNameless(t *testing.T) {
	repos := []Repository{
		{Language: strPtr("Go")},
		{Language: nil},
	}

	if rows := ProjectRows(repos); len(rows) != 0 {
		t.Errorf("ProjectRows(nameless) = %d rows, want 0", len(rows))
	}
}
