package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/firefox-exe/repolang/pkg/extract"
)

// WriteLanguageCSV materializes language rows as a two-column CSV file.
// A nil language becomes an empty field.
func WriteLanguageCSV(path string, rows []extract.LanguageRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"repository_name", "language"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		language := ""
		if row.Language != nil {
			language = *row.Language
		}
		if err := w.Write([]string{row.RepositoryName, language}); err != nil {
			return fmt.Errorf("write row for %s: %w", row.RepositoryName, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	return f.Close()
}
