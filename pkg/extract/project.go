package extract

import (
	"github.com/rs/zerolog/log"
)

// LanguageRow is one row of the materialized language table.
// Language stays nil when the repository reports no primary language.
type LanguageRow struct {
	RepositoryName string
	Language       *string
}

// ProjectRows projects fetched repositories into language table rows.
// Records without a resolvable name contribute no row and are logged;
// a missing language is preserved as nil so rows stay aligned with names.
func ProjectRows(repos []Repository) []LanguageRow {
	rows := make([]LanguageRow, 0, len(repos))

	for _, repo := range repos {
		if repo.Name == "" {
			log.Warn().Msg("Repository record without a name, skipping")
			continue
		}

		if repo.Language == nil {
			log.Debug().
				Str("repository", repo.Name).
				Msg("Repository has no primary language")
		}

		rows = append(rows, LanguageRow{
			RepositoryName: repo.Name,
			Language:       repo.Language,
		})
	}

	return rows
}
