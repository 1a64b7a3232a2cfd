// Package pipeline orchestrates the extract → materialize → upload run
// across the configured organizations.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/firefox-exe/repolang/internal/config"
	"github.com/firefox-exe/repolang/pkg/cache"
	"github.com/firefox-exe/repolang/pkg/extract"
	"github.com/firefox-exe/repolang/pkg/github"
	"github.com/firefox-exe/repolang/pkg/upload"
)

// Pipeline runs the full extraction and upload sequence. Errors in one
// organization or one file are contained; the loop continues with the next
// unit of work. Only configuration errors abort the run.
type Pipeline struct {
	cfg       config.Config
	client    *github.Client
	uploader  *upload.Uploader
	snapshots *cache.Manager

	// SkipUpload disables repository preparation and uploads; extraction
	// and CSV materialization still run.
	SkipUpload bool

	logger zerolog.Logger
}

// Summary reports what a run accomplished.
type Summary struct {
	OrgsProcessed int
	OrgsFailed    int
	RowsWritten   int
	FilesUploaded int
}

// New creates a pipeline. snapshots may be nil to disable the cross-run cache.
func New(cfg config.Config, client *github.Client, snapshots *cache.Manager) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		client:    client,
		uploader:  upload.NewUploader(client, cfg.Username),
		snapshots: snapshots,
		logger:    log.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes the pipeline sequentially: prepare the target repository,
// then for each organization fetch, project, write CSV, and upload.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", p.cfg.DataDir, err)
	}

	p.logger.Info().
		Strs("orgs", p.cfg.Orgs).
		Str("target_repo", p.cfg.TargetRepo).
		Msg("Starting pipeline run")

	repoReady := false
	if !p.SkipUpload {
		status, err := p.uploader.EnsureRepository(ctx, p.cfg.TargetRepo)
		if err != nil {
			p.logger.Error().Err(err).
				Str("repo", p.cfg.TargetRepo).
				Msg("Repository preparation failed, uploads will be skipped")
		} else {
			p.logger.Info().
				Str("repo", p.cfg.TargetRepo).
				Str("status", string(status)).
				Msg("Target repository ready")
			repoReady = true
		}
	}

	summary := &Summary{}

	for _, org := range p.cfg.Orgs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := p.processOrg(ctx, org, repoReady, summary); err != nil {
			p.logger.Error().Err(err).Str("owner", org).Msg("Organization failed, continuing")
			summary.OrgsFailed++
			continue
		}
		summary.OrgsProcessed++
	}

	p.logger.Info().
		Int("orgs_processed", summary.OrgsProcessed).
		Int("orgs_failed", summary.OrgsFailed).
		Int("rows_written", summary.RowsWritten).
		Int("files_uploaded", summary.FilesUploaded).
		Msg("Pipeline run finished")

	return summary, nil
}

// processOrg runs the extract → project → materialize → upload sequence
// for one organization.
func (p *Pipeline) processOrg(ctx context.Context, org string, repoReady bool, summary *Summary) error {
	fetcher := extract.NewFetcher(p.client, org, extract.Config{
		PerPage:   p.cfg.PerPage,
		PageDelay: p.cfg.PageDelay(),
		Snapshots: p.snapshots,
	})

	result := fetcher.FetchAll(ctx)
	switch result.Status {
	case extract.Complete:
		// Nothing to note.
	case extract.Partial:
		p.logger.Warn().
			Str("owner", org).
			Str("reason", result.Reason).
			Int("repos", len(result.Repos)).
			Msg("Fetch incomplete, proceeding with partial data")
	case extract.Failed:
		return fmt.Errorf("fetch failed: %s", result.Reason)
	}

	rows := extract.ProjectRows(result.Repos)
	if len(rows) == 0 {
		p.logger.Info().Str("owner", org).Msg("No repository data, skipping CSV and upload")
		return nil
	}

	fileName := fmt.Sprintf("languages_%s.csv", org)
	localPath := filepath.Join(p.cfg.DataDir, fileName)

	if err := WriteLanguageCSV(localPath, rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	summary.RowsWritten += len(rows)

	p.logger.Info().
		Str("owner", org).
		Str("path", localPath).
		Int("rows", len(rows)).
		Msg("Language data written")

	if !repoReady {
		return nil
	}

	outcome, err := p.uploader.UploadFile(ctx, p.cfg.TargetRepo, fileName, localPath)
	if err != nil {
		// Upload failure does not fail the organization: the CSV exists
		// locally and the next org can still proceed.
		p.logger.Error().Err(err).
			Str("owner", org).
			Str("path", fileName).
			Msg("Upload failed")
		return nil
	}

	summary.FilesUploaded++
	p.logger.Info().
		Str("owner", org).
		Str("path", fileName).
		Str("outcome", string(outcome)).
		Msg("Upload finished")

	return nil
}
