// Package extract fetches repository metadata from the GitHub API page by
// page and projects it into tabular language rows.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/firefox-exe/repolang/pkg/cache"
	"github.com/firefox-exe/repolang/pkg/github"
)

// MaxPerPage is the largest page size the GitHub API accepts.
const MaxPerPage = 100

// Prometheus metrics for fetch operations.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repolang_pages_fetched_total",
		Help: "Total repository listing pages fetched",
	})

	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repolang_rate_limit_waits_total",
		Help: "Total waits caused by an exhausted rate limit quota",
	})

	fetchResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repolang_fetch_results_total",
		Help: "Total fetch results by completeness status",
	}, []string{"status"})
)

// Repository is the narrow projection of a GitHub repository record.
// Only the fields this pipeline reads are modeled; Language is nil when
// the provider reports no primary language.
type Repository struct {
	Name     string  `json:"name"`
	Language *string `json:"language"`
}

// Completeness states whether a fetch covered the whole collection.
type Completeness string

const (
	// Complete means pagination reached the empty page that ends the collection.
	Complete Completeness = "complete"

	// Partial means an error stopped pagination after some pages were fetched.
	Partial Completeness = "partial"

	// Failed means no page could be fetched at all.
	Failed Completeness = "failed"
)

// Result carries the fetched repositories together with an explicit
// completeness status, so callers can distinguish "no data" from
// "pagination stopped early" instead of inferring failure from emptiness.
type Result struct {
	Repos  []Repository
	Status Completeness
	Reason string
}

// Complete reports whether the whole collection was fetched.
func (r *Result) Complete() bool {
	return r.Status == Complete
}

// Config holds fetcher configuration.
type Config struct {
	// PerPage is the page size, capped at MaxPerPage (default: MaxPerPage).
	PerPage int

	// PageDelay is the courtesy pause between successful page fetches
	// (default: 500ms).
	PageDelay time.Duration

	// Snapshots is an optional cross-run snapshot cache. Nil disables it.
	Snapshots *cache.Manager
}

// DefaultConfig returns safe defaults for the GitHub API.
func DefaultConfig() Config {
	return Config{
		PerPage:   MaxPerPage,
		PageDelay: 500 * time.Millisecond,
	}
}

// Fetcher retrieves all repositories of a single owner. The result of the
// first FetchAll is memoized for the fetcher's lifetime; later calls return
// it without issuing requests.
type Fetcher struct {
	client    *github.Client
	owner     string
	perPage   int
	pageDelay time.Duration
	snapshots *cache.Manager

	cached *Result

	logger zerolog.Logger
}

// snapshot is the JSON shape stored in the snapshot cache.
type snapshot struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Repos     []Repository `json:"repos"`
}

// NewFetcher creates a fetcher for one owner (user or organization).
func NewFetcher(client *github.Client, owner string, cfg Config) *Fetcher {
	if cfg.PerPage <= 0 || cfg.PerPage > MaxPerPage {
		cfg.PerPage = MaxPerPage
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 500 * time.Millisecond
	}

	return &Fetcher{
		client:    client,
		owner:     owner,
		perPage:   cfg.PerPage,
		pageDelay: cfg.PageDelay,
		snapshots: cfg.Snapshots,
		logger:    log.With().Str("component", "fetcher").Str("owner", owner).Logger(),
	}
}

// FetchAll retrieves every repository of the owner, page by page, until an
// empty page ends the collection. An exhausted rate limit suspends the loop
// until the quota resets and then retries the same page. Any other failure
// stops pagination and yields a Partial (or Failed) result with whatever
// was accumulated.
func (f *Fetcher) FetchAll(ctx context.Context) *Result {
	if f.cached != nil {
		f.logger.Debug().Msg("Returning memoized fetch result")
		return f.cached
	}

	if res := f.loadSnapshot(ctx); res != nil {
		f.cached = res
		return res
	}

	res := f.fetchPages(ctx)
	fetchResultsTotal.WithLabelValues(string(res.Status)).Inc()

	f.cached = res
	if res.Complete() {
		f.storeSnapshot(ctx, res.Repos)
	}

	return res
}

func (f *Fetcher) fetchPages(ctx context.Context) *Result {
	var repos []Repository
	page := 1

	for {
		pageRepos, err := f.fetchPage(ctx, page)
		if err != nil {
			var rlErr *github.RateLimitError
			if errors.As(err, &rlErr) {
				if !f.waitForReset(ctx, rlErr) {
					return f.partial(repos, "cancelled during rate limit wait")
				}
				continue // retry the same page
			}

			f.logger.Warn().
				Err(err).
				Int("page", page).
				Int("accumulated", len(repos)).
				Msg("Stopping pagination early")
			return f.partial(repos, err.Error())
		}

		if len(pageRepos) == 0 {
			f.logger.Info().
				Int("pages", page-1).
				Int("repos", len(repos)).
				Msg("Fetch complete")
			return &Result{Repos: repos, Status: Complete}
		}

		repos = append(repos, pageRepos...)
		pagesFetchedTotal.Inc()
		f.logger.Debug().
			Int("page", page).
			Int("page_size", len(pageRepos)).
			Int("total", len(repos)).
			Msg("Page fetched")
		page++

		// Courtesy pause between successful pages.
		if f.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return f.partial(repos, "cancelled between pages")
			case <-time.After(f.pageDelay):
			}
		}
	}
}

// fetchPage requests a single page of the owner's repository listing.
func (f *Fetcher) fetchPage(ctx context.Context, page int) ([]Repository, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(f.perPage)},
	}

	resp, err := f.client.Get(ctx, "/users/"+f.owner+"/repos", query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &github.APIError{
			StatusCode: resp.StatusCode,
			Class:      github.ClassifyStatus(resp.StatusCode),
			Endpoint:   resp.Request.URL.Path,
			Body:       string(body),
		}
	}

	var pageRepos []Repository
	if err := json.NewDecoder(resp.Body).Decode(&pageRepos); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}

	return pageRepos, nil
}

// waitForReset blocks until the rate limit quota resets (plus a one second
// margin). Returns false when the context was cancelled while waiting.
func (f *Fetcher) waitForReset(ctx context.Context, rlErr *github.RateLimitError) bool {
	wait := rlErr.WaitDuration()
	rateLimitWaitsTotal.Inc()

	f.logger.Warn().
		Dur("wait", wait).
		Time("reset_at", rlErr.ResetAt).
		Msg("Rate limit exhausted, waiting for reset")

	select {
	case <-ctx.Done():
		return false
	case <-time.After(wait):
		return true
	}
}

func (f *Fetcher) partial(repos []Repository, reason string) *Result {
	status := Partial
	if len(repos) == 0 {
		status = Failed
	}
	return &Result{Repos: repos, Status: status, Reason: reason}
}

// loadSnapshot returns a Result from the snapshot cache, or nil on miss,
// error, or when no cache is configured.
func (f *Fetcher) loadSnapshot(ctx context.Context) *Result {
	if f.snapshots == nil {
		return nil
	}

	data, err := f.snapshots.Get(ctx, cache.RepoKey(f.owner))
	if err != nil {
		if err != cache.ErrCacheMiss {
			f.logger.Warn().Err(err).Msg("Snapshot cache get failed")
		}
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		f.logger.Warn().Err(err).Msg("Discarding corrupt snapshot")
		return nil
	}

	f.logger.Info().
		Int("repos", len(snap.Repos)).
		Time("fetched_at", snap.FetchedAt).
		Msg("Using cached repository snapshot")

	return &Result{Repos: snap.Repos, Status: Complete, Reason: "snapshot cache"}
}

// storeSnapshot saves a complete fetch to the snapshot cache, best effort.
func (f *Fetcher) storeSnapshot(ctx context.Context, repos []Repository) {
	if f.snapshots == nil {
		return
	}

	data, err := json.Marshal(snapshot{FetchedAt: time.Now().UTC(), Repos: repos})
	if err != nil {
		f.logger.Warn().Err(err).Msg("Snapshot encode failed")
		return
	}

	if err := f.snapshots.Set(ctx, cache.RepoKey(f.owner), data); err != nil {
		f.logger.Warn().Err(err).Msg("Snapshot cache set failed")
	}
}
