// Package upload pushes local artifacts into a GitHub repository through
// the contents API, creating the target repository when needed.
package upload

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/firefox-exe/repolang/pkg/github"
)

// Prometheus metrics for upload operations.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repolang_uploads_total",
		Help: "Total file uploads by outcome",
	}, []string{"outcome"})

	repoCreateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repolang_repo_create_total",
		Help: "Total repository creation attempts by status",
	}, []string{"status"})
)

// RepoStatus is the outcome of preparing the target repository.
type RepoStatus string

const (
	// RepoCreated means the repository did not exist and was created.
	RepoCreated RepoStatus = "created"

	// RepoAlreadyExists means the repository was already present, which
	// counts as success.
	RepoAlreadyExists RepoStatus = "already_exists"
)

// Outcome is the result of a successful file upload.
type Outcome string

const (
	// OutcomeCreated means the remote file did not exist before (HTTP 201).
	OutcomeCreated Outcome = "created"

	// OutcomeUpdated means an existing remote file was overwritten (HTTP 200).
	OutcomeUpdated Outcome = "updated"
)

// Uploader writes files into a GitHub repository owned by a single user.
type Uploader struct {
	client *github.Client
	owner  string
	logger zerolog.Logger
}

// NewUploader creates an uploader writing into repositories of owner.
func NewUploader(client *github.Client, owner string) *Uploader {
	return &Uploader{
		client: client,
		owner:  owner,
		logger: log.With().Str("component", "uploader").Str("owner", owner).Logger(),
	}
}

type createRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
}

type contentsPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type contentsGetResponse struct {
	SHA string `json:"sha"`
}

// EnsureRepository creates the named repository for the authenticated user.
// An existing repository with that name is a success, not an error.
func (u *Uploader) EnsureRepository(ctx context.Context, name string) (RepoStatus, error) {
	body := createRepoRequest{
		Name:        name,
		Description: "Repository language data for selected companies",
		Private:     false,
	}

	resp, err := u.client.Post(ctx, "/user/repos", body)
	if err != nil {
		repoCreateTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("create repository %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		repoCreateTotal.WithLabelValues(string(RepoCreated)).Inc()
		u.logger.Info().Str("repo", name).Msg("Repository created")
		return RepoCreated, nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if github.IsAlreadyExists(resp.StatusCode, string(respBody)) {
		repoCreateTotal.WithLabelValues(string(RepoAlreadyExists)).Inc()
		u.logger.Info().Str("repo", name).Msg("Repository already exists, continuing")
		return RepoAlreadyExists, nil
	}

	repoCreateTotal.WithLabelValues("failed").Inc()
	return "", &github.APIError{
		StatusCode: resp.StatusCode,
		Class:      github.ClassifyStatus(resp.StatusCode),
		Endpoint:   "/user/repos",
		Body:       string(respBody),
	}
}

// UploadFile upserts the local file at localPath into repo under remoteName.
// It probes the remote path first to obtain the current content sha; the sha
// is supplied on the write only when the file already exists, so an update
// never silently overwrites unseen changes. An unreadable local file fails
// before any network call. There is no retry: upload is best effort once.
func (u *Uploader) UploadFile(ctx context.Context, repo, remoteName, localPath string) (Outcome, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		uploadsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("read local artifact %s: %w", localPath, err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	contentsPath := fmt.Sprintf("/repos/%s/%s/contents/%s", u.owner, repo, remoteName)

	sha := u.probeSHA(ctx, contentsPath)

	reqBody := contentsPutRequest{
		Message: "Automated upload via repolang pipeline: " + remoteName,
		Content: encoded,
		SHA:     sha,
	}

	resp, err := u.client.Put(ctx, contentsPath, reqBody)
	if err != nil {
		uploadsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("upload %s: %w", remoteName, err)
	}
	defer resp.Body.Close()

	var outcome Outcome
	switch resp.StatusCode {
	case http.StatusCreated:
		outcome = OutcomeCreated
	case http.StatusOK:
		outcome = OutcomeUpdated
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		uploadsTotal.WithLabelValues("failed").Inc()
		return "", &github.APIError{
			StatusCode: resp.StatusCode,
			Class:      github.ClassifyStatus(resp.StatusCode),
			Endpoint:   contentsPath,
			Body:       string(respBody),
		}
	}

	uploadsTotal.WithLabelValues(string(outcome)).Inc()
	u.logger.Info().
		Str("repo", repo).
		Str("path", remoteName).
		Str("outcome", string(outcome)).
		Msg("File uploaded")

	return outcome, nil
}

// probeSHA checks whether the remote file exists and returns its content sha.
// A 404 means the file will be created; any other problem is logged and the
// upload proceeds without a sha, best effort.
func (u *Uploader) probeSHA(ctx context.Context, contentsPath string) string {
	resp, err := u.client.Get(ctx, contentsPath, url.Values{})
	if err != nil {
		u.logger.Warn().Err(err).Str("path", contentsPath).
			Msg("Existence probe failed, proceeding without sha")
		return ""
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var current contentsGetResponse
		if err := json.NewDecoder(resp.Body).Decode(&current); err != nil {
			u.logger.Warn().Err(err).Str("path", contentsPath).
				Msg("Existence probe decode failed, proceeding without sha")
			return ""
		}
		u.logger.Debug().
			Str("path", contentsPath).
			Str("sha", current.SHA).
			Msg("Remote file exists, will update")
		return current.SHA
	case http.StatusNotFound:
		u.logger.Debug().Str("path", contentsPath).Msg("Remote file not found, will create")
		return ""
	default:
		u.logger.Warn().
			Str("path", contentsPath).
			Int("status_code", resp.StatusCode).
			Msg("Existence probe inconclusive, proceeding without sha")
		return ""
	}
}
