// Package testutil provides a configurable mock GitHub API server for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// RecordedRequest captures one request received by the mock server.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// Repo is the repository record shape served by the mock listing endpoint.
type Repo struct {
	Name     string  `json:"name"`
	Language *string `json:"language"`
}

// MockGitHub is a configurable mock GitHub API server.
type MockGitHub struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	scripts  map[string][]MockResponse

	// Tracking
	RequestCount int
	Recorded     []RecordedRequest
}

// NewMockGitHub creates a new mock GitHub server.
func NewMockGitHub() *MockGitHub {
	mock := &MockGitHub{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		scripts:  make(map[string][]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		mock.mu.Lock()
		mock.RequestCount++
		mock.Recorded = append(mock.Recorded, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		})

		// Scripted responses take precedence and are consumed in order;
		// the last one repeats.
		if script, ok := mock.scripts[r.URL.Path]; ok && len(script) > 0 {
			resp := script[0]
			if len(script) > 1 {
				mock.scripts[r.URL.Path] = script[1:]
			}
			mock.mu.Unlock()
			writeResponse(w, resp)
			return
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		writeResponse(w, MockResponse{
			StatusCode: http.StatusNotFound,
			Body:       `{"message": "Not Found"}`,
		})
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockGitHub) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGitHub) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a specific path.
func (m *MockGitHub) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockGitHub) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetScript configures a sequence of responses for a path, served in order.
// The last response repeats once the script is exhausted.
func (m *MockGitHub) SetScript(path string, responses []MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[path] = responses
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockGitHub) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// RequestsTo returns the recorded requests whose path matches.
func (m *MockGitHub) RequestsTo(path string) []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []RecordedRequest
	for _, req := range m.Recorded {
		if req.Path == path {
			matched = append(matched, req)
		}
	}
	return matched
}

// SetRepoPages serves a paginated repository listing for owner. Page N
// (1-based) returns pages[N-1]; pages past the end return an empty list.
func (m *MockGitHub) SetRepoPages(owner string, pages [][]Repo) {
	m.SetHandler("/users/"+owner+"/repos", func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		var repos []Repo
		if page <= len(pages) {
			repos = pages[page-1]
		}
		if repos == nil {
			repos = []Repo{}
		}

		data, _ := json.Marshal(repos)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	})
}

// ServeContents installs a stateful contents API for owner/repo. GET
// answers 200 with the current sha or 404; PUT answers 201 on create and
// 200 on update, rejecting updates whose sha does not match.
func (m *MockGitHub) ServeContents(owner, repo string) *ContentsState {
	state := &ContentsState{shas: make(map[string]string)}
	prefix := fmt.Sprintf("/repos/%s/%s/contents/", owner, repo)

	// handlers are keyed by full path, so each remote name must be
	// registered explicitly via Track.
	state.register = func(remoteName string) {
		m.SetHandler(prefix+remoteName, func(w http.ResponseWriter, r *http.Request) {
			state.handle(w, r, remoteName)
		})
	}

	return state
}

// ContentsState is the bookkeeping behind ServeContents.
type ContentsState struct {
	mu       sync.Mutex
	shas     map[string]string
	puts     int
	register func(remoteName string)
}

// Track makes the contents endpoints for remoteName live.
func (s *ContentsState) Track(remoteName string) {
	s.register(remoteName)
}

// SHA returns the current sha for remoteName, or "" when absent.
func (s *ContentsState) SHA(remoteName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shas[remoteName]
}

// PutCount returns how many PUT writes were accepted.
func (s *ContentsState) PutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *ContentsState) handle(w http.ResponseWriter, r *http.Request, remoteName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.shas[remoteName]

	switch r.Method {
	case http.MethodGet:
		if !exists {
			writeResponse(w, MockResponse{StatusCode: http.StatusNotFound, Body: `{"message": "Not Found"}`})
			return
		}
		writeResponse(w, MockResponse{
			StatusCode: http.StatusOK,
			Body:       fmt.Sprintf(`{"sha": %q, "path": %q}`, current, remoteName),
		})

	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Message string `json:"message"`
			Content string `json:"content"`
			SHA     string `json:"sha"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeResponse(w, MockResponse{StatusCode: http.StatusBadRequest, Body: `{"message": "bad json"}`})
			return
		}

		if exists && req.SHA != current {
			writeResponse(w, MockResponse{StatusCode: http.StatusConflict, Body: `{"message": "sha mismatch"}`})
			return
		}

		s.shas[remoteName] = fmt.Sprintf("sha-%d-%d", len(req.Content), s.puts)
		s.puts++

		status := http.StatusCreated
		if exists {
			status = http.StatusOK
		}
		writeResponse(w, MockResponse{
			StatusCode: status,
			Body:       fmt.Sprintf(`{"content": {"sha": %q}}`, s.shas[remoteName]),
		})

	default:
		writeResponse(w, MockResponse{StatusCode: http.StatusMethodNotAllowed})
	}
}

// NewRateLimitResponse creates a 403 response with an exhausted quota and
// the given reset time.
func NewRateLimitResponse(resetAt time.Time) MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"message": "API rate limit exceeded"}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     strconv.FormatInt(resetAt.Unix(), 10),
		},
	}
}

// NewRepoPageResponse creates a 200 listing page response.
func NewRepoPageResponse(repos []Repo) MockResponse {
	if repos == nil {
		repos = []Repo{}
	}
	data, _ := json.Marshal(repos)
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(data),
		Headers: map[string]string{
			"Content-Type":          "application/json; charset=utf-8",
			"X-RateLimit-Remaining": "4999",
		},
	}
}

// NewRepoCreatedResponse creates a 201 repository creation response.
func NewRepoCreatedResponse(name string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusCreated,
		Body:       fmt.Sprintf(`{"name": %q, "html_url": "https://github.com/mock/%s"}`, name, name),
	}
}

// NewRepoExistsResponse creates the 422 response GitHub sends when the
// repository name is taken.
func NewRepoExistsResponse() MockResponse {
	return MockResponse{
		StatusCode: 422,
		Body:       `{"message": "Repository creation failed.", "errors": [{"message": "name already exists on this account"}]}`,
	}
}

// Ptr returns a pointer to v, for building optional fields in test data.
func Ptr[T any](v T) *T {
	return &v
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}
