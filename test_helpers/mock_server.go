// Package test_helpers provides a fake Reddit server for exercising the
// client end to end without network access.
package test_helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// TokenPath is the password grant endpoint.
const TokenPath = "/api/v1/access_token"

// MockServer is a configurable fake Reddit API. It serves both the token
// endpoint and the API paths, so a client may use its URL as both BaseURL
// and AuthURL.
type MockServer struct {
	server *httptest.Server

	mu          sync.Mutex
	responses   map[string][]*MockResponse
	defaultResp *MockResponse
	requestLog  []RequestEntry
	callCount   map[string]int
}

// RequestEntry records one request received by the server.
type RequestEntry struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    string
}

// MockResponse defines a canned response.
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
}

// NewMockServer starts a server whose token endpoint grants a one-hour
// token and whose other paths answer 404.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string][]*MockResponse),
		callCount: make(map[string]int),
		defaultResp: &MockResponse{
			Status: http.StatusNotFound,
			Body:   `{"message": "Not Found", "error": 404}`,
		},
	}
	ms.SetResponse(TokenPath, TokenResponse("mock_token", 3600))
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the server.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse makes path answer with response on every call.
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = []*MockResponse{response}
}

// QueueResponses makes path answer with responses in order, repeating the
// last one once the queue is drained.
func (ms *MockServer) QueueResponses(path string, responses ...*MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = responses
}

// GetRequestLog returns a copy of the requests received so far.
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]RequestEntry(nil), ms.requestLog...)
}

// GetCallCount returns how many requests hit path.
func (ms *MockServer) GetCallCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.callCount[path]
}

// TotalCalls returns the number of requests received on any path.
func (ms *MockServer) TotalCalls() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requestLog)
}

// ServeHTTP implements http.Handler.
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requestLog = append(ms.requestLog, RequestEntry{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Headers: r.Header.Clone(),
		Body:    string(body),
	})
	ms.callCount[r.URL.Path]++

	response := ms.defaultResp
	if queue := ms.responses[r.URL.Path]; len(queue) > 0 {
		response = queue[0]
		if len(queue) > 1 {
			ms.responses[r.URL.Path] = queue[1:]
		}
	}
	ms.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(response.Status)
	_, _ = w.Write([]byte(response.Body))
}

// TokenResponse is a successful password grant.
func TokenResponse(token string, expiresIn int) *MockResponse {
	return &MockResponse{
		Status: http.StatusOK,
		Body:   fmt.Sprintf(`{"access_token":%q,"token_type":"bearer","expires_in":%d,"scope":"*"}`, token, expiresIn),
	}
}

// InvalidGrantResponse is Reddit's answer to bad credentials.
func InvalidGrantResponse() *MockResponse {
	return &MockResponse{Status: http.StatusOK, Body: `{"error": "invalid_grant"}`}
}

// WithQuota returns a copy of r carrying rate limit headers.
func WithQuota(r *MockResponse, remaining, resetSeconds int) *MockResponse {
	headers := map[string]string{
		"X-Ratelimit-Remaining": strconv.Itoa(remaining),
		"X-Ratelimit-Used":      "1",
		"X-Ratelimit-Reset":     strconv.Itoa(resetSeconds),
	}
	for k, v := range r.Headers {
		headers[k] = v
	}
	return &MockResponse{Status: r.Status, Body: r.Body, Headers: headers}
}

// LinkListing builds a listing of links with ids prefix0..prefixN-1 and
// the given after cursor.
func LinkListing(prefix string, n int, after string) *MockResponse {
	children := make([]map[string]any, n)
	for i := range n {
		id := fmt.Sprintf("%s%d", prefix, i)
		children[i] = map[string]any{
			"kind": "t3",
			"data": map[string]any{
				"id":          id,
				"name":        "t3_" + id,
				"title":       "Link " + id,
				"author":      "tester",
				"subreddit":   "golang",
				"score":       i,
				"created_utc": float64(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()),
			},
		}
	}

	listing := map[string]any{
		"kind": "Listing",
		"data": map[string]any{
			"after":    nilIfEmpty(after),
			"before":   nil,
			"dist":     n,
			"children": children,
		},
	}
	body, _ := json.Marshal(listing)
	return &MockResponse{Status: http.StatusOK, Body: string(body)}
}

// JSONResponse wraps a literal JSON body in a 200.
func JSONResponse(body string) *MockResponse {
	return &MockResponse{Status: http.StatusOK, Body: body}
}

// StatusResponse answers with status and body.
func StatusResponse(status int, body string) *MockResponse {
	return &MockResponse{Status: status, Body: body}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
