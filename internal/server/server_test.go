package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	linkify "github.com/derwolz/rebelreads-linkify"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, opts Options) (*Server, *test.Hook) {
	t.Helper()

	parser, err := linkify.New()
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return New(parser, logger, opts), hook
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/v1/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, linkify.DefaultSiteDomain, body["siteDomain"])
}

func TestSegments(t *testing.T) {
	t.Parallel()

	s, hook := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/api/v1/segments", `{"message":"check /books/42 now"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Segments []linkify.Segment `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []linkify.Segment{
		linkify.TextSegment("check "),
		linkify.PreviewSegment(linkify.BookRef{ID: 42}, "/books/42"),
		linkify.TextSegment(" now"),
	}, body.Segments)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "/api/v1/segments", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/api/v1/analyze",
		`{"message":"buy https://cheap.example now, see sirened.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Stripped  []string `json:"stripped"`
		Preserved []string `json:"preserved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"https://cheap.example"}, body.Stripped)
	assert.Equal(t, []string{"sirened.com"}, body.Preserved)
}

func TestRender(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, Options{Marker: "<{kind}>"})

	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{
			name:        "default html",
			wantStatus:  http.StatusOK,
			wantType:    "text/html; charset=utf-8",
			wantContain: `<div class="link-preview" data-kind="book" data-id="7"`,
		},
		{
			name:        "text with marker",
			query:       "?format=text",
			wantStatus:  http.StatusOK,
			wantType:    "text/plain; charset=utf-8",
			wantContain: "read <book> &",
		},
		{
			name:        "json",
			query:       "?format=JSON",
			wantStatus:  http.StatusOK,
			wantType:    "application/json",
			wantContain: `"kind":"book"`,
		},
		{
			name:        "unknown format",
			query:       "?format=pdf",
			wantStatus:  http.StatusBadRequest,
			wantContain: "available: text, json, html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, s, http.MethodPost, "/api/v1/render"+tt.query, `{"message":"read /books/7 & enjoy"}`)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			}
			assert.Contains(t, rec.Body.String(), tt.wantContain)
		})
	}
}

func TestRequestErrors(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, Options{MaxBodyBytes: 32})

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{
			name:       "malformed json",
			method:     http.MethodPost,
			target:     "/api/v1/segments",
			body:       `{"message":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			method:     http.MethodPost,
			target:     "/api/v1/segments",
			body:       `{"msg":"x"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "body too large",
			method:     http.MethodPost,
			target:     "/api/v1/segments",
			body:       `{"message":"` + strings.Repeat("a", 64) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			target:     "/api/v1/segments",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			target:     "/api/v2/segments",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, s, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRecoverPanics(t *testing.T) {
	t.Parallel()

	s, hook := newTestServer(t, Options{})
	h := s.recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "boom", entry.Data["panic"])
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestServe_GracefulShutdown(t *testing.T) {
	s, _ := newTestServer(t, Options{ReadTimeout: time.Second, WriteTimeout: time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/v1/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	s, _ := newTestServer(t, Options{Addr: ln.Addr().String()})
	err = s.ListenAndServe(context.Background())
	assert.ErrorIs(t, err, ErrListen)
}
