package ueditor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ahmad-alkadri/editor-depot/internal/apperr"
	"github.com/ahmad-alkadri/editor-depot/internal/fetcher"
	"github.com/ahmad-alkadri/editor-depot/internal/settings"
	"github.com/ahmad-alkadri/editor-depot/internal/storage"
	"github.com/stretchr/testify/require"
)

var fixedClock = time.Date(2023, time.March, 5, 14, 2, 9, 0, time.Local)

// MockFetcher serves canned images and records concurrency.
type MockFetcher struct {
	images map[string]*fetcher.Image
	delays map[string]time.Duration

	mu          sync.Mutex
	calls       []string
	limits      []int64
	inFlight    int
	maxInFlight int
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		images: make(map[string]*fetcher.Image),
		delays: make(map[string]time.Duration),
	}
}

func (m *MockFetcher) AddImage(url, contentType string, data []byte, name string) {
	m.images[url] = &fetcher.Image{
		ContentType:  contentType,
		Base64Data:   base64Encode(data),
		OriginalName: name,
	}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string, maxBytes int64) (*fetcher.Image, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.limits = append(m.limits, maxBytes)
	m.inFlight++
	m.maxInFlight = max(m.maxInFlight, m.inFlight)
	m.mu.Unlock()

	if delay := m.delays[url]; delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()

	img, ok := m.images[url]
	if !ok {
		return nil, &apperr.FetchError{URL: url, StatusCode: http.StatusNotFound}
	}
	copied := *img
	return &copied, nil
}

func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockObserver records dispatcher outcomes.
type MockObserver struct {
	mu            sync.Mutex
	requests      []string
	successes     int
	stored        map[string]int64
	fetchFailures int
}

func NewMockObserver() *MockObserver {
	return &MockObserver{stored: make(map[string]int64)}
}

func (o *MockObserver) ObserveRequest(action string, success bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, action)
	if success {
		o.successes++
	}
}

func (o *MockObserver) ObserveStored(kind string, bytes int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stored[kind] += bytes
}

func (o *MockObserver) ObserveFetchFailure() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetchFailures++
}

type testEnv struct {
	root       string
	disk       *storage.Disk
	fetcher    *MockFetcher
	dispatcher *Dispatcher
}

func newTestEnv(t *testing.T, overrides settings.Settings, opts ...Option) *testEnv {
	t.Helper()
	root := t.TempDir()
	disk, err := storage.NewDisk(root, nil)
	require.NoError(t, err)

	mf := NewMockFetcher()
	opts = append([]Option{WithClock(func() time.Time { return fixedClock })}, opts...)
	d, err := NewDispatcher(disk, mf, overrides, opts...)
	require.NoError(t, err)

	return &testEnv{root: disk.Root(), disk: disk, fetcher: mf, dispatcher: d}
}

func writeTestFile(t *testing.T, path string, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	if !mtime.IsZero() {
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func serve(t *testing.T, h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
