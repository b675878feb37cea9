package fetcher

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ahmad-alkadri/editor-depot/internal/apperr"
	"github.com/ahmad-alkadri/editor-depot/internal/storage"
)

// DefaultTimeout bounds a single remote fetch.
const DefaultTimeout = 30 * time.Second

var errInvalidURL = errors.New("not an http(s) image url")

// Image is a fetched remote image, already base64 encoded.
type Image struct {
	ContentType  string
	Base64Data   string
	OriginalName string
}

// Fetcher downloads remote images referenced in pasted editor content.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// New creates a fetcher. A nil client uses http.DefaultClient; timeout <= 0 uses DefaultTimeout.
func New(client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{client: client, timeout: timeout}
}

// Fetch retrieves rawURL and returns its body base64 encoded. A body longer
// than maxBytes (when positive) stops the read with *apperr.TooLargeError;
// every other failure is reported as *apperr.FetchError so callers can
// record it per item.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*Image, error) {
	name, ok := OriginalName(rawURL)
	if !ok {
		return nil, &apperr.FetchError{URL: rawURL, Err: errInvalidURL}
	}
	target := rawURL
	if strings.HasPrefix(target, "//") {
		target = "http:" + target
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &apperr.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	// encode while reading so the raw body is never buffered
	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	var encoded strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &encoded)
	n, err := io.Copy(enc, body)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	// n raw bytes encode to at least n effective bytes under the base64
	// size formula, so a body over maxBytes can never pass it
	if maxBytes > 0 && n > maxBytes {
		return nil, &apperr.TooLargeError{Size: n, Limit: maxBytes, Message: apperr.MsgPictureTooLarge}
	}
	if err := enc.Close(); err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}

	return &Image{
		ContentType:  storage.NormalizeContentType(resp.Header.Get("Content-Type")),
		Base64Data:   encoded.String(),
		OriginalName: name,
	}, nil
}
