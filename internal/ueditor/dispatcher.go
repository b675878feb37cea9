// Package ueditor implements the editor's server controller: a single
// endpoint that dispatches on the "action" query parameter to upload,
// remote-catch, listing and configuration handlers.
package ueditor

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"time"

	"github.com/ahmad-alkadri/editor-depot/internal/fetcher"
	"github.com/ahmad-alkadri/editor-depot/internal/settings"
	"github.com/ahmad-alkadri/editor-depot/internal/storage"
)

// ActionConfig is the reserved action returning the merged settings.
const ActionConfig = "config"

// DefaultCatcherConcurrency caps parallel remote fetches per request.
const DefaultCatcherConcurrency = 8

// Kind is an upload or listing category; it doubles as the settings key prefix.
type Kind string

const (
	KindImage   Kind = "image"
	KindScrawl  Kind = "scrawl"
	KindCatcher Kind = "catcher"
	KindVideo   Kind = "video"
	KindFile    Kind = "file"
)

var (
	uploadKinds = []Kind{KindImage, KindScrawl, KindCatcher, KindVideo, KindFile}
	listKinds   = []Kind{KindImage, KindFile}
)

func (k Kind) key(suffix string) string {
	return string(k) + suffix
}

// FileStore persists uploads and maps stored paths to URLs.
type FileStore interface {
	StoreMultipart(mr *multipart.Reader, fieldName string, opts storage.StreamOptions) (*storage.Descriptor, error)
	StoreBase64(payload string, opts storage.Base64Options) (*storage.Descriptor, error)
	Abs(rel string) (string, error)
	URL(abs string) string
}

// ImageFetcher retrieves remote images for the catcher action. Bodies longer
// than maxBytes (when positive) are rejected with *apperr.TooLargeError.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string, maxBytes int64) (*fetcher.Image, error)
}

// Observer receives dispatcher outcomes, typically for metrics.
type Observer interface {
	ObserveRequest(action string, success bool, elapsed time.Duration)
	ObserveStored(kind string, bytes int64)
	ObserveFetchFailure()
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, bool, time.Duration) {}
func (nopObserver) ObserveStored(string, int64)                {}
func (nopObserver) ObserveFetchFailure()                       {}

// Request is a transport-independent controller request.
type Request struct {
	Action    string
	Start     int
	Form      url.Values
	Multipart *multipart.Reader
}

// Dispatcher routes controller requests. It holds only immutable state and
// is safe for concurrent use.
type Dispatcher struct {
	conf        settings.Settings
	uploads     map[string]Kind
	lists       map[string]Kind
	store       FileStore
	fetch       ImageFetcher
	observer    Observer
	now         func() time.Time
	concurrency int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the clock used for path templates.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithObserver attaches an outcome observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithCatcherConcurrency caps parallel remote fetches per catcher request.
func WithCatcherConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// NewDispatcher merges overrides over the default settings and builds the
// action tables. Two kinds sharing an action name is a configuration error.
func NewDispatcher(store FileStore, fetch ImageFetcher, overrides settings.Settings, opts ...Option) (*Dispatcher, error) {
	conf := settings.Merge(settings.Defaults(), overrides)

	uploads, lists, err := buildActions(conf)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		conf:        conf,
		uploads:     uploads,
		lists:       lists,
		store:       store,
		fetch:       fetch,
		observer:    nopObserver{},
		now:         time.Now,
		concurrency: DefaultCatcherConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func buildActions(conf settings.Settings) (uploads, lists map[string]Kind, err error) {
	owners := map[string]string{ActionConfig: "reserved config action"}
	register := func(dst map[string]Kind, kind Kind, key string) error {
		name := conf.String(key)
		if name == "" {
			return nil
		}
		if owner, taken := owners[name]; taken {
			return fmt.Errorf("duplicate action name %q: used by %s and %s", name, owner, key)
		}
		owners[name] = key
		dst[name] = kind
		return nil
	}

	uploads = make(map[string]Kind, len(uploadKinds))
	for _, kind := range uploadKinds {
		if err := register(uploads, kind, kind.key("ActionName")); err != nil {
			return nil, nil, err
		}
	}
	lists = make(map[string]Kind, len(listKinds))
	for _, kind := range listKinds {
		if err := register(lists, kind, kind.key("ManagerActionName")); err != nil {
			return nil, nil, err
		}
	}
	return uploads, lists, nil
}

// Settings returns a copy of the merged settings the dispatcher was built with.
func (d *Dispatcher) Settings() settings.Settings {
	return d.conf.Clone()
}

// Dispatch runs the action named in req. Upload failures are reported in
// the response state; only listing a missing root returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (any, error) {
	started := time.Now()

	result, label, err := d.dispatch(ctx, req)
	d.observer.ObserveRequest(label, err == nil && succeeded(result), time.Since(started))
	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, req *Request) (any, string, error) {
	if kind, ok := d.uploads[req.Action]; ok {
		return d.upload(ctx, kind, req), req.Action, nil
	}
	if kind, ok := d.lists[req.Action]; ok {
		res, err := d.list(kind, req.Start)
		return res, req.Action, err
	}
	if req.Action == ActionConfig {
		return d.conf.Clone(), ActionConfig, nil
	}
	return StateResponse{State: StateFail}, "unknown", nil
}
