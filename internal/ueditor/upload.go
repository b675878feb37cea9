package ueditor

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"

	"github.com/ahmad-alkadri/editor-depot/internal/apperr"
	"github.com/ahmad-alkadri/editor-depot/internal/fetcher"
	"github.com/ahmad-alkadri/editor-depot/internal/pathfmt"
	"github.com/ahmad-alkadri/editor-depot/internal/storage"
	"golang.org/x/sync/errgroup"
)

const maxFieldBytes = 32 << 20

// upload resolves the destination once, then runs the flow for kind.
// Errors never escape: they become the response state.
func (d *Dispatcher) upload(ctx context.Context, kind Kind, req *Request) any {
	dir, name := pathfmt.Split(pathfmt.Resolve(d.conf.String(kind.key("PathFormat")), d.now()))

	var (
		result any
		err    error
	)
	switch kind {
	case KindScrawl:
		result, err = d.uploadScrawl(req, dir, name)
	case KindCatcher:
		result, err = d.catchImages(ctx, req, dir)
	default:
		result, err = d.uploadFile(kind, req, dir, name)
	}
	if err != nil {
		log.Printf("[ueditor] %s upload failed: %v", kind, err)
		return failed(err)
	}
	return result
}

func (d *Dispatcher) uploadScrawl(req *Request, dir, name string) (any, error) {
	field := d.conf.String(KindScrawl.key("FieldName"))
	values, err := req.values(field)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 || values[0] == "" {
		return nil, fmt.Errorf("missing %s field", field)
	}

	desc, err := d.store.StoreBase64(values[0], storage.Base64Options{
		Dir:        dir,
		Name:       name,
		MaxSize:    d.conf.Int64(KindScrawl.key("MaxSize")),
		AllowFiles: d.conf.Strings(KindScrawl.key("AllowFiles")),
	})
	if err != nil {
		return nil, err
	}
	d.observer.ObserveStored(string(KindScrawl), desc.Size)
	return uploaded(desc), nil
}

func (d *Dispatcher) uploadFile(kind Kind, req *Request, dir, name string) (any, error) {
	field := d.conf.String(kind.key("FieldName"))
	if req.Multipart == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrMissingFile, field)
	}

	desc, err := d.store.StoreMultipart(req.Multipart, field, storage.StreamOptions{
		Dir:        dir,
		Name:       name,
		MaxSize:    d.conf.Int64(kind.key("MaxSize")),
		AllowFiles: d.conf.Strings(kind.key("AllowFiles")),
	})
	if err != nil {
		return nil, err
	}
	d.observer.ObserveStored(string(kind), desc.Size)
	return uploaded(desc), nil
}

// catchImages fetches every source concurrently and always succeeds as a
// batch; each item carries its own state.
func (d *Dispatcher) catchImages(ctx context.Context, req *Request, dir string) (any, error) {
	sources, err := req.values(d.conf.String(KindCatcher.key("FieldName")))
	if err != nil {
		return nil, err
	}

	items := make([]CatcherItem, len(sources))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, source := range sources {
		g.Go(func() error {
			items[i] = d.catchImage(ctx, source, dir)
			return nil
		})
	}
	_ = g.Wait()

	return CatcherResponse{State: StateSuccess, List: items}, nil
}

func (d *Dispatcher) catchImage(ctx context.Context, source, dir string) CatcherItem {
	maxSize := d.conf.Int64(KindCatcher.key("MaxSize"))
	img, err := d.fetch.Fetch(ctx, source, maxSize)
	if apperr.IsTooLarge(err) {
		log.Printf("[ueditor] catcher: %s: %v", source, err)
		return CatcherItem{State: err.Error(), Source: source}
	}
	if err != nil {
		d.observer.ObserveFetchFailure()
		log.Printf("[ueditor] catcher: %v", err)
		return CatcherItem{State: StateError, Source: source}
	}

	// the limit applies to the encoded image, before the data URI header is added
	if storage.ExceedsBase64Limit(len(img.Base64Data), maxSize) {
		return CatcherItem{State: apperr.MsgPictureTooLarge, Source: source}
	}

	// {time} and {rand:N} must differ between files of the same batch
	_, name := pathfmt.Split(pathfmt.Resolve(d.conf.String(KindCatcher.key("PathFormat")), d.now()))
	if name == pathfmt.FilenamePlaceholder {
		name = fetcher.StripExtension(img.OriginalName)
	}

	payload := img.Base64Data
	if prefix, ok := storage.DataURIPrefix(img.ContentType); ok {
		payload = prefix + payload
	}

	desc, err := d.store.StoreBase64(payload, storage.Base64Options{
		Dir:        dir,
		Name:       name,
		AllowFiles: d.conf.Strings(KindCatcher.key("AllowFiles")),
	})
	if err != nil {
		log.Printf("[ueditor] catcher: store %s: %v", source, err)
		return CatcherItem{State: err.Error(), Source: source}
	}
	desc.Original = img.OriginalName
	d.observer.ObserveStored(string(KindCatcher), desc.Size)
	return CatcherItem{State: StateSuccess, Source: source, Descriptor: desc}
}

// values returns the submitted values of field, accepting the "field[]"
// spelling used by form encoders for arrays.
func (r *Request) values(field string) ([]string, error) {
	if v := r.Form[field]; len(v) > 0 {
		return v, nil
	}
	if v := r.Form[field+"[]"]; len(v) > 0 {
		return v, nil
	}
	if r.Multipart != nil {
		return readFormField(r.Multipart, field)
	}
	return nil, nil
}

// readFormField collects non-file parts named field from a multipart body.
func readFormField(mr *multipart.Reader, field string) ([]string, error) {
	var values []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("error reading part: %w", err)
		}

		name := part.FormName()
		if part.FileName() != "" || (name != field && name != field+"[]") {
			part.Close()
			continue
		}
		data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading field %s: %w", field, err)
		}
		values = append(values, string(data))
	}
}
