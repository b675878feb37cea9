package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/ahmad-alkadri/editor-depot/internal/apperr"
)

// ErrMissingFile is returned when a multipart body has no file in the expected field.
var ErrMissingFile = errors.New("missing upload file")

// StreamOptions controls how a streamed upload is validated and named.
type StreamOptions struct {
	Dir        string // root-relative destination directory
	Name       string // trailing template segment
	MaxSize    int64  // <= 0 disables the limit
	AllowFiles []string
}

// StoreMultipart stores the first file part submitted under fieldName.
func (d *Disk) StoreMultipart(mr *multipart.Reader, fieldName string, opts StreamOptions) (*Descriptor, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, fieldName)
		}
		if err != nil {
			return nil, fmt.Errorf("error reading part: %w", err)
		}

		if part.FormName() != fieldName || part.FileName() == "" {
			part.Close()
			continue
		}

		desc, err := d.StoreStream(part, part.FileName(), opts)
		part.Close()
		return desc, err
	}
}

// StoreStream writes r to disk after checking the extension against the allow-list.
// Content beyond MaxSize aborts the write and removes the partial file.
func (d *Disk) StoreStream(r io.Reader, originalName string, opts StreamOptions) (*Descriptor, error) {
	originalName = BaseName(originalName)
	ext := Suffix(originalName)
	if !Allowed(opts.AllowFiles, ext) {
		return nil, &apperr.UnsupportedTypeError{Ext: ext}
	}

	filename := FileName(opts.Name, originalName)
	if !usableName(filename) {
		filename = d.names.Generate() + ext
	}

	dir, err := d.ensureDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	dest := filepath.Join(dir, filename)

	f, err := os.Create(dest)
	if err != nil {
		return nil, &apperr.IOError{Op: "create", Path: dest, Err: err}
	}

	written, err := copyWithLimit(f, r, opts.MaxSize, dest)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = &apperr.IOError{Op: "close", Path: dest, Err: closeErr}
	}
	if err != nil {
		os.Remove(dest)
		return nil, err
	}

	stored := StoredFile{
		OriginalName: originalName,
		Filename:     filename,
		Path:         dest,
		Size:         written,
	}
	d.logStored(stored)
	return d.FormatDescriptor(stored), nil
}

func copyWithLimit(dst io.Writer, src io.Reader, limit int64, path string) (int64, error) {
	if limit <= 0 {
		n, err := io.Copy(dst, src)
		if err != nil {
			return n, &apperr.IOError{Op: "write", Path: path, Err: err}
		}
		return n, nil
	}

	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return n, &apperr.IOError{Op: "write", Path: path, Err: err}
	}
	if n > limit {
		return n, &apperr.TooLargeError{Size: n, Limit: limit}
	}
	return n, nil
}
