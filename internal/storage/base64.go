package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmad-alkadri/editor-depot/internal/apperr"
	"github.com/ahmad-alkadri/editor-depot/internal/pathfmt"
)

// Base64Options controls how a base64 payload is validated and named.
type Base64Options struct {
	Dir        string // root-relative destination directory
	Name       string // file stem; empty or {filename} generates one
	MaxSize    int64  // <= 0 disables the limit
	AllowFiles []string
}

// ExceedsBase64Limit applies the editor's size approximation to an encoded
// length: n - floor(n/8)*2 > limit. This is not the decoded size; clients
// rely on this exact formula.
func ExceedsBase64Limit(encodedLen int, limit int64) bool {
	if limit <= 0 {
		return false
	}
	n := int64(encodedLen)
	return n-(n/8)*2 > limit
}

// StoreBase64 decodes a raw or data URI base64 image and writes it to disk.
// The size check runs on the encoded payload before anything is written.
func (d *Disk) StoreBase64(payload string, opts Base64Options) (*Descriptor, error) {
	if ExceedsBase64Limit(len(payload), opts.MaxSize) {
		return nil, &apperr.TooLargeError{
			Size:    int64(len(payload)),
			Limit:   opts.MaxSize,
			Message: apperr.MsgPictureTooLarge,
		}
	}

	data, ext := splitDataURI(payload)
	if !Allowed(opts.AllowFiles, ext) {
		return nil, &apperr.UnsupportedTypeError{Ext: ext}
	}

	raw, err := decodeBase64(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}

	name := BaseName(opts.Name)
	if name == pathfmt.FilenamePlaceholder || !usableName(name) {
		name = d.names.Generate()
	}
	filename := name + ext

	dir, err := d.ensureDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	dest := filepath.Join(dir, filename)
	if err := os.WriteFile(dest, raw, 0o644); err != nil {
		return nil, &apperr.IOError{Op: "write", Path: dest, Err: err}
	}

	stored := StoredFile{
		Filename: filename,
		Path:     dest,
		Size:     int64(len(raw)),
	}
	d.logStored(stored)
	return d.FormatDescriptor(stored), nil
}

// decodeBase64 accepts padded or unpadded, standard or URL-safe input.
// A space can only come from form-decoding a '+', so it is mapped back.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ':
			return '+'
		case '\r', '\n', '\t':
			return -1
		case '-':
			return '+'
		case '_':
			return '/'
		}
		return r
	}, s)
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
