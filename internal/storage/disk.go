package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmad-alkadri/editor-depot/internal/apperr"
	"github.com/dustin/go-humanize"
)

// ErrOutsideRoot is returned for destinations that resolve outside the storage root.
var ErrOutsideRoot = errors.New("path escapes storage root")

// Descriptor describes a stored file in the shape the editor expects.
type Descriptor struct {
	Original string `json:"original"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// StoredFile is the raw outcome of a write, before it is formatted for a response.
type StoredFile struct {
	OriginalName string
	Filename     string
	Path         string
	Size         int64
}

// Disk persists uploads below a single storage root.
type Disk struct {
	root  string
	names NameGenerator
}

// NewDisk creates a disk store rooted at root. A nil generator uses DefaultNameGenerator.
func NewDisk(root string, names NameGenerator) (*Disk, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root %s: %w", root, err)
	}
	if names == nil {
		names = NewDefaultNameGenerator()
	}
	return &Disk{root: abs, names: names}, nil
}

// Root returns the absolute storage root.
func (d *Disk) Root() string {
	return d.root
}

// Abs resolves a root-relative, slash separated path to an absolute path inside the root.
func (d *Disk) Abs(rel string) (string, error) {
	p := filepath.Join(d.root, filepath.FromSlash(rel))
	prefix := strings.TrimSuffix(d.root, string(filepath.Separator)) + string(filepath.Separator)
	if p != d.root && !strings.HasPrefix(p, prefix) {
		return "", &apperr.IOError{Op: "resolve", Path: rel, Err: ErrOutsideRoot}
	}
	return p, nil
}

// URL converts an absolute path below the root into a web-relative URL.
func (d *Disk) URL(abs string) string {
	url := filepath.ToSlash(strings.TrimPrefix(abs, d.root))
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return url
}

// FormatDescriptor turns a stored file into its response descriptor.
func (d *Disk) FormatDescriptor(f StoredFile) *Descriptor {
	return &Descriptor{
		Original: f.OriginalName,
		Title:    f.Filename,
		Type:     Suffix(f.Filename),
		URL:      d.URL(f.Path),
		Size:     f.Size,
	}
}

// ensureDir creates the destination directory tree. MkdirAll tolerates
// concurrent creation of the same path.
func (d *Disk) ensureDir(rel string) (string, error) {
	dir, err := d.Abs(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &apperr.IOError{Op: "mkdir", Path: dir, Err: err}
	}
	return dir, nil
}

func (d *Disk) logStored(f StoredFile) {
	log.Printf("[storage] Stored %s (%s)", d.URL(f.Path), humanize.Bytes(uint64(f.Size)))
}
