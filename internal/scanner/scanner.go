package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ahmad-alkadri/editor-depot/internal/apperr"
)

// File is a regular file found during a walk.
type File struct {
	Path string
	Info fs.FileInfo
}

// WalkFunc is called for every non-directory entry. Returning an error stops the walk.
type WalkFunc func(path string, info fs.FileInfo) error

// Walk visits every file below root depth-first, in directory-entry order.
// A missing root yields *apperr.NotFoundError; unreadable entries yield *apperr.IOError.
func Walk(root string, fn WalkFunc) error {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &apperr.NotFoundError{Path: root, Err: err}
		}
		return &apperr.IOError{Op: "stat", Path: root, Err: err}
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &apperr.IOError{Op: "walk", Path: path, Err: err}
		}
		if d.IsDir() {
			return nil
		}

		var info fs.FileInfo
		if d.Type()&fs.ModeSymlink != 0 {
			info, err = os.Stat(path)
		} else {
			info, err = d.Info()
		}
		if err != nil {
			return &apperr.IOError{Op: "stat", Path: path, Err: err}
		}
		// symlinked directories are not descended into
		if info.IsDir() {
			return nil
		}
		return fn(path, info)
	})
}

// Collect walks root and returns every file found.
func Collect(root string) ([]File, error) {
	var files []File
	err := Walk(root, func(path string, info fs.FileInfo) error {
		files = append(files, File{Path: path, Info: info})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
