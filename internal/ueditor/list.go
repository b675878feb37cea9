package ueditor

import (
	"github.com/ahmad-alkadri/editor-depot/internal/scanner"
	"github.com/ahmad-alkadri/editor-depot/internal/storage"
)

const defaultListSize = 20

// list walks the manager root of kind on every call; there is no index.
func (d *Dispatcher) list(kind Kind, start int) (any, error) {
	root, err := d.store.Abs(d.conf.String(kind.key("ManagerListPath")))
	if err != nil {
		return nil, err
	}
	allow := d.conf.Strings(kind.key("ManagerAllowFiles"))

	files, err := scanner.Collect(root)
	if err != nil {
		return nil, err
	}

	entries := []ListEntry{}
	for _, f := range files {
		if storage.Allowed(allow, storage.Suffix(f.Path)) {
			entries = append(entries, ListEntry{
				URL:   d.store.URL(f.Path),
				Mtime: f.Info.ModTime().UnixMilli(),
			})
		}
	}

	size := d.conf.Int(kind.key("ManagerListSize"))
	if size <= 0 {
		size = defaultListSize
	}
	start = max(start, 0)
	lo := min(start, len(entries))
	hi := lo + min(size, len(entries)-lo)

	return ListResponse{
		State: StateSuccess,
		List:  entries[lo:hi],
		Start: start,
		Total: len(entries),
	}, nil
}
