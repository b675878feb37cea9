package ueditor

import (
	"github.com/ahmad-alkadri/editor-depot/internal/settings"
	"github.com/ahmad-alkadri/editor-depot/internal/storage"
)

// Values of the "state" field understood by the editor. Upload failures use
// the error message itself as the state.
const (
	StateSuccess         = "SUCCESS"
	StateError           = "ERROR"
	StateFail            = "FAIL"
	StateInvalidCallback = "callback parameter is invalid"
)

// StateResponse carries only a state.
type StateResponse struct {
	State string `json:"state"`
}

// UploadResponse answers image, scrawl, video and file uploads.
type UploadResponse struct {
	State string `json:"state"`
	*storage.Descriptor
}

// CatcherItem is the outcome of one remote image.
type CatcherItem struct {
	State  string `json:"state"`
	Source string `json:"source"`
	*storage.Descriptor
}

// CatcherResponse answers the catcher action; List follows the order of the submitted sources.
type CatcherResponse struct {
	State string        `json:"state"`
	List  []CatcherItem `json:"list"`
}

// ListEntry is one stored file in a listing; Mtime is in epoch milliseconds.
type ListEntry struct {
	URL   string `json:"url"`
	Mtime int64  `json:"mtime"`
}

// ListResponse answers the image and file manager actions.
type ListResponse struct {
	State string      `json:"state"`
	List  []ListEntry `json:"list"`
	Start int         `json:"start"`
	Total int         `json:"total"`
}

func uploaded(desc *storage.Descriptor) UploadResponse {
	return UploadResponse{State: StateSuccess, Descriptor: desc}
}

func failed(err error) StateResponse {
	return StateResponse{State: err.Error()}
}

func succeeded(result any) bool {
	switch r := result.(type) {
	case UploadResponse:
		return r.State == StateSuccess
	case CatcherResponse:
		return r.State == StateSuccess
	case ListResponse:
		return r.State == StateSuccess
	case StateResponse:
		return r.State == StateSuccess
	case settings.Settings:
		return true
	}
	return false
}
