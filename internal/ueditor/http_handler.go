package ueditor

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxJSONBytes = 32 << 20

var callbackPattern = regexp.MustCompile(`^[\w.]+$`)

// ServeHTTP reads action, start and callback from the query string and the
// payload from a multipart, urlencoded or JSON body.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	requestID := uuid.NewString()

	callback := r.URL.Query().Get("callback")
	if callback != "" && !callbackPattern.MatchString(callback) {
		writeResponse(w, http.StatusOK, StateResponse{State: StateInvalidCallback}, "")
		return
	}

	req, err := newRequest(r)
	if err != nil {
		log.Printf("[ueditor] %s: error parsing request: %v", requestID, err)
		writeResponse(w, http.StatusOK, failed(err), callback)
		return
	}

	result, err := d.Dispatch(r.Context(), req)
	if err != nil {
		log.Printf("[ueditor] %s: action=%s failed: %v", requestID, req.Action, err)
		writeResponse(w, http.StatusInternalServerError, failed(err), callback)
		return
	}

	log.Printf("[ueditor] %s: %s action=%s completed in %s", requestID, r.Method, req.Action, time.Since(started))
	writeResponse(w, http.StatusOK, result, callback)
}

// GinHandler mounts the dispatcher on a gin route.
func GinHandler(d *Dispatcher) gin.HandlerFunc {
	return gin.WrapH(d)
}

func newRequest(r *http.Request) (*Request, error) {
	query := r.URL.Query()
	req := &Request{
		Action: query.Get("action"),
		Start:  parseStart(query.Get("start")),
		Form:   url.Values{},
	}
	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		mr, err := r.MultipartReader()
		if err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		req.Multipart = mr
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		req.Form = r.PostForm
	case "application/json":
		form, err := decodeJSONForm(r.Body)
		if err != nil {
			return nil, err
		}
		req.Form = form
	}
	return req, nil
}

// parseStart never fails: anything but a non-negative integer means 0.
func parseStart(raw string) int {
	start, err := strconv.Atoi(raw)
	if err != nil || start < 0 {
		return 0
	}
	return start
}

// decodeJSONForm flattens a JSON object of strings and string arrays into form values.
func decodeJSONForm(body io.Reader) (url.Values, error) {
	var fields map[string]any
	if err := json.NewDecoder(io.LimitReader(body, maxJSONBytes)).Decode(&fields); err != nil {
		if err == io.EOF {
			return url.Values{}, nil
		}
		return nil, fmt.Errorf("invalid json body: %w", err)
	}

	form := make(url.Values, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			form.Add(key, v)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					form.Add(key, s)
				}
			}
		case nil:
		default:
			form.Add(key, fmt.Sprint(v))
		}
	}
	return form, nil
}

// writeResponse writes body as JSON, wrapped as callback(...) when a JSONP callback was given.
func writeResponse(w http.ResponseWriter, status int, body any, callback string) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("[ueditor] error encoding response: %v", err)
		status = http.StatusInternalServerError
		payload = []byte(`{"state":"` + StateFail + `"}`)
	}

	if callback != "" {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, "%s(%s)", callback, payload)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(payload)
}
