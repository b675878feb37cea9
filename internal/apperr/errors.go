package apperr

import (
	"errors"
	"fmt"
)

// Messages surfaced to the editor through the response "state" field.
const (
	MsgFileTooLarge    = "File too large"
	MsgPictureTooLarge = "Picture too big"
	MsgUnsupportedType = "Unsupported file type"
)

// TooLargeError reports a payload that exceeds the limit configured for its kind.
type TooLargeError struct {
	Size    int64
	Limit   int64
	Message string
}

func (e *TooLargeError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return MsgFileTooLarge
}

// UnsupportedTypeError reports an extension missing from the allow-list.
type UnsupportedTypeError struct {
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	return MsgUnsupportedType
}

// NotFoundError reports a missing path, typically a listing root.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// FetchError reports a remote image that could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IOError reports a failed disk operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsTooLarge reports whether err is a TooLargeError.
func IsTooLarge(err error) bool {
	var target *TooLargeError
	return errors.As(err, &target)
}

// IsUnsupportedType reports whether err is an UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	var target *UnsupportedTypeError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsFetch reports whether err is a FetchError.
func IsFetch(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

// IsIO reports whether err is an IOError.
func IsIO(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}
