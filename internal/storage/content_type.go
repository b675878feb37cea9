package storage

import (
	"mime"
	"regexp"
	"strings"
)

var (
	dataURIPattern   = regexp.MustCompile(`^data:image/(\w+);base64,`)
	imageTypePattern = regexp.MustCompile(`^image/(\w+)$`)
)

// NormalizeContentType drops parameters such as charset from a Content-Type value.
func NormalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// DataURIPrefix returns the data URI header for image content types.
func DataURIPrefix(contentType string) (string, bool) {
	ct := NormalizeContentType(contentType)
	if !imageTypePattern.MatchString(ct) {
		return "", false
	}
	return "data:" + ct + ";base64,", true
}

// ExtensionForSubtype maps an image subtype to a file extension.
func ExtensionForSubtype(subtype string) string {
	subtype = strings.ToLower(subtype)
	if subtype == "jpeg" {
		return ".jpg"
	}
	return "." + subtype
}

// splitDataURI strips an image data URI header and reports the implied extension.
// Payloads without a header are treated as PNG.
func splitDataURI(payload string) (data, ext string) {
	m := dataURIPattern.FindStringSubmatch(payload)
	if m == nil {
		return payload, ".png"
	}
	return payload[len(m[0]):], ExtensionForSubtype(m[1])
}
