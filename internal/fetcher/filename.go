package fetcher

import (
	"regexp"
	"strings"
)

var remoteImagePattern = regexp.MustCompile(`^(?:https?:)?//[^#?]+`)

// OriginalName extracts the last path segment of a remote image URL,
// ignoring query string and fragment. It reports false for URLs that are
// neither http(s) nor protocol relative.
func OriginalName(rawURL string) (string, bool) {
	image := remoteImagePattern.FindString(rawURL)
	if image == "" {
		return "", false
	}
	return image[strings.LastIndex(image, "/")+1:], true
}

// StripExtension removes a trailing ".ext" from name.
func StripExtension(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 && isWord(name[idx+1:]) {
		return name[:idx]
	}
	return name
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
