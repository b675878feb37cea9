package storage

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahmad-alkadri/editor-depot/internal/pathfmt"
)

// NameGenerator produces file stems for uploads that carry no usable name.
type NameGenerator interface {
	Generate() string
}

// DefaultNameGenerator builds names from a millisecond timestamp and six random digits.
type DefaultNameGenerator struct {
	now func() time.Time
}

// NewDefaultNameGenerator creates a new default name generator
func NewDefaultNameGenerator() *DefaultNameGenerator {
	return &DefaultNameGenerator{now: time.Now}
}

// Generate creates a new file stem
func (g *DefaultNameGenerator) Generate() string {
	return fmt.Sprintf("%d%06d", g.now().UnixMilli(), rand.IntN(1_000_000))
}

// Suffix returns the lower-cased extension of name, including the dot.
func Suffix(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// BaseName strips any client supplied directory, with either separator style.
func BaseName(name string) string {
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// FileName applies the filename policy: the {filename} segment keeps the
// uploaded name, any other segment becomes the stem for the uploaded extension.
func FileName(segment, originalName string) string {
	if segment == pathfmt.FilenamePlaceholder {
		return originalName
	}
	return segment + Suffix(originalName)
}

// Allowed reports whether ext passes the allow-list. An empty list or "*" allows everything.
func Allowed(allow []string, ext string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, a := range allow {
		if a == "*" || strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}

func usableName(name string) bool {
	return name != "" && name != "." && name != ".."
}
