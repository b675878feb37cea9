// Package pathfmt expands date, time and random tokens in upload path templates.
//
// Supported tokens:
//
//	{yyyy} {yy}   year, truncated to the last N digits
//	{mm} {m}      month, zero padded when the run is longer than one letter
//	{dd} {d}      day
//	{hh} {h}      hour
//	{ii} {i}      minute
//	{ss} {s}      second
//	{time}        millisecond unix timestamp
//	{rand:N}      N random decimal digits
//
// Anything else, {filename} included, is left untouched.
package pathfmt

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FilenamePlaceholder marks a template whose file name comes from the upload itself.
const FilenamePlaceholder = "{filename}"

const maxRandDigits = 64

var tokenPattern = regexp.MustCompile(`\{(?:y+|m+|d+|h+|i+|s+|time|rand:\d+)\}`)

// randomDigits is swapped in tests.
var randomDigits = func(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// Resolve expands every recognized token in template using now.
// It is cheap and safe to call once per stored file.
func Resolve(template string, now time.Time) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		body := token[1 : len(token)-1]

		if body == "time" {
			return strconv.FormatInt(now.UnixMilli(), 10)
		}
		if digits, ok := strings.CutPrefix(body, "rand:"); ok {
			n, err := strconv.Atoi(digits)
			if err != nil || n > maxRandDigits {
				return token
			}
			return randomDigits(n)
		}

		width := len(body)
		switch body[0] {
		case 'y':
			year := fmt.Sprintf("%04d", now.Year())
			if width >= len(year) {
				return year
			}
			return year[len(year)-width:]
		case 'm':
			return pad(int(now.Month()), width)
		case 'd':
			return pad(now.Day(), width)
		case 'h':
			return pad(now.Hour(), width)
		case 'i':
			return pad(now.Minute(), width)
		case 's':
			return pad(now.Second(), width)
		}
		return token
	})
}

func pad(v, width int) string {
	if width > 1 {
		return fmt.Sprintf("%02d", v)
	}
	return strconv.Itoa(v)
}

// Split separates a resolved template into its directory and trailing file name segment.
func Split(resolved string) (dir, name string) {
	idx := strings.LastIndex(resolved, "/")
	if idx < 0 {
		return "", resolved
	}
	return resolved[:idx], resolved[idx+1:]
}
