// Package srcset picks the highest-resolution variant from an image
// element's declared candidate set.
package srcset

import (
	"sort"
	"strings"
	"unicode"
)

// Entry is one resolution variant parsed from a srcset descriptor list
type Entry struct {
	URL   string
	Width int
}

// Parse splits a srcset attribute into entries. Each comma-separated segment
// holds a URL token and an optional descriptor token; a descriptor ending in
// "w" contributes its leading digits as the width, anything else (including a
// missing descriptor) leaves the width at 0. Malformed segments without a URL
// are dropped.
func Parse(srcset string) []Entry {
	segments := strings.Split(srcset, ",")
	entries := make([]Entry, 0, len(segments))

	for _, segment := range segments {
		fields := strings.Fields(segment)
		if len(fields) == 0 {
			continue
		}

		entry := Entry{URL: fields[0]}
		if len(fields) > 1 {
			entry.Width = parseWidth(fields[1])
		}
		entries = append(entries, entry)
	}

	return entries
}

// parseWidth reads the leading digits of a "123w" style descriptor
func parseWidth(descriptor string) int {
	if !strings.HasSuffix(descriptor, "w") {
		return 0
	}

	width := 0
	for _, r := range descriptor {
		if !unicode.IsDigit(r) {
			break
		}
		width = width*10 + int(r-'0')
	}
	return width
}

// BestURL returns the URL of the widest declared variant, falling back to src
// when no srcset entry parses. Ties keep the original left-to-right order.
// The result is empty only when both attributes are empty.
func BestURL(src, srcset string) string {
	if strings.TrimSpace(srcset) == "" {
		return src
	}

	entries := Parse(srcset)
	if len(entries) == 0 {
		return src
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Width > entries[j].Width
	})

	return entries[0].URL
}
