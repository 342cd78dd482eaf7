package utils

import (
	"regexp"
	"sort"
	"strings"
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags returns the distinct hashtags contained in content, without the
// leading '#' and lowercased so that #Go and #go collapse to a single entry.
// The result is sorted for stable output; empty content yields an empty slice.
func ExtractHashtags(content string) []string {
	seen := map[string]struct{}{}
	for _, m := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		seen[strings.ToLower(m[1])] = struct{}{}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
