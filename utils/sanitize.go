package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcSanitizer   = bluemonday.UGCPolicy()
	plainSanitizer = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return ugcSanitizer.Sanitize(input)
}

// SanitizePlain strips all markup, for fields that must stay plain text (titles, bios).
func SanitizePlain(input string) string {
	return plainSanitizer.Sanitize(input)
}
