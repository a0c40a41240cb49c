package utils

import "github.com/microcosm-cc/bluemonday"

var (
	sanitizer       = bluemonday.UGCPolicy()
	strictSanitizer = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks while keeping common
// user-generated markup.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizeStrict strips all markup; used for titles, names and other fields
// that must be plain text.
func SanitizeStrict(input string) string {
	return strictSanitizer.Sanitize(input)
}
