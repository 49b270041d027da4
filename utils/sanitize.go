package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips any markup from user-supplied text before it is
// echoed back in a message, e.g. the original filename of an upload.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
