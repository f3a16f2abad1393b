// Package sanitize strips markup from user-supplied text before it reaches
// the domain layer.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict removes every tag and attribute. Titles, names, annotations
	// and comments are plain text only.
	strict = bluemonday.StrictPolicy()

	// ugc keeps basic formatting (paragraphs, emphasis, lists, links) for
	// event descriptions.
	ugc = bluemonday.UGCPolicy()
)

// Text strips all HTML and trims surrounding whitespace.
func Text(input string) string {
	return strings.TrimSpace(strict.Sanitize(input))
}

// Rich sanitizes formatted content, dropping scripts, event handlers and
// style attributes while keeping safe markup.
func Rich(input string) string {
	return strings.TrimSpace(ugc.Sanitize(input))
}
