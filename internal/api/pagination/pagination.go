// Package pagination parses the offset-based from/size pagination used by
// every list endpoint.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultFrom = 0
	DefaultSize = 10
	MaxSize     = 1000
)

type Page struct {
	From int
	Size int
}

// Error marks a malformed pagination parameter.
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func Parse(query url.Values) (Page, error) {
	page := Page{From: DefaultFrom, Size: DefaultSize}

	if raw := query.Get("from"); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, Error{Field: "from", Message: "must be an integer"}
		}
		if from < 0 {
			return Page{}, Error{Field: "from", Message: "must not be negative"}
		}
		page.From = from
	}

	if raw := query.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, Error{Field: "size", Message: "must be an integer"}
		}
		if size <= 0 {
			return Page{}, Error{Field: "size", Message: "must be positive"}
		}
		if size > MaxSize {
			return Page{}, Error{Field: "size", Message: fmt.Sprintf("must not exceed %d", MaxSize)}
		}
		page.Size = size
	}

	return page, nil
}
