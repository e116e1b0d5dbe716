package logbook

import (
	"fmt"
	"strings"
)

// TableNotFoundError marks a structural failure: the report region a
// scrape depends on is missing from the page. A redesigned or
// half-rendered page must surface as this, never as an empty result.
type TableNotFoundError struct {
	Table   string
	Snippet string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("no %s table found, page starts with: %q", e.Table, e.Snippet)
}

const snippetLen = 160

func snippet(page string) string {
	page = strings.TrimSpace(page)
	if len(page) > snippetLen {
		return page[:snippetLen]
	}
	return page
}
