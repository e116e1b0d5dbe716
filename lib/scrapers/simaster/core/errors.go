package core

import (
	"fmt"
	"strings"
)

// TransportError marks a network/timeout/HTTP-level failure. Transient:
// callers that own retry policy may retry it, the scraping layer never
// does.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TokenNotFoundError marks a structural failure: none of the acceptable
// sources yielded an anti-forgery token. The markup or cookie layout
// changed, retrying won't help.
type TokenNotFoundError struct {
	Sources []TokenSource
}

func (e *TokenNotFoundError) Error() string {
	names := make([]string, len(e.Sources))
	for i, s := range e.Sources {
		names[i] = s.String()
	}
	return fmt.Sprintf(
		"no %s found in any acceptable source (%s)",
		TokenField, strings.Join(names, ", "),
	)
}

// LinkNotFoundError marks a structural failure: a navigation pattern no
// longer matches the page. Carries a snippet of the offending page so
// the markup drift can be diagnosed without re-running.
type LinkNotFoundError struct {
	Kind    LinkKind
	Snippet string
}

func (e *LinkNotFoundError) Error() string {
	return fmt.Sprintf("no %s link found, page starts with: %q", e.Kind, e.Snippet)
}

const snippetLen = 160

func snippet(page string) string {
	page = strings.TrimSpace(page)
	if len(page) > snippetLen {
		return page[:snippetLen]
	}
	return page
}
