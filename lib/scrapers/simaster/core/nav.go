package core

import (
	"regexp"
	"strings"
)

// LinkKind names a navigation pattern observed on the portal. The
// needed links hide inside inline javascript and loosely-formed
// anchors, so matching is plain text patterns, one per kind, rather
// than structural parsing.
type LinkKind int

const (
	// anchor from the home page into the KKN logbook index
	LinkLogbookIndex LinkKind = iota
	// "Tambah" button linking to an add-new-entry form page
	LinkAddEntry
	// the DataTables ajax endpoint embedded in the index page's script
	LinkDataEndpoint
	// anchor from a program row into its kegiatan (sub-entry) index
	LinkKegiatanIndex
)

func (k LinkKind) String() string {
	switch k {
	case LinkLogbookIndex:
		return "logbook index"
	case LinkAddEntry:
		return "add entry"
	case LinkDataEndpoint:
		return "data endpoint"
	case LinkKegiatanIndex:
		return "kegiatan index"
	}
	return "unknown"
}

var linkPatterns = map[LinkKind][]*regexp.Regexp{
	LinkLogbookIndex: {
		// the menu anchor usually leads with an icon element
		regexp.MustCompile(`(?i)href="([^"]+)"[^>]*>\s*(?:<i[^>]*>\s*</i>\s*)?[^<]*logbook`),
	},
	LinkAddEntry: {
		regexp.MustCompile(`(?i)href="([^"]+)"[^>]*>\s*(?:<i[^>]*>\s*</i>\s*)?tambah`),
	},
	LinkDataEndpoint: {
		// "ajax": {"url": "..."}
		regexp.MustCompile(`(?i)["']?ajax["']?\s*:\s*\{[^}]*?["']?url["']?\s*:\s*["']([^"']+)["']`),
		// ajax: "..."
		regexp.MustCompile(`(?i)["']?ajax["']?\s*:\s*["']([^"']+)["']`),
	},
	LinkKegiatanIndex: {
		regexp.MustCompile(`(?i)href="([^"]+)"[^>]*>[^<]*(?:kegiatan|rpp)`),
	},
}

// FindLink pattern-matches page text for the given kind of link and
// returns it as an absolute url. A miss is a *LinkNotFoundError
// carrying the start of the page; when markup drifts this should be
// reported, never guessed around.
func (c *Client) FindLink(page string, kind LinkKind) (string, error) {
	for _, pattern := range linkPatterns[kind] {
		groups := pattern.FindStringSubmatch(page)
		if len(groups) < 2 {
			continue
		}
		// javascript string literals escape their slashes
		href := strings.ReplaceAll(groups[1], `\/`, `/`)
		return c.ResolveUrl(href)
	}
	return "", &LinkNotFoundError{Kind: kind, Snippet: snippet(page)}
}
