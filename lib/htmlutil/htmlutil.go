package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"malaskkn/lib/textutil"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText extracts the text of a node stripped of non-printable runes
// with whitespace runs collapsed, the shape scraped table cells want.
func CleanText(node *html.Node) string {
	return textutil.CollapseWhitespace(removeNonPrintable(GetText(node)))
}
