package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// elements that visually start a new line
var blockElements = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.Li:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Figure:     true,
	atom.Figcaption: true,
	atom.Pre:        true,
	atom.Table:      true,
	atom.Tr:         true,
}

// writeText appends the text under node, with line breaks around block
// elements and at <br>.
func writeText(node *html.Node, buffer *strings.Builder) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if node.DataAtom == atom.Br {
			buffer.WriteString("\n")
			return
		}
	}

	isBlock := node.Type == html.ElementNode && blockElements[node.DataAtom]
	if isBlock {
		buffer.WriteString("\n")
	}
	child := node.FirstChild
	for child != nil {
		writeText(child, buffer)
		child = child.NextSibling
	}
	if isBlock {
		buffer.WriteString("\n")
	}
}

var innerWhitespace = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)

func removeNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}

// TextContent returns the visible text of an HTML fragment. Block level
// elements and <br> become line breaks, runs of whitespace inside a line are
// collapsed and blank lines are dropped.
func TextContent(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()

	var buffer strings.Builder
	for _, n := range doc.Nodes {
		writeText(n, &buffer)
	}

	var lines []string
	for _, line := range strings.Split(buffer.String(), "\n") {
		line = innerWhitespace.ReplaceAllString(line, " ")
		line = removeNonPrintable(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
