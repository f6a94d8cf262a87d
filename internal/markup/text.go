// Package markup handles all HTML manipulation for the pipeline as tree
// transformations over parsed documents: residual-markdown conversion,
// heading-hierarchy repair, link and fragment injection, and text-derived
// metrics. Nothing in here mutates HTML with regex string surgery.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseFragment parses an HTML fragment in body context, avoiding the
// html/head/body wrapping that html.Parse would add.
func parseFragment(s string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
}

// renderNodes renders fragment nodes back to an HTML string.
func renderNodes(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		// Render errors only occur on unrenderable node types, which
		// ParseFragment never produces.
		_ = html.Render(&b, n)
	}
	return b.String()
}

// walk visits every node in document order.
func walk(nodes []*html.Node, visit func(*html.Node)) {
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		visit(n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	for _, n := range nodes {
		rec(n)
	}
}

// PlainText extracts the visible text of an HTML fragment.
func PlainText(htmlStr string) string {
	nodes, err := parseFragment(htmlStr)
	if err != nil {
		return htmlStr
	}
	var b strings.Builder
	walk(nodes, func(n *html.Node) {
		switch {
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			// children skipped below via marker
		case n.Type == html.TextNode:
			if p := n.Parent; p != nil && (p.DataAtom == atom.Script || p.DataAtom == atom.Style) {
				return
			}
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// WordCount counts words in the visible text of an HTML fragment.
func WordCount(htmlStr string) int {
	return len(strings.Fields(PlainText(htmlStr)))
}

// Heading is one heading element found in a document.
type Heading struct {
	Level int
	Text  string
}

// Headings lists the headings of an HTML fragment in document order.
func Headings(htmlStr string) []Heading {
	nodes, err := parseFragment(htmlStr)
	if err != nil {
		return nil
	}
	var out []Heading
	walk(nodes, func(n *html.Node) {
		if lvl := headingLevel(n); lvl > 0 {
			out = append(out, Heading{Level: lvl, Text: nodeText(n)})
		}
	})
	return out
}

// CountElements counts occurrences of the given element names.
func CountElements(htmlStr string, names ...string) int {
	nodes, err := parseFragment(htmlStr)
	if err != nil {
		return 0
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	count := 0
	walk(nodes, func(n *html.Node) {
		if n.Type == html.ElementNode && want[n.Data] {
			count++
		}
	})
	return count
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(m *html.Node) {
		if m.Type == html.TextNode {
			b.WriteString(m.Data)
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.TrimSpace(b.String())
}
