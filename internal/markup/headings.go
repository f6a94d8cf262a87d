package markup

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RepairHeadings re-levels headings so the hierarchy never skips a level:
// an h2 followed directly by an h4 becomes h2, h3. Levels only move up
// (toward larger headings); a correct hierarchy passes through unchanged.
func RepairHeadings(htmlStr string) string {
	nodes, err := parseFragment(htmlStr)
	if err != nil {
		return htmlStr
	}

	// The article body starts below the page title, so the baseline is h1:
	// a leading h2 is in order, a leading h3 gets pulled up to h2.
	prev := 1
	walk(nodes, func(n *html.Node) {
		lvl := headingLevel(n)
		if lvl == 0 {
			return
		}
		if lvl > prev+1 {
			lvl = prev + 1
			name := fmt.Sprintf("h%d", lvl)
			n.Data = name
			n.DataAtom = atom.Lookup([]byte(name))
		}
		prev = lvl
	})
	return renderNodes(nodes)
}
