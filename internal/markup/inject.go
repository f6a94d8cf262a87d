package markup

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// conclusionRe matches heading text that marks the closing section.
var conclusionRe = regexp.MustCompile(`(?i)^\s*(conclusion|final thoughts|wrapping up|in summary|summary|key takeaways?)\b`)

// InsertBeforeConclusion inserts an HTML fragment before the conclusion
// heading, or appends it at the end when no conclusion exists. Patch-mode
// coverage sections land here so new material reads as part of the body, not
// an afterthought trailing the sign-off.
func InsertBeforeConclusion(htmlStr, fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr + fragment
	}

	inserted := false
	doc.Find("h1,h2,h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if conclusionRe.MatchString(s.Text()) {
			s.BeforeHtml(fragment)
			inserted = true
			return false
		}
		return true
	})
	if !inserted {
		doc.Find("body").AppendHtml(fragment)
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return htmlStr + fragment
	}
	return out
}

// InsertCoverageMarker places a machine-readable comment node after the last
// heading listing terms that remain uncovered. The marker is invisible to
// readers; downstream scorers see the terms. Callers gate this behind the
// opt-in EnforceCoverageMarks setting.
func InsertCoverageMarker(htmlStr string, terms []string) string {
	if len(terms) == 0 {
		return htmlStr
	}

	nodes, err := parseFragment(htmlStr)
	if err != nil {
		return htmlStr
	}

	var lastHeading *html.Node
	walk(nodes, func(n *html.Node) {
		if headingLevel(n) > 0 {
			lastHeading = n
		}
	})

	comment := &html.Node{
		Type: html.CommentNode,
		Data: " seo-coverage: " + strings.Join(terms, ", ") + " ",
	}

	if lastHeading == nil || lastHeading.Parent == nil {
		nodes = append(nodes, comment)
		return renderNodes(nodes)
	}
	lastHeading.Parent.InsertBefore(comment, lastHeading.NextSibling)
	return renderNodes(nodes)
}

// InjectInlineLinks links the first plain-text occurrence of each anchor term
// to its URL. Text already inside an anchor is left alone, and each term is
// linked at most once.
func InjectInlineLinks(htmlStr string, links map[string]string) string {
	if len(links) == 0 {
		return htmlStr
	}

	nodes, err := parseFragment(htmlStr)
	if err != nil {
		return htmlStr
	}

	for term, url := range links {
		linkFirstOccurrence(nodes, term, url)
	}
	return renderNodes(nodes)
}

// linkFirstOccurrence finds the first text node containing term (case
// insensitive, outside anchors and headings) and wraps the matched slice in
// an <a> element.
func linkFirstOccurrence(nodes []*html.Node, term, url string) {
	var target *html.Node
	walk(nodes, func(n *html.Node) {
		if target != nil || n.Type != html.TextNode {
			return
		}
		if insideAnchorOrHeading(n) {
			return
		}
		if start, _ := foldIndex(n.Data, term); start >= 0 {
			target = n
		}
	})
	if target == nil {
		return
	}

	start, end := foldIndex(target.Data, term)
	before := target.Data[:start]
	match := target.Data[start:end]
	after := target.Data[end:]

	parent := target.Parent
	anchor := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr:     []html.Attribute{{Key: "href", Val: url}},
	}
	anchor.AppendChild(&html.Node{Type: html.TextNode, Data: match})

	next := target.NextSibling
	parent.RemoveChild(target)
	parent.InsertBefore(&html.Node{Type: html.TextNode, Data: before}, next)
	parent.InsertBefore(anchor, next)
	parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, next)
}

// foldIndex returns the byte range in s of the first case-insensitive match
// of term. Matching is rune by rune, so the offsets stay valid on the
// original string even when case conversion changes a rune's byte length.
// Returns (-1, -1) when term is empty or absent.
func foldIndex(s, term string) (int, int) {
	if term == "" {
		return -1, -1
	}
	for i := 0; i < len(s); {
		if n, ok := foldMatch(s[i:], term); ok {
			return i, i + n
		}
		_, width := utf8.DecodeRuneInString(s[i:])
		i += width
	}
	return -1, -1
}

// foldMatch reports whether s begins with a case-insensitive match of term
// and, if so, how many bytes of s the match spans.
func foldMatch(s, term string) (int, bool) {
	i := 0
	for _, tr := range term {
		if i >= len(s) {
			return 0, false
		}
		sr, width := utf8.DecodeRuneInString(s[i:])
		if unicode.ToLower(sr) != unicode.ToLower(tr) {
			return 0, false
		}
		i += width
	}
	return i, true
}

func insideAnchorOrHeading(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.A || headingLevel(p) > 0 {
			return true
		}
	}
	return false
}

// VideoSection builds an embed section for the first usable video.
func VideoSection(title, videoID string) string {
	if videoID == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<h2>Recommended Video</h2>`)
	b.WriteString(`<figure class="video-embed"><iframe src="https://www.youtube.com/embed/`)
	b.WriteString(videoID)
	b.WriteString(`" title="`)
	b.WriteString(html.EscapeString(title))
	b.WriteString(`" allowfullscreen></iframe></figure>`)
	return b.String()
}
