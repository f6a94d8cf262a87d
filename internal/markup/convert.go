package markup

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// markdownArtifactRe detects markdown the generator sometimes leaves in an
// otherwise-HTML draft: ATX headings, bold/italic markers, list bullets, and
// markdown links.
var markdownArtifactRe = regexp.MustCompile(`(?m)(^#{1,6}\s+\S|\*\*[^*]+\*\*|^\s*[-*]\s+\S|\[[^\]]+\]\([^)]+\))`)

// converter renders markdown while passing existing raw HTML through
// untouched, so a mixed markdown/HTML draft comes out as clean HTML.
var converter = goldmark.New(
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

// ConvertResidualMarkdown converts markdown artifacts in a draft to HTML.
// Drafts without artifacts are returned unchanged so pure-HTML bodies do not
// get re-wrapped.
func ConvertResidualMarkdown(content string) string {
	if !markdownArtifactRe.MatchString(content) {
		return content
	}
	var buf bytes.Buffer
	if err := converter.Convert([]byte(content), &buf); err != nil {
		// Conversion failure keeps the draft as-is; a markdown artifact is
		// better than a lost draft.
		return content
	}
	return buf.String()
}
