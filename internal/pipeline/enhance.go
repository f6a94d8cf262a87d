package pipeline

import (
	"context"
	"fmt"

	"github.com/seoforge/seoforge/internal/events"
	"github.com/seoforge/seoforge/internal/markup"
	"github.com/seoforge/seoforge/internal/types"
)

// maxInlineLinks bounds inline link injection per article.
const maxInlineLinks = 3

// enhanceDraft injects inline reference links and a video embed. Entirely
// non-fatal: any failure leaves the draft as it was.
func (e *Engine) enhanceDraft(ctx context.Context, draft types.Draft, req *types.GenerationRequest, bundle *types.ResearchBundle) types.Draft {
	_ = ctx

	before := markup.WordCount(draft.HTML)
	html := draft.HTML

	if req.IncludeLinks && len(bundle.References) > 0 {
		links := anchorCandidates(bundle)
		if len(links) > 0 {
			html = markup.InjectInlineLinks(html, links)
			e.emit(events.New(events.TypeLinksInjected, req.Keyword,
				fmt.Sprintf("injected up to %d inline links", len(links))))
		}
	}

	if req.IncludeVideos && len(bundle.Videos) > 0 {
		v := bundle.Videos[0]
		if section := markup.VideoSection(v.Title, v.ID); section != "" {
			html = markup.InsertBeforeConclusion(html, section)
		}
	}

	// Enhancement must never shrink the article; that would mean the tree
	// transforms mangled something.
	if markup.WordCount(html) < before {
		return draft
	}
	return types.Draft{HTML: html}
}

// anchorCandidates pairs semantic entities with ranked references to build
// term-to-URL anchors. Entities that never occur in the body simply produce
// no link.
func anchorCandidates(bundle *types.ResearchBundle) map[string]string {
	links := make(map[string]string, maxInlineLinks)
	if bundle.SERP == nil {
		return links
	}
	for i, entity := range bundle.SERP.SemanticEntities {
		if i >= maxInlineLinks || i >= len(bundle.References) {
			break
		}
		if entity == "" || bundle.References[i].URL == "" {
			continue
		}
		links[entity] = bundle.References[i].URL
	}
	return links
}
