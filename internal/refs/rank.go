// Package refs deduplicates and ranks citation-worthy references by domain
// authority so the finalizer can attach a short, high-signal source list.
package refs

import (
	"net/url"
	"sort"
	"strings"

	"github.com/seoforge/seoforge/internal/types"
)

// Authority tiers. Government and education domains rank highest, recognized
// publications next, generic industry sites last.
const (
	authorityGov         = 100
	authorityEdu         = 95
	authorityPublication = 80
	authorityOrg         = 60
	authorityGeneric     = 50
)

// recognizedPublications are established outlets that outrank generic sites.
var recognizedPublications = map[string]bool{
	"nytimes.com":            true,
	"theguardian.com":        true,
	"bbc.com":                true,
	"bbc.co.uk":              true,
	"reuters.com":            true,
	"apnews.com":             true,
	"nature.com":             true,
	"sciencedirect.com":      true,
	"nih.gov":                true,
	"mayoclinic.org":         true,
	"healthline.com":         true,
	"webmd.com":              true,
	"hbr.org":                true,
	"forbes.com":             true,
	"wsj.com":                true,
	"nationalgeographic.com": true,
}

// lowSignalDomains are skipped entirely: social platforms and user-generated
// content make poor citations.
var lowSignalDomains = map[string]bool{
	"pinterest.com": true,
	"facebook.com":  true,
	"instagram.com": true,
	"twitter.com":   true,
	"x.com":         true,
	"tiktok.com":    true,
	"reddit.com":    true,
	"quora.com":     true,
	"medium.com":    true,
	"linkedin.com":  true,
	"youtube.com":   true,
	"tumblr.com":    true,
}

// Rank deduplicates references by URL and domain, drops low-signal domains,
// sorts by authority, and trims to max entries. Order is stable within an
// authority tier so input order breaks ties.
func Rank(references []types.Reference, max int) []types.Reference {
	if max <= 0 {
		max = 10
	}

	seenURL := make(map[string]bool)
	seenDomain := make(map[string]bool)
	ranked := make([]types.Reference, 0, len(references))

	for _, ref := range references {
		domain := ref.Domain
		if domain == "" {
			domain = DomainOf(ref.URL)
		}
		if domain == "" || lowSignalDomains[domain] {
			continue
		}
		if seenURL[ref.URL] || seenDomain[domain] {
			continue
		}
		seenURL[ref.URL] = true
		seenDomain[domain] = true

		ref.Domain = domain
		ranked = append(ranked, ref)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return AuthorityOf(ranked[i].Domain) > AuthorityOf(ranked[j].Domain)
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// DomainOf extracts the registrable host of a URL, without the www prefix.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// AuthorityOf scores a domain's citation authority.
func AuthorityOf(domain string) int {
	switch {
	case strings.HasSuffix(domain, ".gov"):
		return authorityGov
	case strings.HasSuffix(domain, ".edu"):
		return authorityEdu
	case recognizedPublications[domain]:
		return authorityPublication
	case strings.HasSuffix(domain, ".org"):
		return authorityOrg
	default:
		return authorityGeneric
	}
}
