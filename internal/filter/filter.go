// File: internal/filter/filter.go
package filter

import (
	"strings"
	"sync"

	"yad2_tracker/internal/listing"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Policy decides which listings are kept. It is built once and applied to
// every batch; Apply has no side effects and is idempotent.
type Policy struct {
	keywords        []string
	excludeAgencies bool

	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// NewPolicy compiles the blocklist. Keywords are matched case-insensitively as
// substrings of "title address". Blank keywords are ignored.
func NewPolicy(keywords []string, excludeAgencies bool) *Policy {
	p := &Policy{excludeAgencies: excludeAgencies}

	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		normalized := normalize(kw)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		p.keywords = append(p.keywords, normalized)
	}
	if len(p.keywords) > 0 {
		p.matcher = ahocorasick.NewStringMatcher(p.keywords)
	}
	return p
}

// Keywords returns the normalized blocklist.
func (p *Policy) Keywords() []string {
	return append([]string(nil), p.keywords...)
}

// Apply returns the retained subset of batch in input order.
func (p *Policy) Apply(batch []listing.Listing) []listing.Listing {
	kept := make([]listing.Listing, 0, len(batch))
	for _, l := range batch {
		if p.Keep(l) {
			kept = append(kept, l)
		}
	}
	return kept
}

// Keep reports whether a single listing passes the policy.
func (p *Policy) Keep(l listing.Listing) bool {
	if p.excludeAgencies && l.SellerKind == listing.SellerAgency {
		return false
	}
	return len(p.MatchedKeywords(l)) == 0
}

// MatchedKeywords lists the blocklist entries found in the listing.
func (p *Policy) MatchedKeywords(l listing.Listing) []string {
	if p.matcher == nil {
		return nil
	}
	text := normalize(l.Title + " " + l.Address)

	// Matcher keeps per-call state internally.
	p.mu.Lock()
	hits := p.matcher.Match([]byte(text))
	p.mu.Unlock()

	out := make([]string, 0, len(hits))
	for _, idx := range hits {
		if idx < len(p.keywords) {
			out = append(out, p.keywords[idx])
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
