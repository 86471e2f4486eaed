package search

import (
	"strings"

	"github.com/orneryd/newsvec/pkg/article"
)

// rankByLocation stably partitions results by location-term presence. Terms
// are applied in their given order (most specific first); within a term,
// matches keep their relevance order, and everything unmatched follows in its
// original order. With no terms the input is returned unchanged.
//
// Articles are deduplicated by link, so two linkless articles share one slot.
func rankByLocation(results []article.Article, terms []string) []article.Article {
	if len(terms) == 0 {
		return results
	}

	ranked := make([]article.Article, 0, len(results))
	seen := make(map[string]struct{}, len(results))

	for _, term := range terms {
		needle := strings.ToLower(term)
		for _, a := range results {
			if _, ok := seen[a.Link]; ok {
				continue
			}
			if strings.Contains(strings.ToLower(a.Title), needle) ||
				strings.Contains(strings.ToLower(a.Description), needle) {
				ranked = append(ranked, a)
				seen[a.Link] = struct{}{}
			}
		}
	}
	for _, a := range results {
		if _, ok := seen[a.Link]; ok {
			continue
		}
		ranked = append(ranked, a)
		seen[a.Link] = struct{}{}
	}
	return ranked
}
