package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/orneryd/newsvec/pkg/article"
	"github.com/orneryd/newsvec/pkg/embed"
	"github.com/orneryd/newsvec/pkg/geocode"
)

// Search runs the full query pipeline: pincode-derived location terms,
// query encoding, similarity retrieval against the active snapshot, article
// fetch, location re-ranking, and formatting.
//
// The snapshot is captured once at the start; a rebuild completing mid-query
// does not affect this query. Resolver failures degrade to identity ranking
// and never fail the search.
func (s *Service) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNoIndex
	}
	s.maybeRebuildStale()

	terms := s.locationTerms(ctx, query)

	queryVec, err := s.encoder.Encode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	hits, err := snap.Index.Search(queryVec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	// Map surviving positions to ids. An out-of-range position means corrupt
	// state; skip it rather than fail the whole query.
	ids := make([]primitive.ObjectID, 0, len(hits))
	for _, hit := range hits {
		if hit.Pos < 0 || hit.Pos >= len(snap.IDs) {
			log.Printf("[search] dropping out-of-range index position %d (id array has %d)", hit.Pos, len(snap.IDs))
			continue
		}
		ids = append(ids, snap.IDs[hit.Pos])
	}
	if len(ids) == 0 {
		return []Result{}, nil
	}

	fetched, err := s.store.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	byID := make(map[primitive.ObjectID]article.Article, len(fetched))
	for _, a := range fetched {
		byID[a.ID] = a
	}

	// Preserve the index's relevance order; an article deleted from the store
	// since indexing is silently dropped.
	ordered := make([]article.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}

	ranked := rankByLocation(ordered, terms)

	results := make([]Result, 0, len(ranked))
	for _, a := range ranked {
		desc := a.ProcessedDescription
		if desc == "" {
			desc = embed.ExtractExcerpt(a.Description)
		}
		results = append(results, Result{
			Title:           a.Title,
			Description:     desc,
			FullDescription: a.Description,
			Link:            a.Link,
		})
	}
	return results, nil
}

// locationTerms extracts a pincode from the query and resolves it to place
// names. Any resolver failure, including timeout, yields no terms.
func (s *Service) locationTerms(ctx context.Context, query string) []string {
	pincode, ok := geocode.ExtractPincode(query)
	if !ok {
		return nil
	}
	addr, err := s.resolver.Resolve(ctx, pincode)
	if err != nil {
		if err != geocode.ErrNotFound {
			log.Printf("[search] pincode %s resolution failed: %v", pincode, err)
		}
		return nil
	}
	return addr.Terms()
}
