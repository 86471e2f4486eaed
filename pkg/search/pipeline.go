package search

import (
	"context"
	"log"

	"github.com/orneryd/newsvec/pkg/article"
	"github.com/orneryd/newsvec/pkg/embed"
)

// encodeMissing fills in vectors for articles that have none, in fixed-size
// chunks to bound peak memory and request size. Each chunk's vectors are
// written back to the document store as soon as they exist, so a crash midway
// keeps the expensive work already done.
//
// Failures are per-item: an article whose encode fails is dropped from this
// pass, stays vector-less in the store, and is retried on the next one. The
// returned slice is the input with vectors and processed descriptions filled
// in where encoding succeeded.
func (s *Service) encodeMissing(ctx context.Context, articles []article.Article) []article.Article {
	var missing []int
	for i := range articles {
		if !articles[i].HasVector() {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return articles
	}
	log.Printf("[search] encoding %d articles without vectors", len(missing))

	for start := 0; start < len(missing); start += s.batchSize {
		end := min(start+s.batchSize, len(missing))
		chunk := missing[start:end]

		texts := make([]string, len(chunk))
		excerpts := make([]string, len(chunk))
		for j, idx := range chunk {
			excerpts[j] = embed.ExtractExcerpt(articles[idx].Description)
			texts[j] = articles[idx].Title + ". " + excerpts[j]
		}

		vecs := s.encodeChunk(ctx, texts)

		updates := make([]article.VectorUpdate, 0, len(chunk))
		for j, idx := range chunk {
			if vecs[j] == nil {
				continue
			}
			articles[idx].Vector = vecs[j]
			articles[idx].ProcessedDescription = excerpts[j]
			updates = append(updates, article.VectorUpdate{
				ID:                   articles[idx].ID,
				Vector:               vecs[j],
				ProcessedDescription: excerpts[j],
			})
		}
		if len(updates) > 0 {
			modified, err := s.store.UpdateVectors(ctx, updates)
			if err != nil {
				// The vectors still go into this build; only the incremental
				// persistence is lost, and the next pass re-encodes.
				log.Printf("[search] vector write-back failed for %d articles: %v", len(updates), err)
			} else {
				log.Printf("[search] wrote back %d vectors (%d modified)", len(updates), modified)
			}
		}
	}
	return articles
}

// encodeChunk encodes texts as one batch, falling back to item-by-item on
// batch failure so a single bad input cannot sink its whole chunk. Failed
// items are nil in the result.
func (s *Service) encodeChunk(ctx context.Context, texts []string) [][]float32 {
	vecs, err := s.encoder.EncodeBatch(ctx, texts)
	if err == nil {
		return vecs
	}
	log.Printf("[search] batch encode of %d texts failed, retrying per item: %v", len(texts), err)

	vecs = make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.encoder.Encode(ctx, text)
		if err != nil {
			log.Printf("[search] dropping article from encoding pass: %v", err)
			continue
		}
		vecs[i] = vec
	}
	return vecs
}
