package search

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/orneryd/newsvec/pkg/index"
)

// Initialize brings up the first snapshot: load the persisted pair if one
// exists, otherwise run the full build path. A build that ends with zero
// usable vectors is a fatal startup condition and is returned to the caller.
func (s *Service) Initialize(ctx context.Context) error {
	idx, ids, err := s.indexes.Load()
	if err != nil {
		log.Printf("[search] index load failed, building fresh: %v", err)
	}
	if idx != nil {
		s.snapshot.Store(&Snapshot{Index: idx, IDs: ids, BuiltAt: s.now()})
		log.Printf("[search] loaded persisted index with %d articles", idx.Len())
		return nil
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	count, err := s.rebuildLocked(ctx)
	if err != nil {
		return fmt.Errorf("initial index build: %w", err)
	}
	log.Printf("[search] initial index built with %d articles", count)
	return nil
}

// Rebuild forces a synchronous full rebuild, skipping the load path. Safe to
// call while queries are in flight; they keep the snapshot they captured.
// On failure the previous snapshot, if any, remains active.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	return s.rebuildLocked(ctx)
}

// maybeRebuildStale starts a background rebuild when the active snapshot has
// outlived the TTL. Triggers are coalesced: the flag guarantees a single
// background build, and callers always proceed with the snapshot they hold.
func (s *Service) maybeRebuildStale() {
	snap := s.snapshot.Load()
	if snap == nil || s.now().Sub(snap.BuiltAt) <= s.ttl {
		return
	}
	if !s.rebuilding.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.rebuilding.Store(false)
		s.rebuildMu.Lock()
		defer s.rebuildMu.Unlock()
		// Re-check under the lock; a forced rebuild may have run meanwhile.
		if cur := s.snapshot.Load(); cur != nil && s.now().Sub(cur.BuiltAt) <= s.ttl {
			return
		}
		log.Printf("[search] snapshot expired, rebuilding in background")
		if _, err := s.rebuildLocked(context.Background()); err != nil {
			log.Printf("[search] background rebuild failed, keeping stale snapshot: %v", err)
		}
	}()
}

// rebuildLocked runs the full build path: fetch everything, encode what has
// no vector yet, build the structure, persist it, and publish the new
// snapshot. Caller holds rebuildMu.
func (s *Service) rebuildLocked(ctx context.Context) (int, error) {
	articles, err := s.store.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch articles: %w", err)
	}
	if len(articles) == 0 {
		return 0, ErrNoVectors
	}

	encoded := s.encodeMissing(ctx, articles)

	ids := make([]primitive.ObjectID, 0, len(encoded))
	vectors := make([][]float32, 0, len(encoded))
	for i := range encoded {
		if encoded[i].HasVector() {
			ids = append(ids, encoded[i].ID)
			vectors = append(vectors, encoded[i].Vector)
		}
	}
	if len(vectors) == 0 {
		return 0, ErrNoVectors
	}

	idx, err := index.Build(vectors)
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}

	// Persistence failure is not fatal to the rebuild; the fresh snapshot
	// still serves and the next build retries the save.
	if err := s.indexes.Save(idx, ids); err != nil {
		log.Printf("[search] failed to persist index artifacts: %v", err)
	}

	s.snapshot.Store(&Snapshot{Index: idx, IDs: ids, BuiltAt: s.now()})
	return len(ids), nil
}
