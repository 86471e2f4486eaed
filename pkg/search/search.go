// Package search owns the index lifecycle and the query pipeline of the news
// similarity-search service.
//
// One immutable Snapshot (index + positional id array + build timestamp) is
// active at a time, shared by every in-flight query through an atomic pointer.
// Rebuilds construct a replacement off the serving path and publish it with a
// single pointer swap; a live snapshot is never mutated. Concurrent rebuild
// triggers are coalesced so at most one build runs at a time.
package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/orneryd/newsvec/pkg/article"
	"github.com/orneryd/newsvec/pkg/embed"
	"github.com/orneryd/newsvec/pkg/geocode"
	"github.com/orneryd/newsvec/pkg/index"
)

var (
	// ErrEmptyQuery is returned for a missing or blank search query.
	ErrEmptyQuery = errors.New("search: empty query")
	// ErrNoIndex is returned when no snapshot is active yet.
	ErrNoIndex = errors.New("search: index not initialized")
	// ErrNoVectors means a build found no encodable articles. At startup this
	// is fatal; on rebuild the previous snapshot stays in service.
	ErrNoVectors = errors.New("search: no articles with usable vectors")
)

const (
	defaultTopK      = 30
	defaultBatchSize = 100
	defaultTTL       = 24 * time.Hour
)

// ArticleStore is the document-store surface the service consumes.
// *article.Store satisfies it; tests substitute fakes.
type ArticleStore interface {
	FetchAll(ctx context.Context) ([]article.Article, error)
	FetchByIDs(ctx context.Context, ids []primitive.ObjectID) ([]article.Article, error)
	UpdateVectors(ctx context.Context, updates []article.VectorUpdate) (int64, error)
}

// IndexStore persists and reloads the (index, id array) pair.
type IndexStore interface {
	Save(idx index.Index, ids []primitive.ObjectID) error
	Load() (index.Index, []primitive.ObjectID, error)
}

// Snapshot is one generation of the search structure. Immutable once built;
// IDs[i] is the article whose vector sits at position i in Index.
type Snapshot struct {
	Index   index.Index
	IDs     []primitive.ObjectID
	BuiltAt time.Time
}

// Result is one formatted search hit.
type Result struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	FullDescription string `json:"full_description"`
	Link            string `json:"link"`
}

// Options tune the service. Zero values select defaults.
type Options struct {
	// TTL is the snapshot expiry; a query against an older snapshot triggers
	// a background rebuild. Default 24h.
	TTL time.Duration
	// TopK is the number of nearest neighbors retrieved per query. Default 30.
	TopK int
	// BatchSize is the encoding chunk size. Default 100.
	BatchSize int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Service is the index lifecycle manager and query processor.
type Service struct {
	store     ArticleStore
	encoder   embed.Encoder
	resolver  geocode.Resolver
	indexes   IndexStore
	ttl       time.Duration
	topK      int
	batchSize int
	now       func() time.Time

	snapshot atomic.Pointer[Snapshot]

	// rebuildMu serializes builds; rebuilding coalesces staleness triggers so
	// observing an expired snapshot spawns at most one background build.
	rebuildMu  sync.Mutex
	rebuilding atomic.Bool
}

// NewService wires the lifecycle manager. The service is inert until
// Initialize succeeds.
func NewService(store ArticleStore, encoder embed.Encoder, resolver geocode.Resolver, indexes IndexStore, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:     store,
		encoder:   encoder,
		resolver:  resolver,
		indexes:   indexes,
		ttl:       opts.TTL,
		topK:      opts.TopK,
		batchSize: opts.BatchSize,
		now:       opts.Now,
	}
}

// ActiveSnapshot returns the currently served snapshot, or nil before
// initialization.
func (s *Service) ActiveSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// Count returns the number of indexed articles in the active snapshot.
func (s *Service) Count() int {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.Index.Len()
	}
	return 0
}
