// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/orneryd/newsvec/pkg/envutil"
)

// Config holds all runtime configuration for the news search service.
//
// Every field except MongoURI has a default; MongoURI is required and its
// absence is a fatal startup condition.
type Config struct {
	// MongoURI is the MongoDB connection string (required).
	MongoURI string
	// DatabaseName is the MongoDB database holding the article collection.
	DatabaseName string
	// CollectionName is the article collection name.
	CollectionName string

	// IndexFilePath is where the serialized vector index is persisted.
	IndexFilePath string
	// ArticleIDsFilePath is where the positional article id array is persisted.
	ArticleIDsFilePath string
	// CacheExpiry is the index TTL; a snapshot older than this is stale.
	CacheExpiry time.Duration

	// ModelName is the embedding model identifier.
	ModelName string
	// EmbeddingDimensions is the vector dimensionality D.
	EmbeddingDimensions int
	// EmbeddingAPIKey authenticates against the embeddings API.
	EmbeddingAPIKey string
	// EmbeddingAPIURL overrides the embeddings API base URL (OpenAI-compatible
	// providers). Empty means the provider default.
	EmbeddingAPIURL string

	// GeocodeAPIURL overrides the Nominatim base URL (used in tests).
	GeocodeAPIURL string

	// Port is the HTTP listen port.
	Port int
}

// FromEnv builds a Config from environment variables.
// Returns an error when MONGODB_URI is unset.
func FromEnv() (*Config, error) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGODB_URI not set")
	}
	return &Config{
		MongoURI:            uri,
		DatabaseName:        envutil.Get("DATABASE_NAME", "newsDB"),
		CollectionName:      envutil.Get("COLLECTION_NAME", "news_articles"),
		IndexFilePath:       envutil.Get("INDEX_FILE_PATH", "news_search.index"),
		ArticleIDsFilePath:  envutil.Get("ARTICLE_IDS_FILE_PATH", "article_ids.json"),
		CacheExpiry:         envutil.GetDurationOrSeconds("CACHE_EXPIRY", 86400*time.Second),
		ModelName:           envutil.Get("MODEL_NAME", "text-embedding-3-small"),
		EmbeddingDimensions: envutil.GetInt("EMBEDDING_DIMENSIONS", 1536),
		EmbeddingAPIKey:     os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingAPIURL:     os.Getenv("EMBEDDING_API_URL"),
		GeocodeAPIURL:       os.Getenv("GEOCODE_API_URL"),
		Port:                envutil.GetInt("PORT", 5001),
	}, nil
}
