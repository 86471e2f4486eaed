// Command newsvec runs the news similarity-search service: it maintains a
// vector index over article embeddings, refreshes it as the corpus changes,
// and serves top-K similarity queries over HTTP.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/orneryd/newsvec/pkg/article"
	"github.com/orneryd/newsvec/pkg/config"
	"github.com/orneryd/newsvec/pkg/embed"
	"github.com/orneryd/newsvec/pkg/geocode"
	"github.com/orneryd/newsvec/pkg/index"
	"github.com/orneryd/newsvec/pkg/search"
	"github.com/orneryd/newsvec/pkg/server"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI).SetMaxPoolSize(10))
	if err != nil {
		log.Fatalf("mongodb connect: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("mongodb ping: %v", err)
	}
	log.Printf("mongodb connection established")

	store := article.NewStore(client.Database(cfg.DatabaseName).Collection(cfg.CollectionName))
	encoder := embed.NewOpenAIEncoder(cfg.EmbeddingAPIKey, cfg.EmbeddingAPIURL, cfg.ModelName, cfg.EmbeddingDimensions)

	resolver, err := geocode.NewCachedResolver(geocode.NewNominatimResolver(cfg.GeocodeAPIURL))
	if err != nil {
		log.Fatalf("geocode cache: %v", err)
	}
	defer resolver.Close()

	svc := search.NewService(store, encoder, resolver,
		&index.Store{IndexPath: cfg.IndexFilePath, IDsPath: cfg.ArticleIDsFilePath},
		search.Options{TTL: cfg.CacheExpiry})

	if err := svc.Initialize(context.Background()); err != nil {
		log.Fatalf("index initialization: %v", err)
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Port = cfg.Port
	srv := server.New(svc, srvCfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("server start: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received %s, shutting down", sig)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := client.Disconnect(stopCtx); err != nil {
		log.Printf("mongodb disconnect: %v", err)
	}
	log.Printf("shutdown complete")
}
