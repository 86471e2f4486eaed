package article

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads articles from and writes derived fields back to a MongoDB
// collection. It is safe for concurrent use; the driver pools connections.
type Store struct {
	coll *mongo.Collection
}

// NewStore wraps an article collection.
func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// FetchAll returns every article with the fields the index build needs
// (_id, title, description, vector).
func (s *Store) FetchAll(ctx context.Context) ([]Article, error) {
	proj := bson.D{
		{Key: "_id", Value: 1},
		{Key: "title", Value: 1},
		{Key: "description", Value: 1},
		{Key: "vector", Value: 1},
	}
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetProjection(proj))
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}
	defer cur.Close(ctx)

	var articles []Article
	if err := cur.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}

// FetchByIDs returns the articles for the given ids in one query, with the
// fields the result formatter needs. Missing ids are simply not returned;
// the caller decides how to treat them.
func (s *Store) FetchByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	proj := bson.D{
		{Key: "_id", Value: 1},
		{Key: "title", Value: 1},
		{Key: "link", Value: 1},
		{Key: "description", Value: 1},
		{Key: "processed_description", Value: 1},
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetProjection(proj))
	if err != nil {
		return nil, fmt.Errorf("fetch articles by id: %w", err)
	}
	defer cur.Close(ctx)

	var articles []Article
	if err := cur.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode articles by id: %w", err)
	}
	return articles, nil
}

// UpdateVectors bulk-writes newly computed vectors (and the processed
// description derived alongside them) keyed by article id. Returns the number
// of modified documents.
func (s *Store) UpdateVectors(ctx context.Context, updates []VectorUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	models := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		set := bson.D{
			{Key: "vector", Value: u.Vector},
			{Key: "processed_description", Value: u.ProcessedDescription},
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: u.ID}}).
			SetUpdate(bson.D{{Key: "$set", Value: set}}))
	}
	res, err := s.coll.BulkWrite(ctx, models)
	if err != nil {
		return 0, fmt.Errorf("bulk vector update: %w", err)
	}
	return res.ModifiedCount, nil
}
