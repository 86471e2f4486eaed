// Package article defines the news article model and its MongoDB store adapter.
//
// The ingestion pipeline owns article documents; this service reads them and
// writes back only the derived vector and processed_description fields.
package article

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article is one news article as stored in MongoDB.
//
// Vector is present once the article has been embedded. An article with a
// vector is never re-encoded implicitly; vectors are expensive to recompute.
type Article struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Title                string             `bson:"title,omitempty"`
	Description          string             `bson:"description,omitempty"`
	ProcessedDescription string             `bson:"processed_description,omitempty"`
	Link                 string             `bson:"link,omitempty"`
	Published            string             `bson:"published,omitempty"`
	Vector               []float32          `bson:"vector,omitempty"`
}

// HasVector reports whether the article already carries an embedding.
func (a *Article) HasVector() bool {
	return len(a.Vector) > 0
}

// VectorUpdate is one (id, vector, processed description) write-back produced
// by the encoding pipeline.
type VectorUpdate struct {
	ID                   primitive.ObjectID
	Vector               []float32
	ProcessedDescription string
}

// IDsToHex converts ObjectIDs to their 24-hex-character string form for the
// on-disk id array artifact.
func IDsToHex(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// IDsFromHex converts string-encoded ids back to ObjectIDs. Any malformed id
// fails the whole conversion; a partially usable id array would break the
// positional pairing with the index.
func IDsFromHex(hexIDs []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, len(hexIDs))
	for i, h := range hexIDs {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}
