// Package embed turns article text into fixed-dimension embedding vectors and
// derives the plain-text excerpts that get encoded alongside titles.
package embed

import (
	"context"
	"errors"
)

// ErrEmptyInput is returned when there is no text to encode.
var ErrEmptyInput = errors.New("embed: empty input")

// Encoder produces embedding vectors for text. Implementations must be safe
// for concurrent use.
type Encoder interface {
	// Encode returns the embedding for a single text.
	Encode(ctx context.Context, text string) ([]float32, error)

	// EncodeBatch returns embeddings for multiple texts, positionally aligned
	// with the input. It fails as a whole; callers that need per-item recovery
	// fall back to Encode.
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimensionality D.
	Dimensions() int
}
