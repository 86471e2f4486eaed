package embed

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIMaxBatch is the largest input list the embeddings API accepts per call.
const openAIMaxBatch = 2048

// OpenAIEncoder implements Encoder using the OpenAI embeddings API.
//
// Any OpenAI-compatible provider works by pointing baseURL at it, which is also
// how tests substitute a fake server.
type OpenAIEncoder struct {
	client *openai.Client
	model  string
	dim    int
}

var _ Encoder = (*OpenAIEncoder)(nil)

// NewOpenAIEncoder creates an encoder for the given model and dimensionality.
// baseURL is optional; empty means the provider default.
func NewOpenAIEncoder(apiKey, baseURL, model string, dimensions int) *OpenAIEncoder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIEncoder{
		client: &client,
		model:  model,
		dim:    dimensions,
	}
}

// Encode returns the embedding for a single text.
func (o *OpenAIEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vecs, err := o.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EncodeBatch returns embeddings for multiple texts. Batches larger than the
// API limit are split across calls.
func (o *OpenAIEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	result := make([][]float32, len(texts))
	for i := 0; i < len(texts); i += openAIMaxBatch {
		end := min(i+openAIMaxBatch, len(texts))
		vecs, err := o.callAPI(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("encode batch [%d:%d]: %w", i, end, err)
		}
		copy(result[i:], vecs)
	}
	return result, nil
}

// Dimensions returns the configured vector dimensionality.
func (o *OpenAIEncoder) Dimensions() int {
	return o.dim
}

// Model returns the embedding model identifier.
func (o *OpenAIEncoder) Model() string {
	return o.model
}

func (o *OpenAIEncoder) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model:          o.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions:     openai.Int(int64(o.dim)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))
	for _, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= int64(len(texts)) {
			return nil, fmt.Errorf("unexpected embedding index %d for batch size %d", idx, len(texts))
		}
		vec := make([]float32, len(item.Embedding))
		for i, f := range item.Embedding {
			vec[i] = float32(f)
		}
		vecs[idx] = vec
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return vecs, nil
}
