// Package embedding adapts the external embedding function. The embedding
// space is assumed stable and versioned; a vector of unexpected dimension
// means mixed embedding versions and is rejected.
package embedding

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

type Config struct {
	Model string `envconfig:"MODEL" split_words:"true" default:"text-embedding-3-small"`
	// Dimension pins the expected vector size; 0 accepts whatever the first
	// response returns.
	Dimension int `envconfig:"DIMENSION" split_words:"true" default:"0"`
}

type OpenAIEmbedder struct {
	client    *openaisdk.Client
	model     string
	dimension int
}

var _ contractx.Embedder = (*OpenAIEmbedder)(nil)

func NewOpenAIEmbedder(client *openaisdk.Client, cfg Config) (*OpenAIEmbedder, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	return &OpenAIEmbedder{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(e.model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings request: %v", contractx.ErrCollaborator, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", contractx.ErrCollaborator, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		if e.dimension > 0 && len(item.Embedding) != e.dimension {
			return nil, fmt.Errorf("%w: embedder returned dim=%d, configured dim=%d",
				contractx.ErrDimensionMismatch, len(item.Embedding), e.dimension)
		}
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
