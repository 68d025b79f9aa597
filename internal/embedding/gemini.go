package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// DefaultGeminiModel is the Gemini embedding model.
const DefaultGeminiModel = "text-embedding-004"

// geminiBatcher is the part of *genai.EmbeddingModel used here.
type geminiBatcher interface {
	NewBatch() *genai.EmbeddingBatch
	BatchEmbedContents(ctx context.Context, b *genai.EmbeddingBatch) (*genai.BatchEmbedContentsResponse, error)
}

// GeminiEmbedder embeds texts with a Gemini embedding model.
type GeminiEmbedder struct {
	model geminiBatcher
	name  string
}

// NewGeminiEmbedder wraps a model obtained from genai.Client.EmbeddingModel.
func NewGeminiEmbedder(model *genai.EmbeddingModel, name string) *GeminiEmbedder {
	return &GeminiEmbedder{model: model, name: name}
}

// Model returns the embedding model name.
func (e *GeminiEmbedder) Model() string { return e.name }

// Embed sends all texts in one batch request.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := e.model.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := e.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed failed: %w", err)
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini returned empty embedding at index %d", i)
		}
		out[i] = emb.Values
	}
	return out, nil
}
