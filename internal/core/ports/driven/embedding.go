package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations include:
//   - Local TF-IDF (deterministic, offline)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (all-minilm, nomic-embed-text)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// The result is aligned with texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	// Zero means the size is only known after the first request.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CorpusPreparer is implemented by embedders whose vector space depends on
// the document corpus, such as TF-IDF. Prepare returns an embedder fitted to
// the full document set and leaves the receiver unchanged, so an index built
// from an earlier corpus keeps embedding queries in its own space.
type CorpusPreparer interface {
	Prepare(texts []string) (EmbeddingService, error)
}
