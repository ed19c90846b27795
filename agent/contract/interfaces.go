package contract

import "context"

// Classifier is the external intent classifier (language model).
type Classifier interface {
	Classify(ctx context.Context, message string, history []string) (Classification, error)
}

// Embedder is the external embedding function. All vectors it returns must
// share one fixed dimension; mixing embedding versions is a configuration
// error surfaced as ErrDimensionMismatch downstream.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OrderSource is the external read-only order data source.
type OrderSource interface {
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}

// Phraser turns an envelope into the final user-facing reply. The core
// tolerates its failure and falls back to a degraded response.
type Phraser interface {
	Phrase(ctx context.Context, userMessage string, env Envelope) (string, error)
}
