package embedding

import "context"

// EmbeddingProvider turns text into a fixed-length, L2-normalised vector.
// Implementations must be safe for concurrent use.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// WarmUpText is embedded once at startup so the model is loaded before the first request.
const WarmUpText = "warm-up"

// WarmUp forces model initialisation. A failure here means the pipeline cannot run.
func WarmUp(ctx context.Context, p EmbeddingProvider) error {
	_, err := p.Embed(ctx, WarmUpText)
	return err
}
