package port

import "context"

// Summarizer condenses text. Implementations without a live model fall
// back to bounded truncation rather than failing.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
