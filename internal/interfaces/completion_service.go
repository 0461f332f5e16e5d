package interfaces

import "context"

// Completion is a text reply from the completion service
type Completion struct {
	Text     string
	Provider string
	Model    string
}

// CompletionService sends one instruction and one payload to a text-completion model.
// Implementations make a single attempt per call. Any failure, including a deadline,
// is reported as ErrExternalServiceUnavailable.
type CompletionService interface {
	Complete(ctx context.Context, systemInstruction, userContent string) (*Completion, error)
}
