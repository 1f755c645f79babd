package ai

import (
	"context"
	"errors"
)

// ErrUnavailable wraps any failure to reach the language model.
var ErrUnavailable = errors.New("language model unavailable")

// TextGenerator is the slice of the LLM client the services depend on.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// JSONGenerator is implemented by clients that can force a JSON-only reply.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
