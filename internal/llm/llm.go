// Package llm abstracts the external chat-completion endpoint. A request
// is a pair of system instructions and a user prompt; the response is
// free text the caller must validate defensively.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TokenUsage records how many tokens a single generation consumed.
type TokenUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator is an interface for generating text from a system prompt
// and a user prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (ContentResponse, error)
}

// APIError is returned when the completion endpoint answers with a
// non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsTimeout reports whether err was caused by the request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// IsAPIError reports whether the far side answered with an error status,
// and returns that status.
func IsAPIError(err error) (int, bool) {
	var aerr *APIError
	if errors.As(err, &aerr) {
		return aerr.StatusCode, true
	}
	return 0, false
}
