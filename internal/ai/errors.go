package ai

import (
	"context"
	"errors"
	"net"
)

// The five failure classes of the streaming gateway. Every backend error
// surfaced to a caller is one of these.
var (
	ErrBackendUnavailable = errors.New("generation backend is unreachable")
	ErrTimeout            = errors.New("generation backend timed out")
	ErrModelNotFound      = errors.New("configured model is not installed")
	ErrMalformedResponse  = errors.New("generation backend returned a malformed response")
	ErrBackendReported    = errors.New("generation backend reported an error")
)

// classifyTransport maps a raw transport error onto the taxonomy.
func classifyTransport(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrBackendUnavailable
}

// UserMessage renders the actionable, human-readable message for a
// classified failure. Raw error strings never reach the end user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrBackendUnavailable):
		return "The AI backend is not reachable. Please start Ollama and try again."
	case errors.Is(err, ErrTimeout):
		return "The AI backend took too long to respond. Try again with a shorter question."
	case errors.Is(err, ErrModelNotFound):
		return "The configured model is not installed. Pull it with `ollama pull` and retry."
	case errors.Is(err, ErrMalformedResponse):
		return "The AI backend returned an unreadable response. Please try again."
	case errors.Is(err, ErrBackendReported):
		return "The AI backend rejected the request. Check the server logs for details."
	default:
		return "The AI request failed unexpectedly. Please try again."
	}
}
