// Package llm adapts a generative model provider to the two capabilities
// the pipeline needs: grounded research (Phase A) and plain generation
// (Phase B), per §6.
package llm

import "context"

// ErrorKind classifies a Gateway failure so callers can decide whether to
// retry, and how long to wait.
type ErrorKind string

const (
	ErrBlocked     ErrorKind = "BLOCKED"
	ErrRateLimited ErrorKind = "RATE_LIMITED"
	ErrTransient   ErrorKind = "TRANSIENT"
	ErrFatal       ErrorKind = "FATAL"
)

// Error is the typed error every Gateway call returns on failure.
type Error struct {
	Kind    ErrorKind
	Reason  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return string(e.Kind) + ": " + e.Reason
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Options controls a single Gateway call.
type Options struct {
	Temperature float32
	TopP        float32
	TopK        int
	MaxTokens   int
	GroundedSearch bool
}

// Gateway is a thin adapter over a generative model (§6, §2 item 3).
type Gateway interface {
	// Research issues a search-augmented call, used once per job by
	// Phase A.
	Research(ctx context.Context, prompt string, opts Options) (string, error)

	// Generate issues a plain (optionally grounded) call, used once per
	// scenario by Phase B.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
