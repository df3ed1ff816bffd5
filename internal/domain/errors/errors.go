// Package errors defines the pipeline's error taxonomy: typed errors that
// carry enough context (job, scenario, kind, retryability) for the
// scheduler and executors to decide what to do without string matching.
package errors

import "fmt"

// PhaseAKind enumerates the ways Phase A (research) can fail.
type PhaseAKind string

const (
	PhaseAPromptBlocked   PhaseAKind = "PROMPT_BLOCKED"
	PhaseAEmptyResponse   PhaseAKind = "EMPTY_RESPONSE"
	PhaseAUnparseableJSON PhaseAKind = "UNPARSEABLE_JSON"
	PhaseAUnderfilled     PhaseAKind = "UNDERFILLED"
	PhaseARateLimited     PhaseAKind = "RATE_LIMITED"
	PhaseATransient       PhaseAKind = "TRANSIENT"
)

// PhaseAError represents a Phase A research failure.
type PhaseAError struct {
	JobID   string
	Kind    PhaseAKind
	Message string
	Cause   error
}

func (e *PhaseAError) Error() string {
	return fmt.Sprintf("phase a error for job %s [%s]: %s", e.JobID, e.Kind, e.Message)
}

func (e *PhaseAError) Unwrap() error { return e.Cause }

// Retryable reports whether the scheduler should re-attempt Phase A for
// this failure. Content-policy and persistently malformed output are not
// retryable; transient and rate-limit failures are.
func (e *PhaseAError) Retryable() bool {
	switch e.Kind {
	case PhaseARateLimited, PhaseATransient:
		return true
	default:
		return false
	}
}

func NewPhaseAError(jobID string, kind PhaseAKind, message string, cause error) *PhaseAError {
	return &PhaseAError{JobID: jobID, Kind: kind, Message: message, Cause: cause}
}

// PhaseBItemKind enumerates the ways a single Phase B content item can fail.
type PhaseBItemKind string

const (
	PhaseBRateLimited PhaseBItemKind = "RATE_LIMITED"
	PhaseBTransient   PhaseBItemKind = "TRANSIENT"
	PhaseBBlocked     PhaseBItemKind = "BLOCKED"
	PhaseBUnparseable PhaseBItemKind = "UNPARSEABLE"
)

// PhaseBItemError represents a single scenario's generation failure. It
// never aborts the batch; the executor records it against that scenario
// and continues with the rest.
type PhaseBItemError struct {
	JobID      string
	ScenarioID string
	Kind       PhaseBItemKind
	Attempt    int
	Message    string
	Cause      error
}

func (e *PhaseBItemError) Error() string {
	return fmt.Sprintf("phase b item error for job %s scenario %s (attempt %d) [%s]: %s",
		e.JobID, e.ScenarioID, e.Attempt, e.Kind, e.Message)
}

func (e *PhaseBItemError) Unwrap() error { return e.Cause }

func (e *PhaseBItemError) Retryable() bool {
	switch e.Kind {
	case PhaseBRateLimited, PhaseBTransient:
		return true
	default:
		return false
	}
}

func NewPhaseBItemError(jobID, scenarioID string, kind PhaseBItemKind, attempt int, message string, cause error) *PhaseBItemError {
	return &PhaseBItemError{JobID: jobID, ScenarioID: scenarioID, Kind: kind, Attempt: attempt, Message: message, Cause: cause}
}

// ValidationError reports a malformed request at the admission boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %s: %s", e.Field, e.Message)
}

// ConfigurationError reports a missing or invalid configuration value
// discovered at startup or first use.
type ConfigurationError struct {
	Component string
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

func NewConfigurationError(component, message string) *ConfigurationError {
	return &ConfigurationError{Component: component, Message: message}
}

// JobNotFoundError reports that a job ID had no matching row.
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}

func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// IsRetryable inspects err for a Retryable() bool method and returns its
// result, defaulting to false for unrecognized error types.
func IsRetryable(err error) bool {
	type retryable interface{ Retryable() bool }
	if r, ok := err.(retryable); ok {
		return r.Retryable()
	}
	return false
}
