package domain

import "context"

// JobRepository is the persistence contract for Job rows and their child
// Scenarios (§4.5). All operations are asynchronous and surface storage
// errors verbatim except where noted.
type JobRepository interface {
	// Create inserts a new job row with the fields and status it is
	// given. The storage implementation does not validate the fields.
	Create(ctx context.Context, job *Job) error

	// GetByID returns the job, or a *errors.JobNotFoundError if absent.
	GetByID(ctx context.Context, jobID string) (*Job, error)

	// UpdateProgress is a single atomic write of progress and
	// total_content_generated.
	UpdateProgress(ctx context.Context, jobID string, progress, totalContentGenerated int) error

	// UpdateStatus transitions the job's status, optionally setting
	// started_at/completed_at as appropriate for the new status.
	UpdateStatus(ctx context.Context, jobID string, status JobStatus) error

	// MarkComplete is a convenience wrapper that sets the terminal
	// status, progress 100, and completed_at.
	MarkComplete(ctx context.Context, jobID string, status JobStatus, failedCount int) error

	// MarkFailed is a convenience wrapper that sets status FAILED,
	// progress 100, completed_at, and error_message.
	MarkFailed(ctx context.Context, jobID string, errMessage string) error

	// UpdateScenarios persists the Phase A output exactly once.
	UpdateScenarios(ctx context.Context, jobID string, scenarios []Scenario) error

	// UpdateRefund records the pro-rata credit refund computed at Phase
	// B termination. It only writes while no refund is recorded yet
	// (credits_refunded = 0), so a repeated call keeps the first value.
	UpdateRefund(ctx context.Context, jobID string, creditsRefunded int) error

	// Delete marks the job cancelled and removes its scenarios. Content
	// rows are removed separately via ContentRepository.DeleteByJobID. A
	// no-op (not an error) if the job no longer exists.
	Delete(ctx context.Context, jobID string) error

	// IsCancelled reports whether Delete has been called on a still-running job.
	IsCancelled(ctx context.Context, jobID string) (bool, error)
}

// ContentRepository is the persistence contract for Content rows (§4.5).
type ContentRepository interface {
	// Create inserts a single Content row. Rows are insert-only.
	Create(ctx context.Context, content *Content) error

	// FindByJobID returns all content rows for a job, ordered by
	// scenario_id ascending.
	FindByJobID(ctx context.Context, jobID string) ([]Content, error)

	// DeleteByJobID removes all content rows for a job.
	DeleteByJobID(ctx context.Context, jobID string) error
}
