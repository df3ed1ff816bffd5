package api

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilemakc/contentforge/internal/domain"
	pipelineerrors "github.com/smilemakc/contentforge/internal/domain/errors"
	"github.com/smilemakc/contentforge/internal/phaseb"
	"github.com/smilemakc/contentforge/internal/queue"
	"github.com/smilemakc/contentforge/internal/scheduler"
)

// SubmitJobRequest mirrors submit_job's parameters (§6).
type SubmitJobRequest struct {
	Niche               string         `json:"niche"`
	ValuePropositions   []string       `json:"value_propositions"`
	Tone                string         `json:"tone"`
	TotalBlogs          int            `json:"total_blogs"`
	BlogTypeAllocations map[string]int `json:"allocations"`
	TargetWordCount     int            `json:"target_word_count"`
	UserID              string         `json:"user_id"`
	CreditsCost         int            `json:"credits_cost"`
}

// StatusResponse mirrors get_status's return shape (§6).
type StatusResponse struct {
	Status                      domain.JobStatus `json:"status"`
	Progress                    int              `json:"progress"`
	TotalContentGenerated       int              `json:"total_content_generated"`
	TotalBlogs                  int              `json:"total_blogs"`
	GeneratedTitles             []string         `json:"generated_titles"`
	ErrorMessage                string           `json:"error_message,omitempty"`
	EstimatedSecondsRemaining   int              `json:"estimated_seconds_remaining,omitempty"`
}

// ContentResponse mirrors get_content's return shape (§6).
type ContentResponse struct {
	Items               []domain.Content `json:"items"`
	TotalPosts          int              `json:"total_posts"`
	AvgWordCount        int              `json:"avg_word_count"`
	TotalWords          int              `json:"total_words"`
	AvgGenerationTimeMs int64            `json:"avg_generation_time_ms"`
}

// Admission implements the Admission interface from §6 over the job and
// content repositories plus the queue. Handlers call through this
// service; it holds the only business logic in the HTTP surface.
type Admission struct {
	Jobs    domain.JobRepository
	Content domain.ContentRepository
	Queue   *queue.Queue
}

func NewAdmission(jobs domain.JobRepository, content domain.ContentRepository, q *queue.Queue) *Admission {
	return &Admission{Jobs: jobs, Content: content, Queue: q}
}

// SubmitJob validates the request, creates the Job row in ENQUEUED, and
// enqueues the generate-content task.
func (a *Admission) SubmitJob(ctx context.Context, req SubmitJobRequest) (string, error) {
	if req.Niche == "" {
		return "", &pipelineerrors.ValidationError{Field: "niche", Message: "must not be empty"}
	}
	tone := domain.Tone(req.Tone)
	if !domain.ValidTones[tone] {
		return "", &pipelineerrors.ValidationError{Field: "tone", Message: "must be one of the recognized tone values"}
	}
	if req.TotalBlogs < 1 || req.TotalBlogs > 50 {
		return "", &pipelineerrors.ValidationError{Field: "total_blogs", Message: "must be between 1 and 50"}
	}
	if req.TargetWordCount < 500 || req.TargetWordCount > 2500 {
		return "", &pipelineerrors.ValidationError{Field: "target_word_count", Message: "must be between 500 and 2500"}
	}
	if req.UserID == "" {
		return "", &pipelineerrors.ValidationError{Field: "user_id", Message: "must not be empty"}
	}

	allocations := make(domain.Allocations, len(req.BlogTypeAllocations))
	for k, v := range req.BlogTypeAllocations {
		allocations[domain.BlogType(k)] = v
	}
	if sum := allocations.Sum(); sum > 0 && sum != req.TotalBlogs {
		return "", &pipelineerrors.ValidationError{Field: "allocations", Message: "sum must equal total_blogs when non-zero"}
	}
	allocations = phaseb.NormalizeAllocations(allocations, req.TotalBlogs)

	jobID := uuid.NewString()
	job := &domain.Job{
		ID:                  jobID,
		Niche:               req.Niche,
		ValuePropositions:   req.ValuePropositions,
		Tone:                tone,
		TotalBlogs:          req.TotalBlogs,
		BlogTypeAllocations: allocations,
		TargetWordCount:     req.TargetWordCount,
		Status:              domain.JobEnqueued,
		Progress:            domain.ProgressEnqueued,
		CreditsCost:         req.CreditsCost,
		UserID:              req.UserID,
		CreatedAt:           time.Now().UTC(),
	}

	if err := a.Jobs.Create(ctx, job); err != nil {
		return "", err
	}

	payload := scheduler.GenerateContentPayload{JobID: jobID}
	if err := a.Queue.Enqueue(ctx, queue.GenerateContent, jobID, payload, 300_000); err != nil {
		return "", err
	}

	return jobID, nil
}

// GetStatus returns the status snapshot from §6, computing
// estimated_seconds_remaining per the spec's formula.
func (a *Admission) GetStatus(ctx context.Context, jobID string) (StatusResponse, error) {
	job, err := a.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return StatusResponse{}, err
	}

	titles := make([]string, 0, len(job.Scenarios))
	for _, s := range job.Scenarios {
		titles = append(titles, s.BlogTopicHeadline)
	}

	resp := StatusResponse{
		Status:                job.Status,
		Progress:              job.Progress,
		TotalContentGenerated: job.TotalContentGenerated,
		TotalBlogs:            job.TotalBlogs,
		GeneratedTitles:       titles,
		ErrorMessage:          job.ErrorMessage,
	}

	switch job.Status {
	case domain.JobResearching:
		resp.EstimatedSecondsRemaining = 60
	case domain.JobGenerating:
		remaining := job.TotalBlogs - job.TotalContentGenerated
		if remaining < 0 {
			remaining = 0
		}
		resp.EstimatedSecondsRemaining = remaining * 10
	}

	return resp, nil
}

// GetContent returns all Content rows plus aggregate stats, permitted
// only when the job has reached a content-bearing terminal state.
func (a *Admission) GetContent(ctx context.Context, jobID string) (ContentResponse, error) {
	job, err := a.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return ContentResponse{}, err
	}
	if job.Status != domain.JobComplete && job.Status != domain.JobPartialComplete {
		return ContentResponse{}, &pipelineerrors.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("content is only available once a job reaches COMPLETE or PARTIAL_COMPLETE, got %s", job.Status),
		}
	}

	items, err := a.Content.FindByJobID(ctx, jobID)
	if err != nil {
		return ContentResponse{}, err
	}

	var totalWords int
	var totalGenMs int64
	for _, item := range items {
		totalWords += item.WordCount
		totalGenMs += item.GenerationTimeMs
	}

	resp := ContentResponse{Items: items, TotalPosts: len(items), TotalWords: totalWords}
	if len(items) > 0 {
		resp.AvgWordCount = totalWords / len(items)
		resp.AvgGenerationTimeMs = totalGenMs / int64(len(items))
	}
	return resp, nil
}

// DeleteJob cancels the job if running and cascades delete of its
// scenarios and content.
func (a *Admission) DeleteJob(ctx context.Context, jobID string) error {
	if err := a.Jobs.Delete(ctx, jobID); err != nil {
		return err
	}
	return a.Content.DeleteByJobID(ctx, jobID)
}
