package api

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/contentforge/internal/domain"
	pipelineerrors "github.com/smilemakc/contentforge/internal/domain/errors"
	"github.com/smilemakc/contentforge/internal/queue"
)

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*domain.Job)}
}

func (r *fakeJobRepo) Create(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, pipelineerrors.NewJobNotFoundError(jobID)
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) UpdateProgress(ctx context.Context, jobID string, progress, totalContentGenerated int) error {
	return nil
}
func (r *fakeJobRepo) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	return nil
}
func (r *fakeJobRepo) MarkComplete(ctx context.Context, jobID string, status domain.JobStatus, failedCount int) error {
	return nil
}
func (r *fakeJobRepo) MarkFailed(ctx context.Context, jobID string, errMessage string) error {
	return nil
}
func (r *fakeJobRepo) UpdateScenarios(ctx context.Context, jobID string, scenarios []domain.Scenario) error {
	return nil
}
func (r *fakeJobRepo) UpdateRefund(ctx context.Context, jobID string, creditsRefunded int) error {
	return nil
}
func (r *fakeJobRepo) Delete(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, jobID)
	return nil
}
func (r *fakeJobRepo) IsCancelled(ctx context.Context, jobID string) (bool, error) {
	return false, nil
}

type fakeContentRepo struct {
	mu    sync.Mutex
	items []domain.Content
}

func newFakeContentRepo() *fakeContentRepo { return &fakeContentRepo{} }

func (r *fakeContentRepo) Create(ctx context.Context, content *domain.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *content)
	return nil
}

func (r *fakeContentRepo) FindByJobID(ctx context.Context, jobID string) ([]domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Content
	for _, c := range r.items {
		if c.JobID == jobID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContentRepo) DeleteByJobID(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, c := range r.items {
		if c.JobID != jobID {
			kept = append(kept, c)
		}
	}
	r.items = kept
	return nil
}

func newTestAdmission() (*Admission, *fakeJobRepo, *fakeContentRepo) {
	jobs := newFakeJobRepo()
	content := newFakeContentRepo()
	q := queue.New(queue.DefaultConfig())
	return NewAdmission(jobs, content, q), jobs, content
}

func validSubmitRequest() SubmitJobRequest {
	return SubmitJobRequest{
		Niche:           "home fitness",
		Tone:            string(domain.ToneFriendly),
		TotalBlogs:      10,
		TargetWordCount: 1000,
		UserID:          "user-1",
		CreditsCost:     100,
	}
}

func TestSubmitJob_ValidRequestCreatesEnqueuedJob(t *testing.T) {
	admission, jobs, _ := newTestAdmission()
	jobID, err := admission.SubmitJob(context.Background(), validSubmitRequest())
	require.NoError(t, err)

	job, err := jobs.GetByID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobEnqueued, job.Status)
	assert.Equal(t, 10, job.BlogTypeAllocations.Sum())
}

func TestSubmitJob_InvalidToneRejected(t *testing.T) {
	admission, _, _ := newTestAdmission()
	req := validSubmitRequest()
	req.Tone = "sarcastic"
	_, err := admission.SubmitJob(context.Background(), req)
	assert.Error(t, err)
	var valErr *pipelineerrors.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSubmitJob_TotalBlogsOutOfRangeRejected(t *testing.T) {
	admission, _, _ := newTestAdmission()
	req := validSubmitRequest()
	req.TotalBlogs = 0
	_, err := admission.SubmitJob(context.Background(), req)
	assert.Error(t, err)
}

func TestSubmitJob_AllocationSumMismatchRejected(t *testing.T) {
	admission, _, _ := newTestAdmission()
	req := validSubmitRequest()
	req.BlogTypeAllocations = map[string]int{"functional": 3}
	_, err := admission.SubmitJob(context.Background(), req)
	assert.Error(t, err)
}

func TestGetStatus_ReturnsComputedEstimate(t *testing.T) {
	admission, jobs, _ := newTestAdmission()
	require.NoError(t, jobs.Create(context.Background(), &domain.Job{
		ID: "job-1", Status: domain.JobGenerating, TotalBlogs: 10, TotalContentGenerated: 4,
	}))

	status, err := admission.GetStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 60, status.EstimatedSecondsRemaining)
}

func TestGetStatus_UnknownJobReturnsNotFound(t *testing.T) {
	admission, _, _ := newTestAdmission()
	_, err := admission.GetStatus(context.Background(), "missing")
	var notFound *pipelineerrors.JobNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestGetContent_RejectsNonTerminalJob(t *testing.T) {
	admission, jobs, _ := newTestAdmission()
	require.NoError(t, jobs.Create(context.Background(), &domain.Job{ID: "job-1", Status: domain.JobGenerating}))

	_, err := admission.GetContent(context.Background(), "job-1")
	assert.Error(t, err)
}

func TestGetContent_ReturnsAggregateStats(t *testing.T) {
	admission, jobs, content := newTestAdmission()
	require.NoError(t, jobs.Create(context.Background(), &domain.Job{ID: "job-1", Status: domain.JobComplete}))
	require.NoError(t, content.Create(context.Background(), &domain.Content{JobID: "job-1", WordCount: 1000, GenerationTimeMs: 100}))
	require.NoError(t, content.Create(context.Background(), &domain.Content{JobID: "job-1", WordCount: 2000, GenerationTimeMs: 300}))

	resp, err := admission.GetContent(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalPosts)
	assert.Equal(t, 3000, resp.TotalWords)
	assert.Equal(t, 1500, resp.AvgWordCount)
	assert.Equal(t, int64(200), resp.AvgGenerationTimeMs)
}

func TestDeleteJob_CancelsAndCascades(t *testing.T) {
	admission, jobs, content := newTestAdmission()
	require.NoError(t, jobs.Create(context.Background(), &domain.Job{ID: "job-1", Status: domain.JobGenerating}))
	require.NoError(t, content.Create(context.Background(), &domain.Content{JobID: "job-1"}))

	require.NoError(t, admission.DeleteJob(context.Background(), "job-1"))

	items, _ := content.FindByJobID(context.Background(), "job-1")
	assert.Empty(t, items)
}
