package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"github.com/smilemakc/contentforge/internal/domain"
	pipelineerrors "github.com/smilemakc/contentforge/internal/domain/errors"
)

// JobRepository implements domain.JobRepository over the shared bun
// connection. Cancellation is a soft delete: Delete sets the cancelled
// flag rather than removing the job row, so a running scheduler can observe it
// via IsCancelled between Phase B items.
type JobRepository struct {
	db *bun.DB
}

func NewJobRepository(store *Store) *JobRepository {
	return &JobRepository{db: store.db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	model := NewJobModel(job)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NewInsert().Model(model).Exec(ctx)
	return err
}

func (r *JobRepository) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	model := new(JobModel)
	err := r.db.NewSelect().Model(model).Where("id = ?", jobID).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, pipelineerrors.NewJobNotFoundError(jobID)
	}
	if err != nil {
		return nil, err
	}

	scenarioModels := make([]ScenarioModel, 0)
	if err := r.db.NewSelect().Model(&scenarioModels).Where("job_id = ?", jobID).Order("scenario_id ASC").Scan(ctx); err != nil {
		return nil, err
	}

	job := model.ToDomain()
	job.Scenarios = make([]domain.Scenario, len(scenarioModels))
	for i, sm := range scenarioModels {
		job.Scenarios[i] = sm.ToDomain()
	}
	return job, nil
}

func (r *JobRepository) UpdateProgress(ctx context.Context, jobID string, progress, totalContentGenerated int) error {
	_, err := r.db.NewUpdate().
		Model((*JobModel)(nil)).
		Set("progress = ?", progress).
		Set("total_content_generated = ?", totalContentGenerated).
		Where("id = ?", jobID).
		Exec(ctx)
	return err
}

func (r *JobRepository) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	q := r.db.NewUpdate().Model((*JobModel)(nil)).Set("status = ?", status).Where("id = ?", jobID)
	switch status {
	case domain.JobResearching:
		q = q.Set("started_at = ?", time.Now().UTC())
	case domain.JobComplete, domain.JobPartialComplete, domain.JobFailed:
		q = q.Set("completed_at = ?", time.Now().UTC())
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *JobRepository) MarkComplete(ctx context.Context, jobID string, status domain.JobStatus, failedCount int) error {
	now := time.Now().UTC()
	_, err := r.db.NewUpdate().
		Model((*JobModel)(nil)).
		Set("status = ?", status).
		Set("progress = ?", domain.ProgressTerminal).
		Set("failed_content_count = ?", failedCount).
		Set("completed_at = ?", now).
		Where("id = ?", jobID).
		Exec(ctx)
	return err
}

func (r *JobRepository) MarkFailed(ctx context.Context, jobID string, errMessage string) error {
	now := time.Now().UTC()
	_, err := r.db.NewUpdate().
		Model((*JobModel)(nil)).
		Set("status = ?", domain.JobFailed).
		Set("progress = ?", domain.ProgressTerminal).
		Set("error_message = ?", errMessage).
		Set("completed_at = ?", now).
		Where("id = ?", jobID).
		Exec(ctx)
	return err
}

// UpdateScenarios persists Phase A's output inside a transaction: the
// scenarios insert and the job's status/progress update land together,
// mirroring the teacher's SaveWorkflow transaction pattern.
func (r *JobRepository) UpdateScenarios(ctx context.Context, jobID string, scenarios []domain.Scenario) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		models := make([]*ScenarioModel, len(scenarios))
		for i, s := range scenarios {
			models[i] = NewScenarioModel(jobID, s)
		}
		if len(models) > 0 {
			if _, err := tx.NewInsert().Model(&models).Exec(ctx); err != nil {
				return err
			}
		}
		_, err := tx.NewUpdate().
			Model((*JobModel)(nil)).
			Set("status = ?", domain.JobResearchComplete).
			Set("progress = ?", domain.ProgressResearchComplete).
			Where("id = ?", jobID).
			Exec(ctx)
		return err
	})
}

func (r *JobRepository) UpdateRefund(ctx context.Context, jobID string, creditsRefunded int) error {
	_, err := r.db.NewUpdate().
		Model((*JobModel)(nil)).
		Set("credits_refunded = ?", creditsRefunded).
		Where("id = ? AND credits_refunded = 0", jobID).
		Exec(ctx)
	return err
}

// Delete marks the job cancelled rather than removing the job row
// outright, so an in-flight scheduler still sees a consistent row when
// it next checks IsCancelled, and cascades a hard delete of the job's
// scenarios in the same transaction (§3 invariant 6: "deleting a Job
// cascades to its Scenarios and Content"). Content lives in a separate
// repository, so its half of the cascade is the caller's
// ContentRepository.DeleteByJobID call.
func (r *JobRepository) Delete(ctx context.Context, jobID string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*ScenarioModel)(nil)).Where("job_id = ?", jobID).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*JobModel)(nil)).
			Set("cancelled = ?", true).
			Where("id = ?", jobID).
			Exec(ctx)
		return err
	})
}

func (r *JobRepository) IsCancelled(ctx context.Context, jobID string) (bool, error) {
	var flag bool
	err := r.db.NewSelect().
		Model((*JobModel)(nil)).
		Column("cancelled").
		Where("id = ?", jobID).
		Scan(ctx, &flag)
	if err == sql.ErrNoRows {
		return false, pipelineerrors.NewJobNotFoundError(jobID)
	}
	return flag, err
}
