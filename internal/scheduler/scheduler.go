// Package scheduler implements the Job Scheduler/Worker from §4.1: it
// consumes queue tasks, drives the Job state machine through Phase A
// and Phase B, persists every transition, and reports progress. Built
// the way the teacher's WorkflowEngine is: a small struct holding
// injected dependencies, no package-level singletons.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/smilemakc/contentforge/internal/cache"
	"github.com/smilemakc/contentforge/internal/creditledger"
	"github.com/smilemakc/contentforge/internal/domain"
	pipelineerrors "github.com/smilemakc/contentforge/internal/domain/errors"
	"github.com/smilemakc/contentforge/internal/phasea"
	"github.com/smilemakc/contentforge/internal/phaseb"
	"github.com/smilemakc/contentforge/internal/platform/logger"
	"github.com/smilemakc/contentforge/internal/queue"
)

// GenerateContentPayload is the Queue task payload for the pipeline's
// one task type (§6).
type GenerateContentPayload struct {
	JobID string
}

// Scheduler drives jobs end to end. One Scheduler instance may run
// multiple worker goroutines via Run, each consuming from the same
// Queue; each worker processes one job at a time (§4.1 "one job per
// worker").
type Scheduler struct {
	Jobs         domain.JobRepository
	Content      domain.ContentRepository
	Queue        *queue.Queue
	PhaseA       *phasea.Executor
	PhaseB       *phaseb.Executor
	Ledger       creditledger.Ledger
	StatusCache  *cache.StatusCache
	RoutingRules []phaseb.CompiledRule
	StallTimeout time.Duration
}

// New builds a Scheduler from its collaborators. statusCache may be nil
// (Redis disabled); routingRules may be empty, in which case plans are
// built by allocation cycling alone (phaseb.BuildPlan).
func New(jobs domain.JobRepository, content domain.ContentRepository, q *queue.Queue, pa *phasea.Executor, pb *phaseb.Executor, ledger creditledger.Ledger, statusCache *cache.StatusCache, routingRules []phaseb.CompiledRule, stallTimeout time.Duration) *Scheduler {
	return &Scheduler{Jobs: jobs, Content: content, Queue: q, PhaseA: pa, PhaseB: pb, Ledger: ledger, StatusCache: statusCache, RoutingRules: routingRules, StallTimeout: stallTimeout}
}

// Run pulls one task at a time from the queue and processes it until
// ctx is cancelled. Call Run from its own goroutine per worker; the
// scheduler itself imposes no further concurrency on top of the queue.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.Default().With("component", "scheduler")
	for {
		handle, err := s.Queue.Consume(ctx)
		if err != nil {
			log.Info("worker stopping", "reason", err.Error())
			return
		}

		payload, ok := handle.Task.Payload.(GenerateContentPayload)
		if !ok {
			log.Error("dropping task with unrecognized payload", nil, "job_id", handle.Task.JobID)
			handle.Ack()
			continue
		}

		if err := s.processJob(ctx, payload.JobID); err != nil {
			log.Error("job processing failed, nacking for retry", err, "job_id", payload.JobID)
			handle.Nack()
			continue
		}
		handle.Ack()
	}
}

// processJob executes the full ENQUEUED -> terminal state machine for
// one job (§4.1).
func (s *Scheduler) processJob(ctx context.Context, jobID string) error {
	log := logger.Default().With("job_id", jobID)

	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	if err := s.Jobs.UpdateStatus(ctx, jobID, domain.JobResearching); err != nil {
		return err
	}
	if err := s.Jobs.UpdateProgress(ctx, jobID, domain.ProgressEnqueued, 0); err != nil {
		return err
	}
	s.StatusCache.Invalidate(ctx, jobID)

	scenarios, err := s.PhaseA.Run(ctx, phasea.Request{
		JobID:               job.ID,
		Niche:               job.Niche,
		ValuePropositions:   job.ValuePropositions,
		Tone:                job.Tone,
		TotalBlogs:          job.TotalBlogs,
		BlogTypeAllocations: job.BlogTypeAllocations,
	})
	if err != nil {
		log.Warn("phase a failed", "error", err.Error())
		markErr := s.Jobs.MarkFailed(ctx, jobID, err.Error())
		s.StatusCache.Invalidate(ctx, jobID)
		return markErr
	}

	if err := s.Jobs.UpdateScenarios(ctx, jobID, scenarios); err != nil {
		return err
	}
	s.StatusCache.Invalidate(ctx, jobID)

	if cancelled, cErr := s.Jobs.IsCancelled(ctx, jobID); cErr == nil && cancelled {
		log.Info("job cancelled before phase b started")
		return nil
	}

	if err := s.Jobs.UpdateStatus(ctx, jobID, domain.JobGenerating); err != nil {
		return err
	}
	if err := s.Jobs.UpdateProgress(ctx, jobID, domain.ProgressGeneratingStart, 0); err != nil {
		return err
	}
	s.StatusCache.Invalidate(ctx, jobID)

	var plan []phaseb.WorkItem
	if len(s.RoutingRules) > 0 {
		plan = phaseb.BuildPlanWithRouting(job.BlogTypeAllocations, job.TotalBlogs, scenarios, s.RoutingRules)
	} else {
		plan = phaseb.BuildPlan(job.BlogTypeAllocations, job.TotalBlogs, scenarios)
	}
	total := len(plan)

	successes, failures := s.PhaseB.Run(
		ctx,
		jobID,
		plan,
		job.Niche,
		job.ValuePropositions,
		job.Tone,
		job.TargetWordCount,
		func(content domain.Content) {
			if cErr := s.Content.Create(ctx, &content); cErr != nil {
				log.Error("failed to persist content row", cErr, "scenario_id", content.ScenarioID)
			}
		},
		func(completed, n int) {
			progress := domain.ProgressGeneratingStart
			if n > 0 {
				progress += (domain.ProgressGeneratingMax - domain.ProgressGeneratingStart) * completed / n
			}
			if uErr := s.Jobs.UpdateProgress(ctx, jobID, progress, completed); uErr != nil {
				log.Error("failed to persist progress", uErr)
			}
			s.StatusCache.Invalidate(ctx, jobID)
		},
		func() bool {
			cancelled, cErr := s.Jobs.IsCancelled(ctx, jobID)
			return cErr == nil && cancelled
		},
	)

	status := phaseb.TerminalStatus(successes, total)
	if err := s.Jobs.MarkComplete(ctx, jobID, status, failures); err != nil {
		return err
	}
	s.StatusCache.Invalidate(ctx, jobID)

	if failures > 0 {
		refund := phaseb.Refund(job.CreditsCost, job.TotalBlogs, failures)
		if refund > 0 {
			if err := s.Jobs.UpdateRefund(ctx, jobID, refund); err != nil {
				log.Error("failed to record refund", err)
			} else if err := s.Ledger.AddCredits(ctx, job.UserID, refund, creditledger.SourcePhaseBRefund, jobID,
				fmt.Sprintf("partial refund: %d/%d articles failed", failures, total)); err != nil {
				log.Error("failed to credit ledger for refund", err)
			}
		}
	}

	log.Info("job finished", "status", string(status), "successes", successes, "failures", failures)
	return nil
}

// ReapStale scans for jobs stuck in RESEARCHING or GENERATING whose
// queue task has missed its heartbeat window. A stalled task is first
// resurrected (requeued for another attempt) up to Config.MaxStalls
// times; only once that budget is exhausted is the job abandoned and
// marked FAILED. This is the stale/abandoned job reaping feature (§4.1/
// §5: "resurrected or abandoned per the retry policy, max 2 stalls").
func (s *Scheduler) ReapStale(ctx context.Context) {
	log := logger.Default().With("component", "reaper")
	stalledJobIDs := s.Queue.StalledJobIDs()
	for _, jobID := range stalledJobIDs {
		if s.Queue.ResurrectStalled(jobID) {
			log.Warn("resurrected stalled job for another attempt", "job_id", jobID)
			continue
		}

		job, err := s.Jobs.GetByID(ctx, jobID)
		if err != nil {
			if _, ok := err.(*pipelineerrors.JobNotFoundError); ok {
				continue
			}
			log.Error("reaper failed to load job", err, "job_id", jobID)
			continue
		}
		if job.Status.Terminal() {
			continue
		}
		log.Warn("reaping stalled job, stall budget exhausted", "job_id", jobID, "status", string(job.Status))
		if err := s.Jobs.MarkFailed(ctx, jobID, "STALLED: no progress within heartbeat window, job abandoned"); err != nil {
			log.Error("reaper failed to mark job failed", err, "job_id", jobID)
		}
		s.StatusCache.Invalidate(ctx, jobID)
	}
}

// RunReaper runs ReapStale on an interval until ctx is cancelled.
func (s *Scheduler) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ReapStale(ctx)
		}
	}
}
