// Package phaseb implements the Content Executor (§4.4): concurrent,
// rate-limited, retried LLM calls, one per planned work item, each
// persisted as a Content row regardless of outcome.
package phaseb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smilemakc/contentforge/internal/domain"
	pipelineerrors "github.com/smilemakc/contentforge/internal/domain/errors"
	"github.com/smilemakc/contentforge/internal/llm"
	"github.com/smilemakc/contentforge/internal/platform/logger"
	"github.com/smilemakc/contentforge/internal/queue"
	"github.com/smilemakc/contentforge/internal/retrypolicy"

	"github.com/google/uuid"
)

// PromptBuilder renders a generation prompt from a single work item plus
// job-level context. Prompt wording is an external collaborator (§1).
type PromptBuilder func(item WorkItem, niche string, valuePropositions []string, tone domain.Tone, targetWordCount int) string

// ProgressFunc is invoked after every completed item with the running
// completed count, so the caller can persist progress (§4.4:
// "progress = 25 + floor(70 * completed/N)").
type ProgressFunc func(completed, total int)

// Executor runs Phase B for a job.
type Executor struct {
	Gateway       llm.Gateway
	RateLimiter   *queue.TokenBucket
	PromptBuilder PromptBuilder
	Concurrency   int
	Retries       int
}

// New builds a Phase B Executor.
func New(gateway llm.Gateway, rateLimiter *queue.TokenBucket, promptBuilder PromptBuilder, concurrency, retries int) *Executor {
	return &Executor{Gateway: gateway, RateLimiter: rateLimiter, PromptBuilder: promptBuilder, Concurrency: concurrency, Retries: retries}
}

// CancelCheck is polled before each work item is dispatched; returning
// true aborts the remaining fan-out without starting new items (§4.1
// cancellation contract).
type CancelCheck func() bool

// Run executes the plan with up to e.Concurrency items in flight at
// once, applying the global rate limiter before every LLM call. Each
// completed item is persisted via persist, and progress is reported via
// onProgress. Run returns no error: individual item failures become
// FAILED Content rows and are counted in the returned failures.
func (e *Executor) Run(
	ctx context.Context,
	jobID string,
	plan []WorkItem,
	niche string,
	valuePropositions []string,
	tone domain.Tone,
	targetWordCount int,
	persist func(domain.Content),
	onProgress ProgressFunc,
	cancelled CancelCheck,
) (successes, failures int) {
	n := len(plan)
	if n == 0 {
		return 0, 0
	}

	sem := make(chan struct{}, e.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0
	log := logger.Default().With("job_id", jobID)

dispatch:
	for _, item := range plan {
		if cancelled != nil && cancelled() {
			log.Info("phase b cancelled before dispatching remaining items")
			break
		}

		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(item WorkItem) {
			defer wg.Done()
			defer func() { <-sem }()

			content := e.runItem(ctx, jobID, item, niche, valuePropositions, tone, targetWordCount)
			persist(content)

			mu.Lock()
			completed++
			if content.Status == domain.ContentOK {
				successes++
			} else {
				failures++
			}
			done := completed
			mu.Unlock()

			if onProgress != nil {
				onProgress(done, n)
			}
		}(item)
	}

	wg.Wait()
	return successes, failures
}

// runItem executes a single work item through the retry policy and
// returns a Content row reflecting the outcome (never an error — by
// contract a failed item still produces a FAILED row).
func (e *Executor) runItem(
	ctx context.Context,
	jobID string,
	item WorkItem,
	niche string,
	valuePropositions []string,
	tone domain.Tone,
	targetWordCount int,
) domain.Content {
	prompt := e.PromptBuilder(item, niche, valuePropositions, tone, targetWordCount)

	start := time.Now()
	var body string
	var modelUsed string

	result, err := retrypolicy.Execute(ctx, retrypolicy.PhaseBPolicy(e.Retries), true, func(attempt int) error {
		if acqErr := e.RateLimiter.Acquire(ctx); acqErr != nil {
			return acqErr
		}

		text, callErr := e.Gateway.Generate(ctx, prompt, llm.Options{Temperature: 0.8, MaxTokens: 4096})
		if callErr != nil {
			return callErr
		}
		wc := WordCount(text)
		if wc < AcceptanceFloorWords {
			if attempt < e.Retries {
				return pipelineerrors.NewPhaseBItemError(jobID, fmt.Sprint(item.ScenarioID), "UNDERFILLED", attempt,
					fmt.Sprintf("word count %d below floor %d, retrying", wc, AcceptanceFloorWords), nil)
			}
			logger.Default().With("job_id", jobID).Warn("accepting short article on final attempt",
				"scenario_id", item.ScenarioID, "word_count", wc, "floor", AcceptanceFloorWords)
		}
		body = text
		modelUsed = "llm-gateway"
		return nil
	})

	elapsed := time.Since(start)

	if err != nil || body == "" {
		return domain.Content{
			ID:               uuid.NewString(),
			JobID:            jobID,
			ScenarioID:       item.ScenarioID,
			SourceScenarioID: item.SourceScenarioID,
			BlogType:         item.BlogType,
			GenerationTimeMs: elapsed.Milliseconds(),
			Status:           domain.ContentFailed,
			ErrorMessage:     errMessage(err, result.Attempts),
		}
	}

	if !HasFAQSection(body) {
		body = AppendFallbackFAQ(body, item.Source, valuePropositions)
	}
	body = InlineImages(body, item.Source.ImageURLs)

	title := item.Source.BlogTopicHeadline
	return domain.Content{
		ID:               uuid.NewString(),
		JobID:            jobID,
		ScenarioID:       item.ScenarioID,
		SourceScenarioID: item.SourceScenarioID,
		BlogTitle:        title,
		PersonaArchetype: item.Source.PersonaArchetype,
		Keywords:         item.Source.TargetKeywords,
		BlogContent:      body,
		WordCount:        WordCount(body),
		Slug:             Slugify(title),
		MetaDescription:  metaDescription(item.Source),
		BlogType:         item.BlogType,
		ImageURLs:        item.Source.ImageURLs,
		GenerationTimeMs: elapsed.Milliseconds(),
		ModelUsed:        modelUsed,
		Status:           domain.ContentOK,
	}
}

func metaDescription(s domain.Scenario) string {
	desc := s.PainPointDetail
	const maxLen = 160
	if len(desc) > maxLen {
		desc = desc[:maxLen]
	}
	return desc
}

func errMessage(err error, attempts int) string {
	if err == nil {
		return fmt.Sprintf("exhausted %d attempts with no successful response", attempts)
	}
	return fmt.Sprintf("attempt %d: %s", attempts, err.Error())
}

// Refund computes the pro-rata credit refund from §4.4: floor((cost/N)*failures).
func Refund(creditsCost, totalBlogs, failedCount int) int {
	if totalBlogs == 0 {
		return 0
	}
	return (creditsCost * failedCount) / totalBlogs
}

// TerminalStatus derives the job's terminal status from Phase B's
// outcome (§4.4).
func TerminalStatus(successes, total int) domain.JobStatus {
	switch {
	case successes == total:
		return domain.JobComplete
	case successes == 0:
		return domain.JobFailed
	default:
		return domain.JobPartialComplete
	}
}
