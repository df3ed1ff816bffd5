// Package phasea implements the Research Executor (§4.2): a single
// grounded LLM call that yields the validated scenarios Phase B fans out
// over.
package phasea

import (
	"context"
	"fmt"

	"github.com/smilemakc/contentforge/internal/domain"
	pipelineerrors "github.com/smilemakc/contentforge/internal/domain/errors"
	"github.com/smilemakc/contentforge/internal/imageadapter"
	"github.com/smilemakc/contentforge/internal/jsonextract"
	"github.com/smilemakc/contentforge/internal/llm"
	"github.com/smilemakc/contentforge/internal/retrypolicy"
)

// MinimumSurvivingScenarios is the UNDERFILLED floor from §4.1/§4.2/§8:
// fewer than 15 valid scenarios fails the job outright.
const MinimumSurvivingScenarios = 15

// RequestedBatchSize is the soft ceiling the model is asked for,
// independent of the caller's N (§4.2 design note, §9 open question).
const RequestedBatchSize = 30

// ImageFetchScenarioCount is k from §4.2 step 8 / §9: only the first k
// scenarios get best-effort image lookups.
const ImageFetchScenarioCount = 2

// Request carries the inputs to Research (§4.2 "Inputs").
type Request struct {
	JobID               string
	Niche               string
	ValuePropositions   []string
	Tone                domain.Tone
	TotalBlogs          int
	BlogTypeAllocations domain.Allocations
}

// PromptBuilder renders the research prompt from Request. Prompt wording
// itself is an external collaborator per §1; only its signature lives
// in the core.
type PromptBuilder func(req Request, batchSize int) string

// Executor runs Phase A.
type Executor struct {
	Gateway       llm.Gateway
	Images        imageadapter.Adapter
	PromptBuilder PromptBuilder
	DebugDir      string
	Retries       int
}

// New builds a Phase A Executor with the given collaborators.
func New(gateway llm.Gateway, images imageadapter.Adapter, promptBuilder PromptBuilder, debugDir string, retries int) *Executor {
	return &Executor{Gateway: gateway, Images: images, PromptBuilder: promptBuilder, DebugDir: debugDir, Retries: retries}
}

// Run executes Phase A end to end: prompt, invoke, extract, filter,
// default-fill, and best-effort image lookup. Returns the validated
// scenario sequence, or a *errors.PhaseAError on failure.
func (e *Executor) Run(ctx context.Context, req Request) ([]domain.Scenario, error) {
	prompt := e.PromptBuilder(req, RequestedBatchSize)

	var raw string
	_, err := retrypolicy.Execute(ctx, retrypolicy.PhaseAPolicy(e.Retries), false, func(attempt int) error {
		text, callErr := e.Gateway.Research(ctx, prompt, llm.Options{
			Temperature:    0.7,
			MaxTokens:      4096,
			GroundedSearch: true,
		})
		if callErr != nil {
			return callErr
		}
		raw = text
		return nil
	})
	if err != nil {
		return nil, classifyGatewayFailure(req.JobID, err)
	}

	if raw == "" {
		return nil, pipelineerrors.NewPhaseAError(req.JobID, pipelineerrors.PhaseAEmptyResponse, "empty response from grounded research call", nil)
	}

	tree, err := jsonextract.Extract(raw, "scenarios", e.DebugDir)
	if err != nil {
		return nil, pipelineerrors.NewPhaseAError(req.JobID, pipelineerrors.PhaseAUnparseableJSON, err.Error(), err)
	}

	rawScenarios, ok := tree["scenarios"].([]interface{})
	if !ok || len(rawScenarios) == 0 {
		return nil, pipelineerrors.NewPhaseAError(req.JobID, pipelineerrors.PhaseAUnparseableJSON, "response has no non-empty 'scenarios' sequence", nil)
	}

	surviving := make([]domain.Scenario, 0, len(rawScenarios))
	for i, item := range rawScenarios {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		s := projectScenario(m, req.Niche, i)
		if s.MeetsQualityFloor() {
			surviving = append(surviving, s)
		}
	}

	if len(surviving) < MinimumSurvivingScenarios {
		return nil, pipelineerrors.NewPhaseAError(req.JobID, pipelineerrors.PhaseAUnderfilled,
			fmt.Sprintf("only %d scenarios survived validation, need >= %d", len(surviving), MinimumSurvivingScenarios), nil)
	}

	// The executor composes the final plan in Phase B by cycling
	// scenarios (§4.2 design note), so it never needs more than
	// min(surviving, RequestedBatchSize) here regardless of N.
	if len(surviving) > RequestedBatchSize {
		surviving = surviving[:RequestedBatchSize]
	}

	for i := range surviving {
		surviving[i].ScenarioID = i + 1
		if i < ImageFetchScenarioCount {
			surviving[i].ImageURLs = e.Images.FetchImages(ctx, surviving[i].TargetKeywords, surviving[i].PersonaName, 2)
		}
	}

	return surviving, nil
}

// projectScenario turns a generic JSON tree node into a typed Scenario,
// filling missing optional fields with the safe defaults from §4.2
// step 7. index is the scenario's position in the raw response, used to
// default persona_name to "Persona <i>" when the model omits it.
func projectScenario(m map[string]interface{}, niche string, index int) domain.Scenario {
	s := domain.Scenario{
		PersonaName:       stringOr(m["persona_name"], fmt.Sprintf("Persona %d", index+1)),
		PersonaArchetype:  stringOr(m["persona_archetype"], "Professional User"),
		PainPointDetail:   stringOr(m["pain_point_detail"], ""),
		GoalFocus:         stringOr(m["goal_focus"], ""),
		BlogTopicHeadline: stringOr(m["blog_topic_headline"], ""),
		RequiredWordCount: intOr(m["required_word_count"], 1000),
		ResearchInsight:   stringOr(m["research_insight"], ""),
	}

	if keywords, ok := m["target_keywords"].([]interface{}); ok && len(keywords) > 0 {
		for _, k := range keywords {
			if str, ok := k.(string); ok {
				s.TargetKeywords = append(s.TargetKeywords, str)
			}
		}
	}
	if len(s.TargetKeywords) == 0 {
		s.TargetKeywords = []string{niche, "solution", "guide"}
	}

	return s
}

func stringOr(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func intOr(v interface{}, fallback int) int {
	if f, ok := v.(float64); ok && f > 0 {
		return int(f)
	}
	return fallback
}

func classifyGatewayFailure(jobID string, err error) *pipelineerrors.PhaseAError {
	var gwErr *llm.Error
	if e, ok := err.(*llm.Error); ok {
		gwErr = e
	}
	if gwErr == nil {
		return pipelineerrors.NewPhaseAError(jobID, pipelineerrors.PhaseAEmptyResponse, err.Error(), err)
	}
	switch gwErr.Kind {
	case llm.ErrBlocked:
		return pipelineerrors.NewPhaseAError(jobID, pipelineerrors.PhaseAPromptBlocked, gwErr.Reason, err)
	case llm.ErrRateLimited:
		return pipelineerrors.NewPhaseAError(jobID, pipelineerrors.PhaseARateLimited, gwErr.Reason, err)
	default:
		return pipelineerrors.NewPhaseAError(jobID, pipelineerrors.PhaseATransient, gwErr.Reason, err)
	}
}
