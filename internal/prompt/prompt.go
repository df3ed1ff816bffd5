// Package prompt builds the two LLM prompts the pipeline issues: the
// Phase A grounded research prompt and the Phase B per-article generation
// prompt. Wording lives here rather than in phasea/phaseb so the core
// executors stay agnostic to prompt text (§1).
package prompt

import (
	"fmt"
	"strings"

	"github.com/smilemakc/contentforge/internal/domain"
	"github.com/smilemakc/contentforge/internal/phasea"
	"github.com/smilemakc/contentforge/internal/phaseb"
)

// BuildResearchPrompt renders the Phase A prompt: it asks the model for a
// JSON object with a top-level "scenarios" array, one entry per persona,
// sized to batchSize.
func BuildResearchPrompt(req phasea.Request, batchSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are researching content angles for a blog in the %q niche.\n", req.Niche)
	if len(req.ValuePropositions) > 0 {
		fmt.Fprintf(&b, "The product's value propositions are: %s.\n", strings.Join(req.ValuePropositions, "; "))
	}
	fmt.Fprintf(&b, "Write in a %s tone throughout.\n\n", req.Tone)
	fmt.Fprintf(&b, "Using web search, identify %d distinct reader personas and the blog topic that would reach each of them. ", batchSize)
	b.WriteString("For every persona, return one scenario object with these fields: ")
	b.WriteString("persona_name, persona_archetype, pain_point_detail (>=20 chars), goal_focus (>=10 chars), ")
	b.WriteString("blog_topic_headline (>=10 chars), target_keywords (array of strings), required_word_count (integer), ")
	b.WriteString("research_insight (a specific fact or statistic found via search).\n\n")
	b.WriteString("Respond with a single JSON object of the form {\"scenarios\": [...]} and nothing else.")
	return b.String()
}

// BuildGenerationPrompt renders the Phase B prompt for one work item: a
// full article brief for the given scenario and blog type.
func BuildGenerationPrompt(item phaseb.WorkItem, niche string, valuePropositions []string, tone domain.Tone, targetWordCount int) string {
	s := item.Source
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s-style blog article in the %q niche for the persona %q (%s).\n",
		item.BlogType, niche, s.PersonaName, s.PersonaArchetype)
	fmt.Fprintf(&b, "Headline: %s\n", s.BlogTopicHeadline)
	fmt.Fprintf(&b, "Pain point: %s\n", s.PainPointDetail)
	fmt.Fprintf(&b, "Goal: %s\n", s.GoalFocus)
	if s.ResearchInsight != "" {
		fmt.Fprintf(&b, "Incorporate this research insight naturally: %s\n", s.ResearchInsight)
	}
	if len(valuePropositions) > 0 {
		fmt.Fprintf(&b, "Where relevant, connect the content to these value propositions: %s\n", strings.Join(valuePropositions, "; "))
	}
	if len(s.TargetKeywords) > 0 {
		fmt.Fprintf(&b, "Naturally include these keywords: %s\n", strings.Join(s.TargetKeywords, ", "))
	}
	fmt.Fprintf(&b, "Tone: %s. Target length: at least %d words.\n", tone, targetWordCount)
	b.WriteString("Include an FAQ section near the end addressing two or three likely reader questions.\n")
	b.WriteString("Write the article body only, in Markdown, with a single top-level heading.")
	return b.String()
}
