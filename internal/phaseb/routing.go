package phaseb

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/smilemakc/contentforge/internal/domain"
)

// RoutingRule is an expr-lang boolean expression evaluated against a
// scenario; the first matching rule's BlogType overrides the
// allocation-derived type for that scenario. This mirrors the teacher's
// conditional-edge quality router, repurposed here for blog-type
// routing instead of workflow-edge selection.
type RoutingRule struct {
	BlogType domain.BlogType
	When     string
}

// scenarioEnv is the variable set a RoutingRule's expression may
// reference.
type scenarioEnv struct {
	PersonaArchetype string
	RequiredWordCount int
	TargetKeywords   []string
}

// CompiledRule is a RoutingRule with its expression pre-parsed, so a
// plan built from many scenarios does not recompile the same
// expression per item.
type CompiledRule struct {
	BlogType domain.BlogType
	Program  *vm.Program
}

// CompileRules parses every rule's expression once. A rule with an
// unparseable expression is dropped; routing degrades to the
// allocation-only assignment rather than failing the whole plan.
func CompileRules(rules []RoutingRule) []CompiledRule {
	compiled := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		program, err := expr.Compile(r.When, expr.Env(scenarioEnv{}), expr.AsBool())
		if err != nil {
			continue
		}
		compiled = append(compiled, CompiledRule{BlogType: r.BlogType, Program: program})
	}
	return compiled
}

// Route evaluates compiled rules in order against a scenario, returning
// the first matching rule's BlogType. If no rule matches (or none are
// configured), fallback is returned unchanged.
func Route(rules []CompiledRule, s domain.Scenario, fallback domain.BlogType) domain.BlogType {
	env := scenarioEnv{
		PersonaArchetype:  s.PersonaArchetype,
		RequiredWordCount: s.RequiredWordCount,
		TargetKeywords:    s.TargetKeywords,
	}
	for _, rule := range rules {
		out, err := expr.Run(rule.Program, env)
		if err != nil {
			continue
		}
		if matched, ok := out.(bool); ok && matched {
			return rule.BlogType
		}
	}
	return fallback
}

// DefaultRules expresses the spec's implicit category hints as
// expr-lang conditions: a scenario whose persona archetype reads as
// purchase-ready routes commercial/transactional ahead of the plain
// allocation cycling, when the caller opts in via BuildPlanWithRouting.
func DefaultRules() []RoutingRule {
	return []RoutingRule{
		{BlogType: domain.BlogCommercial, When: `PersonaArchetype contains "Buyer" or PersonaArchetype contains "Decision"`},
		{BlogType: domain.BlogTransactional, When: `PersonaArchetype contains "Ready to Purchase"`},
	}
}

// BuildPlanWithRouting behaves like BuildPlan but lets a compiled rule
// set override the allocation-cycling blog type per scenario, before
// falling back to the normalized allocation sequence. Used when a
// caller configures category routing rules (§EXPANSION-B); BuildPlan
// remains the default, rule-free path.
func BuildPlanWithRouting(allocations domain.Allocations, n int, scenarios []domain.Scenario, rules []CompiledRule) []WorkItem {
	plan := BuildPlan(allocations, n, scenarios)
	if len(rules) == 0 {
		return plan
	}
	for i := range plan {
		plan[i].BlogType = Route(rules, plan[i].Source, plan[i].BlogType)
	}
	return plan
}
