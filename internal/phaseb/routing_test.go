package phaseb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smilemakc/contentforge/internal/domain"
)

func TestCompileRules_DropsUnparseable(t *testing.T) {
	rules := []RoutingRule{
		{BlogType: domain.BlogCommercial, When: `PersonaArchetype contains "Buyer"`},
		{BlogType: domain.BlogFunctional, When: `this is not valid expr (((`},
	}
	compiled := CompileRules(rules)
	assert.Len(t, compiled, 1)
	assert.Equal(t, domain.BlogCommercial, compiled[0].BlogType)
}

func TestRoute_FirstMatchWins(t *testing.T) {
	compiled := CompileRules(DefaultRules())
	s := domain.Scenario{PersonaArchetype: "Ready to Purchase Buyer"}
	assert.Equal(t, domain.BlogCommercial, Route(compiled, s, domain.BlogInformational))
}

func TestRoute_NoMatchReturnsFallback(t *testing.T) {
	compiled := CompileRules(DefaultRules())
	s := domain.Scenario{PersonaArchetype: "Casual Browser"}
	assert.Equal(t, domain.BlogInformational, Route(compiled, s, domain.BlogInformational))
}

func TestBuildPlanWithRouting_OverridesAllocationType(t *testing.T) {
	allocations := domain.Allocations{domain.BlogInformational: 2}
	scenario := domain.Scenario{ScenarioID: 1, PersonaArchetype: "Ready to Purchase Buyer"}
	rules := CompileRules(DefaultRules())

	plan := BuildPlanWithRouting(allocations, 2, []domain.Scenario{scenario}, rules)
	assert.Len(t, plan, 2)
	for _, item := range plan {
		assert.Equal(t, domain.BlogCommercial, item.BlogType)
	}
}

func TestBuildPlanWithRouting_NoRulesKeepsAllocationType(t *testing.T) {
	allocations := domain.Allocations{domain.BlogInformational: 1}
	scenario := domain.Scenario{ScenarioID: 1, PersonaArchetype: "Ready to Purchase Buyer"}

	plan := BuildPlanWithRouting(allocations, 1, []domain.Scenario{scenario}, nil)
	assert.Equal(t, domain.BlogInformational, plan[0].BlogType)
}
