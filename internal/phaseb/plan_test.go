package phaseb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smilemakc/contentforge/internal/domain"
)

func scenarios(n int) []domain.Scenario {
	out := make([]domain.Scenario, n)
	for i := range out {
		out[i] = domain.Scenario{ScenarioID: i + 1, PersonaName: "persona"}
	}
	return out
}

func TestNormalizeAllocations_AllZeroDistributesEvenly(t *testing.T) {
	normalized := NormalizeAllocations(domain.Allocations{}, 10)
	assert.Equal(t, 10, normalized.Sum())
	for _, bt := range domain.BlogTypeOrder {
		assert.GreaterOrEqual(t, normalized[bt], 2)
	}
}

func TestNormalizeAllocations_ExcessReducedFromLargest(t *testing.T) {
	allocations := domain.Allocations{
		domain.BlogFunctional:    10,
		domain.BlogTransactional: 2,
	}
	normalized := NormalizeAllocations(allocations, 8)
	assert.Equal(t, 8, normalized.Sum())
	assert.Equal(t, 6, normalized[domain.BlogFunctional])
	assert.Equal(t, 2, normalized[domain.BlogTransactional])
}

func TestNormalizeAllocations_ShortfallDistributedRoundRobin(t *testing.T) {
	allocations := domain.Allocations{domain.BlogFunctional: 2}
	normalized := NormalizeAllocations(allocations, 5)
	assert.Equal(t, 5, normalized.Sum())
	assert.Equal(t, 3, normalized[domain.BlogFunctional])
	assert.Equal(t, 1, normalized[domain.BlogTransactional])
	assert.Equal(t, 1, normalized[domain.BlogCommercial])
}

func TestBuildPlan_CyclesScenariosAndTypes(t *testing.T) {
	allocations := domain.Allocations{
		domain.BlogFunctional:    2,
		domain.BlogTransactional: 2,
	}
	plan := BuildPlan(allocations, 4, scenarios(2))
	assert.Len(t, plan, 4)
	assert.Equal(t, domain.BlogFunctional, plan[0].BlogType)
	assert.Equal(t, domain.BlogFunctional, plan[1].BlogType)
	assert.Equal(t, domain.BlogTransactional, plan[2].BlogType)
	assert.Equal(t, 1, plan[0].SourceScenarioID)
	assert.Equal(t, 2, plan[1].SourceScenarioID)
	assert.Equal(t, 1, plan[2].SourceScenarioID)
}

func TestBuildPlan_EmptyScenariosYieldsNoPlan(t *testing.T) {
	plan := BuildPlan(domain.Allocations{domain.BlogFunctional: 3}, 3, nil)
	assert.Nil(t, plan)
}
