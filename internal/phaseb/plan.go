package phaseb

import (
	"github.com/smilemakc/contentforge/internal/domain"
)

// WorkItem is one planned article: a position in the flat N-length
// sequence, its assigned blog type, and the scenario it is seeded from
// (§4.4 "Planning").
type WorkItem struct {
	ScenarioID       int
	SourceScenarioID int
	BlogType         domain.BlogType
	Source           domain.Scenario
}

// NormalizeAllocations applies §4.4's normalization rules: if every
// category is zero, distribute N evenly with any remainder spread to the
// first categories; if the sum exceeds N, reduce from the largest
// category first; if it falls short, distribute the remainder
// round-robin in canonical category order.
func NormalizeAllocations(allocations domain.Allocations, n int) domain.Allocations {
	normalized := make(domain.Allocations, len(domain.BlogTypeOrder))
	for _, bt := range domain.BlogTypeOrder {
		normalized[bt] = allocations[bt]
	}

	sum := normalized.Sum()

	if sum == 0 {
		base := n / len(domain.BlogTypeOrder)
		remainder := n % len(domain.BlogTypeOrder)
		for i, bt := range domain.BlogTypeOrder {
			count := base
			if i < remainder {
				count++
			}
			normalized[bt] = count
		}
		return normalized
	}

	if sum > n {
		excess := sum - n
		for excess > 0 {
			largest := largestCategory(normalized)
			if normalized[largest] == 0 {
				break
			}
			normalized[largest]--
			excess--
		}
		return normalized
	}

	if sum < n {
		shortfall := n - sum
		i := 0
		for shortfall > 0 {
			bt := domain.BlogTypeOrder[i%len(domain.BlogTypeOrder)]
			normalized[bt]++
			shortfall--
			i++
		}
	}

	return normalized
}

// largestCategory returns the category with the highest count, breaking
// ties by canonical order (first category wins).
func largestCategory(allocations domain.Allocations) domain.BlogType {
	best := domain.BlogTypeOrder[0]
	bestCount := allocations[best]
	for _, bt := range domain.BlogTypeOrder {
		if allocations[bt] > bestCount {
			best = bt
			bestCount = allocations[bt]
		}
	}
	return best
}

// BuildPlan enumerates the normalized allocation as a flat ordered
// sequence of N work items. Item i gets blog_type from the normalized
// allocation (walked in canonical category order) and source scenario
// scenarios[i mod len(scenarios)].
func BuildPlan(allocations domain.Allocations, n int, scenarios []domain.Scenario) []WorkItem {
	if len(scenarios) == 0 {
		return nil
	}

	normalized := NormalizeAllocations(allocations, n)

	var typeSequence []domain.BlogType
	for _, bt := range domain.BlogTypeOrder {
		for i := 0; i < normalized[bt]; i++ {
			typeSequence = append(typeSequence, bt)
		}
	}
	plan := make([]WorkItem, 0, n)
	for i := 0; i < n && i < len(typeSequence); i++ {
		source := scenarios[i%len(scenarios)]
		plan = append(plan, WorkItem{
			ScenarioID:       i + 1,
			SourceScenarioID: source.ScenarioID,
			BlogType:         typeSequence[i],
			Source:           source,
		})
	}
	return plan
}
