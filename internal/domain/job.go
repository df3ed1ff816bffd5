// Package domain holds the pipeline's core entities: Job, Scenario, and
// Content, plus the repository interfaces that persist them.
package domain

import "time"

// JobStatus is the job's position in its state machine (§4.1).
type JobStatus string

const (
	JobEnqueued         JobStatus = "ENQUEUED"
	JobResearching      JobStatus = "RESEARCHING"
	JobResearchComplete JobStatus = "RESEARCH_COMPLETE"
	JobGenerating       JobStatus = "GENERATING"
	JobComplete         JobStatus = "COMPLETE"
	JobPartialComplete  JobStatus = "PARTIAL_COMPLETE"
	JobFailed           JobStatus = "FAILED"
)

// Terminal reports whether a job in this status will never transition again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobComplete, JobPartialComplete, JobFailed:
		return true
	default:
		return false
	}
}

// Tone is the requested voice for the generated articles.
type Tone string

const (
	ToneProfessional   Tone = "professional"
	ToneConversational Tone = "conversational"
	ToneAuthoritative  Tone = "authoritative"
	ToneFriendly       Tone = "friendly"
	ToneTechnical      Tone = "technical"
	ToneCasual         Tone = "casual"
)

// ValidTones is the closed set of accepted tone values.
var ValidTones = map[Tone]bool{
	ToneProfessional:   true,
	ToneConversational: true,
	ToneAuthoritative:  true,
	ToneFriendly:       true,
	ToneTechnical:      true,
	ToneCasual:         true,
}

// BlogType is one of the four article categories the allocation is split
// across. Order matters: it is the canonical enumeration order used when
// normalizing allocations (§4.4).
type BlogType string

const (
	BlogFunctional     BlogType = "functional"
	BlogTransactional  BlogType = "transactional"
	BlogCommercial     BlogType = "commercial"
	BlogInformational  BlogType = "informational"
)

// BlogTypeOrder is the canonical category order used by allocation
// normalization and plan enumeration.
var BlogTypeOrder = []BlogType{BlogFunctional, BlogTransactional, BlogCommercial, BlogInformational}

// Allocations maps each blog type to its planned article count.
type Allocations map[BlogType]int

// Sum returns the total article count across all categories.
func (a Allocations) Sum() int {
	total := 0
	for _, v := range a {
		total += v
	}
	return total
}

// Job is the top-level unit of work (§3).
type Job struct {
	ID                    string
	Niche                 string
	ValuePropositions     []string
	Tone                  Tone
	TotalBlogs            int
	BlogTypeAllocations   Allocations
	TargetWordCount       int
	Status                JobStatus
	Progress              int
	TotalContentGenerated int
	FailedContentCount    int
	Scenarios             []Scenario
	ErrorMessage          string
	CreditsCost           int
	CreditsRefunded       int
	UserID                string
	CreatedAt             time.Time
	StartedAt             *time.Time
	CompletedAt           *time.Time
}

// Progress milestones from §4.1/§9. Named so the scheduler never hardcodes
// magic numbers at call sites.
const (
	ProgressEnqueued         = 5
	ProgressResearchComplete = 20
	ProgressGeneratingStart  = 25
	ProgressGeneratingMax    = 95
	ProgressTerminal         = 100
)
