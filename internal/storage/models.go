package storage

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/smilemakc/contentforge/internal/domain"
)

// JobModel is the jobs table row. Allocations and value propositions are
// stored as jsonb, mirroring the teacher's WorkflowModel.Spec column.
type JobModel struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID                    string         `bun:"id,pk"`
	Niche                 string         `bun:"niche"`
	ValuePropositions     []string       `bun:"value_propositions,type:jsonb"`
	Tone                  string         `bun:"tone"`
	TotalBlogs            int            `bun:"total_blogs"`
	BlogTypeAllocations   map[string]int `bun:"blog_type_allocations,type:jsonb"`
	TargetWordCount       int            `bun:"target_word_count"`
	Status                string         `bun:"status"`
	Progress              int            `bun:"progress"`
	TotalContentGenerated int            `bun:"total_content_generated"`
	FailedContentCount    int            `bun:"failed_content_count"`
	ErrorMessage          string         `bun:"error_message"`
	CreditsCost           int            `bun:"credits_cost"`
	CreditsRefunded       int            `bun:"credits_refunded"`
	UserID                string         `bun:"user_id"`
	Cancelled             bool           `bun:"cancelled"`
	CreatedAt             time.Time      `bun:"created_at"`
	StartedAt             *time.Time     `bun:"started_at"`
	CompletedAt           *time.Time     `bun:"completed_at"`
}

func NewJobModel(j *domain.Job) *JobModel {
	allocations := make(map[string]int, len(j.BlogTypeAllocations))
	for bt, count := range j.BlogTypeAllocations {
		allocations[string(bt)] = count
	}
	return &JobModel{
		ID:                    j.ID,
		Niche:                 j.Niche,
		ValuePropositions:     j.ValuePropositions,
		Tone:                  string(j.Tone),
		TotalBlogs:            j.TotalBlogs,
		BlogTypeAllocations:   allocations,
		TargetWordCount:       j.TargetWordCount,
		Status:                string(j.Status),
		Progress:              j.Progress,
		TotalContentGenerated: j.TotalContentGenerated,
		FailedContentCount:    j.FailedContentCount,
		ErrorMessage:          j.ErrorMessage,
		CreditsCost:           j.CreditsCost,
		CreditsRefunded:       j.CreditsRefunded,
		UserID:                j.UserID,
		CreatedAt:             j.CreatedAt,
		StartedAt:             j.StartedAt,
		CompletedAt:           j.CompletedAt,
	}
}

func (m *JobModel) ToDomain() *domain.Job {
	allocations := make(domain.Allocations, len(m.BlogTypeAllocations))
	for bt, count := range m.BlogTypeAllocations {
		allocations[domain.BlogType(bt)] = count
	}
	return &domain.Job{
		ID:                    m.ID,
		Niche:                 m.Niche,
		ValuePropositions:     m.ValuePropositions,
		Tone:                  domain.Tone(m.Tone),
		TotalBlogs:            m.TotalBlogs,
		BlogTypeAllocations:   allocations,
		TargetWordCount:       m.TargetWordCount,
		Status:                domain.JobStatus(m.Status),
		Progress:              m.Progress,
		TotalContentGenerated: m.TotalContentGenerated,
		FailedContentCount:    m.FailedContentCount,
		ErrorMessage:          m.ErrorMessage,
		CreditsCost:           m.CreditsCost,
		CreditsRefunded:       m.CreditsRefunded,
		UserID:                m.UserID,
		CreatedAt:             m.CreatedAt,
		StartedAt:             m.StartedAt,
		CompletedAt:           m.CompletedAt,
	}
}

// ScenarioModel is the scenarios table row, a child of JobModel.
type ScenarioModel struct {
	bun.BaseModel `bun:"table:scenarios,alias:sc"`

	JobID             string   `bun:"job_id,pk"`
	ScenarioID        int      `bun:"scenario_id,pk"`
	PersonaName       string   `bun:"persona_name"`
	PersonaArchetype  string   `bun:"persona_archetype"`
	PainPointDetail   string   `bun:"pain_point_detail"`
	GoalFocus         string   `bun:"goal_focus"`
	BlogTopicHeadline string   `bun:"blog_topic_headline"`
	TargetKeywords    []string `bun:"target_keywords,type:jsonb"`
	RequiredWordCount int      `bun:"required_word_count"`
	ResearchInsight   string   `bun:"research_insight"`
	ImageURLs         []string `bun:"image_urls,type:jsonb"`
	BlogType          string   `bun:"blog_type"`
}

func NewScenarioModel(jobID string, s domain.Scenario) *ScenarioModel {
	urls := make([]string, len(s.ImageURLs))
	for i, img := range s.ImageURLs {
		urls[i] = img.URL
	}
	return &ScenarioModel{
		JobID:             jobID,
		ScenarioID:        s.ScenarioID,
		PersonaName:       s.PersonaName,
		PersonaArchetype:  s.PersonaArchetype,
		PainPointDetail:   s.PainPointDetail,
		GoalFocus:         s.GoalFocus,
		BlogTopicHeadline: s.BlogTopicHeadline,
		TargetKeywords:    s.TargetKeywords,
		RequiredWordCount: s.RequiredWordCount,
		ResearchInsight:   s.ResearchInsight,
		ImageURLs:         urls,
		BlogType:          string(s.BlogType),
	}
}

func (m *ScenarioModel) ToDomain() domain.Scenario {
	images := make([]domain.ImageDescriptor, len(m.ImageURLs))
	for i, u := range m.ImageURLs {
		images[i] = domain.ImageDescriptor{URL: u}
	}
	return domain.Scenario{
		ScenarioID:        m.ScenarioID,
		PersonaName:       m.PersonaName,
		PersonaArchetype:  m.PersonaArchetype,
		PainPointDetail:   m.PainPointDetail,
		GoalFocus:         m.GoalFocus,
		BlogTopicHeadline: m.BlogTopicHeadline,
		TargetKeywords:    m.TargetKeywords,
		RequiredWordCount: m.RequiredWordCount,
		ResearchInsight:   m.ResearchInsight,
		ImageURLs:         images,
		BlogType:          domain.BlogType(m.BlogType),
	}
}

// ContentModel is the content table row, insert-only (§3 Lifecycle).
type ContentModel struct {
	bun.BaseModel `bun:"table:content,alias:c"`

	ID               string   `bun:"id,pk"`
	JobID            string   `bun:"job_id"`
	ScenarioID       int      `bun:"scenario_id"`
	SourceScenarioID int      `bun:"source_scenario_id"`
	BlogTitle        string   `bun:"blog_title"`
	PersonaArchetype string   `bun:"persona_archetype"`
	Keywords         []string `bun:"keywords,type:jsonb"`
	BlogContent      string   `bun:"blog_content"`
	WordCount        int      `bun:"word_count"`
	Slug             string   `bun:"slug"`
	MetaDescription  string   `bun:"meta_description"`
	BlogType         string   `bun:"blog_type"`
	ImageURLs        []string `bun:"image_urls,type:jsonb"`
	GenerationTimeMs int64    `bun:"generation_time_ms"`
	ModelUsed        string   `bun:"model_used"`
	Status           string   `bun:"status"`
	ErrorMessage     string   `bun:"error_message"`
}

func NewContentModel(c domain.Content) *ContentModel {
	urls := make([]string, len(c.ImageURLs))
	for i, img := range c.ImageURLs {
		urls[i] = img.URL
	}
	return &ContentModel{
		ID:               c.ID,
		JobID:            c.JobID,
		ScenarioID:       c.ScenarioID,
		SourceScenarioID: c.SourceScenarioID,
		BlogTitle:        c.BlogTitle,
		PersonaArchetype: c.PersonaArchetype,
		Keywords:         c.Keywords,
		BlogContent:      c.BlogContent,
		WordCount:        c.WordCount,
		Slug:             c.Slug,
		MetaDescription:  c.MetaDescription,
		BlogType:         string(c.BlogType),
		ImageURLs:        urls,
		GenerationTimeMs: c.GenerationTimeMs,
		ModelUsed:        c.ModelUsed,
		Status:           string(c.Status),
		ErrorMessage:     c.ErrorMessage,
	}
}

func (m *ContentModel) ToDomain() domain.Content {
	images := make([]domain.ImageDescriptor, len(m.ImageURLs))
	for i, u := range m.ImageURLs {
		images[i] = domain.ImageDescriptor{URL: u}
	}
	return domain.Content{
		ID:               m.ID,
		JobID:            m.JobID,
		ScenarioID:       m.ScenarioID,
		SourceScenarioID: m.SourceScenarioID,
		BlogTitle:        m.BlogTitle,
		PersonaArchetype: m.PersonaArchetype,
		Keywords:         m.Keywords,
		BlogContent:      m.BlogContent,
		WordCount:        m.WordCount,
		Slug:             m.Slug,
		MetaDescription:  m.MetaDescription,
		BlogType:         domain.BlogType(m.BlogType),
		ImageURLs:        images,
		GenerationTimeMs: m.GenerationTimeMs,
		ModelUsed:        m.ModelUsed,
		Status:           domain.ContentStatus(m.Status),
		ErrorMessage:     m.ErrorMessage,
	}
}
