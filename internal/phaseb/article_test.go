package phaseb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smilemakc/contentforge/internal/domain"
)

func TestWordCount(t *testing.T) {
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 0, WordCount("   "))
}

func TestHasFAQSection(t *testing.T) {
	assert.True(t, HasFAQSection("intro\n## FAQ\nmore"))
	assert.True(t, HasFAQSection("intro\n## Frequently Asked Questions\nmore"))
	assert.False(t, HasFAQSection("intro\nno section here"))
}

func TestAppendFallbackFAQ_AddsHeader(t *testing.T) {
	scenario := domain.Scenario{
		BlogTopicHeadline: "Solving X",
		PainPointDetail:   "too much manual work",
		PersonaArchetype:  "Ops Lead",
		PersonaName:       "Alex",
		GoalFocus:         "save time",
	}
	out := AppendFallbackFAQ("body text", scenario, []string{"automation"})
	assert.True(t, HasFAQSection(out))
	assert.Contains(t, out, "automation")
}

func TestInlineImages_PrependsEmbeds(t *testing.T) {
	images := []domain.ImageDescriptor{{URL: "https://example.com/a.jpg", Alt: "a photo"}}
	out := InlineImages("body", images)
	assert.Contains(t, out, "![a photo](https://example.com/a.jpg)")
	assert.True(t, len(out) > len("body"))
}

func TestInlineImages_NoImagesReturnsBodyUnchanged(t *testing.T) {
	assert.Equal(t, "body", InlineImages("body", nil))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "how-to-fix-bugs", Slugify("How To Fix Bugs!"))
	assert.Equal(t, "already-slug", Slugify("already-slug"))
}

func TestRefund(t *testing.T) {
	assert.Equal(t, 20, Refund(100, 10, 2))
	assert.Equal(t, 0, Refund(100, 0, 2))
}

func TestTerminalStatus(t *testing.T) {
	assert.Equal(t, domain.JobComplete, TerminalStatus(5, 5))
	assert.Equal(t, domain.JobFailed, TerminalStatus(0, 5))
	assert.Equal(t, domain.JobPartialComplete, TerminalStatus(3, 5))
}
