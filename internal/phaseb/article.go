package phaseb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/smilemakc/contentforge/internal/domain"
)

// AcceptanceFloorWords is the minimum word count Phase B will accept
// without retrying, per §4.4/§6.
const AcceptanceFloorWords = 1000

// faqHeaderPattern matches the FAQ section headers §8 requires:
// "## FAQ" or "## Frequently Asked Questions", case-insensitive.
var faqHeaderPattern = regexp.MustCompile(`(?im)^##\s+(FAQ|Frequently Asked Questions)\b`)

// WordCount counts whitespace-separated, non-empty tokens (§4.4 step 4 /
// §8).
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// HasFAQSection reports whether body already contains a matching FAQ
// header.
func HasFAQSection(body string) bool {
	return faqHeaderPattern.MatchString(body)
}

// AppendFallbackFAQ appends a deterministic 4-5 question/answer FAQ
// section derived from the scenario and value propositions, per §4.4
// step 6. It is only ever called when HasFAQSection is false.
func AppendFallbackFAQ(body string, scenario domain.Scenario, valuePropositions []string) string {
	var b strings.Builder
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n## FAQ\n\n")

	vp := "this solution"
	if len(valuePropositions) > 0 {
		vp = valuePropositions[0]
	}

	qas := [][2]string{
		{
			fmt.Sprintf("What is %s?", firstNonEmpty(scenario.BlogTopicHeadline, "this topic")),
			fmt.Sprintf("It addresses %s for readers who identify with the %s persona.", firstNonEmpty(scenario.PainPointDetail, "the core pain point"), firstNonEmpty(scenario.PersonaArchetype, "target")),
		},
		{
			"Who is this for?",
			fmt.Sprintf("%s, especially those working toward %s.", firstNonEmpty(scenario.PersonaName, "Readers"), firstNonEmpty(scenario.GoalFocus, "their goal")),
		},
		{
			"How does this help?",
			fmt.Sprintf("By offering %s as a practical path forward.", vp),
		},
		{
			"What should I do next?",
			"Review the guidance above and apply the steps that fit your situation.",
		},
	}

	for _, qa := range qas {
		b.WriteString(fmt.Sprintf("**%s**\n\n%s\n\n", qa[0], qa[1]))
	}

	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// InlineImages prepends one Markdown image embed per descriptor to body,
// per §4.4 step 7.
func InlineImages(body string, images []domain.ImageDescriptor) string {
	if len(images) == 0 {
		return body
	}
	var b strings.Builder
	for _, img := range images {
		b.WriteString(fmt.Sprintf("![%s](%s)\n\n", img.Alt, img.URL))
	}
	b.WriteString(body)
	return b.String()
}

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	lower := strings.ToLower(title)
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
