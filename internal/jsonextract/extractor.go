// Package jsonextract turns arbitrary LLM output text into a parsed JSON
// object via a cascade of repair strategies (§4.3). It is the single most
// failure-prone step in the pipeline, so every strategy is tried in order
// and the cascade stops at the first one that produces valid JSON.
package jsonextract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// UnparseableError is raised when every repair strategy has been
// exhausted. It carries a short preview of the offending text and the
// path of the debug artifact written alongside it.
type UnparseableError struct {
	Preview     string
	ArtifactPath string
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("unparseable JSON after exhausting all repair strategies: %s (artifact: %s)", e.Preview, e.ArtifactPath)
}

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

var concatenatedSeparators = []string{"}\n{", "}\r\n{", "} {", "}\n\n{"}

// braceGroupPattern finds maximal shallow `{...}` substrings for the
// aggressive fallback step. It is intentionally shallow (no nested
// braces) because step 5 only needs candidate roots to try, not full
// correctness — each candidate is validated by actually parsing it.
var braceGroupPattern = regexp.MustCompile(`(?s)\{[^{}]*\}`)

// Extract runs the repair cascade and returns the parsed object as a
// generic map. expectedKey (e.g. "scenarios") is only consulted by the
// aggressive fallback step; earlier steps return the first object that
// parses, whether or not it holds that key, so callers still check for
// it. debugDir is where unparseable artifacts are written; an
// empty debugDir disables the write (the error is still returned).
func Extract(raw string, expectedKey string, debugDir string) (map[string]interface{}, error) {
	if obj, ok := tryParse(raw); ok {
		return obj, nil
	}

	if stripped := stripFences(raw); stripped != raw {
		if obj, ok := tryParse(stripped); ok {
			return obj, nil
		}
	}

	if truncated := truncateConcatenated(raw); truncated != raw {
		if obj, ok := tryParse(truncated); ok {
			return obj, nil
		}
	}

	if balanced, ok := extractBraceBalanced(raw); ok {
		if obj, ok := tryParse(balanced); ok {
			return obj, nil
		}
	}

	if obj, ok := aggressiveFallback(raw, expectedKey); ok {
		return obj, nil
	}

	// Final attempt: strip fences globally then retry brace-balanced
	// extraction, per step 5's fallback clause.
	if balanced, ok := extractBraceBalanced(stripAllFences(raw)); ok {
		if obj, ok := tryParse(balanced); ok {
			return obj, nil
		}
	}

	artifactPath := writeDebugArtifact(raw, debugDir)
	log.Warn().Str("artifact", artifactPath).Msg("json extraction exhausted all repair strategies")

	return nil, &UnparseableError{Preview: preview(raw), ArtifactPath: artifactPath}
}

func tryParse(s string) (map[string]interface{}, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// stripFences removes a single surrounding fenced code block, tolerating
// a labeled "json" fence, a bare fence, or stray backticks anywhere.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(strings.ReplaceAll(s, "`", ""))
}

// stripAllFences removes every fence marker in the text, used only by the
// final fallback.
func stripAllFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.ReplaceAll(s, "`", "")
}

// truncateConcatenated detects concatenated JSON objects and truncates to
// the first object's closing brace.
func truncateConcatenated(s string) string {
	earliest := -1
	for _, sep := range concatenatedSeparators {
		if idx := strings.Index(s, sep); idx != -1 {
			// idx points at the '}'; +1 keeps it in the truncated text.
			boundary := idx + 1
			if earliest == -1 || boundary < earliest {
				earliest = boundary
			}
		}
	}
	if earliest == -1 {
		return s
	}
	return s[:earliest]
}

// extractBraceBalanced walks the text tracking string context and brace
// depth, emitting the substring from the first '{' to the matching '}' at
// depth zero. Braces inside strings are literal and do not change depth.
func extractBraceBalanced(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// aggressiveFallback tries every maximal shallow {...} substring, longest
// first, accepting the first whose parsed root contains expectedKey.
func aggressiveFallback(s string, expectedKey string) (map[string]interface{}, bool) {
	candidates := braceGroupPattern.FindAllString(s, -1)
	if len(candidates) == 0 {
		return nil, false
	}

	sorted := append([]string(nil), candidates...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if len(sorted[j]) > len(sorted[i]) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}

	for _, c := range sorted {
		if obj, ok := tryParse(c); ok {
			if expectedKey == "" {
				return obj, true
			}
			if _, present := obj[expectedKey]; present {
				return obj, true
			}
		}
	}
	return nil, false
}

func preview(s string) string {
	const n = 500
	if len(s) <= 2*n {
		return s
	}
	return s[:n] + " ... " + s[len(s)-n:]
}

// writeDebugArtifact persists the offending raw text with a timestamped,
// collision-free filename. A write failure is logged, not fatal — this
// function never returns an error of its own per the extractor's pure
// contract (the only side effect lives here, and only on terminal
// failure).
func writeDebugArtifact(raw string, debugDir string) string {
	if debugDir == "" {
		return ""
	}
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", debugDir).Msg("failed to create json debug artifact directory")
		return ""
	}

	name := fmt.Sprintf("unparseable-%d.txt", time.Now().UnixNano())
	path := filepath.Join(debugDir, name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to write json debug artifact")
		return ""
	}
	return path
}
