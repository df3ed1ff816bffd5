package llm

import "context"

// FakeGateway is a scriptable Gateway test double. ResearchFn/GenerateFn
// default to returning an empty string with no error if unset.
type FakeGateway struct {
	ResearchFn func(ctx context.Context, prompt string, opts Options) (string, error)
	GenerateFn func(ctx context.Context, prompt string, opts Options) (string, error)

	ResearchCalls int
	GenerateCalls int
}

func (f *FakeGateway) Research(ctx context.Context, prompt string, opts Options) (string, error) {
	f.ResearchCalls++
	if f.ResearchFn == nil {
		return "", nil
	}
	return f.ResearchFn(ctx, prompt, opts)
}

func (f *FakeGateway) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	f.GenerateCalls++
	if f.GenerateFn == nil {
		return "", nil
	}
	return f.GenerateFn(ctx, prompt, opts)
}
