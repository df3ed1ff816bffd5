// Package imageadapter provides the optional Image Provider Adapter from
// §2 item 5 / §6: given keywords, returns 0..k image descriptors.
// Failures are non-fatal by contract — implementations must never return
// an error to the caller, only an empty (or short) slice.
package imageadapter

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/smilemakc/contentforge/internal/domain"
)

// Adapter fetches images for a scenario. FetchImages never raises;
// failures are swallowed and logged, returning an empty slice.
type Adapter interface {
	FetchImages(ctx context.Context, keywords []string, personaName string, k int) []domain.ImageDescriptor
}

// NoopAdapter is used when IMAGE_ENABLED is false (§EXPANSION config):
// it always returns an empty slice, matching the "failures are
// non-fatal" contract trivially.
type NoopAdapter struct{}

func (NoopAdapter) FetchImages(ctx context.Context, keywords []string, personaName string, k int) []domain.ImageDescriptor {
	return nil
}

// HTTPProvider is the function signature a concrete image provider (e.g.
// an Unsplash/Pexels-style API client) implements; Adapter wraps it with
// the "never raise" guarantee.
type HTTPProvider func(ctx context.Context, keywords []string, personaName string, k int) ([]domain.ImageDescriptor, error)

// GuardedAdapter wraps a provider function, converting any error into an
// empty result, as the spec's "best-effort" contract requires.
type GuardedAdapter struct {
	Provider HTTPProvider
}

func NewGuardedAdapter(provider HTTPProvider) *GuardedAdapter {
	return &GuardedAdapter{Provider: provider}
}

func (g *GuardedAdapter) FetchImages(ctx context.Context, keywords []string, personaName string, k int) []domain.ImageDescriptor {
	images, err := g.Provider(ctx, keywords, personaName, k)
	if err != nil {
		log.Warn().Err(err).Strs("keywords", keywords).Msg("image adapter lookup failed, continuing without images")
		return nil
	}
	return images
}
