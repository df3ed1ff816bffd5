package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smilemakc/contentforge/internal/domain"
)

// A nil *StatusCache must behave as a pure miss everywhere, so callers can
// run with Redis disabled (§EXPANSION) without special-casing every call
// site.
func TestNilStatusCache_IsSafeEverywhere(t *testing.T) {
	var c *StatusCache

	_, hit := c.Get(context.Background(), "job-1")
	assert.False(t, hit)

	assert.NotPanics(t, func() {
		c.Set(context.Background(), "job-1", StatusSnapshot{Status: domain.JobComplete})
		c.Invalidate(context.Background(), "job-1")
	})
	assert.NoError(t, c.Close())
}

func TestStatusKey_Namespaced(t *testing.T) {
	assert.Equal(t, "job-status:job-1", statusKey("job-1"))
}
