package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError_RateLimited(t *testing.T) {
	err := classifyError(errors.New("received 429 from upstream"))
	assert.Equal(t, ErrRateLimited, err.Kind)
}

func TestClassifyError_QuotaIsRateLimited(t *testing.T) {
	err := classifyError(errors.New("you exceeded your current quota"))
	assert.Equal(t, ErrRateLimited, err.Kind)
}

func TestClassifyError_ContentPolicyIsBlocked(t *testing.T) {
	err := classifyError(errors.New("request rejected: content_policy violation"))
	assert.Equal(t, ErrBlocked, err.Kind)
}

func TestClassifyError_TimeoutIsTransient(t *testing.T) {
	err := classifyError(errors.New("context deadline exceeded: connection timeout"))
	assert.Equal(t, ErrTransient, err.Kind)
}

func TestClassifyError_UnrecognizedIsFatal(t *testing.T) {
	err := classifyError(errors.New("invalid api key"))
	assert.Equal(t, ErrFatal, err.Kind)
}
