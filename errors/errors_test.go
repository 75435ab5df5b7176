package errors

import (
	// Go Internal Packages
	"fmt"
	"testing"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("posting: %w", RecoverableLedgerErr("party required", nil))

	assert.True(t, Is(RecoverableLedger, err))
	assert.False(t, Is(UnrecoverableLedger, err))
	assert.Equal(t, RecoverableLedger, KindOf(err))
}

func TestKindOfSkipsOtherLayers(t *testing.T) {
	inner := CapabilityNotAvailableErr("refund", "self")
	outer := E(Other, "refund failed", inner)

	assert.Equal(t, CapabilityNotAvailable, KindOf(outer))
	assert.Equal(t, "refund failed: the feature refund is not available for provider self", outer.Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Other, KindOf(New("boom")))
	assert.False(t, Is(Other, nil))
}

func TestValidationErrs(t *testing.T) {
	ve := ValidationErrs()
	require.NoError(t, ve.Err())

	ve.Add("mongo.uri", "cannot be empty")
	ve.Add("application", "cannot be empty")

	err := ve.Err()
	require.Error(t, err)
	assert.True(t, Is(Invalid, err))
	assert.Equal(t, "validation failed: application cannot be empty; mongo.uri cannot be empty", err.Error())
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ConcurrentModificationErr("tx-1", nil)))
	assert.False(t, Retryable(InvalidTransitionErr("settle", "draft")))
}
