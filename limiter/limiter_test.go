package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragforge/llminvoke/config"
)

// recordingLimiter records every Acquire into a shared order log.
type recordingLimiter struct {
	name       string
	needsCount bool
	order      *[]string
}

func (r *recordingLimiter) NeedsTokenCount() bool { return r.needsCount }

func (r *recordingLimiter) Acquire(ctx context.Context, numTokens int) error {
	*r.order = append(*r.order, r.name)
	return nil
}

func TestNoop(t *testing.T) {
	var l Limiter = Noop{}

	assert.False(t, l.NeedsTokenCount())

	start := time.Now()
	require.NoError(t, l.Acquire(context.Background(), 1_000_000))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTokenAndRequest_NeedsTokenCount(t *testing.T) {
	assert.True(t, NewTokenAndRequest(1000, 1000).NeedsTokenCount())
	assert.True(t, NewTokenAndRequest(1000, 0).NeedsTokenCount())
	assert.False(t, NewTokenAndRequest(0, 1000).NeedsTokenCount())
}

func TestTokenAndRequest_AcquireWithinBudget(t *testing.T) {
	l := NewTokenAndRequest(60_000, 600)

	// A fresh bucket starts full; these must be admitted immediately.
	start := time.Now()
	for range 5 {
		require.NoError(t, l.Acquire(context.Background(), 100))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestTokenAndRequest_BlocksWhenExhausted(t *testing.T) {
	// 60 tokens/minute = 1 token/second, burst 60.
	l := NewTokenAndRequest(60, 0)

	require.NoError(t, l.Acquire(context.Background(), 60))

	// Bucket is drained; the next acquire cannot be admitted within 50ms.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx, 10)
	assert.Error(t, err)
}

func TestTokenAndRequest_ContextCancelled(t *testing.T) {
	l := NewTokenAndRequest(60, 0)
	require.NoError(t, l.Acquire(context.Background(), 60))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Acquire(ctx, 1))
}

func TestComposite_AcquireOrder(t *testing.T) {
	var order []string
	first := &recordingLimiter{name: "first", order: &order}
	second := &recordingLimiter{name: "second", order: &order}

	c := NewComposite(first, second)

	require.NoError(t, c.Acquire(context.Background(), 10))
	require.NoError(t, c.Acquire(context.Background(), 20))

	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
}

func TestComposite_NeedsTokenCount(t *testing.T) {
	var order []string

	none := NewComposite(
		&recordingLimiter{name: "a", order: &order},
		&recordingLimiter{name: "b", order: &order},
	)
	assert.False(t, none.NeedsTokenCount())

	some := NewComposite(
		&recordingLimiter{name: "a", order: &order},
		&recordingLimiter{name: "b", needsCount: true, order: &order},
	)
	assert.True(t, some.NeedsTokenCount())
}

func TestFromConfig(t *testing.T) {
	// nil config gets the default budgets
	l := FromConfig(nil)
	assert.True(t, l.NeedsTokenCount())

	// explicit zeros disable both axes
	zero := 0
	l = FromConfig(&config.ModelConfig{TokensPerMinute: &zero, RequestsPerMinute: &zero})
	assert.IsType(t, Noop{}, l)

	// one axis disabled leaves the other active
	l = FromConfig(&config.ModelConfig{TokensPerMinute: &zero})
	assert.False(t, l.NeedsTokenCount())
	require.NoError(t, l.Acquire(context.Background(), 0))
}
