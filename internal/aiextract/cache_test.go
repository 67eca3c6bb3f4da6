package aiextract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExtractor struct {
	calls int
	err   error
}

func (c *countingExtractor) Extract(_ context.Context, text string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "reply:" + text, nil
}

func TestCachedExtractor_ReusesReply(t *testing.T) {
	next := &countingExtractor{}
	c := NewCached(next, time.Minute)

	for i := 0; i < 3; i++ {
		out, err := c.Extract(context.Background(), "page one")
		require.NoError(t, err)
		assert.Equal(t, "reply:page one", out)
	}
	assert.Equal(t, 1, next.calls)

	_, err := c.Extract(context.Background(), "page two")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 2, c.Len())
}

func TestCachedExtractor_ErrorsNotCached(t *testing.T) {
	next := &countingExtractor{err: errors.New("timeout")}
	c := NewCached(next, time.Minute)

	_, err := c.Extract(context.Background(), "x")
	require.Error(t, err)
	_, err = c.Extract(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
	assert.Zero(t, c.Len())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey("a"), cacheKey("a"))
	assert.NotEqual(t, cacheKey("a"), cacheKey("b"))
	assert.Len(t, cacheKey("a"), 64)
}
