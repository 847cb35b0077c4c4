package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Score int `json:"score"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, ReportKey("s-1"), payload{Score: 80}, 0))

	var got payload
	require.NoError(t, c.Get(ctx, ReportKey("s-1"), &got))
	assert.Equal(t, 80, got.Score)

	require.NoError(t, c.Delete(ctx, ReportKey("s-1")))
	assert.ErrorIs(t, c.Get(ctx, ReportKey("s-1"), &got), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, DashboardKey(), payload{Score: 1}, time.Minute))
	var got payload
	require.NoError(t, c.Get(ctx, DashboardKey(), &got))

	now = now.Add(time.Minute)
	assert.ErrorIs(t, c.Get(ctx, DashboardKey(), &got), ErrCacheMiss)
}

func TestMemoryCacheDeletePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, InviteReportKey("a"), payload{}, 0))
	require.NoError(t, c.Set(ctx, InviteReportKey("b"), payload{}, 0))
	require.NoError(t, c.Set(ctx, DashboardKey(), payload{}, 0))

	require.NoError(t, c.DeletePattern(ctx, InviteReportPattern()))

	var got payload
	assert.ErrorIs(t, c.Get(ctx, InviteReportKey("a"), &got), ErrCacheMiss)
	assert.ErrorIs(t, c.Get(ctx, InviteReportKey("b"), &got), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, DashboardKey(), &got))
}
