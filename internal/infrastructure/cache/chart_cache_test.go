package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
)

type countingLoader struct {
	calls map[id.ID]int
	err   error
}

func (l *countingLoader) GetChart(_ context.Context, entityID id.ID) (*accounts.Chart, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.calls == nil {
		l.calls = make(map[id.ID]int)
	}
	l.calls[entityID]++
	return accounts.NewChart(entityID, "Default"), nil
}

func TestChartCache_LoadsOnce(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	c := NewChartCache(nil, loader)
	entityID := id.New()

	first, err := c.GetChart(ctx, entityID)
	require.NoError(t, err)
	second, err := c.GetChart(ctx, entityID)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.calls[entityID])
	assert.Equal(t, 1, c.Len())
}

func TestChartCache_ErrorsAreNotCached(t *testing.T) {
	loader := &countingLoader{err: errors.New("boom")}
	c := NewChartCache(nil, loader)

	_, err := c.GetChart(context.Background(), id.New())
	require.Error(t, err)
	assert.Zero(t, c.Len())
}

func TestChartCache_Notification(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{}
	c := NewChartCache(nil, loader)
	a, b := id.New(), id.New()
	_, _ = c.GetChart(ctx, a)
	_, _ = c.GetChart(ctx, b)

	c.handleNotification("other_channel", a.String())
	assert.Equal(t, 2, c.Len())

	c.handleNotification(ChannelChartChanged, a.String())
	assert.Equal(t, 1, c.Len())

	_, _ = c.GetChart(ctx, a)
	assert.Equal(t, 2, loader.calls[a])
	assert.Equal(t, 1, loader.calls[b])

	c.handleNotification(ChannelChartChanged, "")
	assert.Zero(t, c.Len())

	_, _ = c.GetChart(ctx, b)
	c.handleNotification(ChannelChartChanged, "not-a-uuid")
	assert.Zero(t, c.Len())
}

func TestChartCache_StartWithoutPool(t *testing.T) {
	c := NewChartCache(nil, &countingLoader{})
	c.Start(context.Background())
	c.Stop()
}
