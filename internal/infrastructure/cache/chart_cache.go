// Package cache keeps charts of accounts in memory, invalidated through
// PostgreSQL LISTEN/NOTIFY.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
	"ledgerio/pkg/logger"
)

// ChannelChartChanged is notified by the accounts trigger with the entity
// id as payload. An empty payload drops every chart.
const ChannelChartChanged = "chart_changed"

// ChartLoader loads a chart from the source of truth.
type ChartLoader interface {
	GetChart(ctx context.Context, entityID id.ID) (*accounts.Chart, error)
}

// ChartCache serves charts of accounts from memory. Cached charts are
// shared between callers and must not be mutated.
type ChartCache struct {
	pool   *pgxpool.Pool
	loader ChartLoader

	mu     sync.RWMutex
	charts map[id.ID]*accounts.Chart

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewChartCache creates a cache over loader. pool may be nil, in which
// case nothing listens and entries live until Invalidate.
func NewChartCache(pool *pgxpool.Pool, loader ChartLoader) *ChartCache {
	return &ChartCache{
		pool:   pool,
		loader: loader,
		charts: make(map[id.ID]*accounts.Chart),
		ctx:    context.Background(),
	}
}

// GetChart returns the cached chart of entityID, loading it on a miss.
func (c *ChartCache) GetChart(ctx context.Context, entityID id.ID) (*accounts.Chart, error) {
	c.mu.RLock()
	chart, ok := c.charts[entityID]
	c.mu.RUnlock()
	if ok {
		return chart, nil
	}

	chart, err := c.loader.GetChart(ctx, entityID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.charts[entityID] = chart
	c.mu.Unlock()
	return chart, nil
}

// Invalidate drops the chart of entityID.
func (c *ChartCache) Invalidate(entityID id.ID) {
	c.mu.Lock()
	delete(c.charts, entityID)
	c.mu.Unlock()
}

// Flush drops every chart.
func (c *ChartCache) Flush() {
	c.mu.Lock()
	c.charts = make(map[id.ID]*accounts.Chart)
	c.mu.Unlock()
}

// Len reports how many charts are cached.
func (c *ChartCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.charts)
}

// Start begins listening for chart notifications.
func (c *ChartCache) Start(ctx context.Context) {
	if c.pool == nil {
		return
	}
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.started {
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "chart cache started")
}

// Stop ends the listener and waits for it.
func (c *ChartCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	cancel()
	c.wg.Wait()
}

func (c *ChartCache) listenLoop() {
	defer c.wg.Done()

	for c.ctx.Err() == nil {
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			c.sleep(time.Second)
			continue
		}
		if _, err := conn.Exec(c.ctx, "LISTEN "+ChannelChartChanged); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			c.sleep(time.Second)
			continue
		}

		// Notifications may have been missed while disconnected.
		c.Flush()
		c.waitForNotifications(conn)
		conn.Release()
	}
}

func (c *ChartCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		n, err := conn.Conn().WaitForNotification(ctx)
		cancel()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				continue
			}
			logger.Warn(c.ctx, "chart listener connection lost", "error", err)
			return
		}
		c.handleNotification(n.Channel, n.Payload)
	}
}

func (c *ChartCache) handleNotification(channel, payload string) {
	if channel != ChannelChartChanged {
		return
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		c.Flush()
		return
	}
	entityID, err := id.Parse(payload)
	if err != nil {
		logger.Warn(c.ctx, "bad chart notification payload", "payload", payload)
		c.Flush()
		return
	}
	c.Invalidate(entityID)
	logger.Debug(c.ctx, "chart invalidated", "entity_id", entityID)
}

func (c *ChartCache) sleep(d time.Duration) {
	select {
	case <-c.ctx.Done():
	case <-time.After(d):
	}
}
