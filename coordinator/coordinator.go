package coordinator

import (
	"context"
	"fmt"
	"github.com/openlyric/bridge/lyric"
	"github.com/shimmeringbee/logwrap"
	"sync"
	"time"
)

// Snapshotter exposes the current snapshot generation. Two successive reads
// may observe different generations if a poll completes between them; each
// individual read is always a complete, consistent snapshot.
type Snapshotter interface {
	Data() *lyric.Snapshot
}

var _ Snapshotter = (*Coordinator)(nil)

const DefaultPollTimeout = 30 * time.Second

// Coordinator owns the cached snapshot and refreshes it on a fixed interval.
// There is deliberately no retry or backoff here; a failed poll keeps the
// previous snapshot and the next tick tries again.
type Coordinator struct {
	lock sync.RWMutex

	client   lyric.Client
	interval time.Duration
	snapshot *lyric.Snapshot

	eventPublisher EventPublisher
	logger         logwrap.Logger

	stopCh chan struct{}
}

func New(client lyric.Client, interval time.Duration, publisher EventPublisher, l logwrap.Logger) *Coordinator {
	return &Coordinator{
		client:         client,
		interval:       interval,
		eventPublisher: publisher,
		logger:         l,
	}
}

// Data returns the current snapshot generation, nil before the first
// successful poll.
func (c *Coordinator) Data() *lyric.Snapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.snapshot
}

// Poll fetches a fresh snapshot and swaps it in wholesale on success.
func (c *Coordinator) Poll(ctx context.Context) error {
	snapshot, err := c.client.Snapshot(ctx)
	if err != nil {
		c.eventPublisher.Publish(PollFailed{Err: err})
		return fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	c.lock.Lock()
	c.snapshot = snapshot
	c.lock.Unlock()

	c.eventPublisher.Publish(SnapshotUpdated{Snapshot: snapshot})
	return nil
}

func (c *Coordinator) Start() {
	c.stopCh = make(chan struct{}, 1)

	go c.pollLoop(c.stopCh)
}

func (c *Coordinator) pollLoop(stopCh chan struct{}) {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	c.pollOnce()

	for {
		select {
		case <-t.C:
			c.pollOnce()
		case <-stopCh:
			return
		}
	}
}

func (c *Coordinator) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultPollTimeout)
	defer cancel()

	if err := c.Poll(ctx); err != nil {
		c.logger.LogError(ctx, "Failed to poll for snapshot.", logwrap.Err(err))
	}
}

func (c *Coordinator) Stop() {
	if c.stopCh != nil {
		c.stopCh <- struct{}{}
	}
}
