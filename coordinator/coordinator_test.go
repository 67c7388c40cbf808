package coordinator

import (
	"context"
	"errors"
	"github.com/openlyric/bridge/lyric"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestCoordinator_Poll(t *testing.T) {
	t.Run("swaps the snapshot wholesale and publishes SnapshotUpdated", func(t *testing.T) {
		first := lyric.NewSnapshot(nil, nil)
		second := lyric.NewSnapshot(nil, nil)

		snapshots := []*lyric.Snapshot{first, second}
		client := lyric.ClientFunc(func(_ context.Context) (*lyric.Snapshot, error) {
			s := snapshots[0]
			snapshots = snapshots[1:]
			return s, nil
		})

		bus := NewEventBus()
		eventCh := make(chan any, 2)
		bus.Subscribe(eventCh)

		c := New(client, time.Minute, bus, logwrap.New(discard.Discard()))
		assert.Nil(t, c.Data())

		assert.NoError(t, c.Poll(context.Background()))
		assert.Same(t, first, c.Data())

		assert.NoError(t, c.Poll(context.Background()))
		assert.Same(t, second, c.Data())

		assert.Equal(t, SnapshotUpdated{Snapshot: first}, <-eventCh)
		assert.Equal(t, SnapshotUpdated{Snapshot: second}, <-eventCh)
	})

	t.Run("a failed poll keeps the previous snapshot and publishes PollFailed", func(t *testing.T) {
		snapshot := lyric.NewSnapshot(nil, nil)
		pollErr := errors.New("cloud unavailable")

		calls := 0
		client := lyric.ClientFunc(func(_ context.Context) (*lyric.Snapshot, error) {
			calls++
			if calls > 1 {
				return nil, pollErr
			}
			return snapshot, nil
		})

		bus := NewEventBus()
		eventCh := make(chan any, 2)
		bus.Subscribe(eventCh)

		c := New(client, time.Minute, bus, logwrap.New(discard.Discard()))

		assert.NoError(t, c.Poll(context.Background()))
		assert.Error(t, c.Poll(context.Background()))
		assert.Same(t, snapshot, c.Data())

		<-eventCh
		failure := <-eventCh
		assert.True(t, errors.Is(failure.(PollFailed).Err, pollErr))
	})
}

func TestCoordinator_StartStop(t *testing.T) {
	t.Run("polls immediately on start and stops cleanly", func(t *testing.T) {
		snapshot := lyric.NewSnapshot(nil, nil)
		client := lyric.ClientFunc(func(_ context.Context) (*lyric.Snapshot, error) {
			return snapshot, nil
		})

		c := New(client, time.Hour, NullEventPublisher, logwrap.New(discard.Discard()))

		c.Start()
		defer c.Stop()

		time.Sleep(10 * time.Millisecond)

		assert.Same(t, snapshot, c.Data())
	})
}
