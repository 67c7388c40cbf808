package coordinator

import (
	"github.com/openlyric/bridge/entity"
	"github.com/openlyric/bridge/lyric"
)

// SnapshotUpdated is published after a successful poll has swapped the
// current snapshot. The snapshot carried is the new generation.
type SnapshotUpdated struct {
	Snapshot *lyric.Snapshot
}

// PollFailed is published when a poll does not yield a snapshot; the previous
// generation remains current.
type PollFailed struct {
	Err error
}

// EntityAdded is published by the bridge mux when an entity appears in a
// snapshot for the first time.
type EntityAdded struct {
	Bridge string
	Entity entity.HasDeviceInfo
}

// EntityRemoved is published by the bridge mux when an entity present in the
// previous snapshot generation is absent from the new one.
type EntityRemoved struct {
	Bridge   string
	UniqueID string
}
