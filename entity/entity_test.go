package entity

import (
	"errors"
	"github.com/openlyric/bridge/lyric"
	"github.com/openlyric/bridge/registry"
	"github.com/stretchr/testify/assert"
	"testing"
)

type staticCoordinator struct {
	snapshot *lyric.Snapshot
}

func (s *staticCoordinator) Data() *lyric.Snapshot {
	return s.snapshot
}

func thermostatSnapshot() (*lyric.Snapshot, *lyric.Location, *lyric.Device) {
	device := &lyric.Device{
		MACID:       "AA:BB",
		DeviceID:    "LCC-AA:BB",
		Name:        "Office",
		DeviceModel: "T9-T10",
		DeviceType:  "Thermostat",
	}

	location := lyric.NewLocation("100", "Home", device)
	snapshot := lyric.NewSnapshot([]*lyric.Location{location}, nil)

	return snapshot, location, device
}

func TestEntity(t *testing.T) {
	t.Run("UniqueID returns the construction key verbatim, unchanged across refreshes", func(t *testing.T) {
		snapshot, location, device := thermostatSnapshot()
		c := &staticCoordinator{snapshot: snapshot}

		e := NewEntity(c, location, device, "AA:BB_temperature")
		assert.Equal(t, "AA:BB_temperature", e.UniqueID())

		refreshed, _, _ := thermostatSnapshot()
		c.snapshot = refreshed

		assert.Equal(t, "AA:BB_temperature", e.UniqueID())
	})

	t.Run("Location re-resolves from the current snapshot", func(t *testing.T) {
		snapshot, location, device := thermostatSnapshot()
		c := &staticCoordinator{snapshot: snapshot}

		e := NewEntity(c, location, device, "key")

		resolved, err := e.Location()
		assert.NoError(t, err)
		assert.Same(t, location, resolved)

		c.snapshot = lyric.NewSnapshot(nil, nil)

		_, err = e.Location()
		assert.True(t, errors.Is(err, ErrLocationNotFound))
	})

	t.Run("Device resolves by MAC and fails rather than returning stale data after removal", func(t *testing.T) {
		snapshot, location, device := thermostatSnapshot()
		c := &staticCoordinator{snapshot: snapshot}

		e := NewEntity(c, location, device, "key")

		resolved, err := e.Device()
		assert.NoError(t, err)
		assert.Same(t, device, resolved)

		emptied := lyric.NewSnapshot([]*lyric.Location{lyric.NewLocation("100", "Home")}, nil)
		c.snapshot = emptied

		_, err = e.Device()
		assert.True(t, errors.Is(err, ErrDeviceNotFound))
	})
}

func TestDeviceEntity_DeviceInfo(t *testing.T) {
	t.Run("describes the thermostat keyed and connected by MAC", func(t *testing.T) {
		snapshot, location, device := thermostatSnapshot()
		c := &staticCoordinator{snapshot: snapshot}

		e := NewDeviceEntity(c, location, device, "AA:BB")

		info, err := e.DeviceInfo()
		assert.NoError(t, err)

		macIdentifier := registry.Identifier{Namespace: registry.ConnectionNetworkMAC, ID: "AA:BB"}
		assert.Equal(t, []registry.Identifier{macIdentifier}, info.Identifiers)
		assert.Equal(t, []registry.Identifier{macIdentifier}, info.Connections)
		assert.Equal(t, "Honeywell", info.Manufacturer)
		assert.Equal(t, "T9-T10", info.Model)
		assert.Equal(t, "Office Thermostat", info.Name)
		assert.Nil(t, info.ViaDevice)
	})

	t.Run("errors when the device is no longer in the snapshot", func(t *testing.T) {
		snapshot, location, device := thermostatSnapshot()
		c := &staticCoordinator{snapshot: snapshot}

		e := NewDeviceEntity(c, location, device, "AA:BB")

		c.snapshot = lyric.NewSnapshot([]*lyric.Location{lyric.NewLocation("100", "Home")}, nil)

		_, err := e.DeviceInfo()
		assert.True(t, errors.Is(err, ErrDeviceNotFound))
	})
}
