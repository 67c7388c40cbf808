package lyric

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestNewLocation(t *testing.T) {
	t.Run("indexes devices by MAC id when present", func(t *testing.T) {
		d := &Device{MACID: "AA:BB", DeviceID: "d1"}

		l := NewLocation("1", "Home", d)

		assert.Equal(t, d, l.DevicesDict["AA:BB"])
		assert.Contains(t, l.Devices, d)
	})

	t.Run("indexes devices by device id when no MAC is present", func(t *testing.T) {
		d := &Device{DeviceID: "d1"}

		l := NewLocation("1", "Home", d)

		assert.Equal(t, d, l.DevicesDict["d1"])
	})
}

func TestNewSnapshot(t *testing.T) {
	t.Run("indexes locations by id and rooms by MAC then room id", func(t *testing.T) {
		l := NewLocation("1", "Home")
		r := &Room{ID: "2", RoomName: "Kitchen"}

		s := NewSnapshot([]*Location{l}, map[string][]*Room{"AA:BB": {r}})

		assert.Equal(t, l, s.LocationsDict["1"])
		assert.Equal(t, r, s.RoomsDict["AA:BB"]["2"])
	})
}

func TestDevice_AttributeKeys(t *testing.T) {
	t.Run("returns sorted top level attribute keys", func(t *testing.T) {
		d := &Device{Attributes: map[string]any{"waterPresent": true, "deviceSettings": map[string]any{}}}

		assert.Equal(t, []string{"deviceSettings", "waterPresent"}, d.AttributeKeys())
	})
}
