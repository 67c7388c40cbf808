package entity

import (
	"fmt"
	"github.com/openlyric/bridge/lyric"
	"github.com/shimmeringbee/logwrap"
	"strings"
)

const waterLeakDeviceType = "Water Leak Detector"

// Enumerate constructs entities for every device in a snapshot: a thermostat
// entity per MAC keyed device, an accessory entity per room accessory under
// that MAC, and a leak entity per leak detector. Entities hold identifiers
// only, so enumeration against one generation remains valid for later ones.
func Enumerate(c Coordinator, snapshot *lyric.Snapshot, l logwrap.Logger) []HasDeviceInfo {
	var entities []HasDeviceInfo

	if snapshot == nil {
		return entities
	}

	for _, location := range snapshot.Locations {
		for _, device := range location.Devices {
			switch {
			case strings.EqualFold(device.DeviceType, waterLeakDeviceType):
				entities = append(entities, NewLeakEntity(c, location, device, device.DeviceID, l))
			case device.MACID != "":
				entities = append(entities, NewDeviceEntity(c, location, device, device.MACID))
				entities = append(entities, enumerateAccessories(c, snapshot, location, device)...)
			}
		}
	}

	return entities
}

func enumerateAccessories(c Coordinator, snapshot *lyric.Snapshot, location *lyric.Location, device *lyric.Device) []HasDeviceInfo {
	var entities []HasDeviceInfo

	for _, room := range snapshot.RoomsDict[device.MACID] {
		for _, accessory := range room.Accessories {
			key := fmt.Sprintf("%s_room%s_accessory%s", device.MACID, room.ID, accessory.ID)
			entities = append(entities, NewAccessoryEntity(c, location, device, room, accessory, key))
		}
	}

	return entities
}
