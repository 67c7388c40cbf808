package entity

import (
	"fmt"
	"github.com/openlyric/bridge/lyric"
	"github.com/openlyric/bridge/registry"
)

var _ HasDeviceInfo = (*AccessoryEntity)(nil)

// AccessoryEntity resolves a room accessory beneath a thermostat, a
// sub-device of the thermostat in the device registry.
type AccessoryEntity struct {
	*DeviceEntity

	roomID      string
	accessoryID string
}

func NewAccessoryEntity(c Coordinator, location *lyric.Location, device *lyric.Device, room *lyric.Room, accessory *lyric.Accessory, key string) *AccessoryEntity {
	return &AccessoryEntity{
		DeviceEntity: NewDeviceEntity(c, location, device, key),
		roomID:       room.ID,
		accessoryID:  accessory.ID,
	}
}

func (e *AccessoryEntity) Room() (*lyric.Room, error) {
	room, found := e.coordinator.Data().RoomsDict[e.macID][e.roomID]
	if !found {
		return nil, fmt.Errorf("%w: %s room %s", ErrRoomNotFound, e.macID, e.roomID)
	}

	return room, nil
}

func (e *AccessoryEntity) Accessory() (*lyric.Accessory, error) {
	room, err := e.Room()
	if err != nil {
		return nil, err
	}

	for _, accessory := range room.Accessories {
		if accessory.ID == e.accessoryID {
			return accessory, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrAccessoryNotFound, e.accessoryID)
}

func (e *AccessoryEntity) DeviceInfo() (registry.DeviceInfo, error) {
	room, err := e.Room()
	if err != nil {
		return registry.DeviceInfo{}, err
	}

	return registry.DeviceInfo{
		Identifiers: []registry.Identifier{
			{
				Namespace: registry.NamespaceRoomAccessory,
				ID:        fmt.Sprintf("%s_room%s_accessory%s", e.macID, e.roomID, e.accessoryID),
			},
		},
		Manufacturer: "Honeywell",
		Model:        "RCHTSENSOR",
		Name:         fmt.Sprintf("%s Sensor", room.RoomName),
		ViaDevice:    &registry.Identifier{Namespace: registry.ConnectionNetworkMAC, ID: e.macID},
	}, nil
}
