package entity

import (
	"fmt"
	"github.com/openlyric/bridge/lyric"
	"github.com/openlyric/bridge/registry"
)

// Coordinator is the handle entities resolve live state through; each
// property access re-reads the current snapshot generation.
type Coordinator interface {
	Data() *lyric.Snapshot
}

// HasUniqueID is implemented by every entity exposed to the host platform.
type HasUniqueID interface {
	UniqueID() string
}

// HasDeviceInfo is implemented by entities which describe a physical device
// to the device registry.
type HasDeviceInfo interface {
	HasUniqueID
	DeviceInfo() (registry.DeviceInfo, error)
}

type entityError string

func (e entityError) Error() string {
	return string(e)
}

const (
	ErrLocationNotFound  = entityError("location not present in snapshot")
	ErrDeviceNotFound    = entityError("device not present in location")
	ErrRoomNotFound      = entityError("room not present in snapshot")
	ErrAccessoryNotFound = entityError("accessory not present in room")
)

var _ HasUniqueID = (*Entity)(nil)

// Entity resolves a thermostat device within a cached location by MAC id. It
// stores identifiers only; all lookups are against the coordinator's current
// snapshot, so a removed device surfaces as an error rather than stale data.
type Entity struct {
	coordinator Coordinator

	locationID string
	macID      string
	key        string
}

func NewEntity(c Coordinator, location *lyric.Location, device *lyric.Device, key string) *Entity {
	return &Entity{
		coordinator: c,
		locationID:  location.LocationID,
		macID:       device.MACID,
		key:         key,
	}
}

// UniqueID returns the key supplied at construction, verbatim.
func (e *Entity) UniqueID() string {
	return e.key
}

func (e *Entity) Location() (*lyric.Location, error) {
	location, found := e.coordinator.Data().LocationsDict[e.locationID]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, e.locationID)
	}

	return location, nil
}

func (e *Entity) Device() (*lyric.Device, error) {
	location, err := e.Location()
	if err != nil {
		return nil, err
	}

	device, found := location.DevicesDict[e.macID]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, e.macID)
	}

	return device, nil
}

var _ HasDeviceInfo = (*DeviceEntity)(nil)

// DeviceEntity describes a thermostat to the device registry.
type DeviceEntity struct {
	*Entity
}

func NewDeviceEntity(c Coordinator, location *lyric.Location, device *lyric.Device, key string) *DeviceEntity {
	return &DeviceEntity{
		Entity: NewEntity(c, location, device, key),
	}
}

func (e *DeviceEntity) DeviceInfo() (registry.DeviceInfo, error) {
	device, err := e.Device()
	if err != nil {
		return registry.DeviceInfo{}, err
	}

	macIdentifier := registry.Identifier{Namespace: registry.ConnectionNetworkMAC, ID: e.macID}

	return registry.DeviceInfo{
		Identifiers:  []registry.Identifier{macIdentifier},
		Connections:  []registry.Identifier{macIdentifier},
		Manufacturer: "Honeywell",
		Model:        device.DeviceModel,
		Name:         fmt.Sprintf("%s Thermostat", device.Name),
	}, nil
}
