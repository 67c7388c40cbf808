package entity

import (
	"context"
	"fmt"
	"github.com/openlyric/bridge/lyric"
	"github.com/openlyric/bridge/registry"
	"github.com/shimmeringbee/logwrap"
)

var _ HasDeviceInfo = (*LeakEntity)(nil)

// LeakEntity resolves a water leak detector, which carries a cloud device id
// rather than a MAC. It does not share the thermostat entity's lookup path:
// the device mapping may be keyed under a different id than the one the
// cloud reports for the detector, so a keyed miss falls back to a scan.
type LeakEntity struct {
	coordinator Coordinator
	logger      logwrap.Logger

	locationID string
	deviceID   string
	key        string
}

func NewLeakEntity(c Coordinator, location *lyric.Location, device *lyric.Device, key string, l logwrap.Logger) *LeakEntity {
	return &LeakEntity{
		coordinator: c,
		logger:      l,
		locationID:  location.LocationID,
		deviceID:    device.DeviceID,
		key:         key,
	}
}

// UniqueID returns the key supplied at construction, verbatim.
func (e *LeakEntity) UniqueID() string {
	return e.key
}

func (e *LeakEntity) Location() (*lyric.Location, error) {
	location, found := e.coordinator.Data().LocationsDict[e.locationID]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, e.locationID)
	}

	return location, nil
}

// Device performs a two phase lookup: keyed first, then a linear scan of the
// location's device list comparing device ids. Absence is reported as false,
// never as an error; callers must tolerate a missing device.
func (e *LeakEntity) Device() (*lyric.Device, bool) {
	ctx := context.Background()

	location, err := e.Location()
	if err != nil {
		e.logger.LogDebug(ctx, "Leak device lookup failed to resolve location.", logwrap.Datum("locationId", e.locationID))
		return nil, false
	}

	if device, found := location.DevicesDict[e.deviceID]; found {
		return device, true
	}

	e.logger.LogDebug(ctx, "Leak device keyed lookup missed, scanning device list.", logwrap.Datum("deviceId", e.deviceID), logwrap.Datum("deviceCount", len(location.Devices)))

	for _, device := range location.Devices {
		e.logger.LogDebug(ctx, "Comparing device ids.", logwrap.Datum("candidate", device.DeviceID), logwrap.Datum("wanted", e.deviceID))

		if device.DeviceID == e.deviceID {
			return device, true
		}

		e.logger.LogDebug(ctx, "Device id did not match.",
			logwrap.Datum("candidate", device.DeviceID),
			logwrap.Datum("candidateLength", len(device.DeviceID)),
			logwrap.Datum("wanted", e.deviceID),
			logwrap.Datum("wantedLength", len(e.deviceID)),
			logwrap.Datum("attributeKeys", device.AttributeKeys()))
	}

	return nil, false
}

// DeviceInfo assumes the device's deviceSettings attribute is present and
// well formed; a malformed shape panics rather than degrading quietly.
func (e *LeakEntity) DeviceInfo() (registry.DeviceInfo, error) {
	device, found := e.Device()
	if !found {
		return registry.DeviceInfo{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, e.deviceID)
	}

	settings := device.Attributes["deviceSettings"].(map[string]any)
	userDefinedName := settings["userDefinedName"].(string)

	return registry.DeviceInfo{
		Identifiers: []registry.Identifier{
			{Namespace: registry.NamespaceLyric, ID: e.deviceID},
		},
		Manufacturer: "Honeywell",
		Model:        device.DeviceType,
		Name:         fmt.Sprintf("%s %s", userDefinedName, device.DeviceType),
	}, nil
}
