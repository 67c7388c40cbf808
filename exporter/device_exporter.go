package exporter

import (
	"context"
	"fmt"
	"github.com/openlyric/bridge/entity"
	"github.com/openlyric/bridge/registry"
)

// ExportedDevice is the wire shape for one registered device: the registry
// descriptor, any user metadata and the current state read from the snapshot.
type ExportedDevice struct {
	Identifier string                  `json:"identifier"`
	Info       registry.DeviceInfo     `json:"info"`
	Metadata   registry.DeviceMetadata `json:"metadata"`
	State      any                     `json:"state,omitempty"`
}

type ThermostatState struct {
	IndoorTemperature  *float64 `json:"indoorTemperature,omitempty"`
	OutdoorTemperature *float64 `json:"outdoorTemperature,omitempty"`
	Mode               *string  `json:"mode,omitempty"`
}

type AccessoryState struct {
	RoomTemperature float64 `json:"roomTemperature"`
	RoomHumidity    float64 `json:"roomHumidity"`
	RoomMotion      bool    `json:"roomMotion"`
	Temperature     float64 `json:"temperature"`
	Occupancy       bool    `json:"occupancy"`
}

type LeakState struct {
	WaterPresent     bool     `json:"waterPresent"`
	BatteryRemaining *float64 `json:"batteryRemaining,omitempty"`
}

type DeviceExporter interface {
	ExportEntity(context.Context, entity.HasDeviceInfo) (ExportedDevice, error)
}

type deviceExporter struct {
	registry *registry.Registry
}

func NewDeviceExporter(r *registry.Registry) DeviceExporter {
	return &deviceExporter{
		registry: r,
	}
}

func (de *deviceExporter) ExportEntity(_ context.Context, e entity.HasDeviceInfo) (ExportedDevice, error) {
	info, err := e.DeviceInfo()
	if err != nil {
		return ExportedDevice{}, fmt.Errorf("failed to describe entity: %w", err)
	}

	exported := ExportedDevice{
		Identifier: e.UniqueID(),
		Info:       info,
		State:      de.exportState(e),
	}

	if entry, found := de.registry.Device(exported.Identifier); found {
		exported.Metadata = entry.Metadata
	}

	return exported, nil
}

func (de *deviceExporter) exportState(e entity.HasDeviceInfo) any {
	switch concrete := e.(type) {
	case *entity.AccessoryEntity:
		return de.exportAccessoryState(concrete)
	case *entity.DeviceEntity:
		return de.exportThermostatState(concrete)
	case *entity.LeakEntity:
		return de.exportLeakState(concrete)
	default:
		return nil
	}
}

func (de *deviceExporter) exportThermostatState(e *entity.DeviceEntity) any {
	device, err := e.Device()
	if err != nil {
		return nil
	}

	state := &ThermostatState{
		IndoorTemperature:  floatAttribute(device.Attributes, "indoorTemperature"),
		OutdoorTemperature: floatAttribute(device.Attributes, "outdoorTemperature"),
	}

	if changeable, ok := device.Attributes["changeableValues"].(map[string]any); ok {
		if mode, ok := changeable["mode"].(string); ok {
			state.Mode = &mode
		}
	}

	return state
}

func (de *deviceExporter) exportAccessoryState(e *entity.AccessoryEntity) any {
	room, err := e.Room()
	if err != nil {
		return nil
	}

	accessory, err := e.Accessory()
	if err != nil {
		return nil
	}

	return &AccessoryState{
		RoomTemperature: room.RoomAvgTemp,
		RoomHumidity:    room.RoomAvgHumidity,
		RoomMotion:      room.OverallMotion,
		Temperature:     accessory.Temperature,
		Occupancy:       accessory.OccupancyDet,
	}
}

func (de *deviceExporter) exportLeakState(e *entity.LeakEntity) any {
	device, found := e.Device()
	if !found {
		return nil
	}

	waterPresent, _ := device.Attributes["waterPresent"].(bool)

	return &LeakState{
		WaterPresent:     waterPresent,
		BatteryRemaining: floatAttribute(device.Attributes, "batteryRemaining"),
	}
}

func floatAttribute(attributes map[string]any, key string) *float64 {
	if v, ok := attributes[key].(float64); ok {
		return &v
	}

	return nil
}
