package v1

import (
	"context"
	"encoding/json"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/entity"
	"github.com/openlyric/bridge/exporter"
	"github.com/openlyric/bridge/registry"
)

type eventMapper interface {
	MapEvent(ctx context.Context, e any) ([][]byte, error)
	InitialEvents(ctx context.Context) ([][]byte, error)
}

var _ eventMapper = (*httpEventMapper)(nil)

// httpEventMapper converts bus events into the wire messages pushed over the
// SSE and websocket feeds. A new snapshot generation refreshes every entity,
// registry mutations refresh only the device or area they touched.
type httpEventMapper struct {
	bridgeMapper   coordinator.BridgeMapper
	deviceExporter deviceExporter
	deviceRegistry *registry.Registry
}

func (h httpEventMapper) MapEvent(ctx context.Context, v any) ([][]byte, error) {
	switch e := v.(type) {
	case coordinator.SnapshotUpdated:
		var events [][]byte

		for _, ent := range h.bridgeMapper.Entities() {
			if data, err := h.generateDeviceUpdateMessage(ctx, ent); err == nil {
				events = append(events, data...)
			}
		}

		return events, nil
	case coordinator.EntityAdded:
		return h.generateDeviceUpdateMessage(ctx, e.Entity)
	case coordinator.EntityRemoved:
		return h.generateDeviceRemove(e.UniqueID)
	case coordinator.PollFailed:
		return h.generatePollFailed(e)

	case registry.DeviceMetadataUpdated:
		if ent, found := h.bridgeMapper.Entity(e.Identifier); found {
			return h.generateDeviceUpdateMessage(ctx, ent)
		}

		return nil, nil

	case registry.AreaCreated:
		return h.generateAreaUpdate(e.Identifier, e.Name, registry.RootAreaId)
	case registry.AreaUpdated:
		return h.generateAreaUpdate(e.Identifier, e.Name, e.Parent)
	case registry.AreaRemoved:
		return h.generateAreaRemove(e.Identifier)
	}

	return nil, nil
}

func (h httpEventMapper) InitialEvents(ctx context.Context) ([][]byte, error) {
	var events [][]byte

	for _, a := range h.deviceRegistry.RootAreas() {
		events = append(events, h.initialEventsArea(a)...)
	}

	for _, ent := range h.bridgeMapper.Entities() {
		if data, err := h.generateDeviceUpdateMessage(ctx, ent); err == nil {
			events = append(events, data...)
		}
	}

	return events, nil
}

func (h httpEventMapper) initialEventsArea(a registry.Area) [][]byte {
	var events [][]byte

	if data, err := h.generateAreaUpdate(a.Identifier, a.Name, a.ParentArea); err == nil {
		events = append(events, data...)
	}

	for _, subareaId := range a.SubAreas {
		if subarea, found := h.deviceRegistry.Area(subareaId); found {
			events = append(events, h.initialEventsArea(subarea)...)
		}
	}

	return events
}

func (h httpEventMapper) generateDeviceUpdateMessage(ctx context.Context, ent entity.HasDeviceInfo) ([][]byte, error) {
	exported, err := h.deviceExporter.ExportEntity(ctx, ent)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(exporter.DeviceUpdateMessage{
		DeviceMessage: exporter.DeviceMessage{
			Message: exporter.Message{
				Type: exporter.DeviceUpdateMessageName,
			},
		},
		ExportedDevice: exported,
	})

	return [][]byte{data}, err
}

func (h httpEventMapper) generateDeviceRemove(identifier string) ([][]byte, error) {
	data, err := json.Marshal(exporter.DeviceRemoveMessage{
		DeviceMessage: exporter.DeviceMessage{
			Message: exporter.Message{
				Type: exporter.DeviceRemoveMessageName,
			},
		},
		Identifier: identifier,
	})

	return [][]byte{data}, err
}

func (h httpEventMapper) generateAreaUpdate(identifier int, name string, parent int) ([][]byte, error) {
	data, err := json.Marshal(exporter.AreaUpdateMessage{
		AreaMessage: exporter.AreaMessage{
			Message: exporter.Message{
				Type: exporter.AreaUpdateMessageName,
			},
			Identifier: identifier,
		},
		Name:   name,
		Parent: parent,
	})

	return [][]byte{data}, err
}

func (h httpEventMapper) generateAreaRemove(identifier int) ([][]byte, error) {
	data, err := json.Marshal(exporter.AreaRemoveMessage{
		AreaMessage: exporter.AreaMessage{
			Message: exporter.Message{
				Type: exporter.AreaRemoveMessageName,
			},
			Identifier: identifier,
		},
	})

	return [][]byte{data}, err
}

func (h httpEventMapper) generatePollFailed(e coordinator.PollFailed) ([][]byte, error) {
	data, err := json.Marshal(exporter.PollFailedMessage{
		Message: exporter.Message{
			Type: exporter.PollFailedMessageName,
		},
		Error: e.Err.Error(),
	})

	return [][]byte{data}, err
}
