package v1

import (
	"context"
	"errors"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/entity"
	"github.com/openlyric/bridge/exporter"
	"github.com/openlyric/bridge/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"testing"
)

func TestHttpEventMapper_MapEvent(t *testing.T) {
	t.Run("a snapshot update maps to a device update per entity", func(t *testing.T) {
		e := testThermostatEntity()

		mbm := &mockBridgeMapper{}
		defer mbm.AssertExpectations(t)
		mbm.On("Entities").Return([]entity.HasDeviceInfo{e})

		mde := &mockDeviceExporter{}
		defer mde.AssertExpectations(t)
		mde.On("ExportEntity", mock.Anything, e).Return(exporter.ExportedDevice{Identifier: "AA:BB"}, nil)

		m := httpEventMapper{bridgeMapper: mbm, deviceExporter: mde}

		msgs, err := m.MapEvent(context.Background(), coordinator.SnapshotUpdated{})
		assert.NoError(t, err)
		assert.Len(t, msgs, 1)
		assert.Contains(t, string(msgs[0]), exporter.DeviceUpdateMessageName)
		assert.Contains(t, string(msgs[0]), `"identifier":"AA:BB"`)
	})

	t.Run("an entity removal maps to a device remove message", func(t *testing.T) {
		m := httpEventMapper{}

		msgs, err := m.MapEvent(context.Background(), coordinator.EntityRemoved{UniqueID: "AA:BB"})
		assert.NoError(t, err)
		assert.Len(t, msgs, 1)
		assert.Contains(t, string(msgs[0]), exporter.DeviceRemoveMessageName)
		assert.Contains(t, string(msgs[0]), `"AA:BB"`)
	})

	t.Run("a failed poll maps to a poll failed message", func(t *testing.T) {
		m := httpEventMapper{}

		msgs, err := m.MapEvent(context.Background(), coordinator.PollFailed{Err: errors.New("boom")})
		assert.NoError(t, err)
		assert.Len(t, msgs, 1)
		assert.Contains(t, string(msgs[0]), exporter.PollFailedMessageName)
		assert.Contains(t, string(msgs[0]), "boom")
	})

	t.Run("an area removal maps to an area remove message", func(t *testing.T) {
		m := httpEventMapper{}

		msgs, err := m.MapEvent(context.Background(), registry.AreaRemoved{Identifier: 42})
		assert.NoError(t, err)
		assert.Len(t, msgs, 1)
		assert.Contains(t, string(msgs[0]), exporter.AreaRemoveMessageName)
	})

	t.Run("unknown events map to nothing", func(t *testing.T) {
		m := httpEventMapper{}

		msgs, err := m.MapEvent(context.Background(), struct{}{})
		assert.NoError(t, err)
		assert.Nil(t, msgs)
	})
}

func TestHttpEventMapper_InitialEvents(t *testing.T) {
	t.Run("emits areas before devices", func(t *testing.T) {
		r := registry.New()
		r.NewArea("Upstairs")

		e := testThermostatEntity()

		mbm := &mockBridgeMapper{}
		defer mbm.AssertExpectations(t)
		mbm.On("Entities").Return([]entity.HasDeviceInfo{e})

		mde := &mockDeviceExporter{}
		defer mde.AssertExpectations(t)
		mde.On("ExportEntity", mock.Anything, e).Return(exporter.ExportedDevice{Identifier: "AA:BB"}, nil)

		m := httpEventMapper{bridgeMapper: mbm, deviceExporter: mde, deviceRegistry: &r}

		msgs, err := m.InitialEvents(context.Background())
		assert.NoError(t, err)
		assert.Len(t, msgs, 2)
		assert.Contains(t, string(msgs[0]), exporter.AreaUpdateMessageName)
		assert.Contains(t, string(msgs[1]), exporter.DeviceUpdateMessageName)
	})
}
