package mqtt

import (
	"context"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/entity"
	"github.com/openlyric/bridge/exporter"
	"github.com/openlyric/bridge/lyric"
	"github.com/openlyric/bridge/registry"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"testing"
	"time"
)

type staticData struct {
	snapshot *lyric.Snapshot
}

func (s staticData) Data() *lyric.Snapshot {
	return s.snapshot
}

func testThermostatEntity() entity.HasDeviceInfo {
	device := &lyric.Device{
		MACID:       "AA:BB",
		DeviceID:    "t1",
		Name:        "Office",
		DeviceModel: "Lyric",
		DeviceType:  "Thermostat",
		Attributes: map[string]any{
			"indoorTemperature": 21.5,
		},
	}
	location := lyric.NewLocation("1", "Home", device)
	snapshot := lyric.NewSnapshot([]*lyric.Location{location}, nil)

	return entity.NewDeviceEntity(staticData{snapshot: snapshot}, location, device, "AA:BB")
}

type mockBridgeMapper struct {
	mock.Mock
}

func (m *mockBridgeMapper) Bridges() map[string]*coordinator.Coordinator {
	args := m.Called()
	return args.Get(0).(map[string]*coordinator.Coordinator)
}

func (m *mockBridgeMapper) BridgeName(c *coordinator.Coordinator) (string, bool) {
	args := m.Called(c)
	return args.String(0), args.Bool(1)
}

func (m *mockBridgeMapper) Entities() []entity.HasDeviceInfo {
	args := m.Called()
	return args.Get(0).([]entity.HasDeviceInfo)
}

func (m *mockBridgeMapper) Entity(id string) (entity.HasDeviceInfo, bool) {
	args := m.Called(id)

	if e := args.Get(0); e == nil {
		return nil, args.Bool(1)
	} else {
		return e.(entity.HasDeviceInfo), args.Bool(1)
	}
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

func TestInterface_Connected(t *testing.T) {
	t.Run("publisher is set correctly", func(t *testing.T) {
		i := Interface{}

		m := &MockPublisher{}
		defer m.AssertExpectations(t)

		err := i.Connected(context.Background(), m.Publish)
		assert.NoError(t, err)

		assert.NotNil(t, i.publisher)
	})

	t.Run("publishes info, name and state topics for each entity on connect", func(t *testing.T) {
		e := testThermostatEntity()

		mapper := &mockBridgeMapper{}
		defer mapper.AssertExpectations(t)
		mapper.On("Entities").Return([]entity.HasDeviceInfo{e})

		r := registry.New()

		i := Interface{
			BridgeMux:             mapper,
			DeviceRegistry:        &r,
			DeviceExporter:        exporter.NewDeviceExporter(&r),
			Logger:                logwrap.New(discard.Discard()),
			PublishStateOnConnect: true,
			PublishDeviceInfo:     true,
		}

		m := &MockPublisher{}
		defer m.AssertExpectations(t)

		m.On("Publish", mock.Anything, "devices/AA:BB/info", mock.Anything).Return(nil)
		m.On("Publish", mock.Anything, "devices/AA:BB/name", []byte("Office Thermostat")).Return(nil)
		m.On("Publish", mock.Anything, "devices/AA:BB/state", []byte(`{"indoorTemperature":21.5}`)).Return(nil)

		err := i.Connected(context.Background(), m.Publish)
		assert.NoError(t, err)

		time.Sleep(50 * time.Millisecond)
	})
}

func TestInterface_IncomingMessage(t *testing.T) {
	t.Run("a name set message renames the device and raises a metadata event", func(t *testing.T) {
		e := testThermostatEntity()

		mapper := &mockBridgeMapper{}
		defer mapper.AssertExpectations(t)
		mapper.On("Entity", "AA:BB").Return(e, true)

		r := registry.New()
		assert.NoError(t, r.Register("AA:BB", registry.DeviceInfo{
			Identifiers: []registry.Identifier{{Namespace: registry.ConnectionNetworkMAC, ID: "AA:BB"}},
		}))

		bus := coordinator.NewEventBus()
		eventCh := make(chan any, 1)
		bus.Subscribe(eventCh)

		i := Interface{
			BridgeMux:      mapper,
			DeviceRegistry: &r,
			EventPublisher: bus,
			Logger:         logwrap.New(discard.Discard()),
		}

		err := i.IncomingMessage(context.Background(), "devices/AA:BB/name/set", []byte("Study"))
		assert.NoError(t, err)

		entry, _ := r.Device("AA:BB")
		assert.Equal(t, "Study", entry.Metadata.Name)

		assert.Equal(t, registry.DeviceMetadataUpdated{Identifier: "AA:BB"}, <-eventCh)
	})

	t.Run("unroutable topics error", func(t *testing.T) {
		mapper := &mockBridgeMapper{}
		defer mapper.AssertExpectations(t)
		mapper.On("Entity", "unknown").Return(nil, false)

		i := Interface{BridgeMux: mapper}

		assert.ErrorIs(t, i.IncomingMessage(context.Background(), "bogus", nil), UnknownTopic)
		assert.ErrorIs(t, i.IncomingMessage(context.Background(), "devices/unknown/name/set", nil), UnknownDevice)
	})
}
