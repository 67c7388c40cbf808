package v1

import (
	"context"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/entity"
	"github.com/openlyric/bridge/exporter"
	"github.com/stretchr/testify/mock"
)

type deviceExporter interface {
	ExportEntity(context.Context, entity.HasDeviceInfo) (exporter.ExportedDevice, error)
}

type eventPublisher interface {
	Publish(any)
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

type mockDeviceExporter struct {
	mock.Mock
}

func (m *mockDeviceExporter) ExportEntity(ctx context.Context, e entity.HasDeviceInfo) (exporter.ExportedDevice, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(exporter.ExportedDevice), args.Error(1)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) Publish(e any) {
	m.Called(e)
}
