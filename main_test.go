package main

import (
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/registry"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

type fixedEntity struct {
	id   string
	info registry.DeviceInfo
}

func (f fixedEntity) UniqueID() string {
	return f.id
}

func (f fixedEntity) DeviceInfo() (registry.DeviceInfo, error) {
	return f.info, nil
}

func Test_updateRegistryFromMux(t *testing.T) {
	t.Run("registers a device when an EntityAdded event is received", func(t *testing.T) {
		r := registry.New()
		bus := coordinator.NewEventBus()

		ch := updateRegistryFromMux(&r, bus)
		defer func() {
			ch <- nil
		}()

		bus.Publish(coordinator.EntityAdded{
			Bridge: "home",
			Entity: fixedEntity{
				id: "AA:BB",
				info: registry.DeviceInfo{
					Identifiers: []registry.Identifier{{Namespace: registry.ConnectionNetworkMAC, ID: "AA:BB"}},
					Name:        "Upstairs Thermostat",
				},
			},
		})

		assert.Eventually(t, func() bool {
			_, found := r.Device("AA:BB")
			return found
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("deregisters a device when an EntityRemoved event is received", func(t *testing.T) {
		r := registry.New()
		bus := coordinator.NewEventBus()

		err := r.Register("AA:BB", registry.DeviceInfo{
			Identifiers: []registry.Identifier{{Namespace: registry.ConnectionNetworkMAC, ID: "AA:BB"}},
		})
		assert.NoError(t, err)

		ch := updateRegistryFromMux(&r, bus)
		defer func() {
			ch <- nil
		}()

		bus.Publish(coordinator.EntityRemoved{Bridge: "home", UniqueID: "AA:BB"})

		assert.Eventually(t, func() bool {
			_, found := r.Device("AA:BB")
			return !found
		}, time.Second, 10*time.Millisecond)
	})
}
