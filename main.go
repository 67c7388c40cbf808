package main

import (
	"context"
	"fmt"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/registry"
	lw "github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/golog"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"
)

func main() {
	ctx := context.Background()
	l := lw.New(golog.Wrap(log.New(os.Stderr, "", log.LstdFlags)))

	l.LogInfo(ctx, "OpenLyric: Bridge - Starting...")

	directories := enumerateDirectories(ctx, l)

	l.LogInfo(ctx, "Directory enumeration complete.", lw.Datum("directories", directories))

	l, err := configureLogging(filepath.Join(directories.Config, "logging"), directories.Log, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to configure logging.", lw.Err(err))
	}

	bridgeCfgs, err := loadBridgeConfigurations(filepath.Join(directories.Config, "bridges"))
	if err != nil {
		l.LogFatal(ctx, "Failed to load bridge configurations.", lw.Err(err))
	}

	interfaceCfgs, err := loadInterfaceConfigurations(filepath.Join(directories.Config, "interfaces"))
	if err != nil {
		l.LogFatal(ctx, "Failed to load interface configurations.", lw.Err(err))
	}

	l.LogInfo(ctx, "Initialising device registry.")
	deviceRegistry := registry.New()

	shutdownRegistry, err := initialiseRegistry(l, directories.Data, &deviceRegistry)
	if err != nil {
		l.LogFatal(ctx, "Failed to initialise device registry.", lw.Err(err))
	}

	l.LogInfo(ctx, "Loaded bridge configurations.", lw.Datum("configCount", len(bridgeCfgs)))

	eventbus := coordinator.NewEventBus()
	bridgeMux := coordinator.NewBridgeMux(eventbus, l)

	l.LogInfo(ctx, "Linking device registry to mux.")
	registryMuxCh := updateRegistryFromMux(&deviceRegistry, eventbus)

	l.LogInfo(ctx, "Starting interfaces.")
	startedInterfaces, err := startInterfaces(interfaceCfgs, bridgeMux, &deviceRegistry, eventbus, directories, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to start interfaces.", lw.Err(err))
	}

	l.LogInfo(ctx, "Starting bridges.")
	startedBridges, err := startBridges(bridgeCfgs, bridgeMux, directories, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to start bridges.", lw.Err(err))
	}

	l.LogInfo(ctx, "Bridge ready.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, os.Kill)

	s := <-signalCh
	l.LogInfo(ctx, "Signal received, shutting down.", lw.Datum("signal", s.String()))

	for _, intf := range startedInterfaces {
		l.LogInfo(ctx, "Shutting down interface.", lw.Datum("interface", intf.Name))

		if err := intf.Shutdown(); err != nil {
			l.LogError(ctx, "Failed to shutdown interface.", lw.Err(err), lw.Datum("interface", intf.Name))
		}
	}

	for _, b := range startedBridges {
		l.LogInfo(ctx, "Shutting down bridge.", lw.Datum("bridge", b.Name))

		b.Shutdown()
	}

	l.LogInfo(ctx, "Shutting down bridge mux.")
	bridgeMux.Stop()

	l.LogInfo(ctx, "Shutting down device registry mux link.")
	registryMuxCh <- nil

	l.LogInfo(ctx, "Shutting down device registry.")
	shutdownRegistry()

	l.LogInfo(ctx, "Shut down complete.")
}

func initialiseRegistry(l lw.Logger, dir string, r *registry.Registry) (func(), error) {
	areaFile := filepath.Join(dir, "areas.json")
	deviceFile := filepath.Join(dir, "devices.json")

	if err := registry.LoadAreas(areaFile, r); err != nil {
		return func() {}, fmt.Errorf("failed to load areas: %w", err)
	}

	if err := registry.LoadDevices(deviceFile, r); err != nil {
		return func() {}, fmt.Errorf("failed to load devices: %w", err)
	}

	if err := registry.SaveAreas(areaFile, r); err != nil {
		return func() {}, fmt.Errorf("failed initial save of areas: %w", err)
	}

	if err := registry.SaveDevices(deviceFile, r); err != nil {
		return func() {}, fmt.Errorf("failed initial save of devices: %w", err)
	}

	save := func() {
		if err := registry.SaveAreas(areaFile, r); err != nil {
			l.LogError(context.Background(), "Failed to save areas for device registry.", lw.Err(err))
		}

		if err := registry.SaveDevices(deviceFile, r); err != nil {
			l.LogError(context.Background(), "Failed to save devices for device registry.", lw.Err(err))
		}
	}

	shutCh := make(chan struct{}, 1)

	go func() {
		t := time.NewTicker(1 * time.Minute)

		for {
			select {
			case <-t.C:
				save()
			case <-shutCh:
				t.Stop()
				save()
				return
			}
		}
	}()

	return func() {
		shutCh <- struct{}{}
	}, nil
}

// updateRegistryFromMux keeps the registry's device records in step with the
// entities the mux exposes. Push nil down the returned channel to stop.
func updateRegistryFromMux(r *registry.Registry, bus *coordinator.EventBus) chan any {
	ch := make(chan any, 100)
	bus.Subscribe(ch)

	go func() {
		for e := range ch {
			switch ce := e.(type) {
			case coordinator.EntityAdded:
				if info, err := ce.Entity.DeviceInfo(); err == nil {
					_ = r.Register(ce.Entity.UniqueID(), info)
				}
			case coordinator.EntityRemoved:
				r.Deregister(ce.UniqueID)
			case nil:
				bus.Unsubscribe(ch)
				return
			}
		}
	}()

	return ch
}
