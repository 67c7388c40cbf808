package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/openlyric/bridge/config"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/lyric"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/nest"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type StartedBridge struct {
	Name        string
	Coordinator *coordinator.Coordinator
	Shutdown    func()
}

const DefaultPollInterval = 60 * time.Second

func startBridges(cfgs []config.BridgeConfig, mux *coordinator.BridgeMux, directories Directories, l logwrap.Logger) ([]StartedBridge, error) {
	var retBridges []StartedBridge

	for _, cfg := range cfgs {
		dataDir := filepath.Join(directories.Data, "bridges", cfg.Name)

		if err := os.MkdirAll(dataDir, DefaultDirectoryPermissions); err != nil {
			return nil, fmt.Errorf("failed to create bridge data directory '%s': %w", dataDir, err)
		}

		if c, bus, shutdown, err := startBridge(cfg, dataDir, l); err != nil {
			return nil, fmt.Errorf("failed to start bridge '%s': %w", cfg.Name, err)
		} else {
			mux.Add(cfg.Name, c, bus)
			retBridges = append(retBridges, StartedBridge{
				Name:        cfg.Name,
				Coordinator: c,
				Shutdown:    shutdown,
			})
		}
	}

	return retBridges, nil
}

func startBridge(cfg config.BridgeConfig, cfgDir string, l logwrap.Logger) (*coordinator.Coordinator, *coordinator.EventBus, func(), error) {
	wl := logwrap.New(nest.Wrap(l))
	wl.AddOptionsToLogger(logwrap.Datum("bridge", cfg.Name))

	switch bCfg := cfg.Config.(type) {
	case *config.LyricConfig:
		wl.AddOptionsToLogger(logwrap.Source("lyric"))
		return startLyricBridge(*bCfg, cfgDir, wl)
	default:
		return nil, nil, nil, fmt.Errorf("unknown bridge type loaded: %s", cfg.Type)
	}
}

func startLyricBridge(cfg config.LyricConfig, cfgDir string, l logwrap.Logger) (*coordinator.Coordinator, *coordinator.EventBus, func(), error) {
	client, err := constructSnapshotClient(cfg.Source)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to construct snapshot client: %w", err)
	}

	if len(cfg.Locations) > 0 {
		client = filterLocations(client, cfg.Locations)
	}

	interval := DefaultPollInterval
	if cfg.PollInterval > 0 {
		interval = time.Duration(cfg.PollInterval) * time.Second
	}

	bus := coordinator.NewEventBus()

	c := coordinator.New(client, interval, bus, l)

	if err := c.Poll(context.Background()); err != nil {
		l.LogWarn(context.Background(), "Initial snapshot poll failed, continuing with empty state.", logwrap.Err(err))
	}

	c.Start()

	return c, bus, func() {
		c.Stop()
	}, nil
}

func constructSnapshotClient(cfg config.SourceConfig) (lyric.Client, error) {
	switch srcCfg := cfg.Config.(type) {
	case *config.FileSource:
		return &lyric.FileClient{Path: srcCfg.Path}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot source type loaded: %s", cfg.Type)
	}
}

// filterLocations narrows a client to an allow list of location ids, devices
// in other locations never reach the coordinator.
func filterLocations(c lyric.Client, allowed []string) lyric.Client {
	allow := map[string]bool{}
	for _, id := range allowed {
		allow[id] = true
	}

	return lyric.ClientFunc(func(ctx context.Context) (*lyric.Snapshot, error) {
		snapshot, err := c.Snapshot(ctx)
		if err != nil {
			return nil, err
		}

		filtered := &lyric.Snapshot{
			LocationsDict: map[string]*lyric.Location{},
			RoomsDict:     snapshot.RoomsDict,
		}

		for _, loc := range snapshot.Locations {
			if allow[loc.LocationID] {
				filtered.Locations = append(filtered.Locations, loc)
				filtered.LocationsDict[loc.LocationID] = loc
			}
		}

		return filtered, nil
	})
}

func loadBridgeConfigurations(dir string) ([]config.BridgeConfig, error) {
	if err := os.MkdirAll(dir, DefaultDirectoryPermissions); err != nil {
		return nil, fmt.Errorf("failed to ensure bridge configuration directory exists: %w", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory listing for bridge configurations: %w", err)
	}

	var retCfgs []config.BridgeConfig

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		fullPath := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read bridge configuration file '%s': %w", fullPath, err)
		}

		cfg := config.BridgeConfig{
			Name: strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())),
		}

		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse bridge configuration file '%s': %w", fullPath, err)
		}

		retCfgs = append(retCfgs, cfg)
	}

	return retCfgs, nil
}
