package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/entity"
	"github.com/openlyric/bridge/exporter"
	"github.com/openlyric/bridge/registry"
	"github.com/shimmeringbee/logwrap"
	"strings"
	"time"
)

type Publisher func(ctx context.Context, topic string, payload []byte) error

type mqttError string

func (m mqttError) Error() string {
	return string(m)
}

const UnknownTopic = mqttError("unknown topic")
const UnknownDevice = mqttError("unknown device")

type Interface struct {
	publisher Publisher
	stop      chan bool

	BridgeMux       coordinator.BridgeMapper
	DeviceRegistry  *registry.Registry
	EventSubscriber coordinator.EventSubscriber
	EventPublisher  coordinator.EventPublisher

	DeviceExporter exporter.DeviceExporter
	Logger         logwrap.Logger

	PublishStateOnConnect bool
	PublishDeviceInfo     bool
}

// IncomingMessage routes a message from the broker; the only writable topic
// is devices/<identifier>/name/set, carrying the new name as its payload.
func (i *Interface) IncomingMessage(ctx context.Context, topic string, payload []byte) error {
	topicParts := strings.Split(topic, "/")

	if len(topicParts) > 0 {
		switch topicParts[0] {
		case "devices":
			return i.incomingMessageDevices(ctx, topicParts[1:], payload)
		}
	}

	return fmt.Errorf("%w: %s", UnknownTopic, topic)
}

func (i *Interface) incomingMessageDevices(ctx context.Context, topic []string, payload []byte) error {
	if len(topic) > 0 {
		if e, ok := i.BridgeMux.Entity(topic[0]); ok {
			return i.incomingMessageDevicesWith(ctx, topic[1:], payload, e)
		}
	}

	return fmt.Errorf("%w: %s", UnknownDevice, topic)
}

func (i *Interface) incomingMessageDevicesWith(ctx context.Context, topic []string, payload []byte, e entity.HasDeviceInfo) error {
	if len(topic) == 2 && topic[0] == "name" && topic[1] == "set" {
		if err := i.DeviceRegistry.NameDevice(e.UniqueID(), string(payload)); err != nil {
			return fmt.Errorf("unable to name device: %w", err)
		}

		i.EventPublisher.Publish(registry.DeviceMetadataUpdated{Identifier: e.UniqueID()})
		return nil
	}

	return fmt.Errorf("%w: %s", UnknownTopic, topic)
}

func EmptyPublisher(ctx context.Context, topic string, payload []byte) error {
	return nil
}

func (i *Interface) Connected(ctx context.Context, publisher Publisher) error {
	i.publisher = publisher

	if i.PublishStateOnConnect {
		i.Logger.LogInfo(ctx, "MQTT connected, publishing current state of all devices.")
		go i.publishAll()
	}

	return nil
}

func (i *Interface) Disconnected() {
	i.publisher = EmptyPublisher
}

const MaximumPublishAllTime = 10 * time.Second

func (i *Interface) publishAll() {
	ctx, cancel := context.WithTimeout(context.Background(), MaximumPublishAllTime)
	defer cancel()

	for _, e := range i.BridgeMux.Entities() {
		i.publishEntity(ctx, e)
	}
}

func (i *Interface) publishEntity(ctx context.Context, e entity.HasDeviceInfo) {
	entityCtx := i.Logger.AddOptionsToContext(ctx, logwrap.Datum("device", e.UniqueID()))

	exported, err := i.DeviceExporter.ExportEntity(entityCtx, e)
	if err != nil {
		i.Logger.LogWarn(entityCtx, "Failed to export entity for publication.", logwrap.Err(err))
		return
	}

	topic := fmt.Sprintf("devices/%s", exported.Identifier)

	if i.PublishDeviceInfo {
		if err := i.publishJSON(entityCtx, fmt.Sprintf("%s/info", topic), exported.Info); err != nil {
			i.Logger.LogError(entityCtx, "Failed to publish device info.", logwrap.Err(err))
		}

		if err := i.publisher(entityCtx, fmt.Sprintf("%s/name", topic), fmtString(displayName(exported))); err != nil {
			i.Logger.LogError(entityCtx, "Failed to publish device name.", logwrap.Err(err))
		}
	}

	if exported.State != nil {
		if err := i.publishJSON(entityCtx, fmt.Sprintf("%s/state", topic), exported.State); err != nil {
			i.Logger.LogError(entityCtx, "Failed to publish device state.", logwrap.Err(err))
		}
	}
}

// clearEntity publishes empty payloads so retained topics for a removed
// device are dropped by the broker.
func (i *Interface) clearEntity(ctx context.Context, identifier string) {
	topic := fmt.Sprintf("devices/%s", identifier)

	for _, leaf := range []string{"info", "name", "state"} {
		if err := i.publisher(ctx, fmt.Sprintf("%s/%s", topic, leaf), nil); err != nil {
			i.Logger.LogError(ctx, "Failed to clear retained topic.", logwrap.Datum("topic", leaf), logwrap.Err(err))
		}
	}
}

func (i *Interface) publishJSON(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := i.publisher(ctx, topic, payload); err != nil {
		return fmt.Errorf("failed to publish data to mqtt: %w", err)
	}

	return nil
}

func (i *Interface) Start() {
	i.publisher = EmptyPublisher
	i.stop = make(chan bool, 1)

	ch := make(chan any, 100)
	i.EventSubscriber.Subscribe(ch)

	go i.handleEvents(ch)
}

func (i *Interface) Stop() {
	if i.stop != nil {
		i.stop <- true
	}
}

func (i *Interface) handleEvents(ch chan any) {
	for {
		select {
		case event := <-ch:
			i.serviceUpdateOnEvent(event)
		case <-i.stop:
			return
		}
	}
}

const MaximumServiceUpdateTime = 1 * time.Second

func (i *Interface) serviceUpdateOnEvent(e any) {
	ctx, cancel := context.WithTimeout(context.Background(), MaximumServiceUpdateTime)
	defer cancel()

	switch event := e.(type) {
	case coordinator.SnapshotUpdated:
		for _, ent := range i.BridgeMux.Entities() {
			i.publishEntity(ctx, ent)
		}
	case coordinator.EntityAdded:
		i.publishEntity(ctx, event.Entity)
	case coordinator.EntityRemoved:
		i.clearEntity(ctx, event.UniqueID)
	case registry.DeviceMetadataUpdated:
		if ent, found := i.BridgeMux.Entity(event.Identifier); found {
			i.publishEntity(ctx, ent)
		}
	}
}

func displayName(exported exporter.ExportedDevice) string {
	if exported.Metadata.Name != "" {
		return exported.Metadata.Name
	}

	return exported.Info.Name
}

func fmtString(s string) []byte {
	if len(s) == 0 {
		return []byte("null")
	}

	return []byte(s)
}
