package coordinator

import (
	"github.com/openlyric/bridge/entity"
	"github.com/shimmeringbee/logwrap"
	"sync"
)

type BridgeMapper interface {
	Bridges() map[string]*Coordinator
	BridgeName(*Coordinator) (string, bool)
	Entities() []entity.HasDeviceInfo
	Entity(string) (entity.HasDeviceInfo, bool)
}

var _ BridgeMapper = (*BridgeMux)(nil)

const muxEventBufferSize = 16

// BridgeMux aggregates the entities of every configured bridge behind a
// single identifier lookup, reindexing a bridge whenever it publishes a new
// snapshot generation and forwarding all bridge events to the central bus.
type BridgeMux struct {
	lock sync.RWMutex

	entityByIdentifier  map[string]entity.HasDeviceInfo
	identifiersByBridge map[string][]string
	bridgeByName        map[string]*Coordinator
	shutdownCh          []chan struct{}

	eventPublisher EventPublisher
	logger         logwrap.Logger
}

func NewBridgeMux(publisher EventPublisher, l logwrap.Logger) *BridgeMux {
	return &BridgeMux{
		entityByIdentifier:  map[string]entity.HasDeviceInfo{},
		identifiersByBridge: map[string][]string{},
		bridgeByName:        map[string]*Coordinator{},
		eventPublisher:      publisher,
		logger:              l,
	}
}

func (m *BridgeMux) Add(n string, c *Coordinator, events EventSubscriber) {
	m.lock.Lock()
	m.bridgeByName[n] = c

	shutCh := make(chan struct{}, 1)
	m.shutdownCh = append(m.shutdownCh, shutCh)
	m.lock.Unlock()

	eventCh := make(chan any, muxEventBufferSize)
	events.Subscribe(eventCh)

	m.indexBridge(n, c)

	go m.monitorBridge(n, c, events, eventCh, shutCh)
}

func (m *BridgeMux) monitorBridge(n string, c *Coordinator, events EventSubscriber, eventCh chan any, shutCh chan struct{}) {
	for {
		select {
		case event := <-eventCh:
			if _, updated := event.(SnapshotUpdated); updated {
				m.indexBridge(n, c)
			}

			m.eventPublisher.Publish(event)
		case <-shutCh:
			events.Unsubscribe(eventCh)
			return
		}
	}
}

func (m *BridgeMux) indexBridge(n string, c *Coordinator) {
	entities := entity.Enumerate(c, c.Data(), m.logger)

	seen := make(map[string]entity.HasDeviceInfo, len(entities))
	identifiers := make([]string, 0, len(entities))

	for _, e := range entities {
		seen[e.UniqueID()] = e
		identifiers = append(identifiers, e.UniqueID())
	}

	m.lock.Lock()

	var added []entity.HasDeviceInfo
	var removed []string

	for _, id := range m.identifiersByBridge[n] {
		if _, present := seen[id]; !present {
			delete(m.entityByIdentifier, id)
			removed = append(removed, id)
		}
	}

	for id, e := range seen {
		if _, present := m.entityByIdentifier[id]; !present {
			added = append(added, e)
		}

		m.entityByIdentifier[id] = e
	}

	m.identifiersByBridge[n] = identifiers

	m.lock.Unlock()

	for _, e := range added {
		m.eventPublisher.Publish(EntityAdded{Bridge: n, Entity: e})
	}

	for _, id := range removed {
		m.eventPublisher.Publish(EntityRemoved{Bridge: n, UniqueID: id})
	}
}

func (m *BridgeMux) Bridges() map[string]*Coordinator {
	m.lock.RLock()
	defer m.lock.RUnlock()

	result := make(map[string]*Coordinator, len(m.bridgeByName))
	for k, v := range m.bridgeByName {
		result[k] = v
	}
	return result
}

func (m *BridgeMux) BridgeName(c *Coordinator) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	for name, byName := range m.bridgeByName {
		if byName == c {
			return name, true
		}
	}

	return "", false
}

func (m *BridgeMux) Entities() []entity.HasDeviceInfo {
	m.lock.RLock()
	defer m.lock.RUnlock()

	result := make([]entity.HasDeviceInfo, 0, len(m.entityByIdentifier))
	for _, e := range m.entityByIdentifier {
		result = append(result, e)
	}
	return result
}

func (m *BridgeMux) Entity(id string) (entity.HasDeviceInfo, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	e, found := m.entityByIdentifier[id]
	return e, found
}

func (m *BridgeMux) Stop() {
	m.lock.RLock()
	defer m.lock.RUnlock()

	for _, ch := range m.shutdownCh {
		ch <- struct{}{}
	}
}
