package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type Area struct {
	Identifier int
	Name       string
	ParentArea int

	SubAreas []int    `json:"-"`
	Devices  []string `json:"-"`
}

// DeviceMetadata is the user supplied portion of a registry entry, it
// survives restarts while descriptors are re-registered from live state.
type DeviceMetadata struct {
	Name  string `json:",omitempty"`
	Areas []int  `json:",omitempty"`
}

// DeviceEntry is a registered device: the descriptor supplied by an entity
// adapter plus any user metadata.
type DeviceEntry struct {
	Identifier string
	Info       DeviceInfo
	Metadata   DeviceMetadata
}

// DisplayName prefers the user assigned name over the descriptor name.
func (d DeviceEntry) DisplayName() string {
	if d.Metadata.Name != "" {
		return d.Metadata.Name
	}

	return d.Info.Name
}

type Registry struct {
	nextAreaId *int64

	areaLock  *sync.Mutex
	areas     map[int]*Area
	rootAreas []int

	deviceLock *sync.Mutex
	devices    map[string]*deviceRecord
}

type deviceRecord struct {
	info     DeviceInfo
	metadata DeviceMetadata
}

type RegistryError string

func (r RegistryError) Error() string {
	return string(r)
}

const (
	ErrCircularReference = RegistryError("operation would result in circular reference in area")
	ErrNotFound          = RegistryError("not found")
	ErrMoveSameArea      = RegistryError("area can not be moved to itself")
	ErrOrphanArea        = RegistryError("operation would result in orphaned area")
	ErrHasDevices        = RegistryError("area has devices")
	ErrNoIdentifier      = RegistryError("descriptor has no identifiers")
)

const RootAreaId int = 0

func New() Registry {
	initialAreaId := int64(0)
	return Registry{
		nextAreaId: &initialAreaId,
		areaLock:   &sync.Mutex{},
		areas:      map[int]*Area{},
		rootAreas:  nil,
		deviceLock: &sync.Mutex{},
		devices:    map[string]*deviceRecord{},
	}
}

func (r *Registry) Area(id int) (Area, bool) {
	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	if area, found := r.areas[id]; found {
		return *area, found
	} else {
		return Area{}, found
	}
}

func (r *Registry) RootAreas() []Area {
	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	var rootAreas []Area

	for _, areaId := range r.rootAreas {
		rootAreas = append(rootAreas, *r.areas[areaId])
	}

	return rootAreas
}

func (r *Registry) NewArea(name string) Area {
	newId := int(atomic.AddInt64(r.nextAreaId, 1))

	newArea := &Area{
		Identifier: newId,
		Name:       name,
		SubAreas:   nil,
		Devices:    nil,
	}

	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	r.rootAreas = append(r.rootAreas, newId)
	r.areas[newId] = newArea

	return *newArea
}

func filterInt(haystack []int, needle int) []int {
	var result []int

	for _, check := range haystack {
		if check != needle {
			result = append(result, check)
		}
	}

	return result
}

func filterString(haystack []string, needle string) []string {
	var result []string

	for _, check := range haystack {
		if check != needle {
			result = append(result, check)
		}
	}

	return result
}

func (r *Registry) DeleteArea(id int) error {
	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	area, found := r.areas[id]
	if !found {
		return fmt.Errorf("area not found: %w", ErrNotFound)
	}

	if len(area.SubAreas) > 0 {
		return ErrOrphanArea
	}

	if len(area.Devices) > 0 {
		return ErrHasDevices
	}

	delete(r.areas, id)

	if area.ParentArea == RootAreaId {
		r.rootAreas = filterInt(r.rootAreas, id)
	} else {
		parent, found := r.areas[area.ParentArea]
		if found {
			parent.SubAreas = filterInt(parent.SubAreas, id)
		}
	}

	return nil
}

func (r *Registry) MoveArea(id int, newParentId int) error {
	if id == newParentId {
		return ErrMoveSameArea
	}

	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	area, found := r.areas[id]
	if !found {
		return fmt.Errorf("area not found: %w", ErrNotFound)
	}

	var newParent *Area

	if newParentId != RootAreaId {
		newParent, found = r.areas[newParentId]
		if !found {
			return fmt.Errorf("new parent not found: %w", ErrNotFound)
		}
	}

	for _, subId := range r.enumerateAreaDescendents(id) {
		if newParentId == subId {
			return ErrCircularReference
		}
	}

	if area.ParentArea == RootAreaId {
		r.rootAreas = filterInt(r.rootAreas, id)
	} else {
		if oldParent, found := r.areas[area.ParentArea]; !found {
			return fmt.Errorf("old parent not found: %w", ErrNotFound)
		} else {
			oldParent.SubAreas = filterInt(oldParent.SubAreas, id)
		}
	}

	area.ParentArea = newParentId

	if newParent == nil {
		r.rootAreas = append(r.rootAreas, id)
	} else {
		newParent.SubAreas = append(newParent.SubAreas, id)
	}

	return nil
}

func (r *Registry) NameArea(id int, name string) error {
	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	if area, found := r.areas[id]; found {
		area.Name = name
		return nil
	} else {
		return ErrNotFound
	}
}

// Register upserts the descriptor for a device; user metadata on an existing
// entry survives. The id is the entity's unique id, descriptors additionally
// carry their own namespaced identifiers.
func (r *Registry) Register(id string, info DeviceInfo) error {
	if _, ok := info.PrimaryIdentifier(); !ok {
		return ErrNoIdentifier
	}

	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	if record, found := r.devices[id]; found {
		record.info = info
		return nil
	}

	r.devices[id] = &deviceRecord{info: info}
	return nil
}

func (r *Registry) Device(id string) (DeviceEntry, bool) {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	if record, found := r.devices[id]; found {
		return DeviceEntry{Identifier: id, Info: record.info, Metadata: record.metadata}, true
	} else {
		return DeviceEntry{}, false
	}
}

func (r *Registry) Devices() []DeviceEntry {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	var entries []DeviceEntry

	for id, record := range r.devices {
		entries = append(entries, DeviceEntry{Identifier: id, Info: record.info, Metadata: record.metadata})
	}

	return entries
}

// Children returns devices whose descriptor links to the given device via
// their ViaDevice reference.
func (r *Registry) Children(id string) []DeviceEntry {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	var entries []DeviceEntry

	for childId, record := range r.devices {
		if record.info.ViaDevice != nil && record.info.ViaDevice.ID == id {
			entries = append(entries, DeviceEntry{Identifier: childId, Info: record.info, Metadata: record.metadata})
		}
	}

	return entries
}

func (r *Registry) NameDevice(id string, name string) error {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	if record, found := r.devices[id]; found {
		record.metadata.Name = name
		return nil
	} else {
		return ErrNotFound
	}
}

func (r *Registry) Deregister(id string) {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	record, found := r.devices[id]
	if !found {
		return
	}

	if len(record.metadata.Areas) > 0 {
		r.areaLock.Lock()
		defer r.areaLock.Unlock()

		for _, areaId := range record.metadata.Areas {
			area, areaFound := r.areas[areaId]
			if areaFound {
				area.Devices = filterString(area.Devices, id)
			}
		}
	}

	delete(r.devices, id)
}

func (r *Registry) AddDeviceToArea(deviceId string, areaId int) error {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	record, found := r.devices[deviceId]
	if !found {
		return ErrNotFound
	}

	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	area, found := r.areas[areaId]
	if !found {
		return ErrNotFound
	}

	record.metadata.Areas = append(record.metadata.Areas, areaId)
	area.Devices = append(area.Devices, deviceId)

	return nil
}

func (r *Registry) RemoveDeviceFromArea(deviceId string, areaId int) error {
	r.deviceLock.Lock()
	defer r.deviceLock.Unlock()

	record, found := r.devices[deviceId]
	if !found {
		return ErrNotFound
	}

	r.areaLock.Lock()
	defer r.areaLock.Unlock()

	area, found := r.areas[areaId]
	if !found {
		return ErrNotFound
	}

	record.metadata.Areas = filterInt(record.metadata.Areas, areaId)
	area.Devices = filterString(area.Devices, deviceId)

	return nil
}

func (r *Registry) enumerateAreaDescendents(id int) []int {
	area := r.areas[id]

	var subAreas []int

	subAreas = append(subAreas, area.SubAreas...)

	for _, subId := range area.SubAreas {
		descendentAreas := r.enumerateAreaDescendents(subId)
		subAreas = append(subAreas, descendentAreas...)
	}

	return subAreas
}
