package lyric

import (
	"sort"
)

// Snapshot is the result of one successful fetch of the Honeywell Lyric cloud
// state. It is replaced wholesale by the coordinator on each poll; holders of
// a snapshot only ever read it.
type Snapshot struct {
	Locations     []*Location
	LocationsDict map[string]*Location

	// RoomsDict maps a thermostat MAC id to the rooms reported by its
	// priority endpoint, keyed by room id.
	RoomsDict map[string]map[string]*Room
}

// NewSnapshot indexes the supplied locations and rooms, leaving the ordered
// collections intact alongside the keyed lookups.
func NewSnapshot(locations []*Location, rooms map[string][]*Room) *Snapshot {
	s := &Snapshot{
		Locations:     locations,
		LocationsDict: map[string]*Location{},
		RoomsDict:     map[string]map[string]*Room{},
	}

	for _, l := range locations {
		s.LocationsDict[l.LocationID] = l
	}

	for mac, macRooms := range rooms {
		byId := map[string]*Room{}

		for _, r := range macRooms {
			byId[r.ID] = r
		}

		s.RoomsDict[mac] = byId
	}

	return s
}

type Location struct {
	LocationID string
	Name       string

	Devices     []*Device
	DevicesDict map[string]*Device
}

// NewLocation indexes devices under their MAC id, falling back to the device
// id for hardware which lacks a MAC, matching what the cloud returns.
func NewLocation(id string, name string, devices ...*Device) *Location {
	l := &Location{
		LocationID:  id,
		Name:        name,
		Devices:     devices,
		DevicesDict: map[string]*Device{},
	}

	for _, d := range devices {
		l.DevicesDict[deviceKey(d)] = d
	}

	return l
}

func deviceKey(d *Device) string {
	if d.MACID != "" {
		return d.MACID
	}

	return d.DeviceID
}

type Device struct {
	MACID       string
	DeviceID    string
	Name        string
	DeviceModel string
	DeviceType  string

	// Attributes carries the raw attribute bag from the cloud, including
	// nested structures such as deviceSettings.
	Attributes map[string]any
}

// AttributeKeys returns the sorted top level keys of the attribute bag, used
// for diagnostics when a keyed lookup misses.
func (d *Device) AttributeKeys() []string {
	keys := make([]string, 0, len(d.Attributes))

	for k := range d.Attributes {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}

type Room struct {
	ID       string
	RoomName string

	RoomAvgTemp     float64
	RoomAvgHumidity float64
	OverallMotion   bool

	Accessories []*Accessory
}

type Accessory struct {
	ID   string
	Type string

	Temperature   float64
	OccupancyDet  bool
	ExcludeTemp   bool
	ExcludeMotion bool
}
