package registry

import (
	"fmt"
)

// Identifier namespaces used by the bridge when describing devices.
const (
	// ConnectionNetworkMAC keys thermostats by their hardware network address.
	ConnectionNetworkMAC = "mac"
	// NamespaceRoomAccessory keys room accessories beneath their parent
	// thermostat's MAC.
	NamespaceRoomAccessory = "mac_room_accessory"
	// NamespaceLyric keys devices which only carry a cloud device id.
	NamespaceLyric = "lyric"
)

// Identifier is a (namespace, id) pair identifying a physical device.
type Identifier struct {
	Namespace string `json:"namespace"`
	ID        string `json:"id"`
}

func (i Identifier) String() string {
	return fmt.Sprintf("%s:%s", i.Namespace, i.ID)
}

// DeviceInfo describes a physical device for display and grouping, produced
// by entity adapters and consumed by the Registry.
type DeviceInfo struct {
	Identifiers  []Identifier `json:"identifiers"`
	Connections  []Identifier `json:"connections,omitempty"`
	Manufacturer string       `json:"manufacturer"`
	Model        string       `json:"model"`
	Name         string       `json:"name"`
	ViaDevice    *Identifier  `json:"viaDevice,omitempty"`
}

// PrimaryIdentifier returns the identifier a device is registered under.
func (d DeviceInfo) PrimaryIdentifier() (Identifier, bool) {
	if len(d.Identifiers) == 0 {
		return Identifier{}, false
	}

	return d.Identifiers[0], true
}
