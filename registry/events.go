package registry

// Events describing registry mutations, published on the central event bus
// by whichever component performed the mutation.

type AreaCreated struct {
	Identifier int
	Name       string
}

type AreaUpdated struct {
	Identifier int
	Name       string
	Parent     int
}

type AreaRemoved struct {
	Identifier int
}

type DeviceMetadataUpdated struct {
	Identifier string
}
