package exporter

const (
	HeartBeatMessageName = "HeartBeat"

	AreaUpdateMessageName = "AreaUpdate"
	AreaRemoveMessageName = "AreaRemove"

	DeviceUpdateMessageName = "DeviceUpdate"
	DeviceRemoveMessageName = "DeviceRemove"

	PollFailedMessageName = "PollFailed"
)

type Message struct {
	Type string
}

func (m Message) MessageType() string {
	return m.Type
}

type Typer interface {
	MessageType() string
}

type HeartBeatMessage struct {
	Message
}

type AreaMessage struct {
	Message
	Identifier int
}

type AreaUpdateMessage struct {
	AreaMessage
	Name   string
	Parent int
}

type AreaRemoveMessage struct {
	AreaMessage
}

type DeviceMessage struct {
	Message
}

type DeviceUpdateMessage struct {
	DeviceMessage
	ExportedDevice
}

type DeviceRemoveMessage struct {
	DeviceMessage
	Identifier string
}

type PollFailedMessage struct {
	Message
	Error string
}
