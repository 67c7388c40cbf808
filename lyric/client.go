package lyric

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Client produces a fresh Snapshot of the Lyric service state. Transport,
// authentication and session refresh are the client implementation's problem,
// callers only see the resulting snapshot.
type Client interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(ctx context.Context) (*Snapshot, error)

func (f ClientFunc) Snapshot(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// FileClient reads a snapshot from a JSON file on each poll, the file format
// mirrors the payloads returned by the Lyric cloud. Used for development and
// replaying captured cloud state.
type FileClient struct {
	Path string
}

var _ Client = (*FileClient)(nil)

type snapshotDocument struct {
	Locations []*locationDocument        `json:"locations"`
	Rooms     map[string][]*roomDocument `json:"rooms"`
}

type locationDocument struct {
	LocationID json.Number       `json:"locationID"`
	Name       string            `json:"name"`
	Devices    []json.RawMessage `json:"devices"`
}

type deviceDocument struct {
	MACID       string `json:"macID"`
	DeviceID    string `json:"deviceID"`
	Name        string `json:"name"`
	DeviceModel string `json:"deviceModel"`
	DeviceType  string `json:"deviceType"`
}

type roomDocument struct {
	ID              json.Number          `json:"id"`
	RoomName        string               `json:"roomName"`
	RoomAvgTemp     float64              `json:"roomAvgTemp"`
	RoomAvgHumidity float64              `json:"roomAvgHumidity"`
	OverallMotion   bool                 `json:"overallMotion"`
	Accessories     []*accessoryDocument `json:"accessories"`
}

type accessoryDocument struct {
	ID            json.Number `json:"id"`
	Type          string      `json:"type"`
	Temperature   float64     `json:"temperature"`
	OccupancyDet  bool        `json:"occupancyDet"`
	ExcludeTemp   bool        `json:"excludeTemp"`
	ExcludeMotion bool        `json:"excludeMotion"`
}

func (f *FileClient) Snapshot(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	return ParseSnapshot(data)
}

// ParseSnapshot decodes a cloud state document into an indexed Snapshot.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	doc := snapshotDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot document: %w", err)
	}

	var locations []*Location

	for _, ld := range doc.Locations {
		var devices []*Device

		for _, raw := range ld.Devices {
			d, err := parseDevice(raw)
			if err != nil {
				return nil, err
			}

			devices = append(devices, d)
		}

		locations = append(locations, NewLocation(ld.LocationID.String(), ld.Name, devices...))
	}

	rooms := map[string][]*Room{}

	for mac, roomDocs := range doc.Rooms {
		for _, rd := range roomDocs {
			rooms[mac] = append(rooms[mac], parseRoom(rd))
		}
	}

	return NewSnapshot(locations, rooms), nil
}

func parseDevice(raw json.RawMessage) (*Device, error) {
	dd := deviceDocument{}
	if err := json.Unmarshal(raw, &dd); err != nil {
		return nil, fmt.Errorf("failed to parse device document: %w", err)
	}

	attributes := map[string]any{}
	if err := json.Unmarshal(raw, &attributes); err != nil {
		return nil, fmt.Errorf("failed to parse device attributes: %w", err)
	}

	return &Device{
		MACID:       dd.MACID,
		DeviceID:    dd.DeviceID,
		Name:        dd.Name,
		DeviceModel: dd.DeviceModel,
		DeviceType:  dd.DeviceType,
		Attributes:  attributes,
	}, nil
}

func parseRoom(rd *roomDocument) *Room {
	var accessories []*Accessory

	for _, ad := range rd.Accessories {
		accessories = append(accessories, &Accessory{
			ID:            ad.ID.String(),
			Type:          ad.Type,
			Temperature:   ad.Temperature,
			OccupancyDet:  ad.OccupancyDet,
			ExcludeTemp:   ad.ExcludeTemp,
			ExcludeMotion: ad.ExcludeMotion,
		})
	}

	return &Room{
		ID:              rd.ID.String(),
		RoomName:        rd.RoomName,
		RoomAvgTemp:     rd.RoomAvgTemp,
		RoomAvgHumidity: rd.RoomAvgHumidity,
		OverallMotion:   rd.OverallMotion,
		Accessories:     accessories,
	}
}
