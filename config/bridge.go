package config

import (
	"encoding/json"
	"fmt"
	"github.com/tidwall/gjson"
)

type BridgeConfig struct {
	Name   string `json:"-"`
	Type   string
	Config any
}

func (b *BridgeConfig) UnmarshalJSON(data []byte) error {
	if result := gjson.GetBytes(data, "Type"); !result.Exists() {
		return fmt.Errorf("failed to find bridge type information")
	} else {
		b.Type = result.String()
	}

	switch b.Type {
	case "lyric":
		if result := gjson.GetBytes(data, "Config"); result.Exists() {
			b.Config = &LyricConfig{}
			return json.Unmarshal([]byte(result.Raw), b.Config)
		} else {
			return fmt.Errorf("unable to find Config stanza: %s", b.Type)
		}
	default:
		return fmt.Errorf("unknown bridge configuration type: %s", b.Type)
	}
}

type LyricConfig struct {
	Source SourceConfig

	// PollInterval is in seconds; zero means the default interval.
	PollInterval int

	// Locations restricts the bridge to the named location ids, empty
	// admits every location the account can see.
	Locations []string
}

type SourceConfig struct {
	Type   string
	Config any
}

func (s *SourceConfig) UnmarshalJSON(data []byte) error {
	if result := gjson.GetBytes(data, "Type"); !result.Exists() {
		return fmt.Errorf("failed to find snapshot source type information")
	} else {
		s.Type = result.String()
	}

	switch s.Type {
	case "file":
		if result := gjson.GetBytes(data, "Config"); result.Exists() {
			s.Config = &FileSource{}
			return json.Unmarshal([]byte(result.Raw), s.Config)
		} else {
			return fmt.Errorf("unable to find Config stanza: %s", s.Type)
		}
	default:
		return fmt.Errorf("unknown snapshot source configuration type: %s", s.Type)
	}
}

type FileSource struct {
	Path string
}
