package config

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParseBridge(t *testing.T) {
	t.Run("errors if json is invalid", func(t *testing.T) {
		data := []byte(`"`)
		br := BridgeConfig{}

		err := json.Unmarshal(data, &br)
		assert.Error(t, err)
	})

	t.Run("errors if type is unknown", func(t *testing.T) {
		data := []byte(`{"Type":"unknown"}`)
		br := BridgeConfig{}

		err := json.Unmarshal(data, &br)
		assert.Error(t, err)
	})

	t.Run("lyric bridge", func(t *testing.T) {
		t.Run("errors if source type is not recognised", func(t *testing.T) {
			data := []byte(`{"Type":"lyric","Config":{"Source":{"Type":"unknown"}}}`)
			br := BridgeConfig{}

			err := json.Unmarshal(data, &br)
			assert.Error(t, err)
		})

		t.Run("parses successfully with a file source", func(t *testing.T) {
			data := []byte(`{"Type":"lyric","Config":{"Source":{"Type":"file","Config":{"Path":"snapshot.json"}},"PollInterval":120,"Locations":["12345"]}}`)
			br := BridgeConfig{}

			err := json.Unmarshal(data, &br)
			assert.NoError(t, err)

			lyricBr, ok := br.Config.(*LyricConfig)
			assert.True(t, ok)

			assert.Equal(t, 120, lyricBr.PollInterval)
			assert.Contains(t, lyricBr.Locations, "12345")

			fileSrc, ok := lyricBr.Source.Config.(*FileSource)
			assert.True(t, ok)
			assert.Equal(t, "snapshot.json", fileSrc.Path)
		})
	})
}
