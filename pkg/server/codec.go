package server

import (
	"github.com/goccy/go-json"
)

const jsonCodecName = "json"

// JSONCodec encodes the plain Go API messages for connect. It replaces connect's protobuf JSON
// codec under the same name, so clients keep sending application/json.
type JSONCodec struct{}

func (JSONCodec) Name() string {
	return jsonCodecName
}

func (JSONCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (JSONCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}

	return json.Unmarshal(data, message)
}
