package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// codecName matches Connect's built-in JSON codec, so plain
// "Content-Type: application/json" requests work from curl and browsers.
const codecName = "json"

// jsonCodec encodes the plain Go messages of package api with encoding/json.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
