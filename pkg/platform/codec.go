// Package platform carries map style and gesture traffic between Go and the
// native map view over named channels.
package platform

import (
	"encoding/json"
)

// MessageCodec encodes and decodes channel payloads.
type MessageCodec interface {
	Encode(value any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// JsonCodec implements MessageCodec with encoding/json. Byte slices travel
// as base64 strings.
type JsonCodec struct{}

// Encode serializes value to JSON.
func (JsonCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode deserializes JSON into maps, slices and scalars. Empty input
// decodes to nil.
func (JsonCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DefaultCodec is the codec used by every channel.
var DefaultCodec MessageCodec = JsonCodec{}
