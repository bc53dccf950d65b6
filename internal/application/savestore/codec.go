package savestore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Codec turns a payload into the bytes stored on disk and back.
type Codec[T any] interface {
	Marshal(v T) ([]byte, error)
	Unmarshal(data []byte) (T, error)
}

// JSONCodec stores payloads as indented JSON.
type JSONCodec[T any] struct{}

// Marshal implements Codec.
func (JSONCodec[T]) Marshal(v T) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal implements Codec.
func (JSONCodec[T]) Unmarshal(data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return v, nil
}

// BytesCodec passes opaque payloads through. An empty file does not decode.
type BytesCodec struct{}

// Marshal implements Codec.
func (BytesCodec) Marshal(v []byte) ([]byte, error) {
	return bytes.Clone(v), nil
}

// Unmarshal implements Codec.
func (BytesCodec) Unmarshal(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to decode payload: %w", ErrEmpty)
	}
	return bytes.Clone(data), nil
}
