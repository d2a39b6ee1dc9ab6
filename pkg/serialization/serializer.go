// Package serialization encodes designer session checkpoints into compact
// byte blobs for persistence.
package serialization

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts values to and from a byte encoding.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// JSONCodec encodes values as JSON. Useful for debugging stored blobs.
type JSONCodec struct{}

// Encode marshals v to JSON.
func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode unmarshals JSON data into v.
func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name returns the codec identifier.
func (JSONCodec) Name() string {
	return "json"
}

// MsgpackCodec encodes values as MessagePack, smaller and faster than JSON.
type MsgpackCodec struct{}

// Encode marshals v to MessagePack.
func (MsgpackCodec) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode unmarshals MessagePack data into v.
func (MsgpackCodec) Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// Name returns the codec identifier.
func (MsgpackCodec) Name() string {
	return "msgpack"
}

// Serializer couples a codec with optional zstd compression.
type Serializer struct {
	codec    Codec
	compress bool
}

// NewSerializer creates a serializer around the codec, compressing with zstd
// when compress is set.
func NewSerializer(codec Codec, compress bool) *Serializer {
	return &Serializer{codec: codec, compress: compress}
}

// DefaultSerializer returns the production configuration: MessagePack with
// zstd compression.
func DefaultSerializer() *Serializer {
	return NewSerializer(MsgpackCodec{}, true)
}

// Format identifies the full encoding, e.g. "msgpack+zstd", so stored blobs
// can be matched against a compatible serializer on read.
func (s *Serializer) Format() string {
	if s.compress {
		return s.codec.Name() + "+zstd"
	}
	return s.codec.Name()
}

// Serialize encodes v and compresses the result when compression is enabled.
func (s *Serializer) Serialize(v any) ([]byte, error) {
	data, err := s.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.codec.Name(), err)
	}
	if !s.compress {
		return data, nil
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// Deserialize decompresses data when compression is enabled and decodes it
// into v.
func (s *Serializer) Deserialize(data []byte, v any) error {
	if s.compress {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return fmt.Errorf("create zstd reader: %w", err)
		}
		defer decoder.Close()

		plain, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("decompress: %w", err)
		}
		data = plain
	}

	if err := s.codec.Decode(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", s.codec.Name(), err)
	}
	return nil
}
