package messages

import (
	"encoding/json"
	"fmt"
)

type Encoding string

const (
	EncodingJSON   Encoding = "json"
	EncodingBinary Encoding = "binary"
)

// Codec turns outbound payloads into frames and inbound frames into
// messages. Each connection picks one codec when it is opened.
type Codec interface {
	Encoding() Encoding
	Encode(msgType string, payload any) ([]byte, error)
	Decode(b []byte) (*Message, error)
}

func NewCodec(encoding Encoding) (Codec, error) {
	switch encoding {
	case "", EncodingJSON:
		return JSONCodec{}, nil
	case EncodingBinary:
		return BinaryCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown encoding: %q", encoding)
	}
}

// JSONCodec writes the envelope as a JSON text frame.
type JSONCodec struct{}

func (JSONCodec) Encoding() Encoding {
	return EncodingJSON
}

func (JSONCodec) Encode(msgType string, payload any) ([]byte, error) {
	m, err := NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (JSONCodec) Decode(b []byte) (*Message, error) {
	m := &Message{}
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %v", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message has no type")
	}
	return m, nil
}

// BinaryCodec writes a zstd compressed flatbuffer. Game state payloads are
// encoded as a flatbuffer table, every other payload as JSON bytes.
type BinaryCodec struct{}

func (BinaryCodec) Encoding() Encoding {
	return EncodingBinary
}

func (BinaryCodec) Encode(msgType string, payload any) ([]byte, error) {
	m := &Message{Type: msgType}
	switch p := payload.(type) {
	case nil:
	case *GameStateUpdate:
		b, err := SerializeGameState(p)
		if err != nil {
			return nil, err
		}
		m.Payload = b
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %v", msgType, err)
		}
		m.Payload = b
	}
	return SerializeMessage(m)
}

func (BinaryCodec) Decode(b []byte) (*Message, error) {
	m, err := DeserializeMessage(b)
	if err != nil {
		return nil, err
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message has no type")
	}
	if m.Type == MessageTypeGameState && len(m.Payload) > 0 {
		state, err := DeserializeGameState(m.Payload)
		if err != nil {
			return nil, err
		}
		if m.Payload, err = json.Marshal(state); err != nil {
			return nil, fmt.Errorf("failed to marshal game state: %v", err)
		}
	}
	return m, nil
}
