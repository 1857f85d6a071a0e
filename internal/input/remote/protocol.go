package remote

import (
	"encoding/json"
	"fmt"
)

// Message types carried in Envelope.T.
const (
	MsgHello   = "hello"
	MsgWelcome = "welcome"
	MsgGravity = "gravity"
)

// Envelope is the frame every websocket message travels in.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}

// Hello is sent by a controller page after connecting.
type Hello struct {
	V    int    `json:"v"`              // version
	Name string `json:"name,omitempty"` // optional device name
}

// Welcome answers Hello. RateHz tells the page how often to report gravity.
type Welcome struct {
	ClientID string `json:"clientId"`
	RateHz   int    `json:"rateHz"`
}

// Gravity is one orientation reading in device units (-1..1 per axis).
type Gravity struct {
	GX float64 `json:"gx"`
	GY float64 `json:"gy"`
}

// Encode wraps payload in an envelope of type t.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: empty envelope type")
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %q: nil payload", t)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// DecodeEnvelope parses the outer frame without touching the payload.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode: empty message")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("decode: envelope has no type")
	}
	return e, nil
}

// DecodePayload unmarshals env's payload into a T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %q payload: %w", env.T, err)
	}
	return out, nil
}
