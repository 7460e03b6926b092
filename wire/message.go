// Package wire defines the JSON message envelope shared by the server and
// the client network session.
package wire

import (
	"encoding/json"
	"fmt"
	"math"
)

// A Message is a transmission between a client and a room, in either
// direction. It always carries a "type" field plus an arbitrary payload.
type Message struct {
	// Type is the `type` field from the message object.
	Type string

	// payload is a map containing the parsed payload without the `type` field.
	payload map[string]interface{}
}

// New returns a pointer to a new message with the given type and an empty
// payload.
func New(typ string) *Message {
	return &Message{
		Type:    typ,
		payload: map[string]interface{}{},
	}
}

// Parse attempts to turn data into a Message. It returns false if data is
// not a JSON object, has no "type" field, or has a non-string "type" field.
func Parse(data []byte) (*Message, bool) {
	var parsed map[string]interface{}

	if json.Unmarshal(data, &parsed) != nil {
		return nil, false
	}

	typeVal, ok := parsed["type"]

	if !ok {
		return nil, false
	}

	typeStr, ok := typeVal.(string)

	if !ok {
		return nil, false
	}

	delete(parsed, "type")

	return &Message{
		Type:    typeStr,
		payload: parsed,
	}, true
}

// Encode turns the message into something suitable for sending over the
// network.
func (msg *Message) Encode() ([]byte, error) {
	if existingType, ok := msg.payload["type"]; ok {
		return nil, fmt.Errorf("found 'type' in payload: '%v'", existingType)
	}

	copied := map[string]interface{}{"type": msg.Type}

	for k, v := range msg.payload {
		copied[k] = v
	}

	return json.Marshal(copied)
}

// Add adds the given key-value pair to the message payload and returns the
// message again, so calls can be chained.
func (msg *Message) Add(key string, value interface{}) *Message {
	msg.payload[key] = value
	return msg
}

// TryGet returns a pointer to the value for the given field in the message
// payload, or nil if the field does not exist.
func (msg *Message) TryGet(key string) *interface{} {
	if v, ok := msg.payload[key]; ok {
		return &v
	}

	return nil
}

// GetString finds the value for the given field and casts it to a string.
func (msg *Message) GetString(key string) (string, error) {
	v := msg.TryGet(key)

	if v == nil {
		return "", fmt.Errorf("key %v does not exist", key)
	}

	if s, ok := (*v).(string); ok {
		return s, nil
	}

	return "", fmt.Errorf("cannot convert '%v' value %v to string", key, *v)
}

// GetNumber finds the value for the given field and casts it to a float64.
// It returns an error if the key is missing, the value is not numeric, or
// the value is not finite (NaN/Inf never pass validation at the wire
// boundary).
func (msg *Message) GetNumber(key string) (float64, error) {
	v := msg.TryGet(key)

	if v == nil {
		return 0, fmt.Errorf("key %v does not exist", key)
	}

	f, ok := (*v).(float64)

	if !ok {
		return 0, fmt.Errorf("cannot convert '%v' value %v to float64", key, *v)
	}

	if !IsFinite(f) {
		return 0, fmt.Errorf("value %v for key %v is not finite", f, key)
	}

	return f, nil
}

// GetBool finds the value for the given field and casts it to a bool.
func (msg *Message) GetBool(key string) (bool, error) {
	v := msg.TryGet(key)

	if v == nil {
		return false, fmt.Errorf("key %v does not exist", key)
	}

	if b, ok := (*v).(bool); ok {
		return b, nil
	}

	return false, fmt.Errorf("cannot convert '%v' value %v to bool", key, *v)
}

// IsFinite reports whether f is neither NaN nor infinite. Every numeric
// field taken from the wire must pass this before it touches simulation
// state; see spec §7's "invalid simulation state" error class.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
