package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/events"
)

// ProtocolVersion is stamped on every frame. Frames with another version
// are rejected.
const ProtocolVersion = 1

// Frame types that are not bus events.
const (
	TypeSubscribe  = "subscribe"  // watcher -> server
	TypeSubscribed = "subscribed" // server -> watcher ack
)

// Envelope is the wire format in both directions. Scenario carries the
// result's table kind for event frames and the requested filter for
// control frames, so neither side has to decode the payload to route it.
type Envelope struct {
	V         int             `json:"v"`
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp time.Time       `json:"ts,omitzero"`
	Scenario  scenario.Kind   `json:"scenario,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// MarshalEvent encodes a computed-scenario event as an Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		V:         ProtocolVersion,
		Type:      string(evt.Type),
		ID:        evt.ID,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	if sc, ok := evt.Payload.(events.ScenarioComputedEvent); ok {
		env.Scenario = sc.Result.Kind
	}
	return json.Marshal(env)
}

// MarshalControl encodes a subscribe request or its ack.
func MarshalControl(typ string, kind scenario.Kind) ([]byte, error) {
	return json.Marshal(Envelope{V: ProtocolVersion, Type: typ, Scenario: kind})
}

// Decode parses and version-checks a frame without touching the payload.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.V != ProtocolVersion {
		return env, fmt.Errorf("protocol version %d, want %d", env.V, ProtocolVersion)
	}
	return env, nil
}

// Event converts an event frame back into a typed bus Event.
func (env Envelope) Event() (events.Event, error) {
	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventScenarioComputed:
		var sc events.ScenarioComputedEvent
		if err := json.Unmarshal(env.Payload, &sc); err != nil {
			return evt, fmt.Errorf("unmarshal %s: %w", env.Type, err)
		}
		evt.Payload = sc
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}
	return evt, nil
}

// UnmarshalEvent is Decode followed by Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	env, err := Decode(data)
	if err != nil {
		return events.Event{}, err
	}
	return env.Event()
}
