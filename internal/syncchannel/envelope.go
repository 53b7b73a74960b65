package syncchannel

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Event names of the sync protocol.
const (
	EventQuery          = "query"
	EventUpdate         = "update"
	EventClear          = "clear"
	EventUpdateResponse = "update_response"
	EventCancel         = "cancel"
	EventUndo           = "undo"
	EventRedo           = "redo"
)

// Envelope wraps the data of every message.
type Envelope struct {
	UUID  string `json:"uuid"`
	Reply bool   `json:"reply"`
	Data  any    `json:"data,omitempty"`
}

func decodeEnvelope(payload any) (Envelope, error) {
	var env Envelope
	raw, err := json.Marshal(payload)
	if err != nil {
		return env, fmt.Errorf("encoding payload: %w", err)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.UUID == "" {
		return env, fmt.Errorf("envelope has no uuid")
	}
	return env, nil
}
