package websocket

import (
	"encoding/json"
	"time"
)

// MessageType names client -> server messages.
type MessageType string

const (
	TypeJoin  MessageType = "join"
	TypeLeave MessageType = "leave"
)

// Server -> client event names.
const (
	EventPresence    = "presence"
	EventNotify      = "notify"
	EventPlanUpdated = "plan_updated"
)

// Inbound is a message sent by the client.
type Inbound struct {
	Type MessageType `json:"type"`
	Room string      `json:"room"`
	User *UserInfo   `json:"user,omitempty"`
}

// UserInfo is the display info a client attaches to a join.
type UserInfo struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Frame is what every recipient of a broadcast receives.
type Frame struct {
	Event     string          `json:"event"`
	Room      string          `json:"room"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func encodeFrame(room, event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{
		Event:     event,
		Room:      room,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
