package kds

import (
	"encoding/json"
	"errors"
)

// EventType -> discriminator "type" pada setiap pesan push channel
type EventType string

// Event types
const (
	EventConnect             EventType = "connect"
	EventNewOrder            EventType = "new_order"
	EventOrderUpdated        EventType = "order_updated"
	EventNewKitchenToken     EventType = "new_kitchen_token"
	EventKitchenTokenUpdated EventType = "kitchen_token_updated"
	EventNewBill             EventType = "new_bill"
	EventBillUpdated         EventType = "bill_updated"
	EventPing                EventType = "ping"
	EventPong                EventType = "pong"
)

var ErrMissingType = errors.New("kds: message has no type")

type Message struct {
	Type     EventType `json:"type"`
	ClientID string    `json:"clientId,omitempty"`
}

// DecodeMessage parses one push-channel frame.
func DecodeMessage(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" {
		return Message{}, ErrMissingType
	}
	return msg, nil
}

func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
