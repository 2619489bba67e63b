// Package protocol defines the WebSocket message types exchanged
// between the bridge and its consumers (transform servers, dashboards).
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Bridge → consumer messages
	TypeTransform MessageType = "transform" // Published rigid-body transform
	TypeFrame     MessageType = "frame"     // Camera frame metadata
	TypeStatus    MessageType = "status"    // Bridge status snapshot

	// Consumer → bridge messages
	TypeResetSeated MessageType = "reset_seated" // Re-zero the seated origin

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// TransformData carries one published transform. The matrix is the 4x4
// homogeneous transform in row-major order.
type TransformData struct {
	Child  string      `json:"child"`
	Parent string      `json:"parent"`
	Matrix [16]float64 `json:"matrix"`
}

// FrameData describes a camera frame. The pixel payload itself travels
// as a separate binary message; this carries its metadata.
type FrameData struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"` // "jpeg"
	Sequence uint32 `json:"sequence"`
}

// StatusData is a snapshot of the bridge state.
type StatusData struct {
	Initialized bool     `json:"initialized"`
	Origin      string   `json:"origin"`
	BaseFrame   string   `json:"base_frame"`
	Devices     []string `json:"devices"`
	Ticks       uint64   `json:"ticks"`
	Published   uint64   `json:"published"`
}

// ResetSeatedResult reports the outcome of a seated-origin reset.
type ResetSeatedResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
